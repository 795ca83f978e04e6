package banner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Fetcher returns the latest announcement, or nil when nothing changed.
type Fetcher interface {
	Fetch(ctx context.Context) (*Announcement, error)
}

// HTTPFetcher GETs a JSON announcement from URL.
// 204 No Content and 304 Not Modified mean nothing changed.
type HTTPFetcher struct {
	URL    string
	Client *http.Client
}

// NewHTTPFetcher creates a fetcher with a bounded client timeout.
func NewHTTPFetcher(url string) *HTTPFetcher {
	return &HTTPFetcher{URL: url, Client: &http.Client{Timeout: 10 * time.Second}}
}

func (f *HTTPFetcher) Fetch(ctx context.Context) (*Announcement, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch announcement: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNoContent, http.StatusNotModified:
		return nil, nil
	default:
		return nil, fmt.Errorf("fetch announcement: unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("fetch announcement: %w", err)
	}
	if len(body) == 0 {
		return nil, nil
	}
	var ann Announcement
	if err := json.Unmarshal(body, &ann); err != nil {
		return nil, fmt.Errorf("decode announcement: %w", err)
	}
	if ann.Title == "" {
		return nil, nil
	}
	return &ann, nil
}
