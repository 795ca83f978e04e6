package banner

import (
	"context"
	"os"
	"time"
)

// FileWatcher polls a file's modification time and triggers a callback on
// change. Polling keeps it working on volumes without inotify.
type FileWatcher struct {
	Path     string
	Interval time.Duration
	onChange func(string) // called with the path that changed

	lastMTime time.Time
	seen      bool
}

// NewFileWatcher creates a watcher for path and interval.
func NewFileWatcher(path string, interval time.Duration, onChange func(string)) *FileWatcher {
	return &FileWatcher{
		Path:     path,
		Interval: interval,
		onChange: onChange,
	}
}

// Run polls until ctx is cancelled.
func (w *FileWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()
	// prime mtime
	w.scan(true)
	for {
		select {
		case <-ticker.C:
			w.scan(false)
		case <-ctx.Done():
			return
		}
	}
}

// scan checks the mtime and invokes onChange if it moved since the last scan.
func (w *FileWatcher) scan(prime bool) {
	fi, err := os.Stat(w.Path)
	if err != nil {
		// missing file: keep the last known mtime and try again next tick
		return
	}
	mt := fi.ModTime()
	if !w.seen {
		w.seen = true
		w.lastMTime = mt
		return
	}
	if mt.After(w.lastMTime) {
		w.lastMTime = mt
		if !prime && w.onChange != nil {
			w.onChange(w.Path)
		}
	}
}
