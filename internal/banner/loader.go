package banner

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/xtding233/gacha-sim/internal/gacha"
)

//go:embed default_banner.json
var defaultBanner []byte

// Default returns the built-in standard banner.
func Default() (gacha.Config, error) {
	return parse(defaultBanner)
}

// Load reads and validates the banner at path. An empty path yields the
// built-in default; a path that does not exist is ErrConfigNotFound.
func Load(path string) (gacha.Config, error) {
	if path == "" {
		return Default()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return gacha.Config{}, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return gacha.Config{}, err
	}
	cfg, err := parse(b)
	if err != nil {
		return gacha.Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// parse accepts JSON or YAML; JSON documents are valid YAML.
func parse(b []byte) (gacha.Config, error) {
	var doc Document
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return gacha.Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := Validate(doc); err != nil {
		return gacha.Config{}, err
	}
	return doc.Config(), nil
}

// Save writes cfg to path atomically. Files ending in .yaml or .yml are
// written as YAML, anything else as indented JSON.
func Save(path string, cfg gacha.Config) error {
	if path == "" {
		return ErrNoPath
	}
	doc := FromConfig(cfg)

	var (
		b   []byte
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		b, err = yaml.Marshal(doc)
	default:
		b, err = json.MarshalIndent(doc, "", "    ")
	}
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Loader reads the banner file once and caches it until invalidated.
// It is also the persister the updater writes through.
type Loader struct {
	path string

	mu     sync.RWMutex
	cached *gacha.Config
}

// NewLoader creates a loader for path ("" means the built-in default).
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load returns the cached banner, reading it on first use.
func (l *Loader) Load() (gacha.Config, error) {
	l.mu.RLock()
	if l.cached != nil {
		cfg := l.cached.Clone()
		l.mu.RUnlock()
		return cfg, nil
	}
	l.mu.RUnlock()

	cfg, err := Load(l.path)
	if err != nil {
		return gacha.Config{}, err
	}

	l.mu.Lock()
	c := cfg.Clone()
	l.cached = &c
	l.mu.Unlock()
	return cfg, nil
}

// Save persists cfg and refreshes the cache.
func (l *Loader) Save(cfg gacha.Config) error {
	if err := Save(l.path, cfg); err != nil {
		return err
	}
	l.mu.Lock()
	c := cfg.Clone()
	l.cached = &c
	l.mu.Unlock()
	return nil
}

// Invalidate clears the cache. Call after the watcher detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cached = nil
}
