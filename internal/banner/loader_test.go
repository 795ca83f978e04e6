package banner

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xtding233/gacha-sim/internal/gacha"
)

func TestLoadDefault(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "Standard Headhunting" {
		t.Fatalf("name = %q", cfg.Name)
	}
	for _, tier := range gacha.Tiers {
		if len(cfg.Pools[tier]) == 0 {
			t.Fatalf("%s pool empty", tier)
		}
	}
	if cfg.Shares[gacha.Top] != 0.5 {
		t.Fatalf("top share = %v", cfg.Shares[gacha.Top])
	}
}

func TestLoadMissingPath(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "banner.json")
	if err := os.WriteFile(path, defaultBanner, 0o644); err != nil {
		t.Fatal(err)
	}
	a, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("loads differ:\n%+v\n%+v", a, b)
	}
}

func TestSaveThenLoad(t *testing.T) {
	cfg, _ := Default()
	cfg.Guaranteed = []string{"Nian"}
	cfg.AlertGuaranteed = []string{"Dusk"}

	for _, name := range []string{"banner.json", "banner.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := Save(path, cfg); err != nil {
				t.Fatal(err)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(FromConfig(got), FromConfig(cfg)) {
				t.Fatalf("round trip changed config:\n%+v\n%+v", got, cfg)
			}
		})
	}
}

func TestSaveWithoutPath(t *testing.T) {
	cfg, _ := Default()
	if err := Save("", cfg); !errors.Is(err, ErrNoPath) {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadInvalid(t *testing.T) {
	cases := map[string]string{
		"syntax":       `{"name": `,
		"empty pool":   `{"name": "x", "operators": {"top": ["a"], "high": ["b"], "mid": ["c"]}}`,
		"two limits":   `{"name": "x", "operators": {"top": ["a"], "high": ["b"], "mid": ["c"], "low": ["d"]}, "upLimit": ["p", "q"]}`,
		"share over 1": `{"name": "x", "operators": {"top": ["a"], "high": ["b"], "mid": ["c"], "low": ["d"]}, "topRarityChance": 1.5}`,
		"no name":      `{"operators": {"top": ["a"], "high": ["b"], "mid": ["c"], "low": ["d"]}}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "banner.json")
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("err = %v", err)
			}
		})
	}
}

func TestLoaderCacheAndInvalidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "banner.json")
	if err := os.WriteFile(path, defaultBanner, 0o644); err != nil {
		t.Fatal(err)
	}
	l := NewLoader(path)
	first, err := l.Load()
	if err != nil {
		t.Fatal(err)
	}

	changed := first.Clone()
	changed.Name = "Rerun"
	if err := Save(path, changed); err != nil {
		t.Fatal(err)
	}
	cached, _ := l.Load()
	if cached.Name != first.Name {
		t.Fatalf("cache bypassed: %q", cached.Name)
	}

	l.Invalidate()
	fresh, _ := l.Load()
	if fresh.Name != "Rerun" {
		t.Fatalf("invalidate ignored: %q", fresh.Name)
	}
}
