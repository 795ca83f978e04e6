package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if GACHA_CONFIG is set
//  3. env (prefix GACHA_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("GACHA_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// GACHA_DB_PATH -> db_path; underscores are kept to match the koanf tags.
	envProvider := env.Provider("GACHA_", ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), "gacha_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []string
	if c.HTTPAddr == "" {
		errs = append(errs, "http_addr must not be empty")
	}
	if c.PityThreshold < 0 {
		errs = append(errs, "pity_threshold must be >= 0")
	}
	if c.PityStep < 0 {
		errs = append(errs, "pity_step must be >= 0")
	}
	if c.PityFloor < 0 {
		errs = append(errs, "pity_floor must be >= 0")
	}
	for name, w := range map[string]float64{
		"weight_top": c.WeightTop, "weight_high": c.WeightHigh,
		"weight_mid": c.WeightMid, "weight_low": c.WeightLow,
	} {
		if w <= 0 {
			errs = append(errs, name+" must be > 0")
		}
	}
	if c.DrawLimit < 1 {
		errs = append(errs, "draw_limit must be >= 1")
	}
	if c.UpdateURL != "" && c.UpdateInterval <= 0 {
		errs = append(errs, "update_interval must be > 0 when update_url is set")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(errs, "; "))
	}
	return nil
}
