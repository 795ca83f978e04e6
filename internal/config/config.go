// Package config defines the service configuration and its loader.
package config

import "time"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// HTTPAddr and GRPCAddr are the listen addresses. Empty GRPCAddr disables gRPC.
	HTTPAddr string `koanf:"http_addr"`
	GRPCAddr string `koanf:"grpc_addr"`

	// BannerPath is the banner file; empty uses the built-in standard banner.
	BannerPath string `koanf:"banner_path"`

	// DBPath is the SQLite file holding pity state and draw history.
	DBPath string `koanf:"db_path"`

	// UpdateURL is polled for banner announcements every UpdateInterval.
	// Empty disables updates.
	UpdateURL      string        `koanf:"update_url"`
	UpdateInterval time.Duration `koanf:"update_interval"`

	// WatchInterval polls BannerPath for edits; 0 disables the watcher.
	WatchInterval time.Duration `koanf:"watch_interval"`

	// PermanentBanner names the standing banner whose rate-ups are not merged.
	PermanentBanner string `koanf:"permanent_banner"`

	// Seed makes draws reproducible; 0 uses crypto randomness.
	Seed uint64 `koanf:"seed"`

	// Soft pity policy.
	PityThreshold int     `koanf:"pity_threshold"`
	PityStep      float64 `koanf:"pity_step"`
	PityFloor     float64 `koanf:"pity_floor"`

	// Base tier weights in percentage points.
	WeightTop  float64 `koanf:"weight_top"`
	WeightHigh float64 `koanf:"weight_high"`
	WeightMid  float64 `koanf:"weight_mid"`
	WeightLow  float64 `koanf:"weight_low"`

	// DrawLimit caps the count of one draw request.
	DrawLimit int `koanf:"draw_limit"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		HTTPAddr:        ":8080",
		GRPCAddr:        ":9090",
		DBPath:          "gacha.db",
		UpdateInterval:  30 * time.Minute,
		WatchInterval:   5 * time.Second,
		PermanentBanner: "Standard Headhunting",
		PityThreshold:   50,
		PityStep:        2,
		PityFloor:       1,
		WeightTop:       2,
		WeightHigh:      8,
		WeightMid:       50,
		WeightLow:       40,
		DrawLimit:       300,
	}
}
