// Package config handles application configuration loading and management.
package config

import "time"

// Config holds all application settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Viewer   ViewerConfig   `yaml:"viewer"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display settings for the listing window.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// ViewerConfig holds 3D preview settings.
type ViewerConfig struct {
	// Offscreen preview render target size, per card.
	PreviewWidth  int `yaml:"preview_width"`
	PreviewHeight int `yaml:"preview_height"`

	// Card activation policy: wait for an idle frame, but never longer
	// than IdleCeiling. FallbackDelay applies when no idle source exists.
	IdleCeiling   time.Duration `yaml:"idle_ceiling"`
	FallbackDelay time.Duration `yaml:"fallback_delay"`

	// Auto-rotate speed in radians per second.
	AutoRotateSpeed float64 `yaml:"auto_rotate_speed"`

	// HTTP timeout for fetching model assets.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

// CatalogConfig holds product catalog settings.
type CatalogConfig struct {
	Path string `yaml:"path"` // Path to the catalog YAML file
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     800,
			Fullscreen: false,
			VSync:      true,
		},
		Viewer: ViewerConfig{
			PreviewWidth:    512,
			PreviewHeight:   512,
			IdleCeiling:     2 * time.Second,
			FallbackDelay:   200 * time.Millisecond,
			AutoRotateSpeed: 0.8,
			FetchTimeout:    15 * time.Second,
		},
		Catalog: CatalogConfig{
			Path: "catalog.yaml",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
