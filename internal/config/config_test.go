package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Graphics.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 800 {
		t.Errorf("expected height 800, got %d", cfg.Graphics.Height)
	}
	if cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if !cfg.Graphics.VSync {
		t.Error("expected vsync to be true by default")
	}

	if cfg.Viewer.PreviewWidth != 512 || cfg.Viewer.PreviewHeight != 512 {
		t.Errorf("expected 512x512 preview, got %dx%d", cfg.Viewer.PreviewWidth, cfg.Viewer.PreviewHeight)
	}
	if cfg.Viewer.IdleCeiling != 2*time.Second {
		t.Errorf("expected idle ceiling 2s, got %v", cfg.Viewer.IdleCeiling)
	}
	if cfg.Viewer.FallbackDelay != 200*time.Millisecond {
		t.Errorf("expected fallback delay 200ms, got %v", cfg.Viewer.FallbackDelay)
	}
	if cfg.Viewer.FetchTimeout != 15*time.Second {
		t.Errorf("expected fetch timeout 15s, got %v", cfg.Viewer.FetchTimeout)
	}

	if cfg.Catalog.Path != "catalog.yaml" {
		t.Errorf("expected catalog path 'catalog.yaml', got %s", cfg.Catalog.Path)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "showroom.yaml")

	yamlContent := `
graphics:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false

viewer:
  preview_width: 256
  preview_height: 256
  idle_ceiling: 5s
  fallback_delay: 50ms
  auto_rotate_speed: 1.5
  fetch_timeout: 3s

catalog:
  path: "products/catalog.yaml"

logging:
  level: "debug"
  log_file: "showroom.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920, got %d", cfg.Graphics.Width)
	}
	if !cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Graphics.VSync {
		t.Error("expected vsync to be false")
	}

	if cfg.Viewer.PreviewWidth != 256 {
		t.Errorf("expected preview width 256, got %d", cfg.Viewer.PreviewWidth)
	}
	if cfg.Viewer.IdleCeiling != 5*time.Second {
		t.Errorf("expected idle ceiling 5s, got %v", cfg.Viewer.IdleCeiling)
	}
	if cfg.Viewer.FallbackDelay != 50*time.Millisecond {
		t.Errorf("expected fallback delay 50ms, got %v", cfg.Viewer.FallbackDelay)
	}
	if cfg.Viewer.AutoRotateSpeed != 1.5 {
		t.Errorf("expected auto-rotate speed 1.5, got %f", cfg.Viewer.AutoRotateSpeed)
	}

	if cfg.Catalog.Path != "products/catalog.yaml" {
		t.Errorf("expected catalog path 'products/catalog.yaml', got %s", cfg.Catalog.Path)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "showroom.log" {
		t.Errorf("expected log file 'showroom.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
graphics:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/showroom.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "showroom.yaml")

	cfg := Default()
	cfg.Graphics.Width = 1600
	cfg.Viewer.PreviewWidth = 1024

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}

	if loaded.Graphics.Width != 1600 {
		t.Errorf("expected width 1600 after round trip, got %d", loaded.Graphics.Width)
	}
	if loaded.Viewer.PreviewWidth != 1024 {
		t.Errorf("expected preview width 1024 after round trip, got %d", loaded.Viewer.PreviewWidth)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "catalog flag",
			setup: func() { *flagCatalog = "other.yaml" },
			verify: func(cfg *Config) {
				if cfg.Catalog.Path != "other.yaml" {
					t.Errorf("expected catalog 'other.yaml', got %s", cfg.Catalog.Path)
				}
			},
			teardown: func() { *flagCatalog = "" },
		},
		{
			name:  "windowed flag",
			setup: func() { *flagWindowed = true },
			verify: func(cfg *Config) {
				if cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be false with windowed flag")
				}
			},
			teardown: func() { *flagWindowed = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(cfg *Config) {
				if cfg.Graphics.Width != 2560 || cfg.Graphics.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "showroom.yaml")

	yamlContent := `
graphics:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width comes from the flag, height from the file.
	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Graphics.Height)
	}
}
