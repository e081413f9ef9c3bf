package config

import (
	"testing"
	"time"
)

var envKeys = []string{
	"LISTEN_ADDR", "PORT", "THEME_DIR", "DEFAULT_THEME", "DEFAULT_SQUARE_SIZE", "MAX_SQUARE_SIZE",
	"DEFAULT_FORMAT", "DEFAULT_COORDINATES", "RENDER_TIMEOUT_MS", "MAX_CONCURRENT_RENDERS",
	"READ_TIMEOUT_SEC", "WRITE_TIMEOUT_SEC",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":8000" || cfg.DefaultSquareSize != 45 || cfg.MaxSquareSize != 200 || cfg.DefaultFormat != "svg" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.RenderTimeout != 5*time.Second || cfg.MaxConcurrentRenders <= 0 {
		t.Fatalf("unexpected render limits: %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("THEME_DIR", "/srv/themes")
	t.Setenv("DEFAULT_THEME", "Blue")
	t.Setenv("DEFAULT_SQUARE_SIZE", "60")
	t.Setenv("DEFAULT_FORMAT", "PNG")
	t.Setenv("DEFAULT_COORDINATES", "true")
	t.Setenv("RENDER_TIMEOUT_MS", "250")
	t.Setenv("MAX_CONCURRENT_RENDERS", "3")
	t.Setenv("WRITE_TIMEOUT_SEC", "not-a-number")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":9090" || cfg.ThemeDir != "/srv/themes" || cfg.DefaultTheme != "blue" {
		t.Fatalf("unexpected: %+v", cfg)
	}
	if cfg.DefaultSquareSize != 60 || cfg.DefaultFormat != "png" || !cfg.DefaultCoordinates {
		t.Fatalf("unexpected render defaults: %+v", cfg)
	}
	if cfg.RenderTimeout != 250*time.Millisecond || cfg.MaxConcurrentRenders != 3 || cfg.WriteTimeout != 10*time.Second {
		t.Fatalf("unexpected limits: %+v", cfg)
	}

	t.Setenv("LISTEN_ADDR", "127.0.0.1:7000")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != "127.0.0.1:7000" {
		t.Fatalf("LISTEN_ADDR should win over PORT, got %q", cfg.ListenAddr)
	}
}

func TestLoadRejects(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEFAULT_FORMAT", "gif")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for DEFAULT_FORMAT=gif")
	}
	t.Setenv("DEFAULT_FORMAT", "")
	t.Setenv("DEFAULT_SQUARE_SIZE", "300")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when default size exceeds max")
	}
}
