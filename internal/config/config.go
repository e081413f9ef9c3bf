package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	ListenAddr string

	ThemeDir     string
	DefaultTheme string

	DefaultSquareSize  int
	MaxSquareSize      int
	DefaultFormat      string
	DefaultCoordinates bool

	RenderTimeout        time.Duration
	MaxConcurrentRenders int

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		ListenAddr:           ":8000",
		DefaultSquareSize:    45,
		MaxSquareSize:        200,
		DefaultFormat:        "svg",
		RenderTimeout:        5 * time.Second,
		MaxConcurrentRenders: 2 * runtime.NumCPU(),
		ReadTimeout:          10 * time.Second,
		WriteTimeout:         10 * time.Second,
	}

	if v := strings.TrimSpace(os.Getenv("LISTEN_ADDR")); v != "" {
		cfg.ListenAddr = v
	} else if v := strings.TrimSpace(os.Getenv("PORT")); v != "" {
		cfg.ListenAddr = ":" + v
	}

	cfg.ThemeDir = strings.TrimSpace(os.Getenv("THEME_DIR"))
	cfg.DefaultTheme = strings.ToLower(strings.TrimSpace(os.Getenv("DEFAULT_THEME")))

	if v := strings.TrimSpace(os.Getenv("DEFAULT_SQUARE_SIZE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.DefaultSquareSize = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("MAX_SQUARE_SIZE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxSquareSize = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("DEFAULT_FORMAT")); v != "" {
		cfg.DefaultFormat = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("DEFAULT_COORDINATES")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.DefaultCoordinates = b
		}
	}
	if v := strings.TrimSpace(os.Getenv("RENDER_TIMEOUT_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RenderTimeout = time.Duration(n) * time.Millisecond
		}
	}
	if v := strings.TrimSpace(os.Getenv("MAX_CONCURRENT_RENDERS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxConcurrentRenders = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("READ_TIMEOUT_SEC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ReadTimeout = time.Duration(n) * time.Second
		}
	}
	if v := strings.TrimSpace(os.Getenv("WRITE_TIMEOUT_SEC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.WriteTimeout = time.Duration(n) * time.Second
		}
	}

	if cfg.DefaultFormat != "svg" && cfg.DefaultFormat != "png" {
		return nil, fmt.Errorf("DEFAULT_FORMAT must be svg or png, got %q", cfg.DefaultFormat)
	}
	if cfg.DefaultSquareSize > cfg.MaxSquareSize {
		return nil, errors.New("DEFAULT_SQUARE_SIZE exceeds MAX_SQUARE_SIZE")
	}
	return cfg, nil
}
