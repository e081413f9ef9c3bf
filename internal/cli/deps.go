package cli

import (
	"fmt"

	"github.com/park285/boardimage/internal/annotate"
	"github.com/park285/boardimage/internal/boardimage"
	"github.com/park285/boardimage/internal/config"
	"github.com/park285/boardimage/internal/theme"
	"go.uber.org/zap"
)

type deps struct {
	Themes  *theme.Registry
	Service *boardimage.Service
}

func buildDeps(cfg *config.AppConfig, logger *zap.Logger) (*deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	themes, err := theme.Load(cfg.ThemeDir, cfg.DefaultTheme, logger)
	if err != nil {
		return nil, fmt.Errorf("load themes: %w", err)
	}

	resolver := annotate.NewResolver(themes, annotate.Defaults{
		Theme:         cfg.DefaultTheme,
		SquareSize:    cfg.DefaultSquareSize,
		MaxSquareSize: cfg.MaxSquareSize,
		Format:        annotate.Format(cfg.DefaultFormat),
		Coordinates:   cfg.DefaultCoordinates,
	})
	svc := boardimage.NewService(resolver, boardimage.Options{
		Timeout:       cfg.RenderTimeout,
		MaxConcurrent: cfg.MaxConcurrentRenders,
		Logger:        logger,
	})
	return &deps{Themes: themes, Service: svc}, nil
}
