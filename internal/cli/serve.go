package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/park285/boardimage/internal/config"
	"github.com/park285/boardimage/internal/httpapi"
	"github.com/park285/boardimage/internal/obslog"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve board images over HTTP (configured from the environment)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

// runServe blocks until ctx is cancelled or the listener fails.
func runServe(ctx context.Context) error {
	if err := obslog.InitFromEnv(); err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	d, err := buildDeps(cfg, logger)
	if err != nil {
		return err
	}

	handler := httpapi.NewHandler(d.Service, d.Themes, logger)
	srv := httpapi.NewServer(handler, httpapi.ServerOptions{
		Addr:         cfg.ListenAddr,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("http_shutdown_failed", zap.Error(err))
		return err
	}
	return nil
}
