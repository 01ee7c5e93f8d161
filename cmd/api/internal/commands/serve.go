package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/blackenaxe/icom/internal/app"
	"github.com/blackenaxe/icom/internal/observability"
)

// ServeCmd runs the HTTP API until SIGINT or SIGTERM.
type ServeCmd struct {
	ShutdownTimeout time.Duration `help:"grace period for in-flight requests" default:"10s"`
}

func (s *ServeCmd) Run(ctx context.Context, globals *Globals) error {
	cfg, logger, err := bootstrap(globals)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := app.Build(ctx, cfg, logger, observability.NewMetrics())
	if err != nil {
		return err
	}
	defer container.Close()

	server := container.HTTPApp()
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("addr", cfg.App.Addr()),
			zap.String("storage", container.Storage()),
			zap.String("version", cfg.App.Version),
		)
		errCh <- server.Listen(cfg.App.Addr())
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("fiber listen: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	if err := server.ShutdownWithTimeout(s.ShutdownTimeout); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
