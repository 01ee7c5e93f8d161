package commands

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/blackenaxe/icom/internal/app"
	"github.com/blackenaxe/icom/internal/observability"
	"github.com/blackenaxe/icom/internal/seed"
)

// SeedCmd loads a fixture into the configured store.
type SeedCmd struct {
	File string `arg:"" help:"path to the YAML fixture" type:"existingfile"`
}

func (s *SeedCmd) Run(ctx context.Context, globals *Globals) error {
	cfg, logger, err := bootstrap(globals)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	fx, err := seed.LoadFile(s.File)
	if err != nil {
		return err
	}

	container, err := app.Build(ctx, cfg, logger, observability.NewMetrics())
	if err != nil {
		return err
	}
	defer container.Close()

	if container.Storage() == app.StorageMemory {
		logger.Warn("seeding the in-memory store; data is discarded when the command exits")
	}

	res, err := seed.Apply(ctx, fx, seed.Services{
		Auth:       container.Auth,
		WorkOrders: container.WorkOrders,
		Updates:    container.Updates,
		Users:      container.Users,
	}, logger)
	if err != nil {
		return err
	}
	fmt.Printf("users created: %d (skipped %d), work orders: %d, updates: %d\n",
		res.UsersCreated, res.UsersSkipped, res.WorkOrdersCreated, res.UpdatesCreated)
	logger.Debug("seed finished", zap.String("file", s.File))
	return nil
}
