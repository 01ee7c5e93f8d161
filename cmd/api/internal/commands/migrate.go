package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/blackenaxe/icom/internal/persistence"
)

// MigrateCmd applies pending migrations to POSTGRES_DSN.
type MigrateCmd struct{}

func (m *MigrateCmd) Run(ctx context.Context, globals *Globals) error {
	cfg, logger, err := bootstrap(globals)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if errors.Is(err, persistence.ErrPostgresNotConfigured) {
		return errors.New("POSTGRES_DSN must be set to run migrations")
	}
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	return persistence.RunMigrations(ctx, pg.PoolHandle(), logger)
}
