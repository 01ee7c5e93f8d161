package commands

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/blackenaxe/icom/internal/config"
	"github.com/blackenaxe/icom/internal/observability"
)

// Globals are shared by every command.
type Globals struct {
	Version string
}

// bootstrap loads configuration and builds the process logger.
func bootstrap(globals *Globals) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.App.Version == "dev" && globals.Version != "" {
		cfg.App.Version = globals.Version
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}
