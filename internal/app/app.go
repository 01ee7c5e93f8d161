// Package app wires configuration, storage, services and the HTTP surface.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/blackenaxe/icom/internal/api/http"
	"github.com/blackenaxe/icom/internal/api/http/handlers"
	"github.com/blackenaxe/icom/internal/auth"
	"github.com/blackenaxe/icom/internal/config"
	"github.com/blackenaxe/icom/internal/events"
	"github.com/blackenaxe/icom/internal/observability"
	"github.com/blackenaxe/icom/internal/persistence"
	"github.com/blackenaxe/icom/internal/repository"
	"github.com/blackenaxe/icom/internal/repository/memory"
	"github.com/blackenaxe/icom/internal/service"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Container holds the wired services of one process.
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	Dispatcher events.Dispatcher
	Tokens     *auth.TokenManager

	Auth          *service.AuthService
	WorkOrders    *service.WorkOrderService
	Updates       *service.UpdateService
	Notifications *service.NotificationService
	Users         *service.UserService

	storage string
	deps    []handlers.Dependency
	closers []func()
}

// Options selects the storage backends for New.
type Options struct {
	Transactor  repository.Transactor
	Revocations auth.RevocationList
	Storage     string
	Health      []handlers.Dependency
}

// New wires services on top of the given backends.
func New(cfg *config.Config, logger *zap.Logger, metrics *observability.Metrics, opts Options) *Container {
	dispatcher := events.NewInMemoryDispatcher(logger)
	service.NewActivityLogger(dispatcher, logger.Named("activity"), metrics).RegisterHandlers()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.App.Name, cfg.Auth.AccessTokenTTL())
	revocations := opts.Revocations
	if revocations == nil {
		revocations = auth.NewNoopRevocationList(logger)
	}

	return &Container{
		Config:     cfg,
		Logger:     logger,
		Metrics:    metrics,
		Dispatcher: dispatcher,
		Tokens:     tokens,
		Auth: service.NewAuthService(cfg.Auth, service.AuthDependencies{
			Transactor:  opts.Transactor,
			Tokens:      tokens,
			Revocations: revocations,
			Dispatcher:  dispatcher,
			Logger:      logger,
		}),
		WorkOrders:    service.NewWorkOrderService(opts.Transactor, dispatcher, logger),
		Updates:       service.NewUpdateService(opts.Transactor, dispatcher, logger),
		Notifications: service.NewNotificationService(opts.Transactor),
		Users:         service.NewUserService(opts.Transactor),
		storage:       opts.Storage,
		deps:          opts.Health,
	}
}

// Build connects to the configured backends and wires services. Without a
// Postgres DSN the in-memory store is used.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger, metrics *observability.Metrics) (*Container, error) {
	var (
		opts    Options
		closers []func()
	)

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	switch {
	case errors.Is(err, persistence.ErrPostgresNotConfigured):
		logger.Warn("POSTGRES_DSN not provided; using in-memory store, data is lost on exit")
		opts.Transactor = memory.NewStore()
		opts.Storage = StorageMemory
	case err != nil:
		return nil, fmt.Errorf("connect postgres: %w", err)
	default:
		closers = append(closers, pg.Close)
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				pg.Close()
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}
		opts.Transactor = repository.NewTransactor(pg.PoolHandle(), logger)
		opts.Storage = StoragePostgres
		opts.Health = append(opts.Health, handlers.Dependency{Name: "postgres", Ping: pg.Ping})
	}

	if rdb := persistence.NewRedis(ctx, cfg.Redis, logger); rdb != nil {
		closers = append(closers, rdb.Close)
		opts.Revocations = auth.NewRedisRevocationList(rdb.Client)
		opts.Health = append(opts.Health, handlers.Dependency{Name: "redis", Ping: rdb.Ping})
	}

	c := New(cfg, logger, metrics, opts)
	c.closers = closers
	return c, nil
}

// Storage names the active store.
func (c *Container) Storage() string {
	return c.storage
}

// HTTPApp builds the fiber application with every middleware and route.
func (c *Container) HTTPApp() *fiber.App {
	// Immutable: parsed form values must outlive the request, the memory
	// store keeps them.
	app := fiber.New(fiber.Config{
		AppName:               c.Config.App.Name,
		DisableStartupMessage: true,
		Immutable:             true,
		ErrorHandler:          httptransport.ErrorHandler(c.Logger),
	})
	httptransport.RegisterMiddlewares(app, c.Config, c.Logger, c.Metrics)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(c.Config.App.Name, c.Config.App.Version, c.storage, c.deps...),
		Auth:           handlers.NewAuthHandler(c.Auth),
		WorkOrders:     handlers.NewWorkOrdersHandler(c.WorkOrders, c.Updates),
		Updates:        handlers.NewUpdatesHandler(c.Updates),
		Notifications:  handlers.NewNotificationsHandler(c.Notifications),
		Users:          handlers.NewUsersHandler(c.Users),
		AuthMiddleware: auth.NewAuthMiddleware(c.Auth),
		Metrics:        c.Metrics,
		RateLimit:      c.Config.RateLimit,
	})
	return app
}

// Close releases backend connections in reverse order of acquisition.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
