package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/blackenaxe/icom/internal/api/http/handlers"
	"github.com/blackenaxe/icom/internal/auth"
	"github.com/blackenaxe/icom/internal/config"
	"github.com/blackenaxe/icom/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	WorkOrders     *handlers.WorkOrdersHandler
	Updates        *handlers.UpdatesHandler
	Notifications  *handlers.NotificationsHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
	RateLimit      config.RateLimitConfig
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	api := app.Group("/api")
	api.Post("/register", cfg.Auth.Register)
	api.Post("/login", LoginRateLimit(cfg.RateLimit), cfg.Auth.Login)

	protected := api.Group("", cfg.AuthMiddleware.Handle)
	protected.Post("/logout", cfg.Auth.Logout)

	protected.Get("/workorders", cfg.WorkOrders.List)
	protected.Post("/workorders", cfg.WorkOrders.Create)
	protected.Get("/workorders/:id", cfg.WorkOrders.Get)
	protected.Put("/workorders/:id", cfg.WorkOrders.Update)
	protected.Delete("/workorders/:id", cfg.WorkOrders.Delete)
	protected.Get("/workorders/:id/updates", cfg.WorkOrders.ListUpdates)
	protected.Post("/workorders/:id/updates", cfg.WorkOrders.AddUpdate)

	protected.Put("/updates/:id", cfg.Updates.Edit)

	protected.Get("/notifications", cfg.Notifications.List)
	protected.Put("/notifications/:id/read", cfg.Notifications.MarkRead)

	protected.Get("/users", cfg.Users.List)
	protected.Get("/users/me", cfg.Users.Me)
}
