package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/notification-service/internal/api/http/handlers"
	"github.com/spec-kit/notification-service/internal/auth"
	"github.com/spec-kit/notification-service/internal/observability"
)

// NewApp builds the fiber app. Routing is case-sensitive and strict about trailing
// slashes so a path reaches a route only when it is spelled exactly as the
// allow-list patterns see it.
func NewApp(name string) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:       name,
		CaseSensitive: true,
		StrictRouting: true,
	})
}

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health             *handlers.HealthHandler
	Access             *handlers.AccessHandler
	Users              *handlers.UserHandler
	AuthenticationGate *auth.AuthenticationGate
	AuthorizationGate  *auth.AuthorizationGate
	Metrics            *observability.Metrics
}

// RegisterRoutes wires HTTP routes behind the authentication and authorization stages.
// The AuthorizationGate runs for every request; allow-listed paths pass through it untouched.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(cfg.AuthorizationGate.Handle)

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	app.Post("/login", cfg.AuthenticationGate.Handle)

	access := app.Group("/access")
	access.Get("/refresh", cfg.Access.Refresh)
	access.Get("/auth/:token", cfg.Access.Introspect)
	access.Get("/denied", cfg.Access.Denied)

	users := app.Group("/user")
	users.Get("/me", auth.RequireIdentity(), cfg.Users.Me)
	users.Get("/:username/identity", auth.RequireRole("ADMIN"), cfg.Users.Identity)
}
