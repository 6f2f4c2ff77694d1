package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civicworks/triage-service/internal/api/http/handlers"
	"github.com/civicworks/triage-service/internal/auth"
	"github.com/civicworks/triage-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Triage         *handlers.TriageHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/register", cfg.Auth.Register)
	app.Post("/auth/login", cfg.Auth.Login)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireAnyRole())
	tickets.Post("/", cfg.Tickets.Submit)
	tickets.Get("/mine", cfg.Tickets.Mine)
	tickets.Get("/:id", cfg.Tickets.Get)

	triage := app.Group("/triage", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleEngineer, domain.RoleCouncil))
	triage.Get("/dashboard", cfg.Triage.Dashboard)
	triage.Post("/tickets/:id/accept", cfg.Triage.Accept)
	triage.Post("/tickets/:id/reject", cfg.Triage.Reject)
	triage.Post("/tickets/:id/spam", cfg.Triage.MarkSpam)
	triage.Delete("/tickets/:id", auth.RequireRole(domain.RoleEngineer), cfg.Triage.Delete)
	triage.Get("/engineers", auth.RequireRole(domain.RoleCouncil), cfg.Triage.Engineers)
}
