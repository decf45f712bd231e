package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/desivolt/muzdesk/internal/api/http/handlers"
	"github.com/desivolt/muzdesk/internal/auth"
	"github.com/desivolt/muzdesk/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Customer       *handlers.CustomerHandler
	Auth           *handlers.AuthHandler
	Admin          *handlers.AdminHandler
	Electrician    *handlers.ElectricianHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Customer routes are anonymous; the admin
// and electrician groups each admit only their own role.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Get("/pricing", cfg.Customer.Pricing)
	tickets := app.Group("/tickets")
	tickets.Post("", cfg.Customer.CreateTicket)
	tickets.Get("/track/:number", cfg.Customer.TrackTicket)
	tickets.Get("/track/:number/stream", cfg.Customer.TrackTicketStream)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Optional, cfg.Auth.Me)
	authGroup.Post("/logout", cfg.AuthMiddleware.Handle, cfg.Auth.Logout)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	admin.Get("/dashboard", cfg.Admin.Dashboard)
	admin.Get("/dashboard/stream", cfg.Admin.DashboardStream)
	admin.Get("/electricians", cfg.Admin.Electricians)
	admin.Get("/performance", cfg.Admin.Performance)
	admin.Post("/tickets/:id/assign", cfg.Admin.Assign)
	admin.Post("/tickets/:id/delete", cfg.Admin.Delete)

	electrician := app.Group("/electrician", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleElectrician))
	electrician.Get("/tickets", cfg.Electrician.Queue)
	electrician.Get("/tickets/stream", cfg.Electrician.QueueStream)
	electrician.Post("/tickets/:id/status", cfg.Electrician.AdvanceStatus)
}
