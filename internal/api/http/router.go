package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/techsupport-scheduler/internal/api/http/handlers"
	"github.com/spec-kit/techsupport-scheduler/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Technicians    *handlers.TechniciansHandler
	Clients        *handlers.ClientsHandler
	Tickets        *handlers.TicketsHandler
	Appointments   *handlers.AppointmentsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireRole())
	manage := auth.RequireRole(auth.RoleAdmin, auth.RoleDispatcher)

	api.Get("/metrics", auth.RequireRole(auth.RoleAdmin), cfg.Health.Metrics)

	technicians := api.Group("/technicians")
	technicians.Get("/available", cfg.Technicians.Available)
	technicians.Get("/best", cfg.Technicians.Best)
	technicians.Post("/", manage, cfg.Technicians.Create)
	technicians.Get("/:id", cfg.Technicians.Get)
	technicians.Patch("/:id/status", manage, cfg.Technicians.UpdateStatus)
	technicians.Post("/:id/skills", manage, cfg.Technicians.AddSkill)
	technicians.Delete("/:id/skills/:serviceType", manage, cfg.Technicians.RemoveSkill)
	technicians.Delete("/:id", manage, cfg.Technicians.Delete)
	technicians.Get("/:id/load", cfg.Technicians.Load)
	technicians.Get("/:id/appointments", cfg.Technicians.Appointments)
	technicians.Get("/:id/tickets", cfg.Technicians.Tickets)

	clients := api.Group("/clients")
	clients.Post("/", manage, cfg.Clients.Create)
	clients.Get("/:id", cfg.Clients.Get)
	clients.Get("/:id/tickets", cfg.Clients.Tickets)
	clients.Patch("/:id/status", manage, cfg.Clients.UpdateStatus)
	clients.Delete("/:id", manage, cfg.Clients.Delete)

	tickets := api.Group("/tickets")
	tickets.Get("/overdue", cfg.Tickets.Overdue)
	tickets.Post("/", manage, cfg.Tickets.Create)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Get("/:id/history", cfg.Tickets.History)
	tickets.Get("/:id/appointments", cfg.Tickets.Appointments)
	tickets.Post("/:id/assign", manage, cfg.Tickets.Assign)
	tickets.Post("/:id/auto-assign", manage, cfg.Tickets.AutoAssign)
	tickets.Post("/:id/unassign", manage, cfg.Tickets.Unassign)
	tickets.Post("/:id/close", cfg.Tickets.Close)
	tickets.Patch("/:id/status", cfg.Tickets.UpdateStatus)

	appointments := api.Group("/appointments")
	appointments.Post("/", manage, cfg.Appointments.Create)
	appointments.Get("/:id", cfg.Appointments.Get)
	appointments.Patch("/:id/status", cfg.Appointments.UpdateStatus)
	appointments.Post("/:id/cancel", cfg.Appointments.Cancel)
}
