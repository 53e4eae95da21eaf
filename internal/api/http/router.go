package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/registration-service/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health        *handlers.HealthHandler
	Registrations *handlers.RegistrationsHandler
	Webhook       *handlers.WebhookHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")
	api.Post("/registrations", cfg.Registrations.Submit)
	api.Get("/registrations/status", cfg.Registrations.Status)

	app.Post("/telegram/webhook", cfg.Webhook.Handle)
}
