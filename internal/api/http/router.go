package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/logistics-console/internal/api/http/handlers"
	"github.com/spec-kit/logistics-console/internal/auth"
	"github.com/spec-kit/logistics-console/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health            *handlers.HealthHandler
	Auth              *handlers.AuthHandler
	Shipments         *handlers.ShipmentsHandler
	History           *handlers.HistoryHandler
	Drivers           *handlers.DriversHandler
	SessionMiddleware *auth.SessionMiddleware
	Metrics           *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/confirm-email", cfg.Auth.ConfirmEmail)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/forgot-password", cfg.Auth.ForgotPassword)
	authGroup.Post("/reset-password", cfg.Auth.ResetPassword)
	authGroup.Post("/set-initial-password", cfg.SessionMiddleware.HandlePending, cfg.Auth.SetInitialPassword)
	authGroup.Post("/logout", cfg.SessionMiddleware.HandlePending, cfg.Auth.Logout)
	authGroup.Get("/me", cfg.SessionMiddleware.Handle, cfg.Auth.Me)

	api.Get("/dashboard", cfg.SessionMiddleware.Handle, cfg.Shipments.Dashboard)

	shipments := api.Group("/shipments", cfg.SessionMiddleware.Handle)
	shipments.Get("/", cfg.Shipments.List)
	shipments.Post("/", auth.RequirePermission(auth.PermShipmentsCreate), cfg.Shipments.Create)
	shipments.Get("/statistics", auth.RequirePermission(auth.PermShipmentsStatistics), cfg.Shipments.Statistics)
	shipments.Get("/:id", auth.RequirePermission(auth.PermShipmentsView), cfg.Shipments.Get)
	shipments.Patch("/:id/status", auth.RequirePermission(auth.PermShipmentsUpdateStatus), cfg.Shipments.UpdateStatus)
	shipments.Patch("/:id/assign", auth.RequirePermission(auth.PermShipmentsAssign), cfg.Shipments.Assign)
	shipments.Get("/:id/history", auth.RequirePermission(auth.PermHistoryView), cfg.History.Get)
	shipments.Get("/:id/history/stream", auth.RequirePermission(auth.PermHistoryView), cfg.History.Stream)

	drivers := api.Group("/drivers", cfg.SessionMiddleware.Handle)
	drivers.Get("/", auth.RequirePermission(auth.PermDriversList), cfg.Drivers.List)
	drivers.Post("/", auth.RequirePermission(auth.PermDriversCreate), cfg.Drivers.Create)
}
