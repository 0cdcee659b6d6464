package handler

import (
	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Index   *IndexHandler
	Users   *UserHandler
	Account *AccountHandler
	Health  *HealthHandler
	// Session is nil unless a session strategy is configured.
	Session *SessionAuthHandler
}

func SetupRoutes(app *fiber.App, h Handlers, gatekeeper fiber.Handler) {
	// Health checks (public)
	app.Get("/health", h.Health.Health)
	app.Get("/ready", h.Health.Ready)

	// Account service
	app.Get("/", h.Account.Index)
	app.Post("/users", h.Account.Register)
	app.Post("/sessions", h.Account.Login)
	app.Delete("/sessions", h.Account.Logout)
	app.Get("/profile", h.Account.Profile)
	app.Post("/reset_password", h.Account.GetResetPasswordToken)
	app.Put("/reset_password", h.Account.UpdatePassword)

	// API v1, behind the gatekeeper
	api := app.Group("/api/v1", gatekeeper)
	api.Get("/status", h.Index.Status)
	api.Get("/stats", h.Index.Stats)
	api.Get("/unauthorized", h.Index.Unauthorized)
	api.Get("/forbidden", h.Index.Forbidden)

	api.Get("/users", h.Users.List)
	api.Get("/users/:id", h.Users.Get)

	if h.Session != nil {
		api.Post("/auth_session/login", h.Session.Login)
		api.Delete("/auth_session/logout", h.Session.Logout)
	}
}
