package routes

import (
	"github.com/go-chi/chi/v5"

	"chartline/internal/handlers"
	"chartline/internal/middleware"
)

// RegisterRoutes registers all application routes.
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	adminHandler *handlers.AdminHandler,
	timelineHandler *handlers.TimelineHandler,
	loginRateLimit middleware.RateLimitConfig,
) {
	// Login carries an IP rate limit on top of the per-username lockout.
	router.With(middleware.RateLimitByIP(loginRateLimit)).Post("/auth/login", authHandler.Login)
	router.Get("/auth/captcha", authHandler.Captcha)
	router.Post("/auth/logout", authHandler.Logout)
	router.Post("/auth/reset-password", authHandler.ResetPassword)

	router.Get("/timeline", timelineHandler.Get)

	// Account management for the admin panel. The UI gates access to
	// these; admin actions carry the acting admin's username for the
	// audit trail.
	router.Route("/admin", func(r chi.Router) {
		r.Get("/users", adminHandler.ListUsers)
		r.Post("/users", adminHandler.CreateUser)
		r.Put("/users/{username}", adminHandler.UpdateUser)
		r.Delete("/users/{username}", adminHandler.DeleteUser)
		r.Post("/users/{username}/reset-password", adminHandler.ResetPassword)
		r.Post("/users/{username}/unlock", adminHandler.Unlock)
		r.Get("/locked", adminHandler.LockedUsers)
		r.Get("/audit", adminHandler.AuditLog)
	})
}
