package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/habitaro/authgate/internal/auth"
	"github.com/habitaro/authgate/internal/handlers"
	"github.com/habitaro/authgate/internal/middleware"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	tokenManager *auth.TokenManager,
) {
	rateLimitConfig := middleware.DefaultAuthRateLimit()

	// Public routes. The per-IP request cap sits in front of both; the
	// credential-aware lockouts run inside the login pipeline.
	router.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/auth/login", authHandler.Login)
	router.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/auth/refresh", authHandler.Refresh)

	// Protected routes require a valid access-purpose token.
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireAccessToken(tokenManager))

		r.Get("/auth/session", authHandler.Session)
		r.Post("/auth/logout", authHandler.Logout)
	})
}
