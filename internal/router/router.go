// Package router sets up all HTTP routes and middleware chains for the
// PromptBuddy API. Read endpoints are public so the mobile app works
// without an account; writes require a token with the right permission.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"promptbuddy/internal/handlers"
	"promptbuddy/internal/middleware"
	"promptbuddy/internal/models"
	"promptbuddy/internal/token"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. rateLimiter may be nil to disable limiting.
func New(
	tokens *token.Store,
	rateLimiter *middleware.RateLimiter,
	auth *handlers.Auth,
	categories *handlers.Categories,
	prompts *handlers.Prompts,
	importExport *handlers.ImportExport,
) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	if rateLimiter != nil {
		r.Use(rateLimiter.Middleware)
	}
	r.Use(middleware.Authenticate(tokens))

	// Health check — no auth.
	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		// Auth
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", auth.Login)
			r.Post("/logout", auth.Logout)
			r.With(middleware.RequireAuth).Get("/me", auth.Me)
			r.With(middleware.RequirePermission(models.PermManageUsers)).
				Post("/register", auth.Register)
		})

		// Categories
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", categories.List)
			r.Get("/with-counts", categories.ListWithCounts)
			r.Get("/{id}", categories.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(models.PermWrite))
				r.Post("/", categories.Create)
				r.Put("/reorder", categories.Reorder)
				r.Put("/{id}", categories.Update)
			})
			r.With(middleware.RequirePermission(models.PermDelete)).
				Delete("/{id}", categories.Delete)
		})

		// Prompts
		r.Route("/prompts", func(r chi.Router) {
			r.Get("/", prompts.List)
			r.Get("/recent", prompts.Recent)
			r.Get("/{id}", prompts.Get)
			r.Post("/parse-variables", prompts.ParseVariables)
			r.Put("/{id}/usage", prompts.Usage)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(models.PermWrite))
				r.Post("/", prompts.Create)
				r.Put("/{id}", prompts.Update)
				r.Post("/{id}/duplicate", prompts.Duplicate)
			})
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(models.PermDelete))
				r.Delete("/{id}", prompts.Delete)
				// Bulk covers delete, so it needs the stronger permission.
				r.Post("/bulk", prompts.Bulk)
			})
		})

		// Import / export
		r.Get("/export", importExport.Export)
		r.Post("/export/download", importExport.Download)
		r.With(middleware.RequirePermission(models.PermWrite)).
			Post("/import", importExport.Import)
		r.Post("/validate-import", importExport.Validate)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
