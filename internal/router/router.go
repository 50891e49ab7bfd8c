// Package router sets up all HTTP routes and middleware chains for the
// postcraft API. Generation routes are rate limited per client; record
// routes require an owner.
package router

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"postcraft/internal/handlers"
	"postcraft/internal/middleware"
)

// Options tunes the route table.
type Options struct {
	// Owners resolves the session owner. May be nil.
	Owners middleware.OwnerSource
	// DevOwner is used when a request has no session. Leave empty in
	// production.
	DevOwner string
	// GenerateLimit is the per-client request budget per minute on the
	// model-backed routes. Zero disables limiting.
	GenerateLimit int
	// Timeout bounds each request. Zero means no bound.
	Timeout time.Duration
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(api *handlers.API, opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	if opts.Timeout > 0 {
		r.Use(chimw.Timeout(opts.Timeout))
	}

	r.Get("/health", handlers.Health)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.LoadOwner(opts.Owners, opts.DevOwner))

		// Catalog lookups need no owner.
		r.Get("/templates", api.ListTemplates)
		r.Get("/templates/{id}", api.GetTemplate)
		r.Get("/results", api.GetResult)

		r.Delete("/session", api.SignOut)
		if opts.DevOwner != "" {
			r.Post("/session", api.IssueDevSession)
		}

		// Model-backed and rendering routes.
		r.Group(func(r chi.Router) {
			if opts.GenerateLimit > 0 {
				rl := middleware.NewRateLimiter(opts.GenerateLimit, time.Minute)
				r.Use(rl.Middleware)
			}
			r.Post("/convert", api.Convert)
			r.Post("/regenerate", api.Regenerate)
			r.Post("/generate-carousel", api.GenerateCarousel)
			r.Post("/generate-image", api.GenerateImage)
			r.Post("/carousel/export", api.ExportCarousel)
		})

		// Owner records.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireOwner)

			r.Post("/results", api.SaveResult)
			r.Get("/results/recent", api.RecentResults)

			r.Route("/memory", func(r chi.Router) {
				r.Get("/", api.ListMemories)
				r.Post("/", api.AddMemory)
				r.Delete("/", api.DeleteMemories)
			})

			r.Route("/prompts", func(r chi.Router) {
				r.Get("/", api.ListPrompts)
				r.Post("/", api.CreatePrompt)
				r.Put("/{id}", api.UpdatePrompt)
			})
		})
	})

	return r
}
