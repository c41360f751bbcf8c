// Package rest wires the HTTP API: citation CRUD, search, export, DOI
// lookup, reference metadata and health probes.
package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/heartmarshall/citebase/internal/config"
	"github.com/heartmarshall/citebase/internal/transport/middleware"
)

// NewRouter assembles the API router with the standard middleware chain.
func NewRouter(
	logger *slog.Logger,
	citations *CitationHandler,
	health *HealthHandler,
	corsCfg config.CORSConfig,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsCfg.OriginList(),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		AllowCredentials: corsCfg.AllowCredentials,
		MaxAge:           corsCfg.MaxAge,
	}))

	r.Get("/health", health.Health)
	r.Get("/live", health.Live)
	r.Get("/ready", health.Ready)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/citations", func(r chi.Router) {
			r.Get("/", citations.List)
			r.Post("/", citations.Create)
			r.Post("/export", citations.Export)
			r.Get("/key/{key}", citations.GetByKey)
			r.Get("/{id}", citations.Get)
			r.Patch("/{id}", citations.Update)
			r.Delete("/{id}", citations.Delete)
		})

		r.Get("/doi", citations.LookupDOI)

		r.Get("/entry-types", citations.EntryTypes)
		r.Get("/entry-types/{id}/fields", citations.DefaultFields)
		r.Get("/tags", citations.Tags)
		r.Get("/categories", citations.Categories)
	})

	return r
}
