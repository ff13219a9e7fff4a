package router

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"tcg-collection-api/internal/handler"
	"tcg-collection-api/internal/middleware"
)

// Config holds the configuration for creating a router.
type Config struct {
	// APIPrefix is prepended to every API route, e.g. "/api". Empty mounts at root.
	APIPrefix      string
	AllowedOrigins []string

	Handler           *handler.Handler
	CatalogHandler    *handler.CatalogHandler
	CollectionHandler *handler.CollectionHandler
	SyncHandler       *handler.SyncHandler
	AdminHandler      *handler.AdminHandler
}

// New creates and configures the HTTP router.
// Trailing slashes are optional on every route.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.StripSlashes)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
	}

	api := func(r chi.Router) {
		if cfg.Handler != nil {
			r.Get("/health", cfg.Handler.Health)
			r.Get("/ready", cfg.Handler.Ready)
		}

		if cfg.CatalogHandler != nil {
			r.Get("/expansions", cfg.CatalogHandler.ListExpansions)
			r.Get("/expansion/{setId}/cards", cfg.CatalogHandler.ListCards)
			r.Get("/search/cards", cfg.CatalogHandler.SearchCards)
		}

		if cfg.CollectionHandler != nil {
			r.Route("/collection", func(r chi.Router) {
				r.Get("/", cfg.CollectionHandler.ListCollection)
				r.Post("/update", cfg.CollectionHandler.UpdateQuantity)
				r.Get("/{expansionId}", cfg.CollectionHandler.CollectionForExpansion)
			})

			r.Route("/widgets", func(r chi.Router) {
				r.Get("/totalCards", cfg.CollectionHandler.TotalCards)
				r.Get("/totalExpansions", cfg.CollectionHandler.TotalExpansions)
				r.Get("/cardsByExpansion", cfg.CollectionHandler.CardsByExpansion)
			})
		}

		if cfg.SyncHandler != nil {
			r.Post("/expansions/update", cfg.SyncHandler.UpdateExpansions)
			r.Post("/expansion/{setId}/cards/update", cfg.SyncHandler.UpdateExpansionCards)
			r.Post("/cards/backfill", cfg.SyncHandler.Backfill)
			r.Get("/sync/status", cfg.SyncHandler.Status)
		}

		if cfg.AdminHandler != nil {
			r.Get("/admin/stats", cfg.AdminHandler.GetStats)
		}
	}

	if cfg.APIPrefix == "" {
		r.Group(api)
	} else {
		r.Route(cfg.APIPrefix, api)
	}

	return r
}
