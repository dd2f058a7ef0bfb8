package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/paperbase/paperbase/internal/api"
	"github.com/paperbase/paperbase/internal/api/handlers"
	"github.com/paperbase/paperbase/internal/api/middleware"
)

type RouterConfig struct {
	DocumentHandler *handlers.DocumentHandler
	IngestHandler   *handlers.IngestHandler
	SearchHandler   *handlers.SearchHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Registered documents arrive base64-encoded in the request body.
	const maxBodyBytes int64 = 32 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/documents", func(r chi.Router) {
		r.Post("/", cfg.DocumentHandler.Register)
		r.Get("/", cfg.DocumentHandler.List)
		r.Post("/ingest-batch", cfg.IngestHandler.IngestBatch)
		r.Get("/{id}", cfg.DocumentHandler.Get)
		r.Get("/{id}/download", cfg.DocumentHandler.Download)
		r.Post("/{id}/ingest", cfg.IngestHandler.Ingest)
		r.Get("/{id}/status", cfg.IngestHandler.Status)
		r.Delete("/{id}/chunks", cfg.IngestHandler.DeleteChunks)
	})

	r.Post("/search", cfg.SearchHandler.Search)
	r.Post("/context", cfg.SearchHandler.Context)

	return r
}
