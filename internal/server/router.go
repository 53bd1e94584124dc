package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/resolvd-ai/resolvd/internal/api"
	"github.com/resolvd-ai/resolvd/internal/api/handlers"
	"github.com/resolvd-ai/resolvd/internal/api/middleware"
)

type RouterConfig struct {
	ResolveHandler *handlers.ResolveHandler
	IngestHandler  *handlers.IngestHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 5 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/resolve", cfg.ResolveHandler.Resolve)
	r.Post("/ingest/{category}", cfg.IngestHandler.Ingest)

	return r
}
