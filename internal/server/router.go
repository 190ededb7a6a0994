package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ocrlab-io/ocrlab/internal/api"
	"github.com/ocrlab-io/ocrlab/internal/api/handlers"
	"github.com/ocrlab-io/ocrlab/internal/api/middleware"
)

type RouterConfig struct {
	FolderHandler *handlers.FolderHandler
	FileHandler   *handlers.FileHandler
	QueryHandler  *handlers.QueryHandler
	UsageHandler  *handlers.UsageHandler
	MaxBodyBytes  int64
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	maxBodyBytes := cfg.MaxBodyBytes
	if maxBodyBytes <= 0 {
		maxBodyBytes = 50 << 20
	}

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.UserAuth)

		r.Route("/folders", func(r chi.Router) {
			r.Post("/", cfg.FolderHandler.Create)
			r.Get("/", cfg.FolderHandler.List)
			r.Get("/{id}", cfg.FolderHandler.Get)
			r.Put("/{id}", cfg.FolderHandler.Rename)
			r.Delete("/{id}", cfg.FolderHandler.Delete)
		})

		r.Route("/files", func(r chi.Router) {
			r.Post("/upload", cfg.FileHandler.Upload)
			r.Get("/", cfg.FileHandler.List)
			r.Get("/{id}", cfg.FileHandler.Get)
			r.Delete("/{id}", cfg.FileHandler.Delete)
			r.Post("/{id}/retry", cfg.FileHandler.Retry)
		})

		r.Post("/query", cfg.QueryHandler.Query)
		r.Get("/usage", cfg.UsageHandler.Get)
	})

	return r
}
