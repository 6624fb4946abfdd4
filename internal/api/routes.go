package api

import (
	"log/slog"
	"net/http"

	"lesmotsdatche/internal/queue"
	"lesmotsdatche/internal/store"
)

// Config holds API server configuration.
type Config struct {
	Store    store.Store
	Jobs     queue.Queue
	Notifier *queue.JobNotifier
	Logger   *slog.Logger
}

// NewRouter creates a new HTTP router with all routes configured.
func NewRouter(cfg Config) http.Handler {
	handler := NewHandler(cfg.Store, cfg.Jobs, cfg.Notifier)
	adminHandler := NewAdminHandler(cfg.Store)

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", handler.HealthCheck)

	// Public solve endpoints
	mux.HandleFunc("POST /v1/solves", handler.SubmitSolve)
	mux.HandleFunc("GET /v1/solves/{id}", handler.GetSolve)
	mux.HandleFunc("GET /v1/solves", handler.ListSolves)

	// Admin endpoints (lexicon and solve-record management)
	mux.HandleFunc("POST /admin/v1/lexicons", adminHandler.StoreLexicon)
	mux.HandleFunc("GET /admin/v1/lexicons", adminHandler.ListLexicons)
	mux.HandleFunc("GET /admin/v1/lexicons/{id}", adminHandler.GetLexicon)
	mux.HandleFunc("DELETE /admin/v1/lexicons/{id}", adminHandler.DeleteLexicon)
	mux.HandleFunc("DELETE /admin/v1/solves/{id}", adminHandler.DeleteSolve)

	// Apply middleware stack
	var h http.Handler = mux
	h = CORS(h)
	h = Gzip(h)
	h = Logger(cfg.Logger)(h)
	h = Recover(cfg.Logger)(h)

	return h
}
