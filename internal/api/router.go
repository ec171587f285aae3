package api

import (
	"net/http"

	"github.com/statforge/statforge/internal/auth"
	"github.com/statforge/statforge/internal/catalog"
	"github.com/statforge/statforge/internal/config"
	"github.com/statforge/statforge/internal/database"
	"github.com/statforge/statforge/internal/health"
	"log/slog"
)

// SetupRoutes configures all API routes
func SetupRoutes(mux *http.ServeMux, runner Runner, cat catalog.Catalog, checker health.Checker, repo database.DraftRepository, opts config.GenerationOptions, authConfig auth.Config, logger *slog.Logger) {
	generationHandler := NewGenerationHandler(runner, opts, logger)
	sourceHandler := NewSourceHandler(cat, checker, logger)
	draftHandler := NewDraftHandler(repo, logger)
	authHandler := NewAuthHandler(authConfig, logger)

	authMiddleware := auth.AuthMiddleware(authConfig)

	// Authentication routes (public)
	mux.HandleFunc("/api/auth/login", authHandler.Login)

	// Catalog and draft routes (public for reading)
	mux.HandleFunc("/api/sources", sourceHandler.ListSources)
	mux.HandleFunc("/api/drafts", draftHandler.ListPending)

	// Admin routes (require auth)
	mux.Handle("/admin/content-generation/run",
		authMiddleware(http.HandlerFunc(generationHandler.Run)))
	mux.Handle("/admin/content-generation/sources",
		authMiddleware(http.HandlerFunc(sourceHandler.ListSources)))

	// Health check endpoint
	healthHandler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
	mux.HandleFunc("/healthz", healthHandler)
	mux.HandleFunc("/api/health", healthHandler)

	// Service info endpoint
	mux.HandleFunc("/api/info", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"statforge","status":"ready","version":"0.1.0"}`))
	})
}
