package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/statforge/statforge/internal/catalog"
	"github.com/statforge/statforge/internal/health"
	"github.com/statforge/statforge/internal/models"
	"log/slog"
)

// SourceHandler serves the configured source catalog.
type SourceHandler struct {
	catalog catalog.Catalog
	checker health.Checker
	logger  *slog.Logger
}

// NewSourceHandler creates a catalog listing handler. The checker may be nil
// to skip health probing.
func NewSourceHandler(cat catalog.Catalog, checker health.Checker, logger *slog.Logger) *SourceHandler {
	return &SourceHandler{
		catalog: cat,
		checker: checker,
		logger:  logger,
	}
}

type sourceStatus struct {
	models.ContentSource
	Healthy *bool `json:"healthy,omitempty"`
}

// SourcesResponse wraps the catalog listing.
type SourcesResponse struct {
	Sources []sourceStatus `json:"sources"`
	Count   int            `json:"count"`
}

// ListSources handles GET /api/sources
func (h *SourceHandler) ListSources(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sources, err := h.catalog.GetAll()
	if err != nil {
		h.logger.Error("failed to load source catalog", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// Operator snapshots always carry health verdicts; the public listing
	// probes only on request.
	probe := h.checker != nil &&
		(r.URL.Query().Get("probe") == "true" || strings.HasPrefix(r.URL.Path, "/admin/"))

	statuses := make([]sourceStatus, 0, len(sources))
	for _, source := range sources {
		status := sourceStatus{ContentSource: source}
		if probe {
			healthy := h.checker.IsHealthy(r.Context(), source)
			status.Healthy = &healthy
		}
		statuses = append(statuses, status)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	response := SourcesResponse{Sources: statuses, Count: len(statuses)}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}
