package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/statforge/statforge/internal/database"
	"github.com/statforge/statforge/internal/models"
	"log/slog"
)

const defaultDraftLimit = 20

// DraftHandler serves persisted drafts awaiting moderation.
type DraftHandler struct {
	repo   database.DraftRepository
	logger *slog.Logger
}

// NewDraftHandler creates a draft listing handler.
func NewDraftHandler(repo database.DraftRepository, logger *slog.Logger) *DraftHandler {
	return &DraftHandler{repo: repo, logger: logger}
}

// DraftsResponse wraps a pending-draft listing.
type DraftsResponse struct {
	Drafts []models.GeneratedDraft `json:"drafts"`
	Kind   models.DraftKind        `json:"kind"`
	Count  int                     `json:"count"`
	Total  int                     `json:"total"`
}

// ListPending handles GET /api/drafts?kind=Statistic&limit=20
func (h *DraftHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	kind := models.DraftKind(r.URL.Query().Get("kind"))
	if kind == "" {
		kind = models.DraftKindStatistic
	}
	if kind != models.DraftKindStatistic && kind != models.DraftKindAntistic {
		http.Error(w, "Unknown draft kind", http.StatusBadRequest)
		return
	}

	limit := defaultDraftLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	drafts, err := h.repo.ListPending(r.Context(), kind, limit)
	if err != nil {
		h.logger.Error("failed to list pending drafts", "kind", kind, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	total, err := h.repo.Count(r.Context(), kind)
	if err != nil {
		h.logger.Error("failed to count drafts", "kind", kind, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	response := DraftsResponse{
		Drafts: drafts,
		Kind:   kind,
		Count:  len(drafts),
		Total:  total,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}
