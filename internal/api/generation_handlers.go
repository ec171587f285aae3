package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/statforge/statforge/internal/config"
	"github.com/statforge/statforge/internal/models"
	"log/slog"
)

// Runner executes one content generation cycle. Implemented by the
// generator orchestrator.
type Runner interface {
	Run(ctx context.Context, req models.GenerationRequest) (*models.GenerationResult, error)
}

// GenerationHandler exposes generation runs over HTTP.
type GenerationHandler struct {
	runner Runner
	opts   config.GenerationOptions
	logger *slog.Logger
}

// NewGenerationHandler creates a handler backed by the given runner.
func NewGenerationHandler(runner Runner, opts config.GenerationOptions, logger *slog.Logger) *GenerationHandler {
	return &GenerationHandler{
		runner: runner,
		opts:   opts,
		logger: logger,
	}
}

// runRequest is the wire form of a run trigger. Both the short and the long
// target field names are accepted; the long form wins when both are present.
type runRequest struct {
	DryRun           bool     `json:"dryRun"`
	Statistics       *int     `json:"statistics"`
	TargetStatistics *int     `json:"targetStatistics"`
	Antystics        *int     `json:"antystics"`
	TargetAntystics  *int     `json:"targetAntystics"`
	SourceIDs        []string `json:"sourceIds"`
	ExecutionTime    string   `json:"executionTime"`
}

// Run handles POST /admin/content-generation/run
func (h *GenerationHandler) Run(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req, err := h.parseRunRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.logger.Info("generation run requested",
		"dry_run", req.DryRun,
		"target_statistics", req.TargetStatistics,
		"target_antystics", req.TargetAntystics,
		"source_ids", req.SourceIDs,
	)

	result, err := h.runner.Run(r.Context(), req)
	if err != nil {
		h.logger.Error("generation run failed", "error", err)
		http.Error(w, "Generation run failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *GenerationHandler) parseRunRequest(r *http.Request) (models.GenerationRequest, error) {
	var wire runRequest

	// An empty body triggers a run with configured defaults.
	if err := json.NewDecoder(r.Body).Decode(&wire); err != nil && !errors.Is(err, io.EOF) {
		return models.GenerationRequest{}, fmt.Errorf("invalid request body: %w", err)
	}

	req := models.GenerationRequest{
		DryRun:           wire.DryRun,
		TargetStatistics: h.opts.MaxStatistics,
		TargetAntystics:  h.opts.MaxAntystics,
		SourceIDs:        wire.SourceIDs,
	}

	if wire.Statistics != nil {
		req.TargetStatistics = *wire.Statistics
	}
	if wire.TargetStatistics != nil {
		req.TargetStatistics = *wire.TargetStatistics
	}
	if wire.Antystics != nil {
		req.TargetAntystics = *wire.Antystics
	}
	if wire.TargetAntystics != nil {
		req.TargetAntystics = *wire.TargetAntystics
	}

	if req.TargetStatistics < 0 || req.TargetAntystics < 0 {
		return models.GenerationRequest{}, fmt.Errorf("targets must not be negative")
	}

	if wire.ExecutionTime != "" {
		executedAt, err := time.Parse(time.RFC3339, wire.ExecutionTime)
		if err != nil {
			return models.GenerationRequest{}, fmt.Errorf("invalid executionTime, want RFC3339: %v", err)
		}
		req.ExecutionTime = executedAt
	}

	return req, nil
}
