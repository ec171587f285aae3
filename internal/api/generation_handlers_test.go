package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/statforge/statforge/internal/config"
	"github.com/statforge/statforge/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubRunner struct {
	lastRequest models.GenerationRequest
	result      *models.GenerationResult
	err         error
}

func (r *stubRunner) Run(_ context.Context, req models.GenerationRequest) (*models.GenerationResult, error) {
	r.lastRequest = req
	if r.err != nil {
		return nil, r.err
	}
	if r.result != nil {
		return r.result, nil
	}
	return models.NewGenerationResult(time.Now(), req.DryRun), nil
}

func testGenerationOptions() config.GenerationOptions {
	return config.GenerationOptions{
		MinStatistics: 0,
		MaxStatistics: 10,
		MinAntystics:  0,
		MaxAntystics:  5,
	}
}

func TestRunHandlerAcceptsBothTargetSpellings(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		wantStatistics int
		wantAntystics  int
	}{
		{
			name:           "short form",
			body:           `{"statistics": 4, "antystics": 2}`,
			wantStatistics: 4,
			wantAntystics:  2,
		},
		{
			name:           "long form",
			body:           `{"targetStatistics": 7, "targetAntystics": 3}`,
			wantStatistics: 7,
			wantAntystics:  3,
		},
		{
			name:           "long form wins over short",
			body:           `{"statistics": 1, "targetStatistics": 9}`,
			wantStatistics: 9,
			wantAntystics:  5,
		},
		{
			name:           "empty body falls back to configured maxima",
			body:           ``,
			wantStatistics: 10,
			wantAntystics:  5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &stubRunner{}
			handler := NewGenerationHandler(runner, testGenerationOptions(), testLogger())

			req := httptest.NewRequest(http.MethodPost, "/admin/content-generation/run", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			handler.Run(rr, req)

			if rr.Code != http.StatusOK {
				t.Fatalf("unexpected status %d, body %s", rr.Code, rr.Body.String())
			}
			if runner.lastRequest.TargetStatistics != tt.wantStatistics {
				t.Errorf("targetStatistics = %d, want %d", runner.lastRequest.TargetStatistics, tt.wantStatistics)
			}
			if runner.lastRequest.TargetAntystics != tt.wantAntystics {
				t.Errorf("targetAntystics = %d, want %d", runner.lastRequest.TargetAntystics, tt.wantAntystics)
			}
		})
	}
}

func TestRunHandlerPassesDryRunAndSources(t *testing.T) {
	runner := &stubRunner{}
	handler := NewGenerationHandler(runner, testGenerationOptions(), testLogger())

	body := `{"dryRun": true, "sourceIds": ["gus", "memy"], "executionTime": "2026-08-31T12:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/admin/content-generation/run", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler.Run(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status %d, body %s", rr.Code, rr.Body.String())
	}
	if !runner.lastRequest.DryRun {
		t.Error("dryRun flag not forwarded")
	}
	if len(runner.lastRequest.SourceIDs) != 2 || runner.lastRequest.SourceIDs[0] != "gus" {
		t.Errorf("sourceIds not forwarded: %v", runner.lastRequest.SourceIDs)
	}
	want := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	if !runner.lastRequest.ExecutionTime.Equal(want) {
		t.Errorf("executionTime = %v, want %v", runner.lastRequest.ExecutionTime, want)
	}
}

func TestRunHandlerRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"statistics": `},
		{"negative target", `{"statistics": -1}`},
		{"bad timestamp", `{"executionTime": "yesterday"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &stubRunner{}
			handler := NewGenerationHandler(runner, testGenerationOptions(), testLogger())

			req := httptest.NewRequest(http.MethodPost, "/admin/content-generation/run", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			handler.Run(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rr.Code)
			}
		})
	}
}

func TestRunHandlerMethodNotAllowed(t *testing.T) {
	handler := NewGenerationHandler(&stubRunner{}, testGenerationOptions(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/admin/content-generation/run", nil)
	rr := httptest.NewRecorder()
	handler.Run(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestRunHandlerReportsRunnerFailure(t *testing.T) {
	runner := &stubRunner{err: errors.New("database down")}
	handler := NewGenerationHandler(runner, testGenerationOptions(), testLogger())

	req := httptest.NewRequest(http.MethodPost, "/admin/content-generation/run", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()
	handler.Run(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
}

func TestRunHandlerEncodesResult(t *testing.T) {
	executedAt := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	result := models.NewGenerationResult(executedAt, false)
	result.CreatedStatistics = append(result.CreatedStatistics, models.GeneratedDraft{
		ID:     "d1",
		Title:  "62% of adults in Poland drink coffee daily",
		Kind:   models.DraftKindStatistic,
		Status: models.ModerationStatusPending,
	})
	result.SkippedDuplicates = append(result.SkippedDuplicates, "an old story")

	runner := &stubRunner{result: result}
	handler := NewGenerationHandler(runner, testGenerationOptions(), testLogger())

	req := httptest.NewRequest(http.MethodPost, "/admin/content-generation/run", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()
	handler.Run(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rr.Code)
	}

	var decoded models.GenerationResult
	if err := json.NewDecoder(rr.Body).Decode(&decoded); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(decoded.CreatedStatistics) != 1 || decoded.CreatedStatistics[0].ID != "d1" {
		t.Errorf("created statistics not round-tripped: %+v", decoded.CreatedStatistics)
	}
	if len(decoded.SkippedDuplicates) != 1 {
		t.Errorf("skipped duplicates not round-tripped: %v", decoded.SkippedDuplicates)
	}
}
