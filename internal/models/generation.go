package models

import (
	"time"
)

// GenerationRequest describes one operator- or scheduler-triggered run.
type GenerationRequest struct {
	DryRun           bool      `json:"dryRun"`
	TargetStatistics int       `json:"targetStatistics"`
	TargetAntystics  int       `json:"targetAntystics"`
	SourceIDs        []string  `json:"sourceIds,omitempty"`
	ExecutionTime    time.Time `json:"executionTime,omitempty"`
}

// GenerationResult is the full accounting of one run. Every raw item that
// entered the pipeline lands in exactly one of: created drafts, skipped
// duplicates, validation issues, or is absorbed by a source failure.
type GenerationResult struct {
	CreatedStatistics  []GeneratedDraft  `json:"createdStatistics"`
	CreatedAntystics   []GeneratedDraft  `json:"createdAntystics"`
	SkippedDuplicates  []string          `json:"skippedDuplicates"`
	SourceFailures     []string          `json:"sourceFailures"`
	ValidationFailures []string          `json:"validationFailures"`
	ValidationIssues   []ValidationIssue `json:"validationIssues"`
	ExecutedAt         time.Time         `json:"executedAt"`
	DryRun             bool              `json:"dryRun"`
}

// NewGenerationResult returns a result with all collections initialized so
// JSON output always carries arrays, never nulls.
func NewGenerationResult(executedAt time.Time, dryRun bool) *GenerationResult {
	return &GenerationResult{
		CreatedStatistics:  []GeneratedDraft{},
		CreatedAntystics:   []GeneratedDraft{},
		SkippedDuplicates:  []string{},
		SourceFailures:     []string{},
		ValidationFailures: []string{},
		ValidationIssues:   []ValidationIssue{},
		ExecutedAt:         executedAt,
		DryRun:             dryRun,
	}
}

// CreatedCount returns the total number of drafts produced by the run.
func (r *GenerationResult) CreatedCount() int {
	return len(r.CreatedStatistics) + len(r.CreatedAntystics)
}

// AccountedItems returns how many fetched items the result explains outside
// of source failures. Used by accounting checks: created + skipped + rejected
// must equal the number of raw items from healthy sources minus the unused
// surplus left over once quotas were met.
func (r *GenerationResult) AccountedItems() int {
	return r.CreatedCount() + len(r.SkippedDuplicates) + len(r.ValidationIssues)
}

// AllDrafts returns created drafts of both kinds in a single slice.
func (r *GenerationResult) AllDrafts() []GeneratedDraft {
	drafts := make([]GeneratedDraft, 0, r.CreatedCount())
	drafts = append(drafts, r.CreatedStatistics...)
	drafts = append(drafts, r.CreatedAntystics...)
	return drafts
}
