package database

import (
	"context"
	"sort"
	"sync"

	"github.com/statforge/statforge/internal/dedup"
	"github.com/statforge/statforge/internal/models"
)

// MemoryDraftRepository implements DraftRepository in memory. Used by tests
// and by CLI dry runs that operate without a database.
type MemoryDraftRepository struct {
	mu     sync.RWMutex
	drafts map[string]models.GeneratedDraft
	titles map[string]bool
	urls   map[string]bool
}

// NewMemoryDraftRepository creates an empty in-memory repository.
func NewMemoryDraftRepository() *MemoryDraftRepository {
	return &MemoryDraftRepository{
		drafts: make(map[string]models.GeneratedDraft),
		titles: make(map[string]bool),
		urls:   make(map[string]bool),
	}
}

// CreateBatch stores all drafts. The in-memory form has no partial-failure
// mode, matching the all-or-nothing contract.
func (r *MemoryDraftRepository) CreateBatch(ctx context.Context, drafts []models.GeneratedDraft) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, draft := range drafts {
		if _, err := tableFor(draft.Kind); err != nil {
			return err
		}
		r.drafts[draft.ID] = draft
		if t := dedup.NormalizeTitle(draft.Title); t != "" {
			r.titles[t] = true
		}
		if u := dedup.NormalizeURL(draft.SourceURL); u != "" {
			r.urls[u] = true
		}
	}
	return nil
}

// ExistsByNormalizedTitle checks the stored title index.
func (r *MemoryDraftRepository) ExistsByNormalizedTitle(ctx context.Context, normalizedTitle string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.titles[normalizedTitle], nil
}

// ExistsByNormalizedURL checks the stored URL index.
func (r *MemoryDraftRepository) ExistsByNormalizedURL(ctx context.Context, normalizedURL string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.urls[normalizedURL], nil
}

// ListPending retrieves moderation-pending drafts of a kind, newest first.
func (r *MemoryDraftRepository) ListPending(ctx context.Context, kind models.DraftKind, limit int) ([]models.GeneratedDraft, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var pending []models.GeneratedDraft
	for _, draft := range r.drafts {
		if draft.Kind == kind && draft.Status == models.ModerationStatusPending {
			pending = append(pending, draft)
		}
	}

	sort.Slice(pending, func(i, j int) bool {
		return pending[i].CreatedAt.After(pending[j].CreatedAt)
	})

	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}

	return pending, nil
}

// Count returns the number of stored drafts of a kind.
func (r *MemoryDraftRepository) Count(ctx context.Context, kind models.DraftKind) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, draft := range r.drafts {
		if draft.Kind == kind {
			count++
		}
	}
	return count, nil
}

// Size returns the total number of stored drafts.
func (r *MemoryDraftRepository) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.drafts)
}
