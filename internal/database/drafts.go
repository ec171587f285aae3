package database

import (
	"context"

	"github.com/statforge/statforge/internal/models"
)

// DraftRepository stores generated drafts and answers corpus duplicate
// lookups. The normalized-title/URL checks span both draft kinds: a
// candidate that already exists as an antistic must not reappear as a
// statistic.
type DraftRepository interface {
	// CreateBatch persists all drafts in a single transaction. Either every
	// draft lands or none does; a failure here is the run's one fatal
	// persistence condition.
	CreateBatch(ctx context.Context, drafts []models.GeneratedDraft) error

	// ExistsByNormalizedTitle reports whether any persisted draft carries
	// the given normalized title.
	ExistsByNormalizedTitle(ctx context.Context, normalizedTitle string) (bool, error)

	// ExistsByNormalizedURL reports whether any persisted draft cites the
	// given normalized source URL.
	ExistsByNormalizedURL(ctx context.Context, normalizedURL string) (bool, error)

	// ListPending retrieves moderation-pending drafts of a kind, newest
	// first.
	ListPending(ctx context.Context, kind models.DraftKind, limit int) ([]models.GeneratedDraft, error)

	// Count returns the number of persisted drafts of a kind.
	Count(ctx context.Context, kind models.DraftKind) (int, error)
}
