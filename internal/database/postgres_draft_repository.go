package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/statforge/statforge/internal/dedup"
	"github.com/statforge/statforge/internal/models"
)

// PostgresDraftRepository implements DraftRepository using PostgreSQL. Drafts
// live in two tables, one per kind, mirroring the downstream moderation
// workflow's split.
type PostgresDraftRepository struct {
	db *sql.DB
}

// NewPostgresDraftRepository creates a new PostgreSQL draft repository.
func NewPostgresDraftRepository(db *sql.DB) *PostgresDraftRepository {
	return &PostgresDraftRepository{db: db}
}

func tableFor(kind models.DraftKind) (string, error) {
	switch kind {
	case models.DraftKindStatistic:
		return "statistic_drafts", nil
	case models.DraftKindAntistic:
		return "antistic_drafts", nil
	default:
		return "", fmt.Errorf("unknown draft kind %q", kind)
	}
}

// CreateBatch persists all drafts in one transaction.
func (r *PostgresDraftRepository) CreateBatch(ctx context.Context, drafts []models.GeneratedDraft) error {
	if len(drafts) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin draft batch: %w", err)
	}
	defer tx.Rollback()

	for _, draft := range drafts {
		table, err := tableFor(draft.Kind)
		if err != nil {
			return err
		}

		query := fmt.Sprintf(`
			INSERT INTO %s (id, title, summary, source_url, source_citation,
			                normalized_title, normalized_url, moderation_status, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, table)

		_, err = tx.ExecContext(ctx, query,
			draft.ID,
			draft.Title,
			draft.Summary,
			draft.SourceURL,
			draft.SourceCitation,
			dedup.NormalizeTitle(draft.Title),
			dedup.NormalizeURL(draft.SourceURL),
			string(draft.Status),
			draft.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert draft %s: %w", draft.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit draft batch: %w", err)
	}

	return nil
}

// ExistsByNormalizedTitle checks both draft tables for the normalized title.
func (r *PostgresDraftRepository) ExistsByNormalizedTitle(ctx context.Context, normalizedTitle string) (bool, error) {
	return r.existsByColumn(ctx, "normalized_title", normalizedTitle)
}

// ExistsByNormalizedURL checks both draft tables for the normalized URL.
func (r *PostgresDraftRepository) ExistsByNormalizedURL(ctx context.Context, normalizedURL string) (bool, error) {
	return r.existsByColumn(ctx, "normalized_url", normalizedURL)
}

func (r *PostgresDraftRepository) existsByColumn(ctx context.Context, column, value string) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS(SELECT 1 FROM statistic_drafts WHERE %s = $1)
		    OR EXISTS(SELECT 1 FROM antistic_drafts WHERE %s = $1)
	`, column, column)

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, value).Scan(&exists); err != nil {
		return false, fmt.Errorf("draft existence check on %s: %w", column, err)
	}
	return exists, nil
}

// ListPending retrieves moderation-pending drafts of a kind, newest first.
func (r *PostgresDraftRepository) ListPending(ctx context.Context, kind models.DraftKind, limit int) ([]models.GeneratedDraft, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, title, summary, source_url, source_citation, moderation_status, created_at
		FROM %s
		WHERE moderation_status = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, table)

	rows, err := r.db.QueryContext(ctx, query, string(models.ModerationStatusPending), limit)
	if err != nil {
		return nil, fmt.Errorf("list pending drafts: %w", err)
	}
	defer rows.Close()

	var drafts []models.GeneratedDraft
	for rows.Next() {
		draft := models.GeneratedDraft{Kind: kind}
		var status string
		if err := rows.Scan(
			&draft.ID,
			&draft.Title,
			&draft.Summary,
			&draft.SourceURL,
			&draft.SourceCitation,
			&status,
			&draft.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan draft row: %w", err)
		}
		draft.Status = models.ModerationStatus(status)
		drafts = append(drafts, draft)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate draft rows: %w", err)
	}

	return drafts, nil
}

// Count returns the number of persisted drafts of a kind.
func (r *PostgresDraftRepository) Count(ctx context.Context, kind models.DraftKind) (int, error) {
	table, err := tableFor(kind)
	if err != nil {
		return 0, err
	}

	var count int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count drafts: %w", err)
	}
	return count, nil
}
