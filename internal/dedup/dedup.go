package dedup

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/statforge/statforge/internal/models"
	"log/slog"
)

// CorpusIndex answers whether content equivalent to a candidate is already
// persisted. Implemented by the draft repository.
type CorpusIndex interface {
	ExistsByNormalizedTitle(ctx context.Context, normalizedTitle string) (bool, error)
	ExistsByNormalizedURL(ctx context.Context, normalizedURL string) (bool, error)
}

// Deduplicator rejects candidates that duplicate the persisted corpus or an
// earlier acceptance in the same run. Matching is exact on normalized title
// OR normalized source URL; no fuzzy matching.
type Deduplicator struct {
	corpus     CorpusIndex
	seenTitles map[string]bool
	seenURLs   map[string]bool
	logger     *slog.Logger
}

// New creates a run-scoped deduplicator. The corpus index may be nil, in
// which case only the same-run guard applies.
func New(corpus CorpusIndex, logger *slog.Logger) *Deduplicator {
	return &Deduplicator{
		corpus:     corpus,
		seenTitles: make(map[string]bool),
		seenURLs:   make(map[string]bool),
		logger:     logger,
	}
}

// IsDuplicate reports whether the item duplicates known content, returning
// the label to record in skippedDuplicates (the title, or the URL when the
// title is empty).
func (d *Deduplicator) IsDuplicate(ctx context.Context, item models.SourceItem) (bool, string, error) {
	title := NormalizeTitle(item.Title)
	url := NormalizeURL(item.SourceURL)

	label := item.Title
	if label == "" {
		label = item.SourceURL
	}

	if (title != "" && d.seenTitles[title]) || (url != "" && d.seenURLs[url]) {
		d.logger.Debug("duplicate within run", "title", item.Title)
		return true, label, nil
	}

	if d.corpus != nil {
		if title != "" {
			exists, err := d.corpus.ExistsByNormalizedTitle(ctx, title)
			if err != nil {
				return false, "", fmt.Errorf("corpus title lookup: %w", err)
			}
			if exists {
				return true, label, nil
			}
		}
		if url != "" {
			exists, err := d.corpus.ExistsByNormalizedURL(ctx, url)
			if err != nil {
				return false, "", fmt.Errorf("corpus url lookup: %w", err)
			}
			if exists {
				return true, label, nil
			}
		}
	}

	return false, "", nil
}

// Mark records an accepted item so near-identical entries later in the same
// run are caught.
func (d *Deduplicator) Mark(item models.SourceItem) {
	if title := NormalizeTitle(item.Title); title != "" {
		d.seenTitles[title] = true
	}
	if url := NormalizeURL(item.SourceURL); url != "" {
		d.seenURLs[url] = true
	}
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	punctRe      = regexp.MustCompile(`[.,!?;:"'´\x60]+`)
)

// NormalizeTitle lowercases, strips punctuation, and collapses whitespace so
// trivially restyled headlines compare equal.
func NormalizeTitle(title string) string {
	normalized := strings.ToLower(title)
	normalized = punctRe.ReplaceAllString(normalized, "")
	normalized = whitespaceRe.ReplaceAllString(normalized, " ")
	return strings.TrimSpace(normalized)
}

// NormalizeURL lowercases and trims whitespace and trailing slashes.
func NormalizeURL(url string) string {
	normalized := strings.ToLower(strings.TrimSpace(url))
	return strings.TrimRight(normalized, "/")
}
