package allocate

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/statforge/statforge/internal/config"
	"github.com/statforge/statforge/internal/models"
	"log/slog"
)

// ClassifierPolicy decides which bucket a validated candidate is offered to
// first. The rule is deliberately swappable; the shipped default is a hint
// heuristic, not a fixed law of the pipeline.
type ClassifierPolicy interface {
	Preferred(item models.SourceItem) models.DraftKind
}

// HintPolicy offers humor-friendly candidates to the Antistic bucket first
// and everything else, Poland-focused items included, to Statistic first.
type HintPolicy struct{}

// Preferred implements ClassifierPolicy.
func (HintPolicy) Preferred(item models.SourceItem) models.DraftKind {
	if item.HumorFriendly {
		return models.DraftKindAntistic
	}
	return models.DraftKindStatistic
}

// Allocator assigns surviving candidates into the two output kinds and
// enforces quotas.
type Allocator struct {
	opts   config.GenerationOptions
	policy ClassifierPolicy
	logger *slog.Logger
}

// New creates an allocator bound to the process-wide generation options.
func New(opts config.GenerationOptions, policy ClassifierPolicy, logger *slog.Logger) *Allocator {
	if policy == nil {
		policy = HintPolicy{}
	}
	return &Allocator{opts: opts, policy: policy, logger: logger}
}

// Allocate clamps the requested targets into the configured bounds, orders
// candidates newest first, and fills the two buckets. When a candidate's
// preferred bucket is full it spills to the other bucket while that one has
// capacity; leftover candidates are simply unused this run.
func (a *Allocator) Allocate(candidates []models.SourceItem, targetStatistics, targetAntystics int, executedAt time.Time) (statistics, antystics []models.GeneratedDraft) {
	statQuota := clamp(targetStatistics, a.opts.MinStatistics, a.opts.MaxStatistics)
	antyQuota := clamp(targetAntystics, a.opts.MinAntystics, a.opts.MaxAntystics)

	ordered := make([]models.SourceItem, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].PublishedAt.After(ordered[j].PublishedAt)
	})

	statistics = make([]models.GeneratedDraft, 0, statQuota)
	antystics = make([]models.GeneratedDraft, 0, antyQuota)

	for _, item := range ordered {
		if len(statistics) >= statQuota && len(antystics) >= antyQuota {
			break
		}

		kind := a.policy.Preferred(item)
		switch {
		case kind == models.DraftKindStatistic && len(statistics) < statQuota:
		case kind == models.DraftKindAntistic && len(antystics) < antyQuota:
		case kind == models.DraftKindStatistic && len(antystics) < antyQuota:
			kind = models.DraftKindAntistic
		case kind == models.DraftKindAntistic && len(statistics) < statQuota:
			kind = models.DraftKindStatistic
		default:
			continue
		}

		draft := a.promote(item, kind, executedAt)
		if kind == models.DraftKindStatistic {
			statistics = append(statistics, draft)
		} else {
			antystics = append(antystics, draft)
		}
	}

	a.logger.Info("allocation complete",
		"candidates", len(candidates),
		"statistics", len(statistics),
		"antystics", len(antystics),
		"stat_quota", statQuota,
		"anty_quota", antyQuota,
	)

	return statistics, antystics
}

// promote converts a validated candidate into a moderation-pending draft
// with a freshly assigned identity.
func (a *Allocator) promote(item models.SourceItem, kind models.DraftKind, executedAt time.Time) models.GeneratedDraft {
	return models.GeneratedDraft{
		ID:             uuid.NewString(),
		Title:          item.Title,
		Summary:        item.Summary,
		SourceURL:      item.SourceURL,
		SourceCitation: item.SourceName,
		Kind:           kind,
		Status:         models.ModerationStatusPending,
		CreatedAt:      executedAt,
	}
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
