package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/statforge/statforge/internal/allocate"
	"github.com/statforge/statforge/internal/catalog"
	"github.com/statforge/statforge/internal/config"
	"github.com/statforge/statforge/internal/database"
	"github.com/statforge/statforge/internal/dedup"
	"github.com/statforge/statforge/internal/fetch"
	"github.com/statforge/statforge/internal/health"
	"github.com/statforge/statforge/internal/metrics"
	"github.com/statforge/statforge/internal/models"
	"github.com/statforge/statforge/internal/validate"
)

// ErrNoPersistence is returned when a non-dry run is requested without a
// draft repository wired in.
var ErrNoPersistence = errors.New("no draft repository configured for a persisting run")

// Orchestrator drives one content generation run end to end: resolve the
// source catalog, fetch from each healthy source concurrently, validate
// and deduplicate the items, allocate drafts into the two buckets, then
// persist them unless the run is a dry run.
type Orchestrator struct {
	catalog   catalog.Catalog
	checker   health.Checker
	registry  *fetch.Registry
	validator *validate.ClaimValidator
	allocator *allocate.Allocator
	repo      database.DraftRepository
	opts      config.GenerationOptions
	collector *metrics.GenerationCollector
	logger    *slog.Logger
}

// New assembles an orchestrator. The repository may be nil, which restricts
// the orchestrator to dry runs; the collector may be nil to skip metrics.
func New(
	cat catalog.Catalog,
	checker health.Checker,
	registry *fetch.Registry,
	validator *validate.ClaimValidator,
	allocator *allocate.Allocator,
	repo database.DraftRepository,
	opts config.GenerationOptions,
	collector *metrics.GenerationCollector,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		catalog:   cat,
		checker:   checker,
		registry:  registry,
		validator: validator,
		allocator: allocator,
		repo:      repo,
		opts:      opts,
		collector: collector,
		logger:    logger,
	}
}

// sourceOutcome is the per-source result slot filled by one worker. Slots
// are indexed by catalog order so aggregation stays deterministic no matter
// how the workers interleave.
type sourceOutcome struct {
	items   []models.SourceItem
	failure string
}

// Run executes one generation cycle. Source failures are recorded and the
// run continues; catalog resolution, persistence, and context cancellation
// are fatal.
func (o *Orchestrator) Run(ctx context.Context, req models.GenerationRequest) (*models.GenerationResult, error) {
	executedAt := req.ExecutionTime
	if executedAt.IsZero() {
		executedAt = time.Now().UTC()
	}

	if !req.DryRun && o.repo == nil {
		return nil, ErrNoPersistence
	}

	sources, err := o.resolveSources(req.SourceIDs)
	if err != nil {
		return nil, fmt.Errorf("resolving sources: %w", err)
	}

	o.logger.Info("generation run starting",
		"sources", len(sources),
		"dry_run", req.DryRun,
		"target_statistics", req.TargetStatistics,
		"target_antystics", req.TargetAntystics,
	)

	result := models.NewGenerationResult(executedAt, req.DryRun)

	outcomes := o.collectFromSources(ctx, sources)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("generation run cancelled: %w", err)
	}

	var fetched []models.SourceItem
	for _, outcome := range outcomes {
		if outcome.failure != "" {
			result.SourceFailures = append(result.SourceFailures, outcome.failure)
			continue
		}
		fetched = append(fetched, outcome.items...)
	}

	candidates, err := o.filterCandidates(ctx, fetched, result)
	if err != nil {
		return nil, err
	}

	statistics, antystics := o.allocator.Allocate(candidates, req.TargetStatistics, req.TargetAntystics, executedAt)
	result.CreatedStatistics = append(result.CreatedStatistics, statistics...)
	result.CreatedAntystics = append(result.CreatedAntystics, antystics...)

	if !req.DryRun && result.CreatedCount() > 0 {
		if err := o.repo.CreateBatch(ctx, result.AllDrafts()); err != nil {
			return nil, fmt.Errorf("persisting drafts: %w", err)
		}
	}

	o.collector.ObserveRun(result)

	o.logger.Info("generation run finished",
		"statistics", len(result.CreatedStatistics),
		"antystics", len(result.CreatedAntystics),
		"duplicates", len(result.SkippedDuplicates),
		"source_failures", len(result.SourceFailures),
		"validation_failures", len(result.ValidationFailures),
		"dry_run", req.DryRun,
	)

	return result, nil
}

func (o *Orchestrator) resolveSources(ids []string) ([]models.ContentSource, error) {
	if len(ids) == 0 {
		return o.catalog.GetAll()
	}
	return o.catalog.GetByIDs(ids)
}

// collectFromSources fans fetch work out over a bounded worker pool. Each
// source gets a slot in the outcomes slice so ordering follows the catalog.
func (o *Orchestrator) collectFromSources(ctx context.Context, sources []models.ContentSource) []sourceOutcome {
	outcomes := make([]sourceOutcome, len(sources))

	workers := o.opts.WorkerCount
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, workers)

	for i, source := range sources {
		wg.Add(1)

		go func(slot int, src models.ContentSource) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			if ctx.Err() != nil {
				return
			}

			outcomes[slot] = o.collectFromSource(ctx, src)
		}(i, source)
	}

	wg.Wait()

	return outcomes
}

func (o *Orchestrator) collectFromSource(ctx context.Context, source models.ContentSource) sourceOutcome {
	if !o.checker.IsHealthy(ctx, source) {
		o.logger.Warn("source skipped, health check failed", "source_id", source.ID)
		return sourceOutcome{failure: fmt.Sprintf("source %s failed its health check", source.ID)}
	}

	items, err := o.registry.Fetch(ctx, source)
	if err != nil {
		o.logger.Warn("source fetch failed", "source_id", source.ID, "error", err)
		return sourceOutcome{failure: fmt.Sprintf("source %s fetch failed: %v", source.ID, err)}
	}

	o.logger.Debug("source fetched", "source_id", source.ID, "items", len(items))

	return sourceOutcome{items: items}
}

// filterCandidates runs validation and deduplication over fetched items in
// order, recording every rejection in the result.
func (o *Orchestrator) filterCandidates(ctx context.Context, fetched []models.SourceItem, result *models.GenerationResult) ([]models.SourceItem, error) {
	deduplicator := dedup.New(o.repo, o.logger)

	var candidates []models.SourceItem

	for _, item := range fetched {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("generation run cancelled: %w", err)
		}

		validated, issue := o.validator.Validate(item)
		if issue != nil {
			result.ValidationIssues = append(result.ValidationIssues, *issue)
			result.ValidationFailures = append(result.ValidationFailures,
				fmt.Sprintf("%s: %s", issue.Title, issue.Reason))
			continue
		}

		duplicate, label, err := deduplicator.IsDuplicate(ctx, validated)
		if err != nil {
			return nil, fmt.Errorf("duplicate lookup: %w", err)
		}
		if duplicate {
			result.SkippedDuplicates = append(result.SkippedDuplicates, label)
			continue
		}

		deduplicator.Mark(validated)
		candidates = append(candidates, validated)
	}

	return candidates, nil
}
