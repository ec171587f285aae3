package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/statforge/statforge/internal/models"
)

// GenerationCollector tracks outcomes of content generation runs.
type GenerationCollector struct {
	runsTotal          *prometheus.CounterVec
	draftsCreated      *prometheus.CounterVec
	sourceFailures     prometheus.Counter
	validationFailures prometheus.Counter
	duplicatesSkipped  prometheus.Counter
}

// NewGenerationCollector registers generation counters on the given registry.
func NewGenerationCollector(registry *prometheus.Registry) (*GenerationCollector, error) {
	runsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "statforge",
		Subsystem: "generation",
		Name:      "runs_total",
		Help:      "Total number of generation runs.",
	}, []string{"mode"})

	draftsCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "statforge",
		Subsystem: "generation",
		Name:      "drafts_created_total",
		Help:      "Total number of drafts produced, by kind.",
	}, []string{"kind"})

	sourceFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "statforge",
		Subsystem: "generation",
		Name:      "source_failures_total",
		Help:      "Total number of sources that failed health checks or fetching.",
	})

	validationFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "statforge",
		Subsystem: "generation",
		Name:      "validation_failures_total",
		Help:      "Total number of items rejected by claim validation.",
	})

	duplicatesSkipped := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "statforge",
		Subsystem: "generation",
		Name:      "duplicates_skipped_total",
		Help:      "Total number of items skipped as duplicates.",
	})

	collectors := []prometheus.Collector{
		runsTotal, draftsCreated, sourceFailures, validationFailures, duplicatesSkipped,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return &GenerationCollector{
		runsTotal:          runsTotal,
		draftsCreated:      draftsCreated,
		sourceFailures:     sourceFailures,
		validationFailures: validationFailures,
		duplicatesSkipped:  duplicatesSkipped,
	}, nil
}

// ObserveRun records counters for one completed generation run. Safe on a nil
// receiver so callers without metrics wired can skip the nil check.
func (c *GenerationCollector) ObserveRun(result *models.GenerationResult) {
	if c == nil || result == nil {
		return
	}

	mode := "live"
	if result.DryRun {
		mode = "dry_run"
	}

	c.runsTotal.WithLabelValues(mode).Inc()
	c.draftsCreated.WithLabelValues(string(models.DraftKindStatistic)).Add(float64(len(result.CreatedStatistics)))
	c.draftsCreated.WithLabelValues(string(models.DraftKindAntistic)).Add(float64(len(result.CreatedAntystics)))
	c.sourceFailures.Add(float64(len(result.SourceFailures)))
	c.validationFailures.Add(float64(len(result.ValidationFailures)))
	c.duplicatesSkipped.Add(float64(len(result.SkippedDuplicates)))
}
