package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/statforge/statforge/internal/api"
	"github.com/statforge/statforge/internal/config"
	"github.com/statforge/statforge/internal/models"
)

// GenerationScheduler triggers content generation runs on a fixed interval.
// An interval of zero disables the loop entirely.
type GenerationScheduler struct {
	runner   api.Runner
	opts     config.GenerationOptions
	logger   *slog.Logger
	stopChan chan struct{}
}

// NewGenerationScheduler creates a scheduler around the given runner.
func NewGenerationScheduler(runner api.Runner, opts config.GenerationOptions, logger *slog.Logger) *GenerationScheduler {
	return &GenerationScheduler{
		runner:   runner,
		opts:     opts,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start begins the scheduler loop
func (s *GenerationScheduler) Start(ctx context.Context) {
	if s.opts.ScheduleInterval <= 0 {
		s.logger.Info("generation scheduler disabled, no interval configured")
		return
	}

	s.logger.Info("starting generation scheduler", "interval", s.opts.ScheduleInterval)
	ticker := time.NewTicker(s.opts.ScheduleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runOnce(ctx)
		case <-s.stopChan:
			s.logger.Info("generation scheduler stopped")
			return
		case <-ctx.Done():
			s.logger.Info("generation scheduler stopping due to context cancellation")
			return
		}
	}
}

// Stop stops the scheduler
func (s *GenerationScheduler) Stop() {
	close(s.stopChan)
}

func (s *GenerationScheduler) runOnce(ctx context.Context) {
	// Scheduled runs always ask for the configured ceiling; operators pick
	// their own targets through the admin endpoint instead.
	result, err := s.runner.Run(ctx, models.GenerationRequest{
		TargetStatistics: s.opts.MaxStatistics,
		TargetAntystics:  s.opts.MaxAntystics,
	})
	if err != nil {
		s.logger.Error("scheduled generation run failed", "error", err)
		return
	}

	s.logger.Info("scheduled generation run complete",
		"statistics", len(result.CreatedStatistics),
		"antystics", len(result.CreatedAntystics),
		"source_failures", len(result.SourceFailures),
	)
}
