package usecase

import (
	"context"
	"log/slog"
	"time"

	"ResearchReporter/internal/ports"
)

// Scheduler regenerates standing topics through the pipeline on every tick.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	topics   []string
	logger   *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring topic refreshes.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, topics []string, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		driver:   driver,
		pipeline: pipeline,
		topics:   topics,
		logger:   logger.With("component", "scheduler"),
	}
}

// Start registers the refresh job with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil || len(s.topics) == 0 {
		return nil
	}

	job := func(trigger time.Time) {
		s.logger.Info("refreshing standing topics", "topics", len(s.topics), "trigger", trigger.UTC().Format(time.RFC3339))
		for _, topic := range s.topics {
			if ctx.Err() != nil {
				return
			}
			report := s.pipeline.Research(ctx, topic)
			if report.Failed() {
				s.logger.Warn("standing topic failed", "topic", topic)
			}
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
