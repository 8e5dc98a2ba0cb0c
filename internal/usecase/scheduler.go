package usecase

import (
	"context"
	"log/slog"
	"time"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

// Scheduler wires the ticker driver with recurring pipeline runs.
type Scheduler struct {
	driver      ports.Scheduler
	pipeline    *Pipeline
	windowHours int
	logger      *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring runs.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, windowHours int, logger *slog.Logger) *Scheduler {
	if windowHours <= 0 {
		windowHours = 24
	}
	return &Scheduler{driver: driver, pipeline: pipeline, windowHours: windowHours, logger: logger}
}

// Start registers the pipeline with the provided scheduler driver.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(trigger time.Time) {
		window := domain.LastHours(trigger, s.windowHours)
		if _, err := s.pipeline.Run(ctx, window, RunOptions{}); err != nil {
			if s.logger != nil {
				s.logger.Error("scheduled run failed", "error", err)
			}
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler driver.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	return s.driver.Stop(ctx)
}
