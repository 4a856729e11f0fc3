package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler drives recurring pipeline runs from a cron expression.
type Scheduler struct {
	cron     *cron.Cron
	pipeline *Pipeline
	spec     string
	logger   *slog.Logger
}

// NewScheduler creates a scheduler for the given cron spec.
func NewScheduler(p *Pipeline, spec string, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		pipeline: p,
		spec:     spec,
		logger:   logger,
	}
}

// Start registers the schedule and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.runOnce); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", s.spec, err)
	}
	s.cron.Start()
	s.logger.Info("pipeline scheduler started", "schedule", s.spec)
	return nil
}

// Stop stops the cron loop and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("pipeline scheduler stopped")
}

func (s *Scheduler) runOnce() {
	result := s.pipeline.Run(context.Background())
	if !result.Success {
		s.logger.Error("scheduled run failed", "run_id", result.RunID, "error", result.Error)
		return
	}
	s.logger.Info("scheduled run completed", "run_id", result.RunID, "storage_uri", result.StorageURI)
}
