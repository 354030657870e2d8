package usecase

import (
	"context"
	"log/slog"
	"time"

	"NewsCrawler/internal/ports"
)

// Loop wires the interval driver to the pipeline for continuous operation.
type Loop struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	logger   *slog.Logger
}

// NewLoop returns a helper to start/stop recurring batches.
func NewLoop(driver ports.Scheduler, pipeline *Pipeline, logger *slog.Logger) *Loop {
	return &Loop{driver: driver, pipeline: pipeline, logger: logger}
}

// Start registers the pipeline with the driver. Batch errors are logged, not
// escalated: the loop keeps running through transient registry outages.
func (l *Loop) Start(ctx context.Context) error {
	if l.driver == nil || l.pipeline == nil {
		return nil
	}

	// A started batch runs to completion: shutdown stops the next tick, it
	// does not cancel in-flight work.
	batchCtx := context.WithoutCancel(ctx)
	job := func(trigger time.Time) {
		if _, err := l.pipeline.RunBatch(batchCtx); err != nil {
			l.logger.Error("batch run failed", "trigger", trigger.Format(time.RFC3339), "error", err)
		}
	}

	return l.driver.Start(ctx, job)
}

// Stop tears down the underlying driver, draining any in-flight batch.
func (l *Loop) Stop(ctx context.Context) error {
	if l.driver == nil {
		return nil
	}
	return l.driver.Stop(ctx)
}
