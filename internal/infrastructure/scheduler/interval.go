// Package scheduler drives recurring batch runs on a fixed interval.
package scheduler

import (
	"context"
	"time"

	"NewsCrawler/internal/ports"
)

// Interval re-invokes the job sequentially: the next tick is armed only
// after the previous run returns, so a slow batch delays the next one by its
// own duration plus the interval. There are no catch-up semantics.
type Interval struct {
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

var _ ports.Scheduler = (*Interval)(nil)

// NewInterval builds the driver.
func NewInterval(interval time.Duration) *Interval {
	return &Interval{interval: interval}
}

// Start runs the job once immediately, then on every interval elapse. It is
// a no-op when already started.
func (s *Interval) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil || s.stop != nil {
		return nil
	}

	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		job(time.Now())
		for {
			timer := time.NewTimer(s.interval)
			select {
			case t := <-timer.C:
				job(t)
			case <-ctx.Done():
				timer.Stop()
				return
			case <-s.stop:
				timer.Stop()
				return
			}
		}
	}()

	return nil
}

// Stop halts the loop and waits for an in-flight run to drain.
func (s *Interval) Stop(ctx context.Context) error {
	if s.stop == nil {
		return nil
	}
	close(s.stop)

	select {
	case <-s.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.stop = nil
	return nil
}
