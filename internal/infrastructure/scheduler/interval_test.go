package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestIntervalRunsImmediatelyThenPeriodically(t *testing.T) {
	t.Parallel()

	var runs atomic.Int32
	s := NewInterval(20 * time.Millisecond)

	if err := s.Start(context.Background(), func(time.Time) { runs.Add(1) }); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for runs.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("expected at least 3 runs, got %d", runs.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}
}

func TestIntervalNeverOverlapsRuns(t *testing.T) {
	t.Parallel()

	var active, peak atomic.Int32
	s := NewInterval(time.Millisecond)

	if err := s.Start(context.Background(), func(time.Time) {
		cur := active.Add(1)
		if cur > peak.Load() {
			peak.Store(cur)
		}
		time.Sleep(10 * time.Millisecond)
		active.Add(-1)
	}); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	time.Sleep(80 * time.Millisecond)
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}

	if peak.Load() != 1 {
		t.Fatalf("runs overlapped: peak concurrency %d", peak.Load())
	}
}

func TestIntervalStopDrainsInFlightRun(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	var finished atomic.Bool
	var once sync.Once

	s := NewInterval(time.Hour)
	if err := s.Start(context.Background(), func(time.Time) {
		once.Do(func() { close(started) })
		time.Sleep(50 * time.Millisecond)
		finished.Store(true)
	}); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	<-started
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}
	if !finished.Load() {
		t.Fatal("Stop returned before the in-flight run finished")
	}
}

func TestIntervalStopHonorsContextDeadline(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	s := NewInterval(time.Hour)
	if err := s.Start(context.Background(), func(time.Time) { <-block }); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := s.Stop(ctx); err == nil {
		t.Fatal("expected deadline error while a run blocks the drain")
	}
}

func TestIntervalStopWithoutStartIsNoop(t *testing.T) {
	t.Parallel()

	s := NewInterval(time.Second)
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop returned error: %v", err)
	}
}
