package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func recordingPolicy(delays *[]time.Duration) Policy {
	return Policy{
		Attempts:  DefaultAttempts,
		BaseDelay: DefaultBaseDelay,
		Sleep: func(_ context.Context, d time.Duration) error {
			*delays = append(*delays, d)
			return nil
		},
	}
}

func TestDoSucceedsOnThirdAttempt(t *testing.T) {
	t.Parallel()

	var delays []time.Duration
	policy := recordingPolicy(&delays)

	calls := 0
	err := policy.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return fmt.Errorf("attempt %d failed", calls)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}

	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
	if len(delays) != 2 || delays[0] != time.Second || delays[1] != 2*time.Second {
		t.Fatalf("expected delays [1s 2s], got %v", delays)
	}
}

func TestDoReturnsLastErrorWithoutTrailingDelay(t *testing.T) {
	t.Parallel()

	var delays []time.Duration
	policy := recordingPolicy(&delays)

	last := errors.New("still broken")
	calls := 0
	err := policy.Do(context.Background(), func(context.Context) error {
		calls++
		if calls == 3 {
			return last
		}
		return errors.New("earlier failure")
	})

	if !errors.Is(err, last) {
		t.Fatalf("expected last error, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
	if len(delays) != 2 {
		t.Fatalf("expected 2 delays, got %d", len(delays))
	}
}

func TestDoStopsOnCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	policy := Policy{
		Attempts:  3,
		BaseDelay: time.Millisecond,
	}

	calls := 0
	err := policy.Do(ctx, func(context.Context) error {
		calls++
		cancel()
		return errors.New("boom")
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call before cancellation, got %d", calls)
	}
}

func TestDoSingleAttemptNeverSleeps(t *testing.T) {
	t.Parallel()

	var delays []time.Duration
	policy := Policy{
		Attempts:  1,
		BaseDelay: time.Second,
		Sleep: func(_ context.Context, d time.Duration) error {
			delays = append(delays, d)
			return nil
		},
	}

	err := policy.Do(context.Background(), func(context.Context) error {
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(delays) != 0 {
		t.Fatalf("expected no delays, got %v", delays)
	}
}
