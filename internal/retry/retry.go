// Package retry provides a small capped-retry decorator for fallible
// network operations.
package retry

import (
	"context"
	"time"
)

const (
	// DefaultAttempts is the total number of tries, including the first.
	DefaultAttempts = 3
	// DefaultBaseDelay is the wait before the second attempt; it doubles
	// after every further failure (1s, 2s, ...).
	DefaultBaseDelay = 1000 * time.Millisecond
)

// Policy describes how often and how long to wait between attempts. Sleep is
// injectable so tests can observe the exact delay schedule without waiting.
type Policy struct {
	Attempts  int
	BaseDelay time.Duration
	Sleep     func(ctx context.Context, d time.Duration) error
}

// Default returns the wrapper policy used by all API clients: three attempts
// with exponential backoff starting at one second.
func Default() Policy {
	return Policy{Attempts: DefaultAttempts, BaseDelay: DefaultBaseDelay}
}

// Do runs op until it succeeds or the attempt budget is exhausted. No delay
// follows the final attempt; its error is returned as-is. A canceled context
// aborts the backoff wait and surfaces the context error.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	delay := p.BaseDelay
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		if sleepErr := sleep(ctx, delay); sleepErr != nil {
			return sleepErr
		}
		delay *= 2
	}

	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
