package storage

import (
	"context"
	"fmt"
	"time"
)

// backoff doubles the delay after each failed attempt up to maxDelay.
type backoff struct {
	maxRetries int
	delay      time.Duration
	maxDelay   time.Duration
}

var connectBackoff = backoff{
	maxRetries: 3,
	delay:      200 * time.Millisecond,
	maxDelay:   2 * time.Second,
}

func (b backoff) nextDelay(attempt int) time.Duration {
	d := b.delay << attempt
	if d <= 0 || d > b.maxDelay {
		return b.maxDelay
	}
	return d
}

// withRetry calls fn until it succeeds, the retries are exhausted or ctx ends.
func withRetry(ctx context.Context, fn func() error) error {
	return connectBackoff.run(ctx, fn)
}

func (b backoff) run(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt >= b.maxRetries {
			return fmt.Errorf("failed after %d attempts: %w", attempt+1, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(b.nextDelay(attempt)):
		}
	}
}
