package core

import (
	"context"
	"fmt"
	"time"
)

const (
	uploadAttempts  = 3
	uploadBaseDelay = time.Second
)

// Retry runs op up to attempts times. After failed attempt n it waits
// baseDelay * 2^n before trying again. The wait is cut short if ctx ends.
// onRetry, when set, is called before each wait.
func Retry(ctx context.Context, attempts int, baseDelay time.Duration, op func(ctx context.Context) error, onRetry func(attempt int, err error)) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		if onRetry != nil {
			onRetry(attempt, err)
		}

		timer := time.NewTimer(baseDelay * time.Duration(1<<attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry aborted after %d attempts: %w", attempt, ctx.Err())
		case <-timer.C:
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", attempts, err)
}
