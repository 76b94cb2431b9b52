// Package fallback implements ordered provider selection with per-provider
// retry. Selection walks a category's candidates in declared priority order;
// retry wraps each individual provider attempt with a bounded, fixed-delay
// loop.
package fallback

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// WithRetry runs op up to maxAttempts times, pausing haltDuration between
// attempts. The delay is fixed, not exponential: deterministic timing matters
// more than load shedding when a test step is being retried. The last failure
// is propagated unchanged so the caller sees the original cause.
//
// maxAttempts below 1 is treated as 1. The context cancels the wait between
// attempts but never interrupts a running attempt.
func WithRetry(ctx context.Context, op func() error, maxAttempts int, haltDuration time.Duration) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(haltDuration), uint64(maxAttempts-1)),
		ctx,
	)

	var lastErr error
	err := backoff.Retry(func() error {
		if err := op(); err != nil {
			lastErr = err
			return err
		}
		return nil
	}, policy)
	if err == nil {
		return nil
	}
	// backoff returns ctx.Err() when cancelled mid-wait; otherwise the last
	// op error comes back as-is.
	if lastErr != nil && ctx.Err() == nil {
		return lastErr
	}
	return err
}

// RetryValue is WithRetry for operations that produce a value.
func RetryValue[T any](ctx context.Context, op func() (T, error), maxAttempts int, haltDuration time.Duration) (T, error) {
	var result T
	err := WithRetry(ctx, func() error {
		v, err := op()
		if err != nil {
			return err
		}
		result = v
		return nil
	}, maxAttempts, haltDuration)
	return result, err
}
