// Package retryx runs an operation with a bounded number of attempts and
// exponential backoff (base, 2*base, 4*base, ...). It is a thin policy layer
// over github.com/sethvargo/go-retry.
package retryx

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

// Policy bounds an operation.
//
//   - MaxAttempts: total attempts including the first one (at least 1).
//   - BaseDelay: wait before the second attempt; doubles after each failure.
//   - AttemptTimeout: deadline of a single attempt; zero means none.
type Policy struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	AttemptTimeout time.Duration
}

// Do calls fn until it succeeds, the attempts run out or ctx is done. Every
// error is retried the same way. onRetry, when not nil, is called after
// every failed attempt that will be retried. The returned error is the last
// attempt's error, or ctx.Err() when the parent context stopped the loop.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error, onRetry func(attempt int, err error)) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	base := p.BaseDelay
	if base <= 0 {
		base = time.Nanosecond
	}
	b := retry.WithMaxRetries(uint64(attempts-1), retry.NewExponential(base))

	attempt := 0
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++

		err := callWithTimeout(ctx, p.AttemptTimeout, fn)
		if err == nil {
			return nil
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		if onRetry != nil && attempt < attempts {
			onRetry(attempt, err)
		}
		return retry.RetryableError(err)
	})

	return err
}

func callWithTimeout(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(ctx)
}
