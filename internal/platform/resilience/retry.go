package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrRetriesExhausted is returned once every attempt of a RetryPolicy failed.
var ErrRetriesExhausted = errors.New("request failed after retries")

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent stops a RetryPolicy after the current attempt.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// RetryPolicy retries an operation a fixed number of times with a constant
// delay between attempts. The external rate-limit window is fixed, so the
// delay does not grow.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
	// OnRetry runs after a failed attempt that will be retried.
	OnRetry func(attempt int, err error)

	wait func(ctx context.Context, d time.Duration) error
}

func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context, attempt int) error) error {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	wait := p.wait
	if wait == nil {
		wait = sleepContext
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if err := wait(ctx, p.Delay); err != nil {
				return err
			}
		}

		err := fn(ctx, attempt)
		if err == nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}

		lastErr = err
		if attempt < maxAttempts && p.OnRetry != nil {
			p.OnRetry(attempt, err)
		}
	}

	return fmt.Errorf("%w (%d attempts): %w", ErrRetriesExhausted, maxAttempts, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
