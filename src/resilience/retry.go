package resilience

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	log "github.com/sirupsen/logrus"
)

// RetryableError marks a transient transport failure (timeout, 5xx) that
// the policy is allowed to retry.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable: %v", e.Err)
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

func Retryable(err error) error {
	return &RetryableError{Err: err}
}

// RateLimitError is a 429 carrying the server-specified delay, which
// overrides the computed backoff for the next attempt.
type RateLimitError struct {
	Err        error
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %v: %v", e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

func RateLimited(err error, retryAfter time.Duration) error {
	return &RateLimitError{Err: err, RetryAfter: retryAfter}
}

type RetryPolicy struct {
	MaxAttempts       int
	BaseDelay         time.Duration
	BackoffMultiplier float64
	Jitter            bool

	// sleep is swapped out in tests
	sleep func(context.Context, time.Duration) error
}

func NewRetryPolicy(maxAttempts int, baseDelay time.Duration, backoffMultiplier float64, jitter bool) *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts:       maxAttempts,
		BaseDelay:         baseDelay,
		BackoffMultiplier: backoffMultiplier,
		Jitter:            jitter,
		sleep:             sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *RetryPolicy) backoff(attempt int) time.Duration {
	delay := float64(p.BaseDelay) * math.Pow(p.BackoffMultiplier, float64(attempt-1))

	if p.Jitter {
		delay += delay * 0.5 * rand.Float64()
	}

	return time.Duration(delay)
}

// Execute runs op until it succeeds, exhausts MaxAttempts, or fails with a
// non-retriable error. Validation errors are never classified retriable by
// callers, so they surface on the first attempt.
func (p *RetryPolicy) Execute(ctx context.Context, name string, op func() error) error {
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}

		var rateLimitErr *RateLimitError
		var retryableErr *RetryableError

		var delay time.Duration
		switch {
		case errors.As(lastErr, &rateLimitErr):
			delay = rateLimitErr.RetryAfter
		case errors.As(lastErr, &retryableErr):
			delay = p.backoff(attempt)
		default:
			// non-retriable: surface immediately
			return fmt.Errorf("RetryPolicy.Execute: %s failed: %w", name, lastErr)
		}

		if attempt == p.MaxAttempts {
			break
		}

		log.Warnf("RetryPolicy.Execute: %s attempt %d/%d failed, backing off %v: %v", name, attempt, p.MaxAttempts, delay, lastErr)

		if err := sleep(ctx, delay); err != nil {
			return fmt.Errorf("RetryPolicy.Execute: %s cancelled during backoff: %w", name, err)
		}
	}

	return fmt.Errorf("RetryPolicy.Execute: %s exhausted %d attempts: %w", name, p.MaxAttempts, lastErr)
}
