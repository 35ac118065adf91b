package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Default retry policy values.
const (
	DefaultMaxAttempts = 3
	DefaultBackoffBase = 2 * time.Second
	DefaultBackoffCap  = 10 * time.Second
)

// RetryPolicy is a bounded exponential-backoff retry applied at each downstream call site.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// BackoffBase is the wait after the first failed attempt. It doubles each retry.
	BackoffBase time.Duration

	// BackoffCap bounds a single wait.
	BackoffCap time.Duration

	// AttemptTimeout bounds each attempt (0 = no per-attempt deadline).
	// An attempt that hits it counts as a transient failure.
	AttemptTimeout time.Duration

	// IsRetryable decides whether an error is worth another attempt.
	// Defaults to domain.IsTransient.
	IsRetryable func(error) bool

	// Sleep waits between attempts. Defaults to a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy returns the policy used for search and generation calls.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: DefaultMaxAttempts,
		BackoffBase: DefaultBackoffBase,
		BackoffCap:  DefaultBackoffCap,
		IsRetryable: domain.IsTransient,
	}
}

// RetryPolicyFromSettings builds a policy from configuration, filling gaps with defaults.
func RetryPolicyFromSettings(s domain.RetrySettings, attemptTimeout time.Duration) RetryPolicy {
	p := DefaultRetryPolicy()
	if s.MaxAttempts > 0 {
		p.MaxAttempts = s.MaxAttempts
	}
	if s.BackoffBase > 0 {
		p.BackoffBase = s.BackoffBase
	}
	if s.BackoffCap > 0 {
		p.BackoffCap = s.BackoffCap
	}
	p.AttemptTimeout = attemptTimeout
	return p
}

// WithAttemptTimeout returns a copy of the policy with a per-attempt deadline.
func (p RetryPolicy) WithAttemptTimeout(d time.Duration) RetryPolicy {
	p.AttemptTimeout = d
	return p
}

// Backoff returns the wait after the given failed attempt (1-based).
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 || p.BackoffBase <= 0 {
		return 0
	}
	d := p.BackoffBase
	for i := 1; i < attempt; i++ {
		d *= 2
		if p.BackoffCap > 0 && d >= p.BackoffCap {
			return p.BackoffCap
		}
	}
	if p.BackoffCap > 0 && d > p.BackoffCap {
		return p.BackoffCap
	}
	return d
}

// Do runs fn until it succeeds, fails with a non-retryable error, or attempts run out.
// Non-retryable errors are returned unchanged after a single attempt.
// Exhaustion returns an error wrapping both ErrRetriesExhausted and the last failure.
func (p RetryPolicy) Do(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	retryable := p.IsRetryable
	if retryable == nil {
		retryable = domain.IsTransient
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := p.attempt(ctx, name, fn)
		if err == nil {
			if attempt > 1 {
				logger.Debug("%s succeeded on attempt %d", name, attempt)
			}
			return nil
		}
		if ctx.Err() != nil {
			return fmt.Errorf("%s: %w", name, ctx.Err())
		}
		if !retryable(err) {
			return err
		}

		lastErr = err
		if attempt == attempts {
			break
		}

		wait := p.Backoff(attempt)
		logger.Warn("%s attempt %d/%d failed: %v (retrying in %s)", name, attempt, attempts, err, wait)
		if err := sleep(ctx, wait); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	return fmt.Errorf("%s: %w after %d attempts: %w", name, domain.ErrRetriesExhausted, attempts, lastErr)
}

// attempt runs fn once under the per-attempt deadline.
func (p RetryPolicy) attempt(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	if p.AttemptTimeout <= 0 {
		return fn(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, p.AttemptTimeout)
	defer cancel()
	return domain.ClassifyTransportError(name, fn(attemptCtx))
}

// Retry is Do for calls that return a value.
func Retry[T any](ctx context.Context, p RetryPolicy, name string, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := p.Do(ctx, name, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		result = v
		return nil
	})
	return result, err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
