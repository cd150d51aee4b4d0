package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

type RetryPolicy struct {
	MaxAttempts     int // total attempts including the first; <= 1 disables retry
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     3,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}
}

// RetryAfterError is implemented by errors that carry a server-provided delay,
// e.g. an HTTP 429 with a Retry-After header.
type RetryAfterError interface {
	error
	RetryAfter() time.Duration
}

// Retry runs op until it succeeds, the policy is exhausted, ctx is done or
// isRetryable reports false. onRetry, if set, is called before each sleep.
func Retry(ctx context.Context, policy RetryPolicy, isRetryable func(error) bool, onRetry func(attempt int, err error), op func() error) error {
	if policy.MaxAttempts <= 1 {
		return op()
	}

	exp := backoff.NewExponentialBackOff()
	if policy.InitialInterval > 0 {
		exp.InitialInterval = policy.InitialInterval
	}
	if policy.MaxInterval > 0 {
		exp.MaxInterval = policy.MaxInterval
	}
	exp.MaxElapsedTime = 0

	hinted := &retryAfterBackOff{delegate: exp}
	b := backoff.WithContext(backoff.WithMaxRetries(hinted, uint64(policy.MaxAttempts-1)), ctx)

	attempt := 0
	operation := func() error {
		attempt++
		err := op()
		if err == nil {
			return nil
		}
		if isRetryable != nil && !isRetryable(err) {
			return backoff.Permanent(err)
		}
		var ra RetryAfterError
		if errors.As(err, &ra) {
			hinted.hint = ra.RetryAfter()
		}
		return err
	}

	notify := func(err error, _ time.Duration) {
		if onRetry != nil {
			onRetry(attempt, err)
		}
	}

	return backoff.RetryNotify(operation, b, notify)
}

// retryAfterBackOff prefers a server hint over the exponential schedule for
// the next wait only.
type retryAfterBackOff struct {
	delegate backoff.BackOff
	hint     time.Duration
}

func (b *retryAfterBackOff) NextBackOff() time.Duration {
	next := b.delegate.NextBackOff()
	if b.hint > 0 {
		next = b.hint
		b.hint = 0
	}
	return next
}

func (b *retryAfterBackOff) Reset() {
	b.hint = 0
	b.delegate.Reset()
}
