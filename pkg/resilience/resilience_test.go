package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")

type hintedErr struct{ d time.Duration }

func (e hintedErr) Error() string             { return "rate limited" }
func (e hintedErr) RetryAfter() time.Duration { return e.d }

func fastPolicy(attempts int) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}
}

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	var retried []int
	err := Retry(context.Background(), fastPolicy(3), nil, func(attempt int, err error) {
		retried = append(retried, attempt)
	}, func() error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestRetry_StopsAtMaxAttempts(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastPolicy(3), nil, nil, func() error {
		calls++
		return errTransient
	})

	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 3, calls)
}

func TestRetry_NonRetryableStopsImmediately(t *testing.T) {
	calls := 0
	permanent := errors.New("bad request")
	err := Retry(context.Background(), fastPolicy(5), func(err error) bool {
		return !errors.Is(err, permanent)
	}, nil, func() error {
		calls++
		return permanent
	})

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestRetry_SingleAttemptPolicy(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastPolicy(1), nil, nil, func() error {
		calls++
		return errTransient
	})
	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 1, calls)
}

func TestRetry_HonoursRetryAfterHint(t *testing.T) {
	calls := 0
	start := time.Now()
	err := Retry(context.Background(), fastPolicy(2), nil, nil, func() error {
		calls++
		if calls == 1 {
			return hintedErr{d: 30 * time.Millisecond}
		}
		return nil
	})

	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestRetry_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Retry(ctx, RetryPolicy{MaxAttempts: 5, InitialInterval: time.Second}, nil, nil, func() error {
		calls++
		return errTransient
	})

	assert.Error(t, err)
	assert.LessOrEqual(t, calls, 1)
}

func TestBreaker_OpensAfterFailures(t *testing.T) {
	var transitions []string
	b := NewBreaker(BreakerConfig{
		Name:         "llm",
		MinRequests:  2,
		FailureRatio: 0.5,
		Timeout:      time.Minute,
		OnStateChange: func(name, from, to string) {
			transitions = append(transitions, from+"->"+to)
		},
	})

	for i := 0; i < 2; i++ {
		assert.ErrorIs(t, b.Execute(func() error { return errTransient }), errTransient)
	}

	called := false
	err := b.Execute(func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
	assert.Equal(t, "open", b.State())
	assert.Equal(t, []string{"closed->open"}, transitions)
}

func TestBreaker_CancellationDoesNotTrip(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "embed", MinRequests: 1, FailureRatio: 0.1})
	for i := 0; i < 3; i++ {
		_ = b.Execute(func() error { return context.Canceled })
	}
	assert.Equal(t, "closed", b.State())
}
