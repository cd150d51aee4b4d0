package llm

import (
	"context"
	"errors"

	"review-rag-be/internal/pkg/logger"
	"review-rag-be/pkg/resilience"
)

// ResilientProvider adds bounded retry and a circuit breaker around another
// provider. Once the breaker opens, calls fail fast with resilience.ErrCircuitOpen.
type ResilientProvider struct {
	inner   LLMProvider
	policy  resilience.RetryPolicy
	breaker *resilience.Breaker
	logger  logger.ILogger
}

var _ LLMProvider = &ResilientProvider{}

func NewResilientProvider(inner LLMProvider, policy resilience.RetryPolicy, breaker *resilience.Breaker, log logger.ILogger) *ResilientProvider {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &ResilientProvider{inner: inner, policy: policy, breaker: breaker, logger: log}
}

func (p *ResilientProvider) Chat(ctx context.Context, history []Message, opts ...Option) (string, error) {
	var out string
	call := func() error {
		var err error
		out, err = p.inner.Chat(ctx, history, opts...)
		return err
	}
	if p.breaker != nil {
		inner := call
		call = func() error { return p.breaker.Execute(inner) }
	}

	err := resilience.Retry(ctx, p.policy, isRetryable, func(attempt int, err error) {
		p.logger.Warn("LLM", "Retrying chat completion", map[string]interface{}{
			"attempt": attempt,
			"error":   err.Error(),
		})
	}, call)
	if err != nil {
		return "", err
	}
	return out, nil
}

func (p *ResilientProvider) Generate(ctx context.Context, prompt string, opts ...Option) (string, error) {
	return p.Chat(ctx, []Message{{Role: RoleUser, Content: prompt}}, opts...)
}

func isRetryable(err error) bool {
	if errors.Is(err, resilience.ErrCircuitOpen) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Retryable()
	}
	return !errors.Is(err, ErrEmptyCompletion)
}
