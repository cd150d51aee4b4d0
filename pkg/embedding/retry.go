package embedding

import (
	"context"

	"review-rag-be/internal/pkg/logger"
	"review-rag-be/pkg/resilience"
)

// RetryingProvider retries transient failures of the wrapped provider with
// exponential backoff. Empty text, bad credentials and malformed responses are
// returned immediately.
type RetryingProvider struct {
	inner  EmbeddingProvider
	policy resilience.RetryPolicy
	logger logger.ILogger
}

var _ EmbeddingProvider = &RetryingProvider{}

func NewRetryingProvider(inner EmbeddingProvider, policy resilience.RetryPolicy, log logger.ILogger) *RetryingProvider {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &RetryingProvider{inner: inner, policy: policy, logger: log}
}

func (p *RetryingProvider) Model() string   { return p.inner.Model() }
func (p *RetryingProvider) Dimensions() int { return p.inner.Dimensions() }

func (p *RetryingProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	var resp *EmbeddingResponse
	err := resilience.Retry(ctx, p.policy, IsRetryable, func(attempt int, err error) {
		p.logger.Warn("Embedding", "Retrying embedding call", map[string]interface{}{
			"model":   p.inner.Model(),
			"attempt": attempt,
			"error":   err.Error(),
		})
	}, func() error {
		var err error
		resp, err = p.inner.Generate(ctx, text, taskType)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
