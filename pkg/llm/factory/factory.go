package factory

import (
	"fmt"
	"time"

	"review-rag-be/internal/pkg/logger"
	"review-rag-be/pkg/llm"
	"review-rag-be/pkg/llm/ollama"
	"review-rag-be/pkg/llm/openai"
	"review-rag-be/pkg/resilience"
)

type Config struct {
	Provider    string // "openai" or "ollama"
	Model       string
	Temperature float64
	ApiKey      string
	OpenAIURL   string
	OllamaURL   string
	CallTimeout time.Duration
	Retry       resilience.RetryPolicy
}

var ErrMisconfigured = fmt.Errorf("llm: provider misconfigured")

func NewLLMProvider(cfg Config, log logger.ILogger) (llm.LLMProvider, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: model is required", ErrMisconfigured)
	}

	var base llm.LLMProvider
	switch cfg.Provider {
	case "openai":
		if cfg.ApiKey == "" {
			return nil, fmt.Errorf("%w: OPENAI_API_KEY is required", ErrMisconfigured)
		}
		base = openai.NewOpenAIProvider(cfg.OpenAIURL, cfg.ApiKey, cfg.Model, cfg.Temperature, cfg.CallTimeout)
	case "ollama":
		base = ollama.NewOllamaProvider(cfg.OllamaURL, cfg.Model, cfg.Temperature, cfg.CallTimeout)
	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider %q", ErrMisconfigured, cfg.Provider)
	}

	breaker := resilience.NewBreaker(resilience.BreakerConfig{
		Name: "llm-" + cfg.Provider,
		OnStateChange: func(name, from, to string) {
			if log != nil {
				log.Warn("LLM", "Circuit breaker state changed", map[string]interface{}{
					"breaker": name, "from": from, "to": to,
				})
			}
		},
	})
	return llm.NewResilientProvider(base, cfg.Retry, breaker, log), nil
}
