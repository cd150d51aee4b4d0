package factory

import (
	"fmt"
	"time"

	"review-rag-be/internal/pkg/logger"
	"review-rag-be/pkg/embedding"
	"review-rag-be/pkg/resilience"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	Provider    string // "openai" or "ollama"
	Model       string
	Dimensions  int
	ApiKey      string
	OpenAIURL   string
	OllamaURL   string
	CallTimeout time.Duration
	Retry       resilience.RetryPolicy
	// Redis, when set, backs the query cache; otherwise an in-process cache is used.
	Redis    *redis.Client
	CacheTTL time.Duration
}

// NewEmbeddingProvider builds provider -> retry -> cache. Misconfiguration is
// reported here, at startup, and wraps embedding.ErrMisconfigured.
func NewEmbeddingProvider(cfg Config, log logger.ILogger) (embedding.EmbeddingProvider, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: model is required", embedding.ErrMisconfigured)
	}
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("%w: dimensions must be positive", embedding.ErrMisconfigured)
	}

	var base embedding.EmbeddingProvider
	switch cfg.Provider {
	case "openai":
		if cfg.ApiKey == "" {
			return nil, fmt.Errorf("%w: OPENAI_API_KEY is required", embedding.ErrMisconfigured)
		}
		base = embedding.NewOpenAIProvider(cfg.OpenAIURL, cfg.ApiKey, cfg.Model, cfg.Dimensions, cfg.CallTimeout)
	case "ollama":
		base = embedding.NewOllamaProvider(cfg.OllamaURL, cfg.Model, cfg.Dimensions, cfg.CallTimeout)
	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider %q", embedding.ErrMisconfigured, cfg.Provider)
	}

	provider := embedding.EmbeddingProvider(embedding.NewRetryingProvider(base, cfg.Retry, log))

	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	var cache embedding.VectorCache
	if cfg.Redis != nil {
		cache = embedding.NewRedisVectorCache(cfg.Redis, "review-rag:emb:", ttl)
	} else {
		cache = embedding.NewMemoryVectorCache(ttl)
	}
	return embedding.NewCachedProvider(provider, cache, log), nil
}
