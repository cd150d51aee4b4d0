package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"review-rag-be/internal/config"
	"review-rag-be/internal/controller"
	"review-rag-be/internal/pkg/logger"
	"review-rag-be/internal/repository/memory"
	"review-rag-be/internal/repository/unitofwork"
	"review-rag-be/internal/service"
	"review-rag-be/pkg/database"
	"review-rag-be/pkg/embedding"
	embeddingFactory "review-rag-be/pkg/embedding/factory"
	llmFactory "review-rag-be/pkg/llm/factory"
	pktNats "review-rag-be/pkg/nats"
	"review-rag-be/pkg/rag/executor"
	"review-rag-be/pkg/rag/prompt"
	"review-rag-be/pkg/rag/response"
	"review-rag-be/pkg/rag/search"
	"review-rag-be/pkg/resilience"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const conversationTTL = 24 * time.Hour

type Container struct {
	Logger logger.ILogger

	// Controllers
	ChatController   controller.IChatController
	ReviewController controller.IReviewController

	// Background services (started by the caller)
	IndexerService service.IIndexerService
	ReviewService  service.IReviewService
	NatsSubscriber *pktNats.Subscriber

	closers []func()
}

// NewContainer validates cfg and wires every service once. Any
// misconfiguration is returned as a *config.ConfigurationError.
func NewContainer(cfg *config.Config, log logger.ILogger) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Logger: log}

	// 1. Storage
	uowFactory, err := c.newRepositoryFactory(cfg)
	if err != nil {
		c.Close()
		return nil, err
	}

	// 2. Infrastructure
	rdb := c.newRedis(cfg)

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, logger.NewWatermillAdapter(log))
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	var natsPub *pktNats.Publisher
	if cfg.Messaging.NatsURL != "" {
		natsPub, err = pktNats.NewPublisher(cfg.Messaging.NatsURL, log)
		if err != nil {
			log.Warn("Bootstrap", "NATS publisher unavailable, using in-process bus only", map[string]interface{}{"error": err.Error()})
		} else {
			c.closers = append(c.closers, natsPub.Close)
		}
		c.NatsSubscriber, err = pktNats.NewSubscriber(cfg.Messaging.NatsURL, log)
		if err != nil {
			log.Warn("Bootstrap", "NATS subscriber unavailable", map[string]interface{}{"error": err.Error()})
			c.NatsSubscriber = nil
		} else {
			c.closers = append(c.closers, c.NatsSubscriber.Close)
		}
	}

	// 3. AI providers
	retry := resilience.DefaultRetryPolicy()
	retry.MaxAttempts = cfg.Ai.RetryMaxAttempts

	embeddingProvider, err := embeddingFactory.NewEmbeddingProvider(embeddingFactory.Config{
		Provider:    cfg.Ai.EmbeddingProvider,
		Model:       cfg.Ai.EmbeddingModel,
		Dimensions:  cfg.Ai.EmbeddingDimensions,
		ApiKey:      cfg.Keys.OpenAI,
		OpenAIURL:   cfg.Ai.OpenAIBaseURL,
		OllamaURL:   cfg.Ai.OllamaBaseURL,
		CallTimeout: cfg.Ai.CallTimeout,
		Retry:       retry,
		Redis:       rdb,
	}, log)
	if err != nil {
		c.Close()
		return nil, asConfigurationError(err)
	}
	log.Info("Bootstrap", "Embedding provider ready", map[string]interface{}{
		"provider":   cfg.Ai.EmbeddingProvider,
		"model":      embeddingProvider.Model(),
		"dimensions": embeddingProvider.Dimensions(),
	})

	llmProvider, err := llmFactory.NewLLMProvider(llmFactory.Config{
		Provider:    cfg.Ai.LLMProvider,
		Model:       cfg.Ai.LLMModel,
		Temperature: cfg.Ai.LLMTemperature,
		ApiKey:      cfg.Keys.OpenAI,
		OpenAIURL:   cfg.Ai.OpenAIBaseURL,
		OllamaURL:   cfg.Ai.OllamaBaseURL,
		CallTimeout: cfg.Ai.CallTimeout,
		Retry:       retry,
	}, log)
	if err != nil {
		c.Close()
		return nil, asConfigurationError(err)
	}
	log.Info("Bootstrap", "LLM provider ready", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
	})

	// 4. RAG core
	searcher := search.NewOrchestrator(embeddingProvider, uowFactory, cfg.Rag.CandidateCap, log)
	generator := response.NewGenerator(llmProvider, prompt.NewBuilder(), response.Config{
		Model:       cfg.Ai.LLMModel,
		Temperature: cfg.Ai.LLMTemperature,
	}, log)
	pipeline := executor.NewPipelineExecutor(searcher, generator, executor.Config{
		ScoreThreshold: cfg.Rag.ScoreThreshold,
		HistoryWindow:  cfg.Rag.HistoryWindow,
		StageTimeout:   cfg.Rag.StageTimeout,
		FormatMessages: cfg.Rag.FormatMessages,
	}, log)

	// 5. Services
	publisherService := service.NewPublisherService(cfg.Messaging.ReviewInsertedTopic, pubSub)
	var eventPublisher service.EventPublisher
	if natsPub != nil {
		eventPublisher = natsPub
	}

	c.IndexerService = service.NewIndexerService(
		pubSub,
		cfg.Messaging.ReviewInsertedTopic,
		uowFactory,
		embeddingProvider,
		cfg.Indexer.SweepBatch,
		log,
	)
	c.ReviewService = service.NewReviewService(uowFactory, publisherService, eventPublisher, log)
	chatService := service.NewChatService(pipeline, memory.NewConversationRepository(conversationTTL, 2*cfg.Rag.HistoryWindow))

	// 6. Controllers
	c.ChatController = controller.NewChatController(chatService)
	c.ReviewController = controller.NewReviewController(c.ReviewService, c.IndexerService)

	return c, nil
}

func (c *Container) newRepositoryFactory(cfg *config.Config) (unitofwork.RepositoryFactory, error) {
	if cfg.Database.VectorStore == "memory" {
		c.Logger.Warn("Bootstrap", "Using in-memory review store; data is lost on restart", nil)
		return unitofwork.NewMemoryRepositoryFactory(memory.NewProductReviewRepository().WithLogger(c.Logger)), nil
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.App.Environment == "development")
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	c.closers = append(c.closers, func() { closeDB(db) })
	return unitofwork.NewRepositoryFactory(db), nil
}

// newRedis returns nil when REDIS_URL is unset or unreachable; the embedding
// cache then falls back to the in-process store.
func (c *Container) newRedis(cfg *config.Config) *redis.Client {
	if cfg.Messaging.RedisURL == "" {
		return nil
	}

	opt, err := redis.ParseURL(cfg.Messaging.RedisURL)
	if err != nil {
		c.Logger.Warn("Bootstrap", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: cfg.Messaging.RedisURL}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		c.Logger.Warn("Bootstrap", "Redis unreachable, using in-process embedding cache", map[string]interface{}{"error": err.Error()})
		_ = rdb.Close()
		return nil
	}

	c.closers = append(c.closers, func() { _ = rdb.Close() })
	return rdb
}

// Close releases resources in reverse order of acquisition.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

func asConfigurationError(err error) error {
	if errors.Is(err, embedding.ErrMisconfigured) || errors.Is(err, llmFactory.ErrMisconfigured) {
		return config.NewConfigurationError(err.Error())
	}
	return err
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
