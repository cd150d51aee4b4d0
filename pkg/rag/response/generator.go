package response

import (
	"context"
	"fmt"
	"strings"

	"review-rag-be/internal/entity"
	"review-rag-be/internal/pkg/logger"
	"review-rag-be/pkg/llm"
	"review-rag-be/pkg/rag/prompt"
)

const FallbackMessage = "I apologize, but I'm having trouble processing your request right now. Please try again later."

type Config struct {
	Model       string
	Temperature float64
}

// Generator creates answers grounded in retrieved reviews.
type Generator struct {
	llmProvider llm.LLMProvider
	builder     *prompt.Builder
	config      Config
	logger      logger.ILogger
}

func NewGenerator(llmProvider llm.LLMProvider, builder *prompt.Builder, config Config, log logger.ILogger) *Generator {
	if builder == nil {
		builder = prompt.NewBuilder()
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Generator{
		llmProvider: llmProvider,
		builder:     builder,
		config:      config,
		logger:      log,
	}
}

// Generate never fails: any error, empty output or panic below it yields
// FallbackMessage.
func (g *Generator) Generate(ctx context.Context, userMessage string, conversation []entity.ConversationMessage, retrieved []entity.RetrievedDocument) (reply string) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("Generator", "Recovered from panic during generation", map[string]interface{}{
				"error": fmt.Sprint(r),
			})
			reply = FallbackMessage
		}
	}()

	out, err := g.generate(ctx, userMessage, conversation, retrieved)
	if err != nil {
		g.logger.Error("Generator", "Response generation failed", map[string]interface{}{
			"error":     err.Error(),
			"documents": len(retrieved),
		})
		return FallbackMessage
	}
	return out
}

func (g *Generator) generate(ctx context.Context, userMessage string, conversation []entity.ConversationMessage, retrieved []entity.RetrievedDocument) (string, error) {
	// conversation arrives already windowed by the pipeline.
	promptText, err := g.builder.Build(userMessage, conversation, retrieved)
	if err != nil {
		return "", err
	}

	opts := []llm.Option{llm.WithTemperature(g.config.Temperature)}
	if g.config.Model != "" {
		opts = append(opts, llm.WithModel(g.config.Model))
	}

	out, err := g.llmProvider.Generate(ctx, promptText, opts...)
	if err != nil {
		return "", fmt.Errorf("llm generate: %w", err)
	}
	if strings.TrimSpace(out) == "" {
		return "", llm.ErrEmptyCompletion
	}

	g.logger.Info("Generator", "Answer generated", map[string]interface{}{
		"documents":   len(retrieved),
		"history":     len(conversation),
		"reply_chars": len(out),
	})
	return out, nil
}
