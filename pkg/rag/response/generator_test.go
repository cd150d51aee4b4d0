package response

import (
	"context"
	"errors"
	"strings"
	"testing"

	"review-rag-be/internal/entity"
	"review-rag-be/pkg/llm"
	"review-rag-be/pkg/rag/prompt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLLM struct {
	prompt  string
	options *llm.Options
	reply   string
	err     error
	panics  bool
}

func (r *recordingLLM) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return r.Generate(ctx, history[len(history)-1].Content, opts...)
}

func (r *recordingLLM) Generate(ctx context.Context, p string, opts ...llm.Option) (string, error) {
	if r.panics {
		panic("provider exploded")
	}
	r.prompt = p
	r.options = llm.Apply("", 0, opts...)
	return r.reply, r.err
}

func TestGenerator_GroundsPromptInRetrievedDocuments(t *testing.T) {
	model := &recordingLLM{reply: "Reviewers say the battery lasts all day (Source ID: r-1)."}
	g := NewGenerator(model, nil, Config{Model: "gpt-4.1-nano-2025-04-14", Temperature: 0.1}, nil)

	out := g.Generate(context.Background(), "Is the battery good?", nil, []entity.RetrievedDocument{
		{Content: "Product: LAPTOP-001\nReview: Battery lasts all day", SourceId: "r-1", Score: 0.9},
	})

	assert.Equal(t, "Reviewers say the battery lasts all day (Source ID: r-1).", out)
	assert.Contains(t, model.prompt, "Battery lasts all day | Source ID: r-1")
	assert.Contains(t, model.prompt, "Is the battery good?")
	assert.Equal(t, "gpt-4.1-nano-2025-04-14", model.options.Model)
	require.NotNil(t, model.options.Temperature)
	assert.InDelta(t, 0.1, *model.options.Temperature, 1e-9)
}

func TestGenerator_RendersHistoryAsGiven(t *testing.T) {
	model := &recordingLLM{reply: "ok"}
	g := NewGenerator(model, nil, Config{}, nil)

	conversation := []entity.ConversationMessage{
		{Content: "first", Sender: entity.SenderUser},
		{Content: "second", Sender: entity.SenderAI},
		{Content: "third", Sender: entity.SenderUser},
	}
	g.Generate(context.Background(), "q", conversation, nil)

	assert.Contains(t, model.prompt, "User: first\nAI: second\nUser: third")
}

func TestGenerator_FallbackOnFailure(t *testing.T) {
	badTemplate, err := prompt.NewBuilderFromTemplate("{{.Missing}}")
	require.NoError(t, err)

	tests := []struct {
		name    string
		model   *recordingLLM
		builder *prompt.Builder
	}{
		{name: "llm error", model: &recordingLLM{err: errors.New("503 from upstream")}},
		{name: "empty output", model: &recordingLLM{reply: "   "}},
		{name: "provider panic", model: &recordingLLM{panics: true}},
		{name: "template fill error", model: &recordingLLM{reply: "unused"}, builder: badTemplate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGenerator(tt.model, tt.builder, Config{}, nil)
			var out string
			assert.NotPanics(t, func() {
				out = g.Generate(context.Background(), "Is it loud?", nil, nil)
			})
			assert.Equal(t, FallbackMessage, out)
		})
	}
}

func TestFallbackMessage(t *testing.T) {
	assert.Equal(t, "I apologize, but I'm having trouble processing your request right now. Please try again later.", FallbackMessage)
	assert.False(t, strings.Contains(FallbackMessage, "\n"))
}
