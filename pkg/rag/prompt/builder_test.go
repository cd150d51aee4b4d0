package prompt

import (
	"strings"
	"testing"

	"review-rag-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderContext(t *testing.T) {
	docs := []entity.RetrievedDocument{
		{Content: "Product: LAPTOP-001\nReview: Battery lasts 10 hours", SourceId: "r-1", Score: 0.91},
		{Content: "Product: LAPTOP-001\nReview: Charger is slow", SourceId: "r-2", Score: 0.7},
	}

	got := RenderContext(docs)
	assert.Equal(t,
		"Product: LAPTOP-001\nReview: Battery lasts 10 hours | Source ID: r-1\n\n"+
			"Product: LAPTOP-001\nReview: Charger is slow | Source ID: r-2",
		got)
	assert.Equal(t, "", RenderContext(nil))
}

func TestRenderHistory(t *testing.T) {
	history := []entity.ConversationMessage{
		{Content: "Hi", Sender: entity.SenderUser},
		{Content: "Hello! How can I help?", Sender: entity.SenderAI},
	}
	assert.Equal(t, "User: Hi\nAI: Hello! How can I help?", RenderHistory(history))
}

func TestBuilder_Build(t *testing.T) {
	b := NewBuilder()
	out, err := b.Build("Is the battery good?",
		[]entity.ConversationMessage{{Content: "Tell me about laptops", Sender: entity.SenderUser}},
		[]entity.RetrievedDocument{{Content: "Product: LAPTOP-001\nReview: Great battery", SourceId: "r-1"}},
	)

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Using only the product review excerpts below, answer:\nIs the battery good?"))
	assert.Contains(t, out, "Great battery | Source ID: r-1")
	assert.Contains(t, out, "User: Tell me about laptops")
	assert.Contains(t, out, "Do not invent information")
	assert.Contains(t, out, "say so explicitly")
}

func TestBuilder_EmptyContextStillRenders(t *testing.T) {
	out, err := NewBuilder().Build("anything?", nil, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Context:\n\n")
}

func TestNewBuilderFromTemplate(t *testing.T) {
	b, err := NewBuilderFromTemplate("Q={{.UserMessage}} C={{.Context}}")
	require.NoError(t, err)
	out, err := b.Build("q", nil, []entity.RetrievedDocument{{Content: "c", SourceId: "1"}})
	require.NoError(t, err)
	assert.Equal(t, "Q=q C=c | Source ID: 1", out)

	_, err = NewBuilderFromTemplate("{{.Broken")
	assert.Error(t, err)

	bad, err := NewBuilderFromTemplate("{{.Unknown}}")
	require.NoError(t, err)
	_, err = bad.Build("q", nil, nil)
	assert.Error(t, err)
}
