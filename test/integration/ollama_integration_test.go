package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"review-rag-be/pkg/embedding"
	"review-rag-be/pkg/llm"
	"review-rag-be/pkg/llm/ollama"
	"review-rag-be/pkg/vector"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a local Ollama with OLLAMA_INTEGRATION=true, e.g.
// `ollama pull nomic-embed-text && ollama pull gemma:2b`.
func ollamaURL(t *testing.T) string {
	t.Helper()
	if os.Getenv("OLLAMA_INTEGRATION") != "true" {
		t.Skip("Skipping Ollama integration test: OLLAMA_INTEGRATION not set")
	}
	if url := os.Getenv("OLLAMA_BASE_URL"); url != "" {
		return url
	}
	return "http://localhost:11434"
}

func TestOllamaEmbedding_RelatedTextsAreCloser(t *testing.T) {
	provider := embedding.NewOllamaProvider(ollamaURL(t), "nomic-embed-text", 768, time.Minute)
	ctx := context.Background()

	embed := func(text string) []float32 {
		res, err := provider.Generate(ctx, text, embedding.TaskRetrievalDocument)
		require.NoError(t, err)
		require.Len(t, res.Embedding.Values, 768)
		return res.Embedding.Values
	}

	battery := embed("Product: LAPTOP-001\nReview: The battery lasts all day.")
	query := embed("How long does the laptop battery last?")
	camera := embed("Product: CAMERA-004\nReview: Autofocus is slow in low light.")

	near, err := vector.CosineSimilarity(query, battery)
	require.NoError(t, err)
	far, err := vector.CosineSimilarity(query, camera)
	require.NoError(t, err)
	assert.Greater(t, near, far)
}

func TestOllamaChat_Generates(t *testing.T) {
	provider := ollama.NewOllamaProvider(ollamaURL(t), "gemma:2b", 0.1, 2*time.Minute)

	out, err := provider.Generate(context.Background(), "Reply with the single word: ready", llm.WithMaxTokens(10))
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
