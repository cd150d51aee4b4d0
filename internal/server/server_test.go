package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"review-rag-be/internal/bootstrap"
	"review-rag-be/internal/config"
	"review-rag-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The memory store and unreachable model backends exercise the full stack:
// retrieval fails to embed, generation fails, and the endpoint still answers.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		App:       config.AppConfig{Port: "0", CorsAllowedOrigins: "*"},
		Database:  config.DatabaseConfig{VectorStore: "memory"},
		Messaging: config.MessagingConfig{ReviewInsertedTopic: "REVIEW_INSERTED"},
		Ai: config.AIConfig{
			EmbeddingProvider:   "ollama",
			EmbeddingModel:      "nomic-embed-text",
			EmbeddingDimensions: 768,
			OllamaBaseURL:       "http://127.0.0.1:1",
			LLMProvider:         "ollama",
			LLMModel:            "llama3",
			CallTimeout:         time.Second,
			RetryMaxAttempts:    1,
		},
		Rag:     config.RAGConfig{ScoreThreshold: 0.5, CandidateCap: 100, HistoryWindow: 10, StageTimeout: 5 * time.Second, FormatMessages: true},
		Indexer: config.IndexerConfig{SweepBatch: 10},
	}

	c, err := bootstrap.NewContainer(cfg, logger.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return New(cfg, c)
}

func TestServer_ChatReplyDegradesGracefully(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/chat/v1/reply", bytes.NewBufferString(`{"userMessage":"Is the laptop fast?","history":[]}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.GetApp().Test(req, 15000)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	raw, _ := io.ReadAll(resp.Body)
	var body struct {
		Data struct {
			Response           string        `json:"response"`
			RetrievedDocuments []interface{} `json:"retrievedDocuments"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "I apologize, but I'm having trouble processing your request right now. Please try again later.", body.Data.Response)
	assert.NotNil(t, body.Data.RetrievedDocuments)
	assert.Empty(t, body.Data.RetrievedDocuments)
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t)
	resp, err := s.GetApp().Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}
