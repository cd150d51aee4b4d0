package config

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Database: DatabaseConfig{Connection: "postgres://localhost/reviews", VectorStore: "postgres"},
		Keys:     APIKeys{OpenAI: "sk-test"},
		Ai: AIConfig{
			EmbeddingProvider:   "openai",
			EmbeddingModel:      "text-embedding-3-small",
			EmbeddingDimensions: 1536,
			LLMProvider:         "openai",
			LLMModel:            "gpt-4.1-nano-2025-04-14",
		},
		Rag: RAGConfig{ScoreThreshold: 0.5, CandidateCap: 100, HistoryWindow: 10},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing openai key", mutate: func(c *Config) { c.Keys.OpenAI = "" }, wantErr: true},
		{name: "ollama without key", mutate: func(c *Config) {
			c.Keys.OpenAI = ""
			c.Ai.EmbeddingProvider = "ollama"
			c.Ai.LLMProvider = "ollama"
		}},
		{name: "unknown embedding provider", mutate: func(c *Config) { c.Ai.EmbeddingProvider = "gemini" }, wantErr: true},
		{name: "missing embedding model", mutate: func(c *Config) { c.Ai.EmbeddingModel = "" }, wantErr: true},
		{name: "zero dimensions", mutate: func(c *Config) { c.Ai.EmbeddingDimensions = 0 }, wantErr: true},
		{name: "missing dsn", mutate: func(c *Config) { c.Database.Connection = "" }, wantErr: true},
		{name: "memory store needs no dsn", mutate: func(c *Config) {
			c.Database.Connection = ""
			c.Database.VectorStore = "memory"
		}},
		{name: "zero candidate cap", mutate: func(c *Config) { c.Rag.CandidateCap = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsConfigurationError(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := validConfig()
	cfg.Keys.OpenAI = ""
	cfg.Ai.LLMModel = ""

	err := cfg.Validate()
	require.Error(t, err)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Len(t, cfgErr.Problems, 3)
}

func TestIsConfigurationError_Wrapped(t *testing.T) {
	err := fmt.Errorf("bootstrap: %w", NewConfigurationError("missing key"))
	assert.True(t, IsConfigurationError(err))
	assert.False(t, IsConfigurationError(fmt.Errorf("plain")))
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("RAG_SCORE_THRESHOLD", "0.72")
	t.Setenv("RAG_CANDIDATE_CAP", "50")
	t.Setenv("RAG_FORMAT_MESSAGES", "false")
	t.Setenv("RAG_STAGE_TIMEOUT_SECONDS", "5")
	t.Setenv("EMBEDDING_DIMENSIONS", "not-a-number")

	cfg := Load()

	assert.Equal(t, 0.72, cfg.Rag.ScoreThreshold)
	assert.Equal(t, 50, cfg.Rag.CandidateCap)
	assert.False(t, cfg.Rag.FormatMessages)
	assert.Equal(t, 5*time.Second, cfg.Rag.StageTimeout)
	assert.Equal(t, 1536, cfg.Ai.EmbeddingDimensions)
}
