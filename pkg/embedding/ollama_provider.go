package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"review-rag-be/pkg/vector"
)

// OllamaProvider implements EmbeddingProvider for local Ollama models (e.g., nomic-embed-text)
type OllamaProvider struct {
	BaseURL   string
	ModelName string
	Dimension int
	Client    *http.Client
}

var _ EmbeddingProvider = &OllamaProvider{}

func NewOllamaProvider(baseURL, model string, dimensions int, timeout time.Duration) *OllamaProvider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "nomic-embed-text"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OllamaProvider{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		ModelName: model,
		Dimension: dimensions,
		Client:    &http.Client{Timeout: timeout},
	}
}

type ollamaEmbeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

func (p *OllamaProvider) Model() string   { return p.ModelName }
func (p *OllamaProvider) Dimensions() int { return p.Dimension }

func (p *OllamaProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &EmbeddingError{Provider: "ollama", Err: ErrEmptyText}
	}

	jsonBody, err := json.Marshal(ollamaEmbeddingRequest{Model: p.ModelName, Prompt: text})
	if err != nil {
		return nil, &EmbeddingError{Provider: "ollama", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/api/embeddings", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, &EmbeddingError{Provider: "ollama", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, &EmbeddingError{Provider: "ollama", Retryable: ctx.Err() == nil, Err: err}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &EmbeddingError{Provider: "ollama", Retryable: true, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus("ollama", resp.StatusCode, bodyBytes, 0)
	}

	var ollamaResp ollamaEmbeddingResponse
	if err := json.Unmarshal(bodyBytes, &ollamaResp); err != nil {
		return nil, &EmbeddingError{Provider: "ollama", Err: err}
	}
	if len(ollamaResp.Embedding) == 0 {
		return nil, &EmbeddingError{Provider: "ollama", Err: fmt.Errorf("no embedding returned")}
	}
	if p.Dimension > 0 && len(ollamaResp.Embedding) != p.Dimension {
		return nil, &EmbeddingError{
			Provider: "ollama",
			Err:      fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(ollamaResp.Embedding), p.Dimension),
		}
	}

	values := make([]float32, len(ollamaResp.Embedding))
	for i, v := range ollamaResp.Embedding {
		values[i] = float32(v)
	}

	// pgvector cosine ops assume comparable magnitudes; Ollama models do not normalize
	return &EmbeddingResponse{
		Embedding: EmbeddingResponseEmbedding{Values: vector.Normalize(values)},
	}, nil
}
