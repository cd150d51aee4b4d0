package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// OpenAIProvider calls an OpenAI-compatible /embeddings endpoint.
type OpenAIProvider struct {
	BaseURL   string
	ApiKey    string
	ModelName string
	Dimension int
	Client    *http.Client
}

var _ EmbeddingProvider = &OpenAIProvider{}

func NewOpenAIProvider(baseURL, apiKey, model string, dimensions int, timeout time.Duration) *OpenAIProvider {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OpenAIProvider{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		ApiKey:    apiKey,
		ModelName: model,
		Dimension: dimensions,
		Client:    &http.Client{Timeout: timeout},
	}
}

type openAIEmbeddingRequest struct {
	Input          string `json:"input"`
	Model          string `json:"model"`
	Dimensions     int    `json:"dimensions,omitempty"`
	EncodingFormat string `json:"encoding_format"`
}

type openAIEmbeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (p *OpenAIProvider) Model() string   { return p.ModelName }
func (p *OpenAIProvider) Dimensions() int { return p.Dimension }

func (p *OpenAIProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &EmbeddingError{Provider: "openai", Err: ErrEmptyText}
	}

	payload, err := json.Marshal(openAIEmbeddingRequest{
		Input:          text,
		Model:          p.ModelName,
		Dimensions:     p.Dimension,
		EncodingFormat: "float",
	})
	if err != nil {
		return nil, &EmbeddingError{Provider: "openai", Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/embeddings", bytes.NewReader(payload))
	if err != nil {
		return nil, &EmbeddingError{Provider: "openai", Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.ApiKey)

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, &EmbeddingError{Provider: "openai", Retryable: ctx.Err() == nil, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &EmbeddingError{Provider: "openai", Retryable: true, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus("openai", resp.StatusCode, body, parseRetryAfter(resp.Header.Get("Retry-After")))
	}

	var out openAIEmbeddingResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &EmbeddingError{Provider: "openai", Err: fmt.Errorf("unmarshal response: %w", err)}
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, &EmbeddingError{Provider: "openai", Err: fmt.Errorf("no embedding returned")}
	}

	values := out.Data[0].Embedding
	if p.Dimension > 0 && len(values) != p.Dimension {
		return nil, &EmbeddingError{
			Provider: "openai",
			Err:      fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(values), p.Dimension),
		}
	}

	return &EmbeddingResponse{Embedding: EmbeddingResponseEmbedding{Values: values}}, nil
}

func parseRetryAfter(h string) time.Duration {
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(h); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(h); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
