package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMProvider(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "openai", cfg: Config{Provider: "openai", Model: "gpt-4.1-nano-2025-04-14", ApiKey: "sk"}},
		{name: "ollama", cfg: Config{Provider: "ollama", Model: "llama3"}},
		{name: "openai without key", cfg: Config{Provider: "openai", Model: "m"}, wantErr: true},
		{name: "unsupported", cfg: Config{Provider: "huggingface", Model: "m"}, wantErr: true},
		{name: "missing model", cfg: Config{Provider: "ollama"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewLLMProvider(tt.cfg, nil)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMisconfigured)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, p)
		})
	}
}
