package embedding

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrEmptyText         = errors.New("embedding: text is empty")
	ErrMisconfigured     = errors.New("embedding: provider misconfigured")
	ErrDimensionMismatch = errors.New("embedding: unexpected vector dimensionality")
)

// EmbeddingError describes a failed embedding call.
type EmbeddingError struct {
	Provider   string
	StatusCode int
	Retryable  bool
	Wait       time.Duration // from Retry-After, zero when absent
	Err        error
}

func (e *EmbeddingError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s embedding failed (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s embedding failed: %v", e.Provider, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

func (e *EmbeddingError) RetryAfter() time.Duration { return e.Wait }

// IsRetryable reports whether err is worth another attempt: transport
// failures, rate limiting and server errors are; bad input and bad
// credentials are not.
func IsRetryable(err error) bool {
	var embErr *EmbeddingError
	if errors.As(err, &embErr) {
		return embErr.Retryable
	}
	return false
}

func classifyStatus(provider string, status int, body []byte, retryAfter time.Duration) *EmbeddingError {
	err := &EmbeddingError{
		Provider:   provider,
		StatusCode: status,
		Err:        fmt.Errorf("%s", truncate(string(body), 512)),
		Wait:       retryAfter,
	}
	switch {
	case status == 429 || status >= 500:
		err.Retryable = true
	case status == 401 || status == 403:
		err.Err = fmt.Errorf("%w: %v", ErrMisconfigured, err.Err)
	}
	return err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
