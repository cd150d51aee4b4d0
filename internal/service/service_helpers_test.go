package service

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
	"testing"
	"time"

	"review-rag-be/internal/entity"
	"review-rag-be/internal/pkg/logger"
	"review-rag-be/internal/repository/memory"
	"review-rag-be/internal/repository/unitofwork"
	"review-rag-be/pkg/embedding"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testDims = 8

var errBackendDown = errors.New("embedding backend down")

// fakeEmbedder derives a deterministic vector from the text. Texts containing
// "FAIL" are rejected and texts containing "ZERO" get an all-zero vector.
type fakeEmbedder struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeEmbedder) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.mu.Unlock()

	if strings.Contains(text, "FAIL") {
		return nil, &embedding.EmbeddingError{Provider: "fake", Err: errBackendDown}
	}

	if strings.Contains(text, "ZERO") {
		values := make([]float32, testDims)
		return &embedding.EmbeddingResponse{Embedding: embedding.EmbeddingResponseEmbedding{Values: values}}, nil
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()

	values := make([]float32, testDims)
	for i := range values {
		values[i] = float32((seed>>(uint(i)*8))&0xff) + 1
	}
	return &embedding.EmbeddingResponse{Embedding: embedding.EmbeddingResponseEmbedding{Values: values}}, nil
}

func (f *fakeEmbedder) Model() string   { return "fake-embed" }
func (f *fakeEmbedder) Dimensions() int { return testDims }

func (f *fakeEmbedder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fixture struct {
	repo     *memory.ProductReviewRepository
	factory  unitofwork.RepositoryFactory
	embedder *fakeEmbedder
	pubSub   *gochannel.GoChannel
	log      logger.ILogger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := memory.NewProductReviewRepository()
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubSub.Close() })

	return &fixture{
		repo:     repo,
		factory:  unitofwork.NewMemoryRepositoryFactory(repo),
		embedder: &fakeEmbedder{},
		pubSub:   pubSub,
		log:      logger.NewNopLogger(),
	}
}

func (f *fixture) seed(t *testing.T, sku, text string) *entity.ProductReview {
	t.Helper()
	review := &entity.ProductReview{
		Id:         uuid.New(),
		ProductSku: sku,
		ReviewText: text,
		UserId:     "user_001",
		CreatedAt:  time.Now(),
	}
	require.NoError(t, f.repo.Create(context.Background(), review))
	return review
}

func (f *fixture) load(t *testing.T, id uuid.UUID) *entity.ProductReview {
	t.Helper()
	all, err := f.repo.FindAll(context.Background())
	require.NoError(t, err)
	for _, r := range all {
		if r.Id == id {
			return r
		}
	}
	t.Fatalf("review %s not found", id)
	return nil
}
