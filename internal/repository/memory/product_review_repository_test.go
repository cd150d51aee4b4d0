package memory

import (
	"context"
	"testing"
	"time"

	"review-rag-be/internal/entity"
	"review-rag-be/internal/pkg/logger"
	"review-rag-be/internal/repository/contract"
	"review-rag-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func seed(t *testing.T, repo *ProductReviewRepository, sku string, vec []float32) *entity.ProductReview {
	t.Helper()
	review := &entity.ProductReview{ProductSku: sku, ReviewText: "text for " + sku, UserId: "user_001"}
	require.NoError(t, repo.Create(context.Background(), review))
	if vec != nil {
		require.NoError(t, repo.UpdateEmbedding(context.Background(), review.Id, vec, "Product: "+sku, "test-model"))
	}
	return review
}

func TestProductReviewRepository_SearchOrdersBySimilarity(t *testing.T) {
	repo := NewProductReviewRepository()
	far := seed(t, repo, "PHONE-002", []float32{0, 1})
	near := seed(t, repo, "LAPTOP-001", []float32{1, 0.1})
	seed(t, repo, "TABLET-005", nil)

	results, err := repo.SearchSimilarWithScore(context.Background(), []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 2, "unembedded reviews are not searchable")

	assert.Equal(t, near.Id, results[0].Review.Id)
	assert.Equal(t, far.Id, results[1].Review.Id)
	assert.Greater(t, results[0].Similarity, results[1].Similarity)
}

func TestProductReviewRepository_SearchRespectsLimit(t *testing.T) {
	repo := NewProductReviewRepository()
	for i := 0; i < 5; i++ {
		seed(t, repo, "CAMERA-004", []float32{1, float32(i)})
	}

	results, err := repo.SearchSimilarWithScore(context.Background(), []float32{1, 0}, 3)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestProductReviewRepository_SearchDimensionMismatch(t *testing.T) {
	repo := NewProductReviewRepository()
	seed(t, repo, "CAMERA-004", []float32{1, 0, 0})

	_, err := repo.SearchSimilarWithScore(context.Background(), []float32{1, 0}, 3)
	assert.Error(t, err)
}

func TestProductReviewRepository_SearchCancelledContext(t *testing.T) {
	repo := NewProductReviewRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.SearchSimilarWithScore(ctx, []float32{1, 0}, 3)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProductReviewRepository_UpdateEmbeddingUnknownId(t *testing.T) {
	repo := NewProductReviewRepository()
	err := repo.UpdateEmbedding(context.Background(), uuid.New(), []float32{1}, "x", "m")
	assert.ErrorIs(t, err, contract.ErrReviewNotFound)
}

func TestProductReviewRepository_UpdateEmbeddingIsIdempotent(t *testing.T) {
	repo := NewProductReviewRepository()
	review := seed(t, repo, "LAPTOP-001", []float32{1, 0})
	require.NoError(t, repo.UpdateEmbedding(context.Background(), review.Id, []float32{1, 0}, "Product: LAPTOP-001", "test-model"))

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	stored, err := repo.FindOne(context.Background(), specification.ByID{ID: review.Id})
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, stored.Embedding)
	assert.Equal(t, "Product: LAPTOP-001", *stored.EmbeddingText)
	assert.NotNil(t, stored.UpdatedAt)
}

func TestProductReviewRepository_Specifications(t *testing.T) {
	repo := NewProductReviewRepository()
	seed(t, repo, "LAPTOP-001", []float32{1, 0})
	seed(t, repo, "LAPTOP-001", nil)
	seed(t, repo, "PHONE-002", nil)

	unembedded, err := repo.FindAll(context.Background(), specification.NotEmbedded{})
	require.NoError(t, err)
	assert.Len(t, unembedded, 2)

	laptops, err := repo.FindAll(context.Background(), specification.ByProductSku{Sku: "LAPTOP-001"})
	require.NoError(t, err)
	assert.Len(t, laptops, 2)

	page, err := repo.FindAll(context.Background(), specification.NotEmbedded{}, specification.Pagination{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, page, 1)

	missing, err := repo.FindOne(context.Background(), specification.ByID{ID: uuid.New()})
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestProductReviewRepository_SearchSkipsUnscorableVectors(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	repo := NewProductReviewRepository().WithLogger(logger.NewWithCore(core))
	good := seed(t, repo, "LAPTOP-001", []float32{1, 0})
	zero := seed(t, repo, "PHONE-002", []float32{0, 0})
	short := seed(t, repo, "CAMERA-004", []float32{1})

	results, err := repo.SearchSimilarWithScore(context.Background(), []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, good.Id, results[0].Review.Id)

	skipped := map[interface{}]bool{}
	for _, entry := range logs.All() {
		skipped[entry.ContextMap()["details"].(map[string]interface{})["review_id"]] = true
	}
	assert.True(t, skipped[zero.Id.String()])
	assert.True(t, skipped[short.Id.String()])
}

func TestProductReviewRepository_OldestFirstBreaksTiesById(t *testing.T) {
	repo := NewProductReviewRepository()
	createdAt := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	ids := []uuid.UUID{
		uuid.MustParse("cccccccc-0000-0000-0000-000000000000"),
		uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000000"),
		uuid.MustParse("bbbbbbbb-0000-0000-0000-000000000000"),
	}
	for _, id := range ids {
		require.NoError(t, repo.Create(context.Background(), &entity.ProductReview{Id: id, ProductSku: "TABLET-005", CreatedAt: createdAt}))
	}
	earlier := &entity.ProductReview{Id: uuid.New(), ProductSku: "TABLET-005", CreatedAt: createdAt.Add(-time.Hour)}
	require.NoError(t, repo.Create(context.Background(), earlier))

	var seen []uuid.UUID
	for offset := 0; offset < 4; offset += 2 {
		page, err := repo.FindAll(context.Background(), specification.OldestFirst{}, specification.Pagination{Limit: 2, Offset: offset})
		require.NoError(t, err)
		for _, r := range page {
			seen = append(seen, r.Id)
		}
	}

	assert.Equal(t, []uuid.UUID{earlier.Id, ids[1], ids[2], ids[0]}, seen)
}

func TestProductReviewRepository_ReturnsCopies(t *testing.T) {
	repo := NewProductReviewRepository()
	review := seed(t, repo, "LAPTOP-001", []float32{1, 0})

	got, err := repo.FindOne(context.Background(), specification.ByID{ID: review.Id})
	require.NoError(t, err)
	got.Embedding[0] = 42

	again, err := repo.FindOne(context.Background(), specification.ByID{ID: review.Id})
	require.NoError(t, err)
	assert.Equal(t, float32(1), again.Embedding[0])
}

func TestConversationRepository_KeepsNewestTurns(t *testing.T) {
	repo := NewConversationRepository(time.Minute, 3)
	for _, content := range []string{"a", "b", "c", "d"} {
		repo.Append("conv-1", entity.ConversationMessage{Content: content, Sender: entity.SenderUser})
	}

	turns := repo.Get("conv-1")
	require.Len(t, turns, 3)
	assert.Equal(t, "b", turns[0].Content)
	assert.Equal(t, "d", turns[2].Content)

	assert.Nil(t, repo.Get("unknown"))
	repo.Delete("conv-1")
	assert.Nil(t, repo.Get("conv-1"))
}
