package contract

import (
	"context"
	"errors"

	"review-rag-be/internal/entity"
	"review-rag-be/internal/repository/specification"

	"github.com/google/uuid"
)

var ErrReviewNotFound = errors.New("product review not found")

// ScoredProductReview wraps a review with its cosine similarity to the query.
type ScoredProductReview struct {
	Review     *entity.ProductReview
	Similarity float64 // higher is more similar
}

type ProductReviewRepository interface {
	Create(ctx context.Context, review *entity.ProductReview) error
	CreateBulk(ctx context.Context, reviews []*entity.ProductReview) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ProductReview, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ProductReview, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// UpdateEmbedding writes vector, source text and model name in a single
	// statement. Returns ErrReviewNotFound when no row matches id.
	UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32, embeddingText string, model string) error
	// SearchSimilarWithScore returns up to limit embedded reviews ordered by
	// similarity descending. No threshold is applied here.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int) ([]*ScoredProductReview, error)
}
