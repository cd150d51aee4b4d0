package entity

import (
	"time"

	"github.com/google/uuid"
)

// ProductReview is a review record. Embedding, EmbeddingText and
// EmbeddingModel are filled in asynchronously by the indexer and are either
// all empty or all set.
type ProductReview struct {
	Id             uuid.UUID
	ProductSku     string
	ReviewText     string
	UserId         string
	Embedding      []float32
	EmbeddingText  *string
	EmbeddingModel string
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

func (r *ProductReview) IsIndexed() bool {
	return r.EmbeddingText != nil && len(r.Embedding) > 0
}
