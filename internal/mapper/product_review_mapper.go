package mapper

import (
	"time"

	"review-rag-be/internal/entity"
	"review-rag-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type ProductReviewMapper struct{}

func NewProductReviewMapper() *ProductReviewMapper {
	return &ProductReviewMapper{}
}

func (m *ProductReviewMapper) ToEntity(r *model.ProductReview) *entity.ProductReview {
	if r == nil {
		return nil
	}

	var updatedAt *time.Time
	if !r.UpdatedAt.IsZero() {
		t := r.UpdatedAt
		updatedAt = &t
	}

	var embedding []float32
	if r.Embedding != nil {
		embedding = r.Embedding.Slice()
	}

	return &entity.ProductReview{
		Id:             r.Id,
		ProductSku:     r.ProductSku,
		ReviewText:     r.ReviewText,
		UserId:         r.UserId,
		Embedding:      embedding,
		EmbeddingText:  r.EmbeddingText,
		EmbeddingModel: r.EmbeddingModel,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      updatedAt,
	}
}

func (m *ProductReviewMapper) ToModel(r *entity.ProductReview) *model.ProductReview {
	if r == nil {
		return nil
	}

	var updatedAt time.Time
	if r.UpdatedAt != nil {
		updatedAt = *r.UpdatedAt
	}

	var embedding *pgvector.Vector
	if len(r.Embedding) > 0 {
		v := pgvector.NewVector(r.Embedding)
		embedding = &v
	}

	return &model.ProductReview{
		Id:             r.Id,
		ProductSku:     r.ProductSku,
		ReviewText:     r.ReviewText,
		UserId:         r.UserId,
		Embedding:      embedding,
		EmbeddingText:  r.EmbeddingText,
		EmbeddingModel: r.EmbeddingModel,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      updatedAt,
	}
}

func (m *ProductReviewMapper) ToEntities(reviews []*model.ProductReview) []*entity.ProductReview {
	entities := make([]*entity.ProductReview, len(reviews))
	for i, r := range reviews {
		entities[i] = m.ToEntity(r)
	}
	return entities
}
