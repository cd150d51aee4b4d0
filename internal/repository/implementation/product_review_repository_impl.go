package implementation

import (
	"context"
	"errors"

	"review-rag-be/internal/entity"
	"review-rag-be/internal/mapper"
	"review-rag-be/internal/model"
	"review-rag-be/internal/repository/contract"
	"review-rag-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type ProductReviewRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ProductReviewMapper
}

func NewProductReviewRepository(db *gorm.DB) contract.ProductReviewRepository {
	return &ProductReviewRepositoryImpl{
		db:     db,
		mapper: mapper.NewProductReviewMapper(),
	}
}

func (r *ProductReviewRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ProductReviewRepositoryImpl) Create(ctx context.Context, review *entity.ProductReview) error {
	m := r.mapper.ToModel(review)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*review = *r.mapper.ToEntity(m)
	return nil
}

func (r *ProductReviewRepositoryImpl) CreateBulk(ctx context.Context, reviews []*entity.ProductReview) error {
	if len(reviews) == 0 {
		return nil
	}
	models := make([]*model.ProductReview, len(reviews))
	for i, e := range reviews {
		models[i] = r.mapper.ToModel(e)
	}

	if err := r.db.WithContext(ctx).CreateInBatches(models, 100).Error; err != nil {
		return err
	}

	for i, m := range models {
		*reviews[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *ProductReviewRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ProductReview, error) {
	var m model.ProductReview
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ProductReviewRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ProductReview, error) {
	var models []*model.ProductReview
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ProductReviewRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.ProductReview{}).Count(&count).Error
	return count, err
}

func (r *ProductReviewRepositoryImpl) UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32, embeddingText string, modelName string) error {
	res := r.db.WithContext(ctx).
		Model(&model.ProductReview{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"embedding":       pgvector.NewVector(embedding),
			"embedding_text":  embeddingText,
			"embedding_model": modelName,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return contract.ErrReviewNotFound
	}
	return nil
}

func (r *ProductReviewRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int) ([]*contract.ScoredProductReview, error) {
	if limit <= 0 {
		limit = 100
	}

	// <=> is cosine distance, so 1 - distance is cosine similarity
	type result struct {
		model.ProductReview
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("product_reviews").
		Select("product_reviews.*, 1 - (embedding <=> ?) as similarity", queryVector).
		Where("embedding IS NOT NULL").
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredProductReview, len(results))
	for i := range results {
		scored[i] = &contract.ScoredProductReview{
			Review:     r.mapper.ToEntity(&results[i].ProductReview),
			Similarity: results[i].Similarity,
		}
	}
	return scored, nil
}
