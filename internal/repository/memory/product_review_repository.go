package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"review-rag-be/internal/entity"
	"review-rag-be/internal/pkg/logger"
	"review-rag-be/internal/repository/contract"
	"review-rag-be/internal/repository/specification"
	"review-rag-be/pkg/vector"

	"github.com/google/uuid"
)

// ProductReviewRepository keeps reviews in process memory and searches them by
// brute-force cosine similarity. Used with VECTOR_STORE=memory and in tests.
type ProductReviewRepository struct {
	mu      sync.RWMutex
	reviews map[uuid.UUID]*entity.ProductReview
	order   []uuid.UUID
	logger  logger.ILogger
}

func NewProductReviewRepository() *ProductReviewRepository {
	return &ProductReviewRepository{
		reviews: make(map[uuid.UUID]*entity.ProductReview),
		logger:  logger.NewNopLogger(),
	}
}

// WithLogger sets the logger used to report records skipped during search.
func (r *ProductReviewRepository) WithLogger(log logger.ILogger) *ProductReviewRepository {
	if log != nil {
		r.logger = log
	}
	return r
}

var _ contract.ProductReviewRepository = (*ProductReviewRepository)(nil)

func (r *ProductReviewRepository) Create(ctx context.Context, review *entity.ProductReview) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertLocked(review)
}

func (r *ProductReviewRepository) CreateBulk(ctx context.Context, reviews []*entity.ProductReview) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, review := range reviews {
		if err := r.insertLocked(review); err != nil {
			return err
		}
	}
	return nil
}

func (r *ProductReviewRepository) insertLocked(review *entity.ProductReview) error {
	if review.Id == uuid.Nil {
		review.Id = uuid.New()
	}
	if _, exists := r.reviews[review.Id]; exists {
		return fmt.Errorf("product review %s already exists", review.Id)
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now()
	}
	r.reviews[review.Id] = clone(review)
	r.order = append(r.order, review.Id)
	return nil
}

func (r *ProductReviewRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ProductReview, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *ProductReviewRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ProductReview, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*entity.ProductReview
	for _, id := range r.order {
		review := r.reviews[id]
		ok, err := matches(review, specs)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, clone(review))
		}
	}

	for _, spec := range specs {
		if _, ok := spec.(specification.OldestFirst); ok {
			sortOldestFirst(matched)
		}
	}
	for _, spec := range specs {
		if p, ok := spec.(specification.Pagination); ok {
			matched = paginate(matched, p)
		}
	}
	return matched, nil
}

func (r *ProductReviewRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	return int64(len(all)), err
}

func (r *ProductReviewRepository) UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32, embeddingText string, model string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	review, ok := r.reviews[id]
	if !ok {
		return contract.ErrReviewNotFound
	}
	now := time.Now()
	review.Embedding = append([]float32(nil), embedding...)
	review.EmbeddingText = &embeddingText
	review.EmbeddingModel = model
	review.UpdatedAt = &now
	return nil
}

func (r *ProductReviewRepository) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int) ([]*contract.ScoredProductReview, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	scored := make([]*contract.ScoredProductReview, 0, len(r.reviews))
	for _, id := range r.order {
		review := r.reviews[id]
		if len(review.Embedding) == 0 {
			continue
		}
		sim, err := vector.CosineSimilarity(embedding, review.Embedding)
		if err != nil {
			r.logger.Warn("MemoryStore", "Skipping review with unscorable embedding", map[string]interface{}{
				"review_id": id.String(),
				"error":     err.Error(),
			})
			continue
		}
		scored = append(scored, &contract.ScoredProductReview{Review: clone(review), Similarity: sim})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// matches interprets the specifications this store understands. Anything
// else is rejected so callers never get silently unfiltered results.
func matches(review *entity.ProductReview, specs []specification.Specification) (bool, error) {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if review.Id != s.ID {
				return false, nil
			}
		case specification.ByIDs:
			found := false
			for _, id := range s.IDs {
				if id == review.Id {
					found = true
					break
				}
			}
			if !found {
				return false, nil
			}
		case specification.ByProductSku:
			if review.ProductSku != s.Sku {
				return false, nil
			}
		case specification.ByUserId:
			if review.UserId != s.UserId {
				return false, nil
			}
		case specification.NotEmbedded:
			if len(review.Embedding) > 0 {
				return false, nil
			}
		case specification.Embedded:
			if len(review.Embedding) == 0 {
				return false, nil
			}
		case specification.Pagination, specification.OrderBy, specification.OldestFirst:
			// applied after filtering; insertion order stands in for OrderBy
		default:
			return false, fmt.Errorf("memory store: unsupported specification %T", spec)
		}
	}
	return true, nil
}

func sortOldestFirst(reviews []*entity.ProductReview) {
	sort.SliceStable(reviews, func(i, j int) bool {
		a, b := reviews[i], reviews[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.Id.String() < b.Id.String()
	})
}

func paginate(reviews []*entity.ProductReview, p specification.Pagination) []*entity.ProductReview {
	if p.Offset >= len(reviews) {
		return nil
	}
	reviews = reviews[p.Offset:]
	if p.Limit > 0 && p.Limit < len(reviews) {
		reviews = reviews[:p.Limit]
	}
	return reviews
}

func clone(review *entity.ProductReview) *entity.ProductReview {
	c := *review
	if review.Embedding != nil {
		c.Embedding = append([]float32(nil), review.Embedding...)
	}
	if review.EmbeddingText != nil {
		text := *review.EmbeddingText
		c.EmbeddingText = &text
	}
	return &c
}
