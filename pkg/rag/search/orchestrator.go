package search

import (
	"context"
	"fmt"
	"sort"

	"review-rag-be/internal/entity"
	"review-rag-be/internal/pkg/logger"
	"review-rag-be/internal/repository/contract"
	"review-rag-be/internal/repository/unitofwork"
	"review-rag-be/pkg/embedding"
)

// Orchestrator embeds a query and returns matching reviews above a threshold.
type Orchestrator struct {
	embeddingProvider embedding.EmbeddingProvider
	uowFactory        unitofwork.RepositoryFactory
	candidateCap      int
	logger            logger.ILogger
}

func NewOrchestrator(embeddingProvider embedding.EmbeddingProvider, uowFactory unitofwork.RepositoryFactory, candidateCap int, log logger.ILogger) *Orchestrator {
	if candidateCap <= 0 {
		candidateCap = 100
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Orchestrator{
		embeddingProvider: embeddingProvider,
		uowFactory:        uowFactory,
		candidateCap:      candidateCap,
		logger:            log,
	}
}

// Search returns documents with score strictly greater than threshold,
// highest score first. Any failure yields an empty, non-nil slice.
func (o *Orchestrator) Search(ctx context.Context, query string, threshold float64) (docs []entity.RetrievedDocument) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("Search", "Recovered from panic during search", map[string]interface{}{
				"error": fmt.Sprint(r),
			})
			docs = []entity.RetrievedDocument{}
		}
	}()

	embeddingRes, err := o.embeddingProvider.Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		o.logger.Warn("Search", "Query embedding failed", map[string]interface{}{"error": err.Error()})
		return []entity.RetrievedDocument{}
	}

	repo := o.uowFactory.NewUnitOfWork(ctx).ProductReviewRepository()
	scored, err := repo.SearchSimilarWithScore(ctx, embeddingRes.Embedding.Values, o.candidateCap)
	if err != nil {
		o.logger.Error("Search", "Vector search failed", map[string]interface{}{"error": err.Error()})
		return []entity.RetrievedDocument{}
	}

	docs = FilterAndRank(scored, threshold)

	o.logger.Debug("Search", "Search completed", map[string]interface{}{
		"candidates": len(scored),
		"kept":       len(docs),
		"threshold":  threshold,
	})
	return docs
}

// FilterAndRank keeps candidates with Similarity > threshold and orders them
// by score, descending. Ties keep their input order.
func FilterAndRank(scored []*contract.ScoredProductReview, threshold float64) []entity.RetrievedDocument {
	docs := make([]entity.RetrievedDocument, 0, len(scored))
	for _, s := range scored {
		if s == nil || s.Review == nil || !(s.Similarity > threshold) {
			continue
		}
		content := s.Review.ReviewText
		if s.Review.EmbeddingText != nil {
			content = *s.Review.EmbeddingText
		}
		docs = append(docs, entity.RetrievedDocument{
			Content:  content,
			SourceId: s.Review.Id.String(),
			Score:    s.Similarity,
		})
	}

	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].Score > docs[j].Score
	})
	return docs
}
