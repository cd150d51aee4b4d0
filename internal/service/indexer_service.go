package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"review-rag-be/internal/dto"
	"review-rag-be/internal/entity"
	"review-rag-be/internal/pkg/logger"
	"review-rag-be/internal/repository/contract"
	"review-rag-be/internal/repository/specification"
	"review-rag-be/internal/repository/unitofwork"
	"review-rag-be/pkg/embedding"
	"review-rag-be/pkg/events"
	"review-rag-be/pkg/vector"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

var ErrInvalidReview = errors.New("invalid review record")

var ErrZeroEmbedding = errors.New("embedding has zero magnitude")

type IIndexerService interface {
	// HandleInsertion embeds one review and writes the vector back.
	HandleInsertion(ctx context.Context, review *entity.ProductReview) error
	// Consume subscribes to the in-process insertion topic.
	Consume(ctx context.Context) error
	// HandleEvent adapts a bus event to HandleInsertion.
	HandleEvent(ctx context.Context, event events.Event) error
	// Sweep indexes every record that still has no embedding.
	Sweep(ctx context.Context) (*dto.SweepResult, error)
	RunSweeper(ctx context.Context, interval time.Duration)
	Reindex(ctx context.Context, id uuid.UUID) (*dto.ReviewResponse, error)
}

type indexerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	sweepBatch        int
	logger            logger.ILogger
}

func NewIndexerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	sweepBatch int,
	log logger.ILogger,
) IIndexerService {
	if sweepBatch <= 0 {
		sweepBatch = 100
	}
	return &indexerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		sweepBatch:        sweepBatch,
		logger:            log,
	}
}

// BuildEmbeddingText is the exact text that gets embedded and stored.
func BuildEmbeddingText(productSku, reviewText string) string {
	return fmt.Sprintf("Product: %s\nReview: %s", productSku, reviewText)
}

func (s *indexerService) HandleInsertion(ctx context.Context, review *entity.ProductReview) error {
	if review == nil || review.Id == uuid.Nil {
		return ErrInvalidReview
	}

	text := BuildEmbeddingText(review.ProductSku, review.ReviewText)

	res, err := s.embeddingProvider.Generate(ctx, text, embedding.TaskRetrievalDocument)
	if err != nil {
		s.logger.Error("Indexer", "Failed to generate embedding", map[string]interface{}{
			"review_id": review.Id.String(),
			"error":     err.Error(),
		})
		return fmt.Errorf("embed review %s: %w", review.Id, err)
	}
	if vector.IsZero(res.Embedding.Values) {
		s.logger.Error("Indexer", "Embedding backend returned a zero vector", map[string]interface{}{
			"review_id": review.Id.String(),
		})
		return fmt.Errorf("embed review %s: %w", review.Id, ErrZeroEmbedding)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	err = uow.ProductReviewRepository().UpdateEmbedding(ctx, review.Id, res.Embedding.Values, text, s.embeddingProvider.Model())
	if err != nil {
		s.logger.Error("Indexer", "Failed to store embedding", map[string]interface{}{
			"review_id": review.Id.String(),
			"error":     err.Error(),
		})
		return fmt.Errorf("store embedding for review %s: %w", review.Id, err)
	}

	s.logger.Info("Indexer", "Review indexed", map[string]interface{}{
		"review_id":   review.Id.String(),
		"product_sku": review.ProductSku,
		"dimensions":  len(res.Embedding.Values),
	})
	return nil
}

func (s *indexerService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processMessage makes one attempt per delivery and always acks, so a bad
// record never blocks the topic. Unindexed records are picked up by Sweep.
func (s *indexerService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	review, err := decodeInsertion(msg.Payload)
	if err != nil {
		s.logger.Warn("Indexer", "Dropping malformed insertion message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		return
	}

	_ = s.HandleInsertion(ctx, review)
}

func (s *indexerService) HandleEvent(ctx context.Context, event events.Event) error {
	var payload dto.ReviewInsertedMessage
	if err := events.Decode(event, &payload); err != nil {
		return err
	}
	return s.HandleInsertion(ctx, insertionToEntity(payload))
}

func decodeInsertion(data []byte) (*entity.ProductReview, error) {
	var payload dto.ReviewInsertedMessage
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return insertionToEntity(payload), nil
}

func insertionToEntity(m dto.ReviewInsertedMessage) *entity.ProductReview {
	return &entity.ProductReview{
		Id:         m.Id,
		ProductSku: m.ProductSku,
		ReviewText: m.ReviewText,
		UserId:     m.UserId,
		CreatedAt:  m.CreatedAt,
	}
}

func (s *indexerService) Sweep(ctx context.Context) (*dto.SweepResult, error) {
	result := &dto.SweepResult{}
	repo := s.uowFactory.NewUnitOfWork(ctx).ProductReviewRepository()

	// Records that fail stay unembedded, so skip past them on the next page.
	offset := 0
	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		batch, err := repo.FindAll(ctx,
			specification.NotEmbedded{},
			specification.OldestFirst{},
			specification.Pagination{Limit: s.sweepBatch, Offset: offset},
		)
		if err != nil {
			return result, fmt.Errorf("list unembedded reviews: %w", err)
		}

		for _, review := range batch {
			result.Scanned++
			if err := s.HandleInsertion(ctx, review); err != nil {
				result.Failed++
				offset++
				continue
			}
			result.Indexed++
		}

		if len(batch) < s.sweepBatch {
			break
		}
	}

	if result.Scanned > 0 {
		s.logger.Info("Indexer", "Sweep finished", map[string]interface{}{
			"scanned": result.Scanned,
			"indexed": result.Indexed,
			"failed":  result.Failed,
		})
	}
	return result, nil
}

func (s *indexerService) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error("Indexer", "Sweep failed", map[string]interface{}{"error": err.Error()})
			}
		}
	}
}

func (s *indexerService) Reindex(ctx context.Context, id uuid.UUID) (*dto.ReviewResponse, error) {
	repo := s.uowFactory.NewUnitOfWork(ctx).ProductReviewRepository()

	review, err := repo.FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, contract.ErrReviewNotFound
	}

	if err := s.HandleInsertion(ctx, review); err != nil {
		return nil, err
	}

	updated, err := repo.FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, contract.ErrReviewNotFound
	}
	return toReviewResponse(updated), nil
}

func toReviewResponse(r *entity.ProductReview) *dto.ReviewResponse {
	return &dto.ReviewResponse{
		Id:         r.Id,
		ProductSku: r.ProductSku,
		ReviewText: r.ReviewText,
		UserId:     r.UserId,
		Indexed:    r.IsIndexed(),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}
