package service

import (
	"context"
	"encoding/json"
	"time"

	"review-rag-be/internal/dto"
	"review-rag-be/internal/entity"
	"review-rag-be/internal/pkg/logger"
	"review-rag-be/internal/repository/contract"
	"review-rag-be/internal/repository/specification"
	"review-rag-be/internal/repository/unitofwork"
	"review-rag-be/pkg/events"

	"github.com/google/uuid"
)

// EventPublisher is satisfied by the NATS publisher.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type IReviewService interface {
	Create(ctx context.Context, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error)
	// Import stores pre-built records (seeding, backfill) and notifies the
	// indexer for each of them.
	Import(ctx context.Context, reviews []*entity.ProductReview) error
	Show(ctx context.Context, id uuid.UUID) (*dto.ReviewResponse, error)
	List(ctx context.Context, productSku string, limit, offset int) ([]*dto.ReviewResponse, error)
}

type reviewService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	eventPublisher   EventPublisher
	logger           logger.ILogger
}

// NewReviewService accepts a nil eventPublisher when NATS is not configured.
func NewReviewService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	eventPublisher EventPublisher,
	log logger.ILogger,
) IReviewService {
	return &reviewService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		logger:           log,
	}
}

func (s *reviewService) Create(ctx context.Context, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	review := &entity.ProductReview{
		Id:         uuid.New(),
		ProductSku: req.ProductSku,
		ReviewText: req.ReviewText,
		UserId:     req.UserId,
		CreatedAt:  time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ProductReviewRepository().Create(ctx, review); err != nil {
		return nil, err
	}

	// The review is stored; a lost notification is recovered by the sweeper.
	if err := s.notify(ctx, review); err != nil {
		s.logger.Warn("ReviewService", "Insertion notification failed, leaving review to the sweeper", map[string]interface{}{
			"review_id": review.Id.String(),
			"error":     err.Error(),
		})
	}

	return toReviewResponse(review), nil
}

func (s *reviewService) Import(ctx context.Context, reviews []*entity.ProductReview) error {
	if len(reviews) == 0 {
		return nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ProductReviewRepository().CreateBulk(ctx, reviews); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	for _, review := range reviews {
		if err := s.notify(ctx, review); err != nil {
			s.logger.Warn("ReviewService", "Insertion notification failed, leaving review to the sweeper", map[string]interface{}{
				"review_id": review.Id.String(),
				"error":     err.Error(),
			})
		}
	}
	return nil
}

// notify prefers the NATS bus so indexers in other processes see the
// insertion, and falls back to the in-process topic when NATS is absent or
// failing. Records missed by both are picked up by the sweeper.
func (s *reviewService) notify(ctx context.Context, review *entity.ProductReview) error {
	payload := dto.ReviewInsertedMessage{
		Id:         review.Id,
		ProductSku: review.ProductSku,
		ReviewText: review.ReviewText,
		UserId:     review.UserId,
		CreatedAt:  review.CreatedAt,
	}

	msgJson, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	if s.eventPublisher != nil {
		evt := events.BaseEvent{
			Type:       events.TypeReviewInserted,
			Data:       msgJson,
			OccurredAt: time.Now(),
		}
		err := s.eventPublisher.Publish(ctx, evt)
		if err == nil {
			return nil
		}
		s.logger.Warn("ReviewService", "Failed to publish insertion event, using in-process topic", map[string]interface{}{
			"review_id": review.Id.String(),
			"error":     err.Error(),
		})
	}

	return s.publisherService.Publish(ctx, msgJson)
}

func (s *reviewService) Show(ctx context.Context, id uuid.UUID) (*dto.ReviewResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	review, err := uow.ProductReviewRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, contract.ErrReviewNotFound
	}
	return toReviewResponse(review), nil
}

func (s *reviewService) List(ctx context.Context, productSku string, limit, offset int) ([]*dto.ReviewResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	specs := []specification.Specification{
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	}
	if productSku != "" {
		specs = append(specs, specification.ByProductSku{Sku: productSku})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	reviews, err := uow.ProductReviewRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.ReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		res = append(res, toReviewResponse(r))
	}
	return res, nil
}
