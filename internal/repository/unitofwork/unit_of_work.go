package unitofwork

import (
	"context"

	"review-rag-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ProductReviewRepository() contract.ProductReviewRepository
}
