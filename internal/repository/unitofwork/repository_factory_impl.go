package unitofwork

import (
	"context"

	"review-rag-be/internal/repository/contract"

	"gorm.io/gorm"
)

type RepositoryFactoryImpl struct {
	db *gorm.DB
}

func NewRepositoryFactory(db *gorm.DB) RepositoryFactory {
	return &RepositoryFactoryImpl{
		db: db,
	}
}

func (f *RepositoryFactoryImpl) NewUnitOfWork(ctx context.Context) UnitOfWork {
	return NewUnitOfWork(f.db)
}

type memoryRepositoryFactory struct {
	repo contract.ProductReviewRepository
}

// NewMemoryRepositoryFactory shares one in-process repository across all
// units of work.
func NewMemoryRepositoryFactory(repo contract.ProductReviewRepository) RepositoryFactory {
	return &memoryRepositoryFactory{repo: repo}
}

func (f *memoryRepositoryFactory) NewUnitOfWork(ctx context.Context) UnitOfWork {
	return &memoryUnitOfWork{repo: f.repo}
}
