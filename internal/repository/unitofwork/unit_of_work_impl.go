package unitofwork

import (
	"context"
	"fmt"

	"review-rag-be/internal/repository/contract"
	"review-rag-be/internal/repository/implementation"

	"gorm.io/gorm"
)

type UnitOfWorkImpl struct {
	db *gorm.DB
	tx *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{
		db: db,
	}
}

func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	u.tx = u.db.WithContext(ctx).Begin()
	return u.tx.Error
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) ProductReviewRepository() contract.ProductReviewRepository {
	return implementation.NewProductReviewRepository(u.getDB())
}

// memoryUnitOfWork backs VECTOR_STORE=memory. Transactions are no-ops.
type memoryUnitOfWork struct {
	repo contract.ProductReviewRepository
}

func (m *memoryUnitOfWork) Begin(ctx context.Context) error { return nil }
func (m *memoryUnitOfWork) Commit() error                   { return nil }
func (m *memoryUnitOfWork) Rollback() error                 { return nil }

func (m *memoryUnitOfWork) ProductReviewRepository() contract.ProductReviewRepository {
	return m.repo
}
