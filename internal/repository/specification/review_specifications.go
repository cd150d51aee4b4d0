package specification

import "gorm.io/gorm"

type ByProductSku struct {
	Sku string
}

func (s ByProductSku) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("product_sku = ?", s.Sku)
}

type ByUserId struct {
	UserId string
}

func (s ByUserId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserId)
}

// NotEmbedded selects reviews the indexer has not processed yet.
type NotEmbedded struct{}

func (s NotEmbedded) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("embedding IS NULL")
}

// Embedded selects reviews that are searchable.
type Embedded struct{}

func (s Embedded) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("embedding IS NOT NULL")
}

// OldestFirst orders by creation time with id as tie-breaker, so offset
// pagination over it is stable.
type OldestFirst struct{}

func (s OldestFirst) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC").Order("id ASC")
}
