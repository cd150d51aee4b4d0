package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type ProductReview struct {
	Id             uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductSku     string           `gorm:"type:varchar(64);not null;index"`
	ReviewText     string           `gorm:"type:text;not null"`
	UserId         string           `gorm:"type:varchar(64);not null;index"`
	Embedding      *pgvector.Vector `gorm:"type:vector(1536)"` // text-embedding-3-small
	EmbeddingText  *string          `gorm:"type:text"`
	EmbeddingModel string           `gorm:"type:varchar(128)"`
	CreatedAt      time.Time        `gorm:"autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"autoUpdateTime"`
}

func (ProductReview) TableName() string {
	return "product_reviews"
}
