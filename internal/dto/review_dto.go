package dto

import (
	"time"

	"github.com/google/uuid"
)

// ReviewInsertedMessage is the insertion notification. It carries the full
// record so the indexer does not need to re-read it.
type ReviewInsertedMessage struct {
	Id         uuid.UUID `json:"id"`
	ProductSku string    `json:"productSku"`
	ReviewText string    `json:"reviewText"`
	UserId     string    `json:"userId"`
	CreatedAt  time.Time `json:"createdAt"`
}

type CreateReviewRequest struct {
	ProductSku string `json:"productSku" validate:"required,max=64"`
	ReviewText string `json:"reviewText" validate:"required"`
	UserId     string `json:"userId" validate:"required,max=64"`
}

type ReviewResponse struct {
	Id         uuid.UUID  `json:"id"`
	ProductSku string     `json:"productSku"`
	ReviewText string     `json:"reviewText"`
	UserId     string     `json:"userId"`
	Indexed    bool       `json:"indexed"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  *time.Time `json:"updatedAt"`
}

type SweepResult struct {
	Scanned int `json:"scanned"`
	Indexed int `json:"indexed"`
	Failed  int `json:"failed"`
}
