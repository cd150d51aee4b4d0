package main

import (
	"log"

	"review-rag-be/internal/config"
	"review-rag-be/internal/model"
	"review-rag-be/pkg/database"
)

func main() {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, true)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Running migration for product_reviews...")
	if err := database.Migrate(db, cfg.Ai.EmbeddingDimensions, &model.ProductReview{}); err != nil {
		log.Fatalf("Error: migration failed: %v", err)
	}

	log.Println("Success: database migration completed.")
}
