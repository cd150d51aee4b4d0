package database

import (
	"fmt"

	"gorm.io/gorm"
)

// Migrate creates the vector extension, the product_reviews table and its
// HNSW cosine index. Safe to run repeatedly.
func Migrate(db *gorm.DB, dimensions int, models ...interface{}) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		return fmt.Errorf("create pgcrypto extension: %w", err)
	}
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS vector;`).Error; err != nil {
		return fmt.Errorf("create vector extension: %w", err)
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}

	// The struct tag pins 1536; other embedding models need the column resized.
	if dimensions > 0 && dimensions != 1536 {
		alter := fmt.Sprintf(`ALTER TABLE product_reviews ALTER COLUMN embedding TYPE vector(%d);`, dimensions)
		if err := db.Exec(alter).Error; err != nil {
			return fmt.Errorf("resize embedding column: %w", err)
		}
	}

	index := `CREATE INDEX IF NOT EXISTS idx_product_reviews_embedding_hnsw
		ON product_reviews USING hnsw (embedding vector_cosine_ops);`
	if err := db.Exec(index).Error; err != nil {
		return fmt.Errorf("create hnsw index: %w", err)
	}
	return nil
}
