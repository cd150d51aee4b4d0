package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"os"
	"time"

	"review-rag-be/internal/bootstrap"
	"review-rag-be/internal/config"
	"review-rag-be/internal/pkg/logger"

	"github.com/fatih/color"
)

func main() {
	count := flag.Int("n", 100, "number of reviews to generate")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	index := flag.Bool("index", false, "embed the new reviews immediately instead of waiting for the indexer")
	flag.Parse()

	cfg := config.Load()
	sysLogger := logger.NewConsoleLogger()
	defer sysLogger.Sync()

	container, err := bootstrap.NewContainer(cfg, sysLogger)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	defer container.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	color.Cyan("Generating %d product reviews...", *count)
	batch := generateReviews(rand.New(rand.NewSource(*seed)), *count, time.Now())

	if err := container.ReviewService.Import(ctx, batch.Reviews); err != nil {
		color.Red("Failed to insert reviews: %v", err)
		os.Exit(1)
	}
	color.Green("Inserted %d reviews", len(batch.Reviews))

	skus := make(map[string]int)
	users := make(map[string]struct{})
	for _, r := range batch.Reviews {
		skus[r.ProductSku]++
		users[r.UserId] = struct{}{}
	}

	color.White("\nReview statistics:")
	color.Green("  positive: %d", batch.BySentiment[positive])
	color.Yellow("  neutral:  %d", batch.BySentiment[neutral])
	color.Red("  negative: %d", batch.BySentiment[negative])
	color.White("\nUnique SKUs: %d, unique users: %d", len(skus), len(users))
	for _, sku := range productSkus {
		if n := skus[sku]; n > 0 {
			color.White("  %-15s %d", sku, n)
		}
	}

	if *index {
		color.Cyan("\nIndexing new reviews...")
		res, err := container.IndexerService.Sweep(ctx)
		if err != nil {
			color.Red("Sweep stopped: %v", err)
			os.Exit(1)
		}
		color.Green("Indexed %d/%d (failed %d)", res.Indexed, res.Scanned, res.Failed)
	}
}
