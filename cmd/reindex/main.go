package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"review-rag-be/internal/bootstrap"
	"review-rag-be/internal/config"
	"review-rag-be/internal/pkg/logger"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

func main() {
	id := flag.String("id", "", "re-embed a single review by id; default sweeps every unindexed review")
	flag.Parse()

	cfg := config.Load()
	sysLogger := logger.NewConsoleLogger()
	defer sysLogger.Sync()

	container, err := bootstrap.NewContainer(cfg, sysLogger)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	defer container.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	if *id != "" {
		reviewId, err := uuid.Parse(*id)
		if err != nil {
			color.Red("Invalid review id %q", *id)
			os.Exit(2)
		}
		res, err := container.IndexerService.Reindex(ctx, reviewId)
		if err != nil {
			color.Red("Reindex failed: %v", err)
			os.Exit(1)
		}
		color.Green("Reindexed %s (%s)", res.Id, res.ProductSku)
		return
	}

	color.Cyan("Sweeping unindexed reviews...")
	res, err := container.IndexerService.Sweep(ctx)
	if err != nil {
		color.Red("Sweep stopped: %v", err)
		os.Exit(1)
	}

	color.White("Scanned: %d", res.Scanned)
	color.Green("Indexed: %d", res.Indexed)
	if res.Failed > 0 {
		color.Red("Failed:  %d", res.Failed)
		os.Exit(1)
	}
}
