package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"review-rag-be/internal/bootstrap"
	"review-rag-be/internal/config"
	"review-rag-be/internal/pkg/logger"
	"review-rag-be/internal/server"
	"review-rag-be/internal/tracer"
	"review-rag-be/pkg/events"
	pktNats "review-rag-be/pkg/nats"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	defer sysLogger.Sync()

	// 2. Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer(sysLogger)
	defer shutdownTracer(context.Background())

	// 3. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(cfg, sysLogger)
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Start Background Services
	if err := container.IndexerService.Consume(ctx); err != nil {
		log.Fatalf("[FATAL] indexer consumer: %v", err)
	}
	if container.NatsSubscriber != nil {
		err := container.NatsSubscriber.Subscribe(ctx, pktNats.Subject(events.TypeReviewInserted), "review-indexer", container.IndexerService.HandleEvent)
		if err != nil {
			sysLogger.Warn("Main", "NATS indexer subscription failed", map[string]interface{}{"error": err.Error()})
		}
	}
	go container.IndexerService.RunSweeper(ctx, cfg.Indexer.SweepInterval)

	// 5. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			sysLogger.Error("Main", "Server shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	// 6. Run Server
	if err := srv.Run(); err != nil {
		sysLogger.Error("Main", "Server stopped", map[string]interface{}{"error": err.Error()})
	}
}
