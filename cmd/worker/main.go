package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/project-tktt/pl-crawler/internal/common/cleaner"
	"github.com/project-tktt/pl-crawler/internal/common/indexer"
	"github.com/project-tktt/pl-crawler/internal/common/normalizer"
	"github.com/project-tktt/pl-crawler/internal/config"
	"github.com/project-tktt/pl-crawler/internal/module/worker"
	"github.com/project-tktt/pl-crawler/internal/queue"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting Player Worker Service")

	// Load configuration
	cfg := config.Load()

	// Initialize Redis client
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Test Redis connection
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("Redis connection failed: %v", err)
	}
	log.Println("Redis connected")

	idx, closeIndexer, err := newIndexer(ctx, cfg)
	if err != nil {
		log.Fatalf("Indexer setup failed: %v", err)
	}
	defer closeIndexer()

	// Initialize Components
	htmlCleaner := cleaner.NewCleaner()
	norm := normalizer.NewNormalizer()
	consumer := queue.NewConsumer(rdb, cfg.Redis.PlayerQueue, 5*time.Second)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var wg sync.WaitGroup

	// Start worker pool (processes queue -> normalizes -> indexes)
	wg.Add(1)
	go func() {
		defer wg.Done()
		w := worker.NewWorker(consumer, norm, htmlCleaner, idx, worker.Config{
			Concurrency: cfg.Worker.Concurrency,
			BatchSize:   cfg.Worker.BatchSize,
			RetryDelay:  cfg.Worker.RetryDelay,
		})
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Worker error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutdown signal received, stopping...")
	cancel()

	// Wait for goroutines to finish
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("Graceful shutdown complete")
	case <-time.After(30 * time.Second):
		log.Println("Shutdown timeout, forcing exit")
	}
}

// newIndexer connects the storage backend named by WORKER_INDEXER
func newIndexer(ctx context.Context, cfg *config.Config) (indexer.Indexer, func(), error) {
	switch cfg.Worker.Indexer {
	case "postgres":
		pgIndexer, err := indexer.NewPostgresIndexer(cfg.Postgres.ConnectionString, cfg.Postgres.TableName)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		log.Println("PostgreSQL connected")
		return pgIndexer, func() { pgIndexer.Close() }, nil

	case "sqlite":
		liteIndexer, err := indexer.NewSQLiteIndexer(cfg.SQLite.Path, cfg.SQLite.TableName)
		if err != nil {
			return nil, nil, fmt.Errorf("sqlite: %w", err)
		}
		log.Printf("SQLite opened: %s", cfg.SQLite.Path)
		return liteIndexer, func() { liteIndexer.Close() }, nil

	case "elasticsearch":
		esIndexer, err := indexer.NewElasticsearchIndexer(cfg.Elasticsearch.Addresses, cfg.Elasticsearch.Index)
		if err != nil {
			return nil, nil, fmt.Errorf("elasticsearch: %w", err)
		}
		log.Printf("Elasticsearch connected, index: %s", cfg.Elasticsearch.Index)

		// Ensure index exists with proper mapping
		if err := esIndexer.EnsureIndex(ctx); err != nil {
			log.Printf("Warning: Failed to ensure index: %v", err)
		}
		return esIndexer, func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown indexer %q", cfg.Worker.Indexer)
}
