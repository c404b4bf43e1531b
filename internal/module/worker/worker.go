package worker

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/project-tktt/pl-crawler/internal/common/cleaner"
	"github.com/project-tktt/pl-crawler/internal/common/indexer"
	"github.com/project-tktt/pl-crawler/internal/common/normalizer"
	"github.com/project-tktt/pl-crawler/internal/domain"
)

// Source yields batches of raw players; an empty batch means nothing arrived in time
type Source interface {
	ConsumeBatch(ctx context.Context, maxBatch int) ([]*domain.RawPlayer, error)
}

// Worker processes players from queue and indexes to storage
type Worker struct {
	source     Source
	normalizer *normalizer.Normalizer
	cleaner    *cleaner.Cleaner
	indexer    indexer.Indexer

	batchSize   int
	concurrency int
	retryDelay  time.Duration
}

// Config holds worker configuration
type Config struct {
	Concurrency int
	BatchSize   int
	// Pause after a failed consume before asking the queue again
	RetryDelay time.Duration
}

// NewWorker creates a new worker
func NewWorker(
	source Source,
	norm *normalizer.Normalizer,
	clean *cleaner.Cleaner,
	idx indexer.Indexer,
	cfg Config,
) *Worker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}

	return &Worker{
		source:      source,
		normalizer:  norm,
		cleaner:     clean,
		indexer:     idx,
		batchSize:   cfg.BatchSize,
		concurrency: cfg.Concurrency,
		retryDelay:  cfg.RetryDelay,
	}
}

// Run starts the worker pool and blocks until ctx is cancelled
func (w *Worker) Run(ctx context.Context) error {
	log.Printf("Starting worker pool with %d workers", w.concurrency)

	var wg sync.WaitGroup
	errChan := make(chan error, w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			if err := w.runSingle(ctx, workerID); err != nil {
				errChan <- fmt.Errorf("worker %d: %w", workerID, err)
			}
		}(i)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		<-done
		return ctx.Err()
	case err := <-errChan:
		return err
	case <-done:
		return nil
	}
}

func (w *Worker) runSingle(ctx context.Context, workerID int) error {
	log.Printf("Worker %d started", workerID)

	for {
		select {
		case <-ctx.Done():
			log.Printf("Worker %d stopping", workerID)
			return nil
		default:
		}

		raws, err := w.source.ConsumeBatch(ctx, w.batchSize)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			log.Printf("Worker %d consume error: %v", workerID, err)
			select {
			case <-ctx.Done():
			case <-time.After(w.retryDelay):
			}
			continue
		}

		if len(raws) == 0 {
			continue // Timeout from BRPOP, try again
		}

		log.Printf("Worker %d processing %d players", workerID, len(raws))

		players := w.processPlayers(raws)
		if len(players) > 0 {
			if err := w.indexer.BulkIndex(ctx, players); err != nil {
				log.Printf("Worker %d index error: %v", workerID, err)
			} else {
				log.Printf("Worker %d indexed %d players", workerID, len(players))
			}
		}
	}
}

func (w *Worker) processPlayers(raws []*domain.RawPlayer) []*domain.Player {
	players := make([]*domain.Player, 0, len(raws))

	for _, raw := range raws {
		if raw.Data != nil {
			raw.Data = w.cleaner.CleanMap(raw.Data)
		}

		player, err := w.normalizer.Normalize(raw)
		if err != nil {
			log.Printf("Normalize error for %s: %v", raw.ID, err)
			continue
		}

		players = append(players, player)
	}

	return players
}
