package module

import (
	"context"
	"log"

	"github.com/project-tktt/pl-crawler/internal/common/dedup"
	"github.com/project-tktt/pl-crawler/internal/domain"
)

// SeenStore tracks which player rows were already published
type SeenStore interface {
	CheckRecord(ctx context.Context, source, id, version string) (dedup.CheckResult, error)
	MarkSeen(ctx context.Context, source, id, version string) error
}

// Queue receives players for the worker
type Queue interface {
	PublishBatch(ctx context.Context, players []*domain.RawPlayer) error
}

// PublishStats counts what a publishing run did
type PublishStats struct {
	Total     int
	New       int
	Updated   int
	Unchanged int
}

// PublishHandler returns a PlayerHandler that pushes new and changed players to
// the queue and marks them seen. Unchanged players are skipped, which also
// absorbs pages delivered twice by a retried crawl.
func PublishHandler(ctx context.Context, source domain.PlayerSource, seen SeenStore, queue Queue, stats *PublishStats) PlayerHandler {
	return func(players []*domain.RawPlayer) error {
		fresh := make([]*domain.RawPlayer, 0, len(players))
		pageNew, pageUpdated := 0, 0
		for _, player := range players {
			result, err := seen.CheckRecord(ctx, string(source), player.ID, player.Version)
			if err != nil {
				log.Printf("Dedup check error: %v", err)
				continue
			}

			switch result {
			case dedup.ResultUnchanged:
				stats.Unchanged++
				continue
			case dedup.ResultUpdated:
				pageUpdated++
				log.Printf("[%s] Player %s updated, re-processing", source, player.ID)
			case dedup.ResultNew:
				pageNew++
			}
			fresh = append(fresh, player)
		}

		stats.Total += len(players)
		if len(fresh) == 0 {
			return ctx.Err()
		}

		// Unpublished players stay unseen so the next run picks them up
		if err := queue.PublishBatch(ctx, fresh); err != nil {
			log.Printf("Publish error: %v", err)
			return ctx.Err()
		}
		for _, player := range fresh {
			if err := seen.MarkSeen(ctx, string(source), player.ID, player.Version); err != nil {
				log.Printf("Mark seen error: %v", err)
			}
		}

		stats.New += pageNew
		stats.Updated += pageUpdated
		log.Printf("Crawler %s: page - %d new, %d updated, %d unchanged", source, pageNew, pageUpdated, len(players)-len(fresh))
		return ctx.Err()
	}
}
