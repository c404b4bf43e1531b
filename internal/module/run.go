package module

import (
	"context"
	"log"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/project-tktt/pl-crawler/internal/common/dedup"
	"github.com/project-tktt/pl-crawler/internal/config"
	"github.com/project-tktt/pl-crawler/internal/domain"
	"github.com/project-tktt/pl-crawler/internal/queue"
)

// Run crawls once and returns every player. With a Redis client each page is
// also published through dedup and the queue as soon as it is scanned.
func Run(ctx context.Context, crawler Crawler, rdb *redis.Client, cfg config.RedisConfig) ([]*domain.RawPlayer, error) {
	if rdb == nil {
		return crawler.Crawl(ctx)
	}

	publisher := queue.NewPublisher(rdb, cfg.PlayerQueue)
	var stats PublishStats
	publish := PublishHandler(ctx, crawler.Source(),
		dedup.NewDeduplicator(rdb, cfg.DedupPrefix, cfg.DedupTTL),
		publisher,
		&stats,
	)

	pages := NewPageCollector()
	err := crawler.CrawlWithCallback(ctx, func(players []*domain.RawPlayer) error {
		pages.Add(players)
		return publish(players)
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Crawler %s: %d total, %d new, %d updated, %d unchanged",
		crawler.Source(), stats.Total, stats.New, stats.Updated, stats.Unchanged)
	if n, err := publisher.QueueLength(ctx); err == nil {
		log.Printf("Queue %s holds %d players", cfg.PlayerQueue, n)
	}
	return pages.Players(), nil
}

// PageCollector gathers streamed pages. A page number at or below the last one
// seen means the crawl started over, so it replaces that page and drops the
// ones after it.
type PageCollector struct {
	pages map[int][]*domain.RawPlayer
	last  int
}

// NewPageCollector creates an empty collector
func NewPageCollector() *PageCollector {
	return &PageCollector{pages: make(map[int][]*domain.RawPlayer)}
}

// Add records one page; empty pages carry no page number and are ignored
func (c *PageCollector) Add(players []*domain.RawPlayer) {
	if len(players) == 0 {
		return
	}
	page := players[0].Page
	if page <= c.last {
		for p := range c.pages {
			if p >= page {
				delete(c.pages, p)
			}
		}
	}
	c.pages[page] = players
	c.last = page
}

// Players returns the collected players in page order
func (c *PageCollector) Players() []*domain.RawPlayer {
	nums := make([]int, 0, len(c.pages))
	for p := range c.pages {
		nums = append(nums, p)
	}
	sort.Ints(nums)

	players := make([]*domain.RawPlayer, 0)
	for _, p := range nums {
		players = append(players, c.pages[p]...)
	}
	return players
}
