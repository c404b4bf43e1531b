package module

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/project-tktt/pl-crawler/internal/config"
	"github.com/project-tktt/pl-crawler/internal/domain"
)

// replayCrawler streams its pages once per attempt, like a crawl retried after a late timeout
type replayCrawler struct {
	pages    [][]*domain.RawPlayer
	attempts int
	err      error
	crawled  bool
}

func (c *replayCrawler) Crawl(ctx context.Context) ([]*domain.RawPlayer, error) {
	c.crawled = true
	var players []*domain.RawPlayer
	for _, page := range c.pages {
		players = append(players, page...)
	}
	return players, nil
}

func (c *replayCrawler) CrawlWithCallback(ctx context.Context, handler PlayerHandler) error {
	for i := 0; i < c.attempts; i++ {
		for _, page := range c.pages {
			if err := handler(page); err != nil {
				return err
			}
		}
	}
	return c.err
}

func (c *replayCrawler) Source() domain.PlayerSource {
	return domain.SourceAppearances
}

func page(num int, ids ...string) []*domain.RawPlayer {
	players := make([]*domain.RawPlayer, 0, len(ids))
	for _, id := range ids {
		players = append(players, &domain.RawPlayer{ID: id, Page: num, Version: "v1", Source: string(domain.SourceAppearances)})
	}
	return players
}

func playerIDs(players []*domain.RawPlayer) []string {
	out := make([]string, 0, len(players))
	for _, p := range players {
		out = append(out, p.ID)
	}
	return out
}

func testRedisConfig() config.RedisConfig {
	return config.RedisConfig{PlayerQueue: "test:players", DedupPrefix: "test:seen", DedupTTL: time.Hour}
}

func TestRunPublishesEachPageOnce(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	crawler := &replayCrawler{pages: [][]*domain.RawPlayer{page(1, "a", "b"), page(2, "c")}, attempts: 2}

	players, err := Run(context.Background(), crawler, client, testRedisConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, playerIDs(players))
	assert.False(t, crawler.crawled)

	queued, err := mr.List("test:players")
	require.NoError(t, err)
	assert.Len(t, queued, 3)
	assert.True(t, mr.Exists("test:seen:appearances:a"))
	assert.Equal(t, time.Hour, mr.TTL("test:seen:appearances:c"))
}

func TestRunWithoutRedis(t *testing.T) {
	crawler := &replayCrawler{pages: [][]*domain.RawPlayer{page(1, "a"), page(2, "b")}}

	players, err := Run(context.Background(), crawler, nil, testRedisConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, playerIDs(players))
	assert.True(t, crawler.crawled)
}

func TestRunCrawlError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	crawlErr := errors.New("content never loaded")
	crawler := &replayCrawler{pages: [][]*domain.RawPlayer{page(1, "a")}, attempts: 1, err: crawlErr}

	players, err := Run(context.Background(), crawler, client, testRedisConfig())
	assert.ErrorIs(t, err, crawlErr)
	assert.Nil(t, players)

	// Pages handed over before the failure are already queued
	queued, err := mr.List("test:players")
	require.NoError(t, err)
	assert.Len(t, queued, 1)
}

func TestPageCollector(t *testing.T) {
	c := NewPageCollector()
	c.Add(page(1, "a", "b"))
	c.Add(page(2, "c"))
	c.Add(page(3, "d"))
	c.Add(nil)

	// A retry starts over and ends earlier
	c.Add(page(1, "a", "b2"))
	c.Add(page(2, "c2"))

	assert.Equal(t, []string{"a", "b2", "c2"}, playerIDs(c.Players()))
	assert.Empty(t, NewPageCollector().Players())
}
