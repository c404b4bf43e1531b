package premierleague

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/project-tktt/pl-crawler/internal/browser"
	"github.com/project-tktt/pl-crawler/internal/common/extractor"
	"github.com/project-tktt/pl-crawler/internal/domain"
	"github.com/project-tktt/pl-crawler/internal/module"
)

// Config holds premierleague.com crawl settings
type Config struct {
	WaitTimeout   time.Duration
	SettleDelay   time.Duration
	MaxPages      int
	MaxScrolls    int
	MaxRetries    int
	RetryDelay    time.Duration
	ConsentPolicy ConsentPolicy
}

// Crawler drives one premierleague.com table through a browser page
type Crawler struct {
	source    domain.PlayerSource
	url       string
	page      browser.Page
	extractor *extractor.Extractor
	config    Config
	tag       string
}

var _ module.Crawler = (*Crawler)(nil)

// NewDirectoryCrawler creates a crawler for the infinite-scroll player directory
func NewDirectoryCrawler(page browser.Page, cfg Config) *Crawler {
	cfg = withDefaults(cfg)
	advancer := extractor.NewScrollAdvancer(cfg.SettleDelay, cfg.MaxScrolls)
	return newCrawler(domain.SourcePlayers, DirectoryURL, "[Players]", page, DirectorySchema(), advancer, cfg)
}

// NewLeaderboardCrawler creates a crawler for the paginated appearances leaderboard
func NewLeaderboardCrawler(page browser.Page, cfg Config) *Crawler {
	cfg = withDefaults(cfg)
	advancer := &extractor.PagerAdvancer{
		NextSelector:  NextPageSelector,
		DisabledClass: NextPageDisabled,
		SettleDelay:   cfg.SettleDelay,
	}
	return newCrawler(domain.SourceAppearances, LeaderboardURL, "[Appearances]", page, LeaderboardSchema(), advancer, cfg)
}

func newCrawler(
	source domain.PlayerSource,
	url, tag string,
	page browser.Page,
	schema extractor.Schema,
	advancer extractor.PageAdvancer,
	cfg Config,
) *Crawler {
	return &Crawler{
		source: source,
		url:    url,
		page:   page,
		extractor: extractor.NewExtractor(schema, advancer, extractor.Config{
			WaitTimeout: cfg.WaitTimeout,
			MaxPages:    cfg.MaxPages,
		}),
		config: cfg,
		tag:    tag,
	}
}

func withDefaults(cfg Config) Config {
	if cfg.WaitTimeout <= 0 {
		cfg.WaitTimeout = 10 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 1
	}
	if cfg.ConsentPolicy == "" {
		cfg.ConsentPolicy = ConsentWarn
	}
	return cfg
}

// Source returns the source identifier
func (c *Crawler) Source() domain.PlayerSource {
	return c.source
}

// Crawl fetches every player row. A retried attempt starts over from the first page.
func (c *Crawler) Crawl(ctx context.Context) ([]*domain.RawPlayer, error) {
	var players []*domain.RawPlayer
	err := c.withRetry(ctx, func() error {
		players = nil
		return c.crawlOnce(ctx, func(batch []*domain.RawPlayer) error {
			players = append(players, batch...)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	log.Printf("%s Crawled %d players", c.tag, len(players))
	return players, nil
}

// CrawlWithCallback hands each page to handler as soon as it is scanned.
// Pages handled before a retried failure are handed over again on the next attempt.
func (c *Crawler) CrawlWithCallback(ctx context.Context, handler module.PlayerHandler) error {
	return c.withRetry(ctx, func() error {
		return c.crawlOnce(ctx, handler)
	})
}

// withRetry repeats the whole crawl on content timeouts only; schema drift is not retried
func (c *Crawler) withRetry(ctx context.Context, fn func() error) error {
	return retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(uint(c.config.MaxRetries)),
		retry.Delay(c.config.RetryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, extractor.ErrContentTimeout)
		}),
		retry.OnRetry(func(n uint, err error) {
			log.Printf("%s Attempt %d failed, retrying: %v", c.tag, n+1, err)
		}),
	)
}

func (c *Crawler) crawlOnce(ctx context.Context, handler module.PlayerHandler) error {
	log.Printf("%s Loading %s", c.tag, c.url)
	if err := c.page.Navigate(ctx, c.url); err != nil {
		return fmt.Errorf("load %s: %w", c.url, err)
	}

	if err := dismissConsent(ctx, c.page, c.config.ConsentPolicy, c.config.WaitTimeout); err != nil {
		return err
	}

	return c.extractor.ExtractPages(ctx, c.page, func(pageNum int, records []domain.Record) error {
		return handler(c.toRawPlayers(pageNum, records))
	})
}

func (c *Crawler) toRawPlayers(pageNum int, records []domain.Record) []*domain.RawPlayer {
	now := time.Now()
	players := make([]*domain.RawPlayer, 0, len(records))
	for _, r := range records {
		players = append(players, &domain.RawPlayer{
			ID:          domain.PlayerID(c.source, r),
			URL:         c.url,
			Source:      string(c.source),
			Page:        pageNum,
			Data:        r,
			Version:     domain.Version(r),
			ExtractedAt: now,
		})
	}
	return players
}
