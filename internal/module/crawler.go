package module

import (
	"context"

	"github.com/project-tktt/pl-crawler/internal/domain"
)

// PlayerHandler is a callback function for processing players from each page
type PlayerHandler func(players []*domain.RawPlayer) error

// Crawler is the common interface for all player crawlers
type Crawler interface {
	// Crawl fetches players from the source
	Crawl(ctx context.Context) ([]*domain.RawPlayer, error)
	// CrawlWithCallback fetches players page by page and calls handler after each page
	CrawlWithCallback(ctx context.Context, handler PlayerHandler) error
	// Source returns the source identifier
	Source() domain.PlayerSource
}
