// Package extractor scans rendered tables into records, following pagination
// through a PageAdvancer.
package extractor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/project-tktt/pl-crawler/internal/browser"
	"github.com/project-tktt/pl-crawler/internal/domain"
)

const defaultWaitTimeout = 10 * time.Second

// Config holds extraction limits
type Config struct {
	// WaitTimeout bounds the wait for the table container on every page
	WaitTimeout time.Duration
	// MaxPages stops pagination after this many pages (0 = no limit)
	MaxPages int
}

// PageHandler receives the records of each page as soon as it is scanned
type PageHandler func(pageNum int, records []domain.Record) error

// Extractor reads records from a page using a schema and a pagination strategy
type Extractor struct {
	schema   Schema
	advancer PageAdvancer
	config   Config
}

// NewExtractor creates an extractor. A nil advancer scans a single page.
func NewExtractor(schema Schema, advancer PageAdvancer, cfg Config) *Extractor {
	if cfg.WaitTimeout <= 0 {
		cfg.WaitTimeout = defaultWaitTimeout
	}
	if advancer == nil {
		advancer = SinglePage{}
	}
	return &Extractor{
		schema:   schema,
		advancer: advancer,
		config:   cfg,
	}
}

// Extract returns every record across all pages, in page order and row order.
// Any error discards the records gathered so far.
func (e *Extractor) Extract(ctx context.Context, page browser.Page) ([]domain.Record, error) {
	records := make([]domain.Record, 0)
	err := e.ExtractPages(ctx, page, func(_ int, pageRecords []domain.Record) error {
		records = append(records, pageRecords...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ExtractPages scans page after page, handing each page's records to handler.
// It stops when the advancer reports no further page, when a page repeats the
// previous one, or when MaxPages is reached.
func (e *Extractor) ExtractPages(ctx context.Context, page browser.Page, handler PageHandler) error {
	if err := e.schema.Validate(); err != nil {
		return err
	}

	var previous string
	for pageNum := 1; ; pageNum++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := page.WaitFor(ctx, e.schema.Container, e.config.WaitTimeout); err != nil {
			if errors.Is(err, browser.ErrTimeout) {
				return fmt.Errorf("%w: page %d: %w", ErrContentTimeout, pageNum, err)
			}
			return fmt.Errorf("wait for content on page %d: %w", pageNum, err)
		}

		if err := e.advancer.Settle(ctx, page); err != nil {
			return fmt.Errorf("settle page %d: %w", pageNum, err)
		}

		records, err := e.scan(ctx, page, pageNum)
		if err != nil {
			return err
		}

		current := fingerprint(records)
		if pageNum > 1 && current == previous {
			log.Printf("[Extractor] Page %d repeats page %d, stopping", pageNum, pageNum-1)
			return nil
		}
		previous = current

		log.Printf("[Extractor] Page %d: %d records", pageNum, len(records))
		if err := handler(pageNum, records); err != nil {
			return fmt.Errorf("handle page %d: %w", pageNum, err)
		}

		if e.config.MaxPages > 0 && pageNum >= e.config.MaxPages {
			log.Printf("[Extractor] Reached max pages (%d), stopping", e.config.MaxPages)
			return nil
		}

		more, err := e.advancer.Next(ctx, page)
		if err != nil {
			return fmt.Errorf("advance from page %d: %w", pageNum, err)
		}
		if !more {
			return nil
		}
	}
}

func (e *Extractor) scan(ctx context.Context, page browser.Page, pageNum int) ([]domain.Record, error) {
	rows, err := page.FindAll(ctx, e.schema.Row)
	if err != nil {
		return nil, fmt.Errorf("find rows on page %d: %w", pageNum, err)
	}

	records := make([]domain.Record, 0, len(rows))
	for i, row := range rows {
		record, err := e.schema.readRow(ctx, row, pageNum, i)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// fingerprint identifies a page's visible row set
func fingerprint(records []domain.Record) string {
	data, err := json.Marshal(records)
	if err != nil {
		return ""
	}
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
