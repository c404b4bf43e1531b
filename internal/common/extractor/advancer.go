package extractor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/project-tktt/pl-crawler/internal/browser"
)

const (
	scrollHeightScript   = `document.body.scrollHeight`
	scrollToBottomScript = `window.scrollTo(0, document.body.scrollHeight)`

	defaultMaxScrolls = 200
)

// PageAdvancer moves a page through its content. The extractor calls Settle before
// scanning each page and Next after it.
type PageAdvancer interface {
	// Settle drives the current view until it holds every row it will hold
	Settle(ctx context.Context, page browser.Page) error
	// Next moves to the following page and reports whether there was one
	Next(ctx context.Context, page browser.Page) (bool, error)
}

// SinglePage scans the page as loaded
type SinglePage struct{}

func (SinglePage) Settle(context.Context, browser.Page) error { return nil }

func (SinglePage) Next(context.Context, browser.Page) (bool, error) { return false, nil }

// ScrollAdvancer loads an infinite-scroll table by scrolling to the bottom until the
// document height stops growing. All rows end up in one view, so there is no next page.
type ScrollAdvancer struct {
	SettleDelay time.Duration
	MaxScrolls  int
}

// NewScrollAdvancer creates a scroll advancer, capping runaway pages at a default scroll count
func NewScrollAdvancer(settleDelay time.Duration, maxScrolls int) *ScrollAdvancer {
	if maxScrolls <= 0 {
		maxScrolls = defaultMaxScrolls
	}
	return &ScrollAdvancer{SettleDelay: settleDelay, MaxScrolls: maxScrolls}
}

func (a *ScrollAdvancer) Settle(ctx context.Context, page browser.Page) error {
	last, err := scrollHeight(ctx, page)
	if err != nil {
		return err
	}

	for i := 1; a.MaxScrolls <= 0 || i <= a.MaxScrolls; i++ {
		if err := page.Evaluate(ctx, scrollToBottomScript, nil); err != nil {
			return fmt.Errorf("scroll: %w", err)
		}
		if err := sleep(ctx, a.SettleDelay); err != nil {
			return err
		}

		height, err := scrollHeight(ctx, page)
		if err != nil {
			return err
		}
		if height <= last {
			log.Printf("[Extractor] Scroll height settled at %d after %d scrolls", height, i)
			return nil
		}
		last = height
	}

	log.Printf("[Extractor] Reached %d scrolls with height still growing (%d), scanning what loaded", a.MaxScrolls, last)
	return nil
}

func (a *ScrollAdvancer) Next(context.Context, browser.Page) (bool, error) {
	return false, nil
}

func scrollHeight(ctx context.Context, page browser.Page) (int64, error) {
	var height int64
	if err := page.Evaluate(ctx, scrollHeightScript, &height); err != nil {
		return 0, fmt.Errorf("measure scroll height: %w", err)
	}
	return height, nil
}

// PagerAdvancer follows an explicit "next page" control until it is missing or disabled
type PagerAdvancer struct {
	NextSelector  string
	DisabledClass string
	SettleDelay   time.Duration
}

func (a *PagerAdvancer) Settle(context.Context, browser.Page) error { return nil }

func (a *PagerAdvancer) Next(ctx context.Context, page browser.Page) (bool, error) {
	next, err := page.Find(ctx, a.NextSelector)
	if errors.Is(err, browser.ErrElementNotFound) {
		log.Printf("[Extractor] No next page found (%s), stopping", a.NextSelector)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("find next page control: %w", err)
	}

	class, _, err := next.Attribute(ctx, "class")
	if err != nil {
		return false, fmt.Errorf("read next page control class: %w", err)
	}
	if hasClass(class, a.DisabledClass) {
		log.Printf("[Extractor] Next page control is %s, stopping", a.DisabledClass)
		return false, nil
	}

	if err := next.Click(ctx); err != nil {
		return false, fmt.Errorf("click next page: %w", err)
	}
	if err := sleep(ctx, a.SettleDelay); err != nil {
		return false, err
	}
	return true, nil
}

func hasClass(classAttr, class string) bool {
	if class == "" {
		return false
	}
	for _, c := range strings.Fields(classAttr) {
		if c == class {
			return true
		}
	}
	return false
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
