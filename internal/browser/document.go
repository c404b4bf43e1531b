package browser

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/extensions"
)

// CollectorConfig holds settings for fetching static snapshots
type CollectorConfig struct {
	UserAgent      string
	ProxyURL       string
	RequestDelay   time.Duration
	RequestTimeout time.Duration
}

// NewCollector creates a Colly collector configured for snapshot fetching
func NewCollector(cfg CollectorConfig) *colly.Collector {
	c := colly.NewCollector(colly.AllowURLRevisit())
	if cfg.UserAgent != "" {
		c.UserAgent = cfg.UserAgent
	} else {
		extensions.RandomUserAgent(c)
	}
	extensions.Referer(c)

	if cfg.RequestTimeout > 0 {
		c.SetRequestTimeout(cfg.RequestTimeout)
	}

	// Configure rate limiting
	if cfg.RequestDelay > 0 {
		c.Limit(&colly.LimitRule{
			DomainGlob:  "*",
			Delay:       cfg.RequestDelay,
			RandomDelay: cfg.RequestDelay / 2,
		})
	}

	if cfg.ProxyURL != "" {
		c.SetProxy(cfg.ProxyURL)
	}

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept-Language", "en-GB,en;q=0.9")
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	})

	c.OnResponse(func(r *colly.Response) {
		if nav, ok := r.Ctx.GetAny(navigationKey).(*navigation); ok {
			nav.doc, nav.err = goquery.NewDocumentFromReader(bytes.NewReader(r.Body))
		}
	})
	c.OnError(func(r *colly.Response, err error) {
		if nav, ok := r.Ctx.GetAny(navigationKey).(*navigation); ok {
			nav.err = fmt.Errorf("colly error: %w (status: %d)", err, r.StatusCode)
		}
	})

	return c
}

// navigationKey carries a Document's pending load through the colly request context
const navigationKey = "browser.navigation"

type navigation struct {
	doc *goquery.Document
	err error
}

// Document is a static DOM snapshot. It never changes after loading, so it cannot
// scroll or click; waits succeed only if the selector is already present.
type Document struct {
	collector *colly.Collector

	mu  sync.Mutex
	doc *goquery.Document
}

// NewDocument creates an empty document that loads pages through a collector
// built by NewCollector
func NewDocument(collector *colly.Collector) *Document {
	return &Document{collector: collector}
}

// ParseDocument creates a document from an HTML string
func ParseDocument(html string) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return &Document{doc: doc}, nil
}

func (d *Document) Navigate(ctx context.Context, url string) error {
	if d.collector == nil {
		return fmt.Errorf("navigate %s: %w", url, ErrUnsupported)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	nav := &navigation{}
	reqCtx := colly.NewContext()
	reqCtx.Put(navigationKey, nav)

	if err := d.collector.Request(http.MethodGet, url, nil, reqCtx, nil); err != nil {
		return fmt.Errorf("visit %s: %w", url, err)
	}
	if nav.err != nil {
		return nav.err
	}
	if nav.doc == nil {
		return fmt.Errorf("no document loaded from %s", url)
	}

	d.mu.Lock()
	d.doc = nav.doc
	d.mu.Unlock()
	return nil
}

func (d *Document) root() (*goquery.Selection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.doc == nil {
		return nil, ErrNotLoaded
	}
	return d.doc.Selection, nil
}

func (d *Document) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	root, err := d.root()
	if err != nil {
		return err
	}
	if root.Find(selector).Length() == 0 {
		return fmt.Errorf("%w: %s", ErrTimeout, selector)
	}
	return nil
}

func (d *Document) Find(ctx context.Context, selector string) (Element, error) {
	root, err := d.root()
	if err != nil {
		return nil, err
	}
	return findFirst(ctx, root, selector)
}

func (d *Document) FindAll(ctx context.Context, selector string) ([]Element, error) {
	root, err := d.root()
	if err != nil {
		return nil, err
	}
	return findAll(ctx, root, selector)
}

func (d *Document) Evaluate(ctx context.Context, script string, out any) error {
	return fmt.Errorf("evaluate: %w", ErrUnsupported)
}

func findAll(ctx context.Context, from *goquery.Selection, selector string) ([]Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var elements []Element
	from.Find(selector).Each(func(_ int, s *goquery.Selection) {
		elements = append(elements, &selectionElement{sel: s})
	})
	return elements, nil
}

func findFirst(ctx context.Context, from *goquery.Selection, selector string) (Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := from.Find(selector).First()
	if s.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrElementNotFound, selector)
	}
	return &selectionElement{sel: s}, nil
}

type selectionElement struct {
	sel *goquery.Selection
}

func (e *selectionElement) Text(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return e.sel.Text(), nil
}

func (e *selectionElement) Attribute(ctx context.Context, name string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	value, ok := e.sel.Attr(name)
	return value, ok, nil
}

func (e *selectionElement) Find(ctx context.Context, selector string) (Element, error) {
	return findFirst(ctx, e.sel, selector)
}

func (e *selectionElement) FindAll(ctx context.Context, selector string) ([]Element, error) {
	return findAll(ctx, e.sel, selector)
}

func (e *selectionElement) Click(ctx context.Context) error {
	return fmt.Errorf("click: %w", ErrUnsupported)
}
