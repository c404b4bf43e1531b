package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
)

// ChromeConfig holds headless Chrome settings
type ChromeConfig struct {
	Headless  bool
	UserAgent string
	ProxyURL  string
	// Timeout bounds the lifetime of the whole browser session (0 = none)
	Timeout time.Duration
}

// Chrome drives a single Chrome tab through the DevTools protocol
type Chrome struct {
	ctx     context.Context
	cancels []context.CancelFunc
}

// NewChrome starts a Chrome process and opens a tab
func NewChrome(cfg ChromeConfig) (*Chrome, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	if cfg.ProxyURL != "" {
		opts = append(opts, chromedp.ProxyServer(cfg.ProxyURL))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)
	ctx, cancelTab := chromedp.NewContext(allocCtx)
	c := &Chrome{ctx: ctx, cancels: []context.CancelFunc{cancelTab, cancelAlloc}}

	if cfg.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		c.ctx, cancelTimeout = context.WithTimeout(ctx, cfg.Timeout)
		c.cancels = append([]context.CancelFunc{cancelTimeout}, c.cancels...)
	}

	// Start the browser eagerly so launch failures surface here
	if err := chromedp.Run(c.ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("start chrome: %w", err)
	}
	return c, nil
}

// Close shuts down the tab and the browser process
func (c *Chrome) Close() {
	for _, cancel := range c.cancels {
		cancel()
	}
}

func (c *Chrome) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	actx, cancel := withCaller(c.ctx, ctx)
	defer cancel()

	err := chromedp.Run(actx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// withCaller derives an action context from the browser session that is also
// cancelled when the caller's ctx is done
func withCaller(session, caller context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(session)
	stop := context.AfterFunc(caller, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (c *Chrome) Navigate(ctx context.Context, url string) error {
	if err := c.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (c *Chrome) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	actx, cancelAction := withCaller(c.ctx, ctx)
	defer cancelAction()
	waitCtx, cancel := context.WithTimeout(actx, timeout)
	defer cancel()

	err := chromedp.Run(waitCtx, chromedp.WaitReady(selector, chromedp.ByQuery))
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s after %s", ErrTimeout, selector, timeout)
	}
	if err != nil {
		return fmt.Errorf("wait for %s: %w", selector, err)
	}
	return nil
}

func (c *Chrome) Find(ctx context.Context, selector string) (Element, error) {
	return c.findFirst(ctx, selector, nil)
}

func (c *Chrome) FindAll(ctx context.Context, selector string) ([]Element, error) {
	return c.findAll(ctx, selector, nil)
}

func (c *Chrome) Evaluate(ctx context.Context, script string, out any) error {
	if err := c.run(ctx, chromedp.Evaluate(script, out)); err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	return nil
}

// findAll never blocks: AtLeast(0) makes an empty match a valid result
func (c *Chrome) findAll(ctx context.Context, selector string, from *cdp.Node) ([]Element, error) {
	opts := []chromedp.QueryOption{chromedp.ByQueryAll, chromedp.AtLeast(0)}
	if from != nil {
		opts = append(opts, chromedp.FromNode(from))
	}

	var nodes []*cdp.Node
	if err := c.run(ctx, chromedp.Nodes(selector, &nodes, opts...)); err != nil {
		return nil, fmt.Errorf("query %s: %w", selector, err)
	}

	elements := make([]Element, 0, len(nodes))
	for _, n := range nodes {
		elements = append(elements, &chromeElement{chrome: c, node: n})
	}
	return elements, nil
}

func (c *Chrome) findFirst(ctx context.Context, selector string, from *cdp.Node) (Element, error) {
	elements, err := c.findAll(ctx, selector, from)
	if err != nil {
		return nil, err
	}
	if len(elements) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrElementNotFound, selector)
	}
	return elements[0], nil
}

type chromeElement struct {
	chrome *Chrome
	node   *cdp.Node
}

func (e *chromeElement) Text(ctx context.Context) (string, error) {
	var text string
	err := e.chrome.run(ctx, chromedp.JavascriptAttribute(
		[]cdp.NodeID{e.node.NodeID}, "innerText", &text, chromedp.ByNodeID,
	))
	if err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}
	return text, nil
}

func (e *chromeElement) Attribute(ctx context.Context, name string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	// Node attributes are kept in sync with the DOM by chromedp
	value, ok := e.node.Attribute(name)
	return value, ok, nil
}

func (e *chromeElement) Find(ctx context.Context, selector string) (Element, error) {
	return e.chrome.findFirst(ctx, selector, e.node)
}

func (e *chromeElement) FindAll(ctx context.Context, selector string) ([]Element, error) {
	return e.chrome.findAll(ctx, selector, e.node)
}

func (e *chromeElement) Click(ctx context.Context) error {
	if err := e.chrome.run(ctx, chromedp.MouseClickNode(e.node)); err != nil {
		return fmt.Errorf("click: %w", err)
	}
	return nil
}
