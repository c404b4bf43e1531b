// Package browser defines the page-driving capabilities the extractor depends on,
// with a chromedp-backed live implementation and a goquery-backed static one.
package browser

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrElementNotFound is returned by Find when no element matches the selector
	ErrElementNotFound = errors.New("element not found")
	// ErrTimeout is returned by WaitFor when the selector never becomes present
	ErrTimeout = errors.New("timed out waiting for element")
	// ErrUnsupported is returned for actions the implementation cannot perform
	ErrUnsupported = errors.New("action not supported")
	// ErrNotLoaded is returned when the page has no document yet
	ErrNotLoaded = errors.New("page not loaded")
)

// Element is a handle to one DOM node on a page
type Element interface {
	// Text returns the rendered text of the element
	Text(ctx context.Context) (string, error)
	// Attribute returns the attribute value and whether it is present
	Attribute(ctx context.Context, name string) (string, bool, error)
	// Find returns the first descendant matching the CSS selector, or ErrElementNotFound
	Find(ctx context.Context, selector string) (Element, error)
	// FindAll returns all descendants matching the CSS selector (possibly none)
	FindAll(ctx context.Context, selector string) ([]Element, error)
	// Click activates the element
	Click(ctx context.Context) error
}

// Page is an interactive page handle. It is owned by one caller at a time.
type Page interface {
	// Navigate loads the URL into the page
	Navigate(ctx context.Context, url string) error
	// WaitFor blocks until the selector is present or the timeout elapses (ErrTimeout)
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error
	// Find returns the first element matching the CSS selector, or ErrElementNotFound
	Find(ctx context.Context, selector string) (Element, error)
	// FindAll returns all elements matching the CSS selector (possibly none)
	FindAll(ctx context.Context, selector string) ([]Element, error)
	// Evaluate runs a script expression and decodes its result into out (may be nil)
	Evaluate(ctx context.Context, script string, out any) error
}
