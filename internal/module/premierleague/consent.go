package premierleague

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/project-tktt/pl-crawler/internal/browser"
)

// ConsentButtonSelector is the cookie banner's accept button
const ConsentButtonSelector = "#onetrust-accept-btn-handler"

// ConsentPolicy decides what a missing cookie banner means for the crawl
type ConsentPolicy string

const (
	// ConsentWarn logs and carries on; the banner is often simply not shown
	ConsentWarn ConsentPolicy = "warn"
	// ConsentAbort fails the crawl when the banner cannot be dismissed
	ConsentAbort ConsentPolicy = "abort"
)

// ParseConsentPolicy maps a configuration value to a policy
func ParseConsentPolicy(s string) (ConsentPolicy, error) {
	switch p := ConsentPolicy(s); p {
	case ConsentWarn, ConsentAbort:
		return p, nil
	case "":
		return ConsentWarn, nil
	}
	return "", fmt.Errorf("unknown consent policy %q", s)
}

// dismissConsent accepts the cookie banner if it shows up within timeout
func dismissConsent(ctx context.Context, page browser.Page, policy ConsentPolicy, timeout time.Duration) error {
	err := page.WaitFor(ctx, ConsentButtonSelector, timeout)
	if err == nil {
		var button browser.Element
		button, err = page.Find(ctx, ConsentButtonSelector)
		if err == nil {
			err = button.Click(ctx)
		}
	}
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if policy == ConsentAbort {
		return fmt.Errorf("dismiss cookie banner: %w", err)
	}
	if errors.Is(err, browser.ErrTimeout) {
		log.Printf("[Consent] No cookie popup found")
	} else {
		log.Printf("[Consent] Could not dismiss cookie popup: %v", err)
	}
	return nil
}
