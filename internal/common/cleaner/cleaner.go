package cleaner

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Cleaner strips markup from scraped text using Bluemonday
type Cleaner struct {
	policy *bluemonday.Policy
}

// NewCleaner creates a cleaner that strips ALL HTML
func NewCleaner() *Cleaner {
	return &Cleaner{policy: bluemonday.StrictPolicy()}
}

// CleanText removes all HTML and collapses whitespace. The result is plain text:
// entities are decoded exactly once here and nowhere downstream.
func (c *Cleaner) CleanText(s string) string {
	text := c.policy.Sanitize(s)
	// Sanitize re-escapes text; undo that single level
	text = html.UnescapeString(text)
	return strings.Join(strings.Fields(text), " ")
}

// CleanMap sanitizes all string values in a map
func (c *Cleaner) CleanMap(data map[string]any) map[string]any {
	result := make(map[string]any, len(data))
	for k, v := range data {
		switch val := v.(type) {
		case string:
			result[k] = c.CleanText(val)
		case map[string]any:
			result[k] = c.CleanMap(val)
		default:
			result[k] = v
		}
	}
	return result
}
