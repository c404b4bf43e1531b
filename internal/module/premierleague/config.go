package premierleague

import (
	"github.com/project-tktt/pl-crawler/internal/config"
)

// NewConfig maps the environment crawler settings onto a crawl Config
func NewConfig(c config.CrawlerConfig) (Config, error) {
	policy, err := ParseConsentPolicy(c.ConsentPolicy)
	if err != nil {
		return Config{}, err
	}
	return Config{
		WaitTimeout:   c.WaitTimeout,
		SettleDelay:   c.SettleDelay,
		MaxPages:      c.MaxPages,
		MaxScrolls:    c.MaxScrolls,
		MaxRetries:    c.MaxRetries,
		RetryDelay:    c.SettleDelay,
		ConsentPolicy: policy,
	}, nil
}
