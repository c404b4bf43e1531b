package premierleague

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/project-tktt/pl-crawler/internal/browser"
	"github.com/project-tktt/pl-crawler/internal/common/extractor"
	"github.com/project-tktt/pl-crawler/internal/config"
	"github.com/project-tktt/pl-crawler/internal/domain"
)

func serveFixture(t *testing.T, html string) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(html))
	}))
	t.Cleanup(testServer.Close)
	return testServer, &hits
}

func readFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return string(data)
}

func staticPage() *browser.Document {
	return browser.NewDocument(browser.NewCollector(browser.CollectorConfig{UserAgent: "test"}))
}

func TestLeaderboardCrawl(t *testing.T) {
	testServer, hits := serveFixture(t, readFixture(t, "leaderboard.html"))

	c := NewLeaderboardCrawler(staticPage(), Config{})
	c.url = testServer.URL

	players, err := c.Crawl(context.Background())
	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.EqualValues(t, 1, atomic.LoadInt32(hits))

	assert.Equal(t, domain.Record{
		domain.FieldName:        "Gareth Barry",
		domain.FieldClub:        "Everton",
		domain.FieldNationality: "England",
		domain.FieldAppearances: 653,
	}, players[0].Data)
	assert.Equal(t, "Brighton & Hove Albion", players[1].Data[domain.FieldClub])
	assert.Equal(t, domain.UnknownNationality, players[1].Data[domain.FieldNationality])
	assert.Equal(t, 1632, players[1].Data[domain.FieldAppearances])

	for _, p := range players {
		assert.Equal(t, string(domain.SourceAppearances), p.Source)
		assert.Equal(t, 1, p.Page)
		assert.Equal(t, domain.PlayerID(domain.SourceAppearances, p.Data), p.ID)
		assert.NotEmpty(t, p.Version)
	}
	assert.Equal(t, domain.SourceAppearances, c.Source())
}

func TestDirectorySchema(t *testing.T) {
	testServer, _ := serveFixture(t, readFixture(t, "directory.html"))

	// A static snapshot cannot scroll, so scan it as a single page
	c := newCrawler(domain.SourcePlayers, testServer.URL, "[Players]", staticPage(), DirectorySchema(), nil, withDefaults(Config{}))

	var batches int
	var players []*domain.RawPlayer
	err := c.CrawlWithCallback(context.Background(), func(batch []*domain.RawPlayer) error {
		batches++
		players = append(players, batch...)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, batches)
	require.Len(t, players, 2)

	assert.Equal(t, "Bukayo Saka", players[0].Data.String(domain.FieldName))
	assert.Equal(t, "Midfielder", players[0].Data.String(domain.FieldPosition))
	assert.Equal(t, "England", players[0].Data.String(domain.FieldNationality))
	assert.Equal(t, domain.UnknownNationality, players[1].Data.String(domain.FieldNationality))
}

func TestCrawlRetriesContentTimeouts(t *testing.T) {
	testServer, hits := serveFixture(t, `<html><body><p>Maintenance</p></body></html>`)

	c := NewLeaderboardCrawler(staticPage(), Config{MaxRetries: 3})
	c.url = testServer.URL

	players, err := c.Crawl(context.Background())
	assert.ErrorIs(t, err, extractor.ErrContentTimeout)
	assert.Nil(t, players)
	assert.EqualValues(t, 3, atomic.LoadInt32(hits))
}

func TestCrawlDoesNotRetrySchemaDrift(t *testing.T) {
	html := strings.Replace(readFixture(t, "leaderboard.html"), `class="playerName"`, `class="playerLabel"`, 1)
	testServer, hits := serveFixture(t, html)

	c := NewLeaderboardCrawler(staticPage(), Config{MaxRetries: 3})
	c.url = testServer.URL

	_, err := c.Crawl(context.Background())
	assert.ErrorIs(t, err, extractor.ErrRequiredFieldMissing)
	assert.EqualValues(t, 1, atomic.LoadInt32(hits))
}

func TestCrawlConsentAbort(t *testing.T) {
	testServer, _ := serveFixture(t, readFixture(t, "leaderboard.html"))

	c := NewLeaderboardCrawler(staticPage(), Config{ConsentPolicy: ConsentAbort})
	c.url = testServer.URL

	_, err := c.Crawl(context.Background())
	assert.ErrorIs(t, err, browser.ErrTimeout)
	assert.NotErrorIs(t, err, extractor.ErrContentTimeout)
}

func TestParseConsentPolicy(t *testing.T) {
	p, err := ParseConsentPolicy("")
	require.NoError(t, err)
	assert.Equal(t, ConsentWarn, p)

	p, err = ParseConsentPolicy("abort")
	require.NoError(t, err)
	assert.Equal(t, ConsentAbort, p)

	_, err = ParseConsentPolicy("ignore")
	assert.Error(t, err)
}

func TestNewConfig(t *testing.T) {
	cfg, err := NewConfig(config.CrawlerConfig{
		WaitTimeout:   5 * time.Second,
		SettleDelay:   time.Second,
		MaxPages:      4,
		MaxScrolls:    50,
		MaxRetries:    2,
		ConsentPolicy: "abort",
	})
	require.NoError(t, err)
	assert.Equal(t, Config{
		WaitTimeout:   5 * time.Second,
		SettleDelay:   time.Second,
		MaxPages:      4,
		MaxScrolls:    50,
		MaxRetries:    2,
		RetryDelay:    time.Second,
		ConsentPolicy: ConsentAbort,
	}, cfg)

	_, err = NewConfig(config.CrawlerConfig{ConsentPolicy: "skip"})
	assert.Error(t, err)
}
