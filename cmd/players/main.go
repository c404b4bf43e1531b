package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/project-tktt/pl-crawler/internal/browser"
	"github.com/project-tktt/pl-crawler/internal/common/stats"
	"github.com/project-tktt/pl-crawler/internal/config"
	"github.com/project-tktt/pl-crawler/internal/domain"
	"github.com/project-tktt/pl-crawler/internal/module"
	"github.com/project-tktt/pl-crawler/internal/module/premierleague"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting Player Directory Crawler")

	if err := run(config.Load()); err != nil {
		log.Fatalf("Player directory crawl failed: %v", err)
	}
}

func run(cfg *config.Config) error {
	crawlCfg, err := premierleague.NewConfig(cfg.Crawler)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var rdb *redis.Client
	if cfg.Crawler.Publish {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis connection: %w", err)
		}
		log.Println("Redis connected")
	}

	chrome, err := browser.NewChrome(browser.ChromeConfig{
		Headless:  cfg.Crawler.Headless,
		UserAgent: cfg.Crawler.UserAgent,
		ProxyURL:  cfg.Crawler.ProxyURL,
		Timeout:   cfg.Crawler.SessionTimeout,
	})
	if err != nil {
		return err
	}
	defer chrome.Close()

	players, err := module.Run(ctx, premierleague.NewDirectoryCrawler(chrome, crawlCfg), rdb, cfg.Redis)
	if err != nil {
		return err
	}

	records := make([]domain.Record, 0, len(players))
	for _, p := range players {
		records = append(records, p.Data)
	}
	stats.RenderCounts(os.Stdout, "Country", "Players", stats.CountBy(records, domain.FieldNationality))
	return nil
}
