package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/project-tktt/pl-crawler/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Consumer consumes raw players from Redis queue
type Consumer struct {
	client    *redis.Client
	queueName string
	timeout   time.Duration
}

// NewConsumer creates a new queue consumer
func NewConsumer(client *redis.Client, queueName string, timeout time.Duration) *Consumer {
	if queueName == "" {
		queueName = DefaultQueue
	}
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &Consumer{
		client:    client,
		queueName: queueName,
		timeout:   timeout,
	}
}

// ConsumeBatch consumes up to maxBatch players from the queue.
// BRPOP blocks for the first item, then RPOP drains the rest without blocking.
func (c *Consumer) ConsumeBatch(ctx context.Context, maxBatch int) ([]*domain.RawPlayer, error) {
	players := make([]*domain.RawPlayer, 0, maxBatch)

	result, err := c.client.BRPop(ctx, c.timeout, c.queueName).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return players, nil // Timeout, nothing queued
		}
		return nil, fmt.Errorf("brpop: %w", err)
	}

	// BRPOP returns [queue, value]
	if len(result) >= 2 {
		if player, err := decode(result[1]); err == nil {
			players = append(players, player)
		} else {
			log.Printf("[Queue] Skipping malformed entry: %v", err)
		}
	}

	for i := 1; i < maxBatch; i++ {
		value, err := c.client.RPop(ctx, c.queueName).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				break
			}
			return players, fmt.Errorf("rpop: %w", err)
		}

		player, err := decode(value)
		if err != nil {
			log.Printf("[Queue] Skipping malformed entry: %v", err)
			continue
		}
		players = append(players, player)
	}

	return players, nil
}

func decode(value string) (*domain.RawPlayer, error) {
	var player domain.RawPlayer
	if err := json.Unmarshal([]byte(value), &player); err != nil {
		return nil, fmt.Errorf("unmarshal player: %w", err)
	}
	return &player, nil
}
