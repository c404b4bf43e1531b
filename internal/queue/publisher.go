package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/project-tktt/pl-crawler/internal/domain"
	"github.com/redis/go-redis/v9"
)

// DefaultQueue is the Redis list raw players are pushed to
const DefaultQueue = "players:raw"

// Publisher pushes raw players to Redis queue
type Publisher struct {
	client    *redis.Client
	queueName string
}

// NewPublisher creates a new queue publisher
func NewPublisher(client *redis.Client, queueName string) *Publisher {
	if queueName == "" {
		queueName = DefaultQueue
	}
	return &Publisher{
		client:    client,
		queueName: queueName,
	}
}

// PublishBatch pushes players to the queue in one round trip
func (p *Publisher) PublishBatch(ctx context.Context, players []*domain.RawPlayer) error {
	if len(players) == 0 {
		return nil
	}

	pipe := p.client.Pipeline()
	for _, player := range players {
		data, err := json.Marshal(player)
		if err != nil {
			return fmt.Errorf("marshal player: %w", err)
		}
		pipe.LPush(ctx, p.queueName, data)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("pipeline exec: %w", err)
	}

	return nil
}

// QueueLength returns the current queue length
func (p *Publisher) QueueLength(ctx context.Context) (int64, error) {
	return p.client.LLen(ctx, p.queueName).Result()
}
