package dedup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduplicator checks and tracks seen player rows using Redis
type Deduplicator struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewDeduplicator creates a new Redis-based deduplicator
func NewDeduplicator(client *redis.Client, prefix string, ttl time.Duration) *Deduplicator {
	if prefix == "" {
		prefix = "dedup"
	}
	if ttl == 0 {
		ttl = 24 * time.Hour * 7 // A week: squads change between transfer windows
	}
	return &Deduplicator{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// CheckResult represents the result of checking a record
type CheckResult int

const (
	// ResultNew - record has never been seen
	ResultNew CheckResult = iota
	// ResultUpdated - record exists but its content changed
	ResultUpdated
	// ResultUnchanged - record exists and is unchanged
	ResultUnchanged
)

func (r CheckResult) String() string {
	switch r {
	case ResultNew:
		return "new"
	case ResultUpdated:
		return "updated"
	case ResultUnchanged:
		return "unchanged"
	}
	return fmt.Sprintf("CheckResult(%d)", int(r))
}

// CheckRecord checks if a record needs to be processed.
// version is a content hash; a different stored hash means the row changed.
func (d *Deduplicator) CheckRecord(ctx context.Context, source, id, version string) (CheckResult, error) {
	storedValue, err := d.client.Get(ctx, d.makeKey(source, id)).Result()
	if errors.Is(err, redis.Nil) {
		return ResultNew, nil
	}
	if err != nil {
		return ResultNew, fmt.Errorf("redis get: %w", err)
	}

	if storedValue != version {
		return ResultUpdated, nil
	}
	return ResultUnchanged, nil
}

// MarkSeen stores the record's version with the deduplicator TTL
func (d *Deduplicator) MarkSeen(ctx context.Context, source, id, version string) error {
	if err := d.client.Set(ctx, d.makeKey(source, id), version, d.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (d *Deduplicator) makeKey(source, id string) string {
	return fmt.Sprintf("%s:%s:%s", d.prefix, source, id)
}
