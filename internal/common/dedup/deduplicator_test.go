package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeduplicatorDefaults(t *testing.T) {
	d := NewDeduplicator(nil, "", 0)
	assert.Equal(t, "dedup", d.prefix)
	assert.Equal(t, 7*24*time.Hour, d.ttl)
	assert.Equal(t, "dedup:appearances:abc", d.makeKey("appearances", "abc"))

	d = NewDeduplicator(nil, "player:seen", time.Hour)
	assert.Equal(t, "player:seen:players:abc", d.makeKey("players", "abc"))
}

func TestCheckResultString(t *testing.T) {
	assert.Equal(t, "new", ResultNew.String())
	assert.Equal(t, "updated", ResultUpdated.String())
	assert.Equal(t, "unchanged", ResultUnchanged.String())
}

func TestDeduplicatorLifecycle(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	d := NewDeduplicator(client, "player:seen", 48*time.Hour)

	result, err := d.CheckRecord(ctx, "appearances", "abc", "v1")
	require.NoError(t, err)
	assert.Equal(t, ResultNew, result)

	require.NoError(t, d.MarkSeen(ctx, "appearances", "abc", "v1"))
	assert.Equal(t, 48*time.Hour, mr.TTL("player:seen:appearances:abc"))
	stored, err := mr.Get("player:seen:appearances:abc")
	require.NoError(t, err)
	assert.Equal(t, "v1", stored)

	result, err = d.CheckRecord(ctx, "appearances", "abc", "v1")
	require.NoError(t, err)
	assert.Equal(t, ResultUnchanged, result)

	result, err = d.CheckRecord(ctx, "appearances", "abc", "v2")
	require.NoError(t, err)
	assert.Equal(t, ResultUpdated, result)

	// Sources do not share keys
	result, err = d.CheckRecord(ctx, "players", "abc", "v1")
	require.NoError(t, err)
	assert.Equal(t, ResultNew, result)

	mr.FastForward(49 * time.Hour)
	result, err = d.CheckRecord(ctx, "appearances", "abc", "v1")
	require.NoError(t, err)
	assert.Equal(t, ResultNew, result)
}

func TestDeduplicatorRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	d := NewDeduplicator(client, "", 0)
	_, err := d.CheckRecord(context.Background(), "players", "abc", "v1")
	assert.Error(t, err)
	assert.Error(t, d.MarkSeen(context.Background(), "players", "abc", "v1"))
}
