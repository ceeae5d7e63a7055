package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestRedisLimiter_FixedWindow(t *testing.T) {
	client, mr := setupRedis(t)
	l := NewRedisLimiter(client, 3, time.Hour)
	ctx := context.Background()

	for i, wantRemaining := range []int{2, 1, 0} {
		res, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d", i+1)
		assert.Equal(t, 3, res.Limit)
		assert.Equal(t, wantRemaining, res.Remaining)
	}

	res, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, time.Hour, res.RetryAfter)

	other, err := l.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, other.Allowed, "clients are counted separately")

	mr.FastForward(time.Hour + time.Second)
	res, err = l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed, "new window")
	assert.Equal(t, 2, res.Remaining)
}

func TestRedisLimiter_RestoresMissingExpiry(t *testing.T) {
	client, mr := setupRedis(t)
	l := NewRedisLimiter(client, 100, time.Hour)
	require.NoError(t, mr.Set(keyPrefix+"10.0.0.1", "5"))

	res, err := l.Allow(context.Background(), "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 94, res.Remaining)
	assert.Equal(t, time.Hour, mr.TTL(keyPrefix+"10.0.0.1"))
}

func TestRedisLimiter_RedisDown(t *testing.T) {
	client, mr := setupRedis(t)
	mr.Close()

	_, err := NewRedisLimiter(client, 3, time.Hour).Allow(context.Background(), "10.0.0.1")
	assert.Error(t, err)
}

func TestMemoryLimiter(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(3, time.Hour)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d", i+1)
		assert.Equal(t, 2-i, res.Remaining)
	}

	res, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 20*time.Minute, res.RetryAfter)

	now = now.Add(20 * time.Minute)
	res, err = l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestMemoryLimiter_ForgetsIdleClients(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(3, time.Hour)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	_, _ = l.Allow(ctx, "a")
	_, _ = l.Allow(ctx, "b")
	assert.Len(t, l.clients, 2)

	now = now.Add(2 * time.Hour)
	_, _ = l.Allow(ctx, "c")
	assert.Len(t, l.clients, 1)
}
