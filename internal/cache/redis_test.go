package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/natours/internal/config"
)

type testTour struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func setupTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.RedisConnection{
		Address:     mr.Addr(),
		DialTimeout: time.Second,
		Timeout:     time.Second,
	}

	c, err := InitServer(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestSetAndGet(t *testing.T) {
	c, _ := setupTestCache(t)
	ctx := context.Background()

	expected := testTour{Name: "The Forest Hiker", Price: 397}
	require.NoError(t, c.Set(ctx, "tour:1", expected, time.Minute))

	var actual testTour
	found, err := c.Get(ctx, "tour:1", &actual)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, expected, actual)
}

func TestGetNotFound(t *testing.T) {
	c, _ := setupTestCache(t)

	var out testTour
	found, err := c.Get(context.Background(), "no_such_key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestExpiration(t *testing.T) {
	c, mr := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "tour:1", testTour{Name: "x"}, time.Minute))
	mr.FastForward(2 * time.Minute)

	var out testTour
	found, err := c.Get(ctx, "tour:1", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidate(t *testing.T) {
	c, _ := setupTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", "value", time.Minute))
	require.NoError(t, c.Set(ctx, "b", "value", time.Minute))
	require.NoError(t, c.Invalidate(ctx, "a", "b"))
	require.NoError(t, c.Invalidate(ctx))

	var out string
	for _, key := range []string{"a", "b"} {
		found, err := c.Get(ctx, key, &out)
		require.NoError(t, err)
		assert.False(t, found, key)
	}
}

func TestInvalidatePrefix(t *testing.T) {
	c, mr := setupTestCache(t)
	ctx := context.Background()

	for _, key := range []string{"tours:plan:2021", "tours:plan:2022", "tours:stats"} {
		require.NoError(t, c.Set(ctx, key, 1, time.Minute))
	}

	require.NoError(t, c.InvalidatePrefix(ctx, "tours:plan:"))

	assert.False(t, mr.Exists("tours:plan:2021"))
	assert.False(t, mr.Exists("tours:plan:2022"))
	assert.True(t, mr.Exists("tours:stats"))
}

func TestGetInvalidJSON(t *testing.T) {
	c, mr := setupTestCache(t)
	require.NoError(t, mr.Set("bad", "not-json"))

	var out testTour
	found, err := c.Get(context.Background(), "bad", &out)
	assert.Error(t, err)
	assert.False(t, found)
}

func TestInitServer_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = InitServer(context.Background(), config.RedisConnection{Address: addr, DialTimeout: 100 * time.Millisecond})
	assert.Error(t, err)
}

func TestNoop(t *testing.T) {
	var c Noop
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", 1, time.Minute))
	var out int
	found, err := c.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, c.Invalidate(ctx, "k"))
	assert.NoError(t, c.InvalidatePrefix(ctx, "k"))
}
