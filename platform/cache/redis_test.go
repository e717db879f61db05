package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, "test", time.Minute), mr
}

func TestFetchJSONCachesLoaderResult(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return []string{"Santos", "Rotterdam"}, nil
	}

	var first, second []string
	require.NoError(t, c.FetchJSON(ctx, "ports", []string{"all"}, &first, loader))
	require.NoError(t, c.FetchJSON(ctx, "ports", []string{"all"}, &second, loader))

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
}

func TestInvalidateForcesReload(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return calls, nil
	}

	var got int
	require.NoError(t, c.FetchJSON(ctx, "airports", nil, &got, loader))
	require.NoError(t, c.Invalidate(ctx, "airports"))
	require.NoError(t, c.FetchJSON(ctx, "airports", nil, &got, loader))

	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, got)
}

func TestFetchJSONExpiresWithTTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return "x", nil
	}

	var got string
	require.NoError(t, c.FetchJSON(ctx, "ports", nil, &got, loader))
	mr.FastForward(2 * time.Minute)
	require.NoError(t, c.FetchJSON(ctx, "ports", nil, &got, loader))
	assert.Equal(t, 2, calls)
}

func TestFetchJSONFallsBackWhenRedisDown(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	var got string
	err := c.FetchJSON(context.Background(), "ports", nil, &got, func(context.Context) (any, error) {
		return "fresh", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)
}

func TestNilCacheCallsLoader(t *testing.T) {
	var c *Cache
	var got string
	require.NoError(t, c.FetchJSON(context.Background(), "ports", nil, &got, func(context.Context) (any, error) {
		return "direct", nil
	}))
	assert.Equal(t, "direct", got)
	assert.NoError(t, c.Invalidate(context.Background(), "ports"))

	boom := errors.New("boom")
	err := c.FetchJSON(context.Background(), "ports", nil, &got, func(context.Context) (any, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
}
