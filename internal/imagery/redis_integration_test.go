//go:build integration

package imagery

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCache(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		url = "redis://localhost:6380/0"
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, url, time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	require.NoError(t, c.rdb.Del(ctx, imageKey("FRA")).Err())

	_, ok, err := c.Get(ctx, "FRA")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "FRA", "/images/countries/FRA.jpg"))
	u, ok, err := c.Get(ctx, "FRA")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/images/countries/FRA.jpg", u)

	ttl, err := c.rdb.TTL(ctx, imageKey("FRA")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
