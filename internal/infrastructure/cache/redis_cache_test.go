package cache_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/credit-risk-service/internal/infrastructure/cache"
)

// closedAddr returns a loopback address nothing listens on.
func closedAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestRedisScoreCache_Unreachable(t *testing.T) {
	c := cache.NewRedisScoreCache(cache.RedisConfig{Addr: closedAddr(t), TTL: time.Minute})
	t.Cleanup(func() { _ = c.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, ok, err := c.Get(ctx, "credit-risk:score:abc")
	require.Error(t, err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "redis get")

	err = c.Set(ctx, "credit-risk:score:abc", 0.25)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis set")

	assert.Error(t, c.Ping(ctx))
}
