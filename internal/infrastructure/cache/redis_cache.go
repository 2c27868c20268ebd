package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures the Redis score cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisScoreCache implements oracle.ScoreCache on Redis.
type RedisScoreCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisScoreCache creates a cache client. The connection is established lazily.
func NewRedisScoreCache(cfg RedisConfig) *RedisScoreCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  500 * time.Millisecond,
		ReadTimeout:  250 * time.Millisecond,
		WriteTimeout: 250 * time.Millisecond,
		MaxRetries:   -1,
	})
	return &RedisScoreCache{client: rdb, ttl: cfg.TTL}
}

// Get returns the cached probability for key. A missing key is not an error.
func (c *RedisScoreCache) Get(ctx context.Context, key string) (float64, bool, error) {
	val, err := c.client.Get(ctx, key).Float64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("redis get: %w", err)
	}
	return val, true, nil
}

// Set stores probability under key with the configured TTL.
func (c *RedisScoreCache) Set(ctx context.Context, key string, probability float64) error {
	if err := c.client.Set(ctx, key, strconv.FormatFloat(probability, 'g', -1, 64), c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Ping checks connectivity. It backs the readiness probe.
func (c *RedisScoreCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying connections.
func (c *RedisScoreCache) Close() error {
	return c.client.Close()
}
