package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss reports that the key is absent. Any other error from Cache methods
// means the cache itself is unreachable; callers decide how to degrade.
var ErrMiss = errors.New("cache miss")

// Cache is a thin keyed byte store over Redis.
type Cache struct {
	client *redis.Client
}

// Connect parses a redis URL, opens a client and pings it. A failed ping
// still returns a usable Cache alongside the error: the store degrades to
// database reads while Redis is down, so startup must not depend on it.
func Connect(ctx context.Context, redisURL string) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return &Cache{client: client}, fmt.Errorf("ping redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// New wraps an existing client. Used by tests with a client pointed at a stub
// server, and by callers that manage the client lifecycle themselves.
func New(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete reports whether the key existed.
func (c *Cache) Delete(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Del(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis del %s: %w", key, err)
	}
	return n > 0, nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}
