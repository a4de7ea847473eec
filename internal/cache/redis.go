package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"
)

// Redis is a Store backed by a Redis server. Every key is namespaced with a
// prefix so several deployments can share one server.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects to the server described by url. Both redis:// URLs and
// bare host:port addresses are accepted.
func NewRedis(ctx context.Context, url, prefix string) (*Redis, error) {
	opts := &redis.Options{Addr: url}
	if strings.Contains(url, "://") {
		parsed, err := redis.ParseURL(url)
		if err != nil {
			return nil, fmt.Errorf("cache.NewRedis: %w", err)
		}
		opts = parsed
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("cache.NewRedis: ping: %w", err)
	}
	return &Redis{client: client, prefix: prefix}, nil
}

// Close closes the client's connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Get decodes the value stored under the prefixed key into dst. A missing
// key reports false with a nil error.
func (r *Redis) Get(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache.Redis.Get %q: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("cache.Redis.Get %q: decode: %w", key, err)
	}
	return true, nil
}

// Put stores v under the prefixed key with no expiry.
func (r *Redis) Put(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache.Redis.Put %q: encode: %w", key, err)
	}
	if err := r.client.Set(ctx, r.prefix+key, raw, 0).Err(); err != nil {
		return fmt.Errorf("cache.Redis.Put %q: %w", key, err)
	}
	return nil
}
