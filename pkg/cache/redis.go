package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "kirana:"

// Redis is a Cache backed by a Redis server. Keys are namespaced so Clear
// only touches this application's entries.
type Redis struct {
	rdb *redis.Client
}

// NewRedis connects to Redis using a URL such as redis://localhost:6379/0
// and verifies the connection with a ping.
func NewRedis(redisURL string) (*Redis, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &Redis{rdb: rdb}, nil
}

// Get retrieves a key, unmarshaling into dest when present.
func (r *Redis) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, err := r.rdb.Get(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache key %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache key %s: %w", key, err)
	}
	return true, nil
}

// Set stores a value under key for ttl.
func (r *Redis) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache key %s: %w", key, err)
	}
	return r.rdb.Set(ctx, redisKeyPrefix+key, data, ttl).Err()
}

// Clear drops every namespaced key. The keyspace is a handful of catalog
// pages, so KEYS is acceptable here.
func (r *Redis) Clear(ctx context.Context) error {
	keys, err := r.rdb.Keys(ctx, redisKeyPrefix+"*").Result()
	if err != nil {
		return fmt.Errorf("failed to list cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return r.rdb.Del(ctx, keys...).Err()
}

// Close releases the underlying Redis connection.
func (r *Redis) Close() error {
	return r.rdb.Close()
}
