package iocache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/semiconip/patentspike/internal/contract"
	"github.com/semiconip/patentspike/schema"
)

// redisKeyPrefix namespaces every cache entry written to Redis.
const redisKeyPrefix = "patentspike:cache:"

const redisOpTimeout = 5 * time.Second

// redisEntry is the JSON envelope stored under each key.
type redisEntry struct {
	Value     []byte `json:"value"`
	Version   int    `json:"version"`
	Timestamp int64  `json:"timestamp"`
}

// RedisCacheStore keeps cached responses in Redis with a server-side TTL.
type RedisCacheStore struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

var _ contract.CacheStore = &RedisCacheStore{} // Compile-time check

// NewRedisCacheStore connects to the Redis instance at rawURL (redis://host:port/db).
func NewRedisCacheStore(rawURL string, ttl time.Duration) (*RedisCacheStore, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return newRedisCacheStore(rdb, ttl), nil
}

func newRedisCacheStore(rdb redis.UniversalClient, ttl time.Duration) *RedisCacheStore {
	return &RedisCacheStore{rdb: rdb, prefix: redisKeyPrefix, ttl: ttl}
}

func (rs *RedisCacheStore) fullKey(key string) string {
	return rs.prefix + key
}

// Get retrieves a value by key. A missing key returns sql.ErrNoRows like the SQL store.
func (rs *RedisCacheStore) Get(key string) ([]byte, int, int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	raw, err := rs.rdb.Get(ctx, rs.fullKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, 0, 0, sql.ErrNoRows
	}
	if err != nil {
		return nil, 0, 0, err
	}
	var entry redisEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, 0, 0, fmt.Errorf("corrupt redis cache entry %q: %w", key, err)
	}
	return entry.Value, entry.Version, entry.Timestamp, nil
}

// Set stores the value with the configured TTL.
func (rs *RedisCacheStore) Set(key string, value []byte, version int, timestamp int64) error {
	payload, err := json.Marshal(redisEntry{Value: value, Version: version, Timestamp: timestamp})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	return rs.rdb.Set(ctx, rs.fullKey(key), payload, rs.ttl).Err()
}

// GetStatus counts the cache keys under the prefix.
func (rs *RedisCacheStore) GetStatus() (schema.CacheStatus, error) {
	status := schema.CacheStatus{Backend: string(schema.RedisBackend), Connected: true}
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	var cursor uint64
	for {
		keys, next, err := rs.rdb.Scan(ctx, cursor, rs.prefix+"*", 100).Result()
		if err != nil {
			return status, fmt.Errorf("failed to scan cache keys: %w", err)
		}
		status.TotalEntries += len(keys)
		if next == 0 {
			break
		}
		cursor = next
	}
	return status, nil
}

// Clear deletes every key under the prefix and returns how many were removed.
func (rs *RedisCacheStore) Clear() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	removed := 0
	var cursor uint64
	for {
		keys, next, err := rs.rdb.Scan(ctx, cursor, rs.prefix+"*", 100).Result()
		if err != nil {
			return removed, fmt.Errorf("failed to scan cache keys: %w", err)
		}
		if len(keys) > 0 {
			n, err := rs.rdb.Del(ctx, keys...).Result()
			if err != nil {
				return removed, fmt.Errorf("failed to delete cache keys: %w", err)
			}
			removed += int(n)
		}
		if next == 0 {
			return removed, nil
		}
		cursor = next
	}
}

// Close closes the Redis client.
func (rs *RedisCacheStore) Close() error {
	return rs.rdb.Close()
}
