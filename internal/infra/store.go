package infra

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the delegated result cache. Values are opaque bytes so that the
// in-memory and Redis backends are interchangeable.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// MemoryStore is a process-local Store backed by Cache.
type MemoryStore struct {
	cache *Cache
}

// NewMemoryStore creates an in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cache: NewCache(time.Hour)}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.cache.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	return b, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.cache.SetWithTTL(key, value, ttl)
	return nil
}

// RedisStore is a Store shared between processes through Redis.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to the Redis instance described by rawURL
// (redis://[:password@]host:port/db) and verifies it with a PING.
func NewRedisStore(ctx context.Context, rawURL, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{client: client, prefix: prefix}, nil
}

// Key returns the namespaced Redis key for key. A trailing colon on the
// prefix is not doubled.
func (r *RedisStore) Key(key string) string {
	prefix := strings.TrimSuffix(r.prefix, ":")
	if prefix == "" {
		return key
	}
	return prefix + ":" + key
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.client.Get(ctx, r.Key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, r.Key(key), value, ttl).Err()
}

// Close releases the connection pool.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
