package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fire-dispatch-service/internal/domain"
	"fire-dispatch-service/internal/platform/obs"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisPlanCache stores decision lists as JSON strings under their plan key.
// A zero TTL keeps entries until evicted.
type RedisPlanCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisPlanCache(client *redis.Client, ttl time.Duration) *RedisPlanCache {
	return &RedisPlanCache{client: client, ttl: ttl}
}

// NewRedisPlanCacheFromURL parses a redis:// URL and verifies the connection.
func NewRedisPlanCacheFromURL(ctx context.Context, url string, ttl time.Duration) (*RedisPlanCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis plan cache: parse url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis plan cache: ping: %w", err)
	}

	return NewRedisPlanCache(client, ttl), nil
}

func (r *RedisPlanCache) Get(ctx context.Context, key string) (_ []domain.Decision, _ bool, err error) {
	defer obs.Time(ctx, "plan.cache.redis.Get")(&err)

	if r.client == nil {
		return nil, false, errors.New("plan cache: redis client is nil")
	}

	raw, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get plan cache %q: %w", key, err)
	}

	var decisions []domain.Decision
	if err := json.Unmarshal(raw, &decisions); err != nil {
		return nil, false, fmt.Errorf("get plan cache %q: decode: %w", key, err)
	}

	return decisions, true, nil
}

func (r *RedisPlanCache) Put(ctx context.Context, key string, decisions []domain.Decision) error {
	if r.client == nil {
		return errors.New("plan cache: redis client is nil")
	}
	if key == "" {
		return errors.New("put plan cache: key must not be empty")
	}

	raw, err := json.Marshal(decisions)
	if err != nil {
		return fmt.Errorf("put plan cache %q: encode: %w", key, err)
	}

	if err := r.client.Set(ctx, key, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("put plan cache %q: %w", key, err)
	}
	return nil
}

func (r *RedisPlanCache) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
