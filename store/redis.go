package store

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	admsg "github.com/beautyflow/admsg-sdk-go"
)

// RedisResultCache implements admsg.ResultCache using Redis, so repeated
// generation requests can be served across process restarts and shared
// between instances. Values are stored as JSON under
// "{prefix}:{request key}".
type RedisResultCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// RedisCacheConfig configures the Redis result cache.
type RedisCacheConfig struct {
	Prefix string        // key prefix, default "admsg"
	TTL    time.Duration // entry TTL, default 24h; 0 keeps the default
}

// NewRedisResultCache creates a ResultCache backed by Redis. Works with
// Client, ClusterClient, and Ring.
func NewRedisResultCache(client redis.UniversalClient, config ...RedisCacheConfig) *RedisResultCache {
	cfg := RedisCacheConfig{Prefix: "admsg", TTL: 24 * time.Hour}
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "admsg"
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &RedisResultCache{
		client: client,
		prefix: cfg.Prefix,
		ttl:    cfg.TTL,
	}
}

func (r *RedisResultCache) key(key string) string {
	return r.prefix + ":" + key
}

// Get returns the cached result for key, or false when absent. Redis
// errors are logged and treated as a miss so the pipeline regenerates.
func (r *RedisResultCache) Get(ctx context.Context, key string) (*admsg.GenerationResult, bool) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[RedisResultCache] get failed: %v", err)
		}
		return nil, false
	}
	var result admsg.GenerationResult
	if err := json.Unmarshal(data, &result); err != nil {
		log.Printf("[RedisResultCache] corrupt entry for %q: %v", key, err)
		r.client.Del(ctx, r.key(key))
		return nil, false
	}
	return &result, true
}

// Set stores the result under key with the configured TTL. Failures are
// logged; caching is best-effort.
func (r *RedisResultCache) Set(ctx context.Context, key string, result *admsg.GenerationResult) {
	data, err := json.Marshal(result)
	if err != nil {
		log.Printf("[RedisResultCache] marshal failed: %v", err)
		return
	}
	if err := r.client.Set(ctx, r.key(key), data, r.ttl).Err(); err != nil {
		log.Printf("[RedisResultCache] set failed: %v", err)
	}
}

// Invalidate drops the cached entry for key, e.g. after a brand guideline
// re-index.
func (r *RedisResultCache) Invalidate(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

// Compile-time interface check.
var _ admsg.ResultCache = (*RedisResultCache)(nil)
