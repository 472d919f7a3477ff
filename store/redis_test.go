package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	admsg "github.com/beautyflow/admsg-sdk-go"
)

func newTestCache(t *testing.T, config ...RedisCacheConfig) (*RedisResultCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisResultCache(client, config...), mr
}

func sampleResult() *admsg.GenerationResult {
	return &admsg.GenerationResult{
		PersonaID:    "premium_antiaging_40s",
		PersonaName:  "프리미엄 안티에이징 추구자",
		Brand:        "설화수",
		CampaignGoal: "재구매 유도",
		Variations: []admsg.MessageVariant{
			{
				Strategy: admsg.StrategyEfficacy,
				Subject:  "피부 나이를 되돌리는 7일",
				Body:     "임상으로 확인된 탄력 개선 효과를 경험해 보세요.",
			},
		},
		Metadata: admsg.GenerationMeta{RequestID: "req-1", Model: "gpt-4-turbo-preview"},
	}
}

func TestRedisResultCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()
	key := admsg.CacheKey("설화수", "premium_antiaging_40s", "재구매 유도")

	if _, ok := cache.Get(ctx, key); ok {
		t.Fatal("expected miss on empty cache")
	}

	want := sampleResult()
	cache.Set(ctx, key, want)

	got, ok := cache.Get(ctx, key)
	if !ok {
		t.Fatal("expected hit after set")
	}
	if got.Brand != want.Brand || got.PersonaName != want.PersonaName {
		t.Fatalf("got %q/%q, want %q/%q", got.Brand, got.PersonaName, want.Brand, want.PersonaName)
	}
	if len(got.Variations) != 1 || got.Variations[0].Strategy != admsg.StrategyEfficacy {
		t.Fatalf("variations not preserved: %+v", got.Variations)
	}
}

func TestRedisResultCacheTTL(t *testing.T) {
	cache, mr := newTestCache(t, RedisCacheConfig{TTL: time.Minute})
	ctx := context.Background()
	key := admsg.CacheKey("설화수", "premium_antiaging_40s", "재구매 유도")

	cache.Set(ctx, key, sampleResult())

	mr.FastForward(2 * time.Minute)

	if _, ok := cache.Get(ctx, key); ok {
		t.Fatal("expected miss after TTL expiry")
	}
}

func TestRedisResultCacheCorruptEntry(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	key := admsg.CacheKey("설화수", "premium_antiaging_40s", "재구매 유도")

	mr.Set("admsg:"+key, "{not json")

	if _, ok := cache.Get(ctx, key); ok {
		t.Fatal("corrupt entry must read as a miss")
	}
	// Corrupt entries are evicted so later sets take effect cleanly.
	if mr.Exists("admsg:" + key) {
		t.Fatal("corrupt entry should have been deleted")
	}
}

func TestRedisResultCacheInvalidate(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()
	key := admsg.CacheKey("설화수", "premium_antiaging_40s", "재구매 유도")

	cache.Set(ctx, key, sampleResult())
	if err := cache.Invalidate(ctx, key); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, ok := cache.Get(ctx, key); ok {
		t.Fatal("expected miss after invalidate")
	}
}
