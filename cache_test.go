package admsg

import (
	"context"
	"fmt"
	"testing"
)

func TestCacheKeyDistinctTuples(t *testing.T) {
	a := CacheKey("설화수", "premium_antiaging_40s", "재구매 유도")
	b := CacheKey("설화수", "premium_antiaging_40s", "신규 고객 유치")
	c := CacheKey("라네즈", "premium_antiaging_40s", "재구매 유도")
	if a == b || a == c || b == c {
		t.Fatal("distinct tuples must produce distinct keys")
	}

	// Concatenation alone would alias these; the separator must not.
	x := CacheKey("설화", "수", "목표")
	y := CacheKey("설", "화수", "목표")
	if x == y {
		t.Fatal("tuple boundaries lost in key")
	}
}

func TestMemoryResultCacheRoundTrip(t *testing.T) {
	cache := NewMemoryResultCache(4)
	ctx := context.Background()
	key := CacheKey("설화수", "p", "goal")

	if _, ok := cache.Get(ctx, key); ok {
		t.Fatal("miss expected on empty cache")
	}
	want := sampleGenerationResult()
	cache.Set(ctx, key, want)

	got, ok := cache.Get(ctx, key)
	if !ok || got != want {
		t.Fatal("hit must return the stored result")
	}
}

func TestMemoryResultCacheEvictsLRU(t *testing.T) {
	cache := NewMemoryResultCache(2)
	ctx := context.Background()

	r := sampleGenerationResult()
	cache.Set(ctx, "a", r)
	cache.Set(ctx, "b", r)

	// Touch "a" so "b" is now least recently used.
	cache.Get(ctx, "a")
	cache.Set(ctx, "c", r)

	if _, ok := cache.Get(ctx, "b"); ok {
		t.Fatal("least recently used entry must be evicted")
	}
	if _, ok := cache.Get(ctx, "a"); !ok {
		t.Fatal("recently used entry evicted")
	}
	if cache.Len() != 2 {
		t.Fatalf("cache holds %d entries, want 2", cache.Len())
	}
}

func TestMemoryResultCacheUpdateExisting(t *testing.T) {
	cache := NewMemoryResultCache(2)
	ctx := context.Background()

	first := sampleGenerationResult()
	second := sampleGenerationResult()
	second.CampaignGoal = "재고 소진"

	cache.Set(ctx, "k", first)
	cache.Set(ctx, "k", second)

	got, ok := cache.Get(ctx, "k")
	if !ok || got.CampaignGoal != "재고 소진" {
		t.Fatal("set on existing key must replace the value")
	}
	if cache.Len() != 1 {
		t.Fatalf("duplicate key grew the cache to %d", cache.Len())
	}
}

func TestMemoryResultCacheConcurrentAccess(t *testing.T) {
	cache := NewMemoryResultCache(16)
	ctx := context.Background()
	r := sampleGenerationResult()

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(i int) {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d", (i+j)%20)
				cache.Set(ctx, key, r)
				cache.Get(ctx, key)
			}
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}
	if cache.Len() > 16 {
		t.Fatalf("cache exceeded its capacity: %d", cache.Len())
	}
}
