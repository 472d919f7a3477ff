package admsg

import (
	"container/list"
	"context"
	"strings"
	"sync"
)

// ──────────────────────────────────────────────
// Result Cache — explicit, injected memoization
// ──────────────────────────────────────────────

// ResultCache memoizes full generation results keyed on the normalized
// request tuple. Optional: correctness never depends on it, and a cache
// must never answer for a different brand/persona than requested.
type ResultCache interface {
	Get(ctx context.Context, key string) (*GenerationResult, bool)
	Set(ctx context.Context, key string, result *GenerationResult)
}

// CacheKey builds a collision-free key from the request tuple. The unit
// separator cannot appear in brand names, persona ids or goals, so
// distinct tuples never alias.
func CacheKey(brand, personaID, campaignGoal string) string {
	return strings.Join([]string{brand, personaID, campaignGoal}, "\x1f")
}

type cacheEntry struct {
	key    string
	result *GenerationResult
}

// MemoryResultCache is an in-process LRU result cache with a fixed
// capacity.
type MemoryResultCache struct {
	mu         sync.Mutex
	maxEntries int
	ll         *list.List
	items      map[string]*list.Element
}

// NewMemoryResultCache creates an LRU cache holding at most maxEntries
// results (default 128).
func NewMemoryResultCache(maxEntries int) *MemoryResultCache {
	if maxEntries <= 0 {
		maxEntries = 128
	}
	return &MemoryResultCache{
		maxEntries: maxEntries,
		ll:         list.New(),
		items:      make(map[string]*list.Element),
	}
}

func (c *MemoryResultCache) Get(_ context.Context, key string) (*GenerationResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*cacheEntry).result, true
}

func (c *MemoryResultCache) Set(_ context.Context, key string, result *GenerationResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.ll.MoveToFront(el)
		el.Value.(*cacheEntry).result = result
		return
	}
	el := c.ll.PushFront(&cacheEntry{key: key, result: result})
	c.items[key] = el
	for c.ll.Len() > c.maxEntries {
		oldest := c.ll.Back()
		c.ll.Remove(oldest)
		delete(c.items, oldest.Value.(*cacheEntry).key)
	}
}

// Len returns the current number of cached results.
func (c *MemoryResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

var _ ResultCache = (*MemoryResultCache)(nil)
