package linkresolver

import (
	"sync"

	"doccc/internal/docid"
)

// cacheKey is the process-wide cache's lookup key: authored text, the
// parent page it was written on, and whether it was written as a symbol
// link — the same reference text means something different depending on
// where it was authored and how.
type cacheKey struct {
	authoredText   string
	parent         string
	fromSymbolLink bool
}

// Cache is a single-writer-safe in-memory cache of resolved references,
// guarded by a mutex rather than left lock-free, because a fallback
// resolver is permitted to mutate shared context as a side effect of
// resolving a reference — concurrent cache access during that window is
// unsafe (see internal/convert's concurrency notes).
type Cache struct {
	mu    sync.RWMutex
	items map[cacheKey]docid.Reference
}

// NewCache builds an empty cache.
func NewCache() *Cache {
	return &Cache{items: make(map[cacheKey]docid.Reference)}
}

// Get returns the cached reference for key, if present.
func (c *Cache) Get(key cacheKey) (docid.Reference, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ref, ok := c.items[key]
	return ref, ok
}

// Put records ref under key, overwriting any prior entry.
func (c *Cache) Put(key cacheKey, ref docid.Reference) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = ref
}

// Len reports how many entries are cached, for tests and diagnostics.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
