package figma

import (
	"container/list"
	"context"
	"net/url"
	"path"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fivetwenty-io/figma-client/internal/constants"
)

// Cache stores responses of idempotent requests.
type Cache interface {
	Get(ctx context.Context, key string) (*CacheEntry, error)
	Set(ctx context.Context, key string, entry *CacheEntry) error
	Delete(ctx context.Context, key string) error
	// DeletePrefix removes every key starting with prefix and reports how many went.
	DeletePrefix(ctx context.Context, prefix string) (int, error)
	Clear(ctx context.Context) error
	Has(ctx context.Context, key string) bool
}

// CacheEntry is a cached response body.
type CacheEntry struct {
	Data     []byte        `json:"data"`
	StoredAt time.Time     `json:"stored_at"`
	TTL      time.Duration `json:"ttl"`
	ETag     string        `json:"etag,omitempty"`
}

// NewCacheEntry stamps data with the current time.
func NewCacheEntry(data []byte, ttl time.Duration) *CacheEntry {
	return &CacheEntry{
		Data:     data,
		StoredAt: time.Now(),
		TTL:      ttl,
	}
}

// ExpiresAt returns the instant the entry goes stale.
func (e *CacheEntry) ExpiresAt() time.Time {
	return e.StoredAt.Add(e.TTL)
}

// Expired reports whether now - StoredAt > TTL.
func (e *CacheEntry) Expired(now time.Time) bool {
	return now.Sub(e.StoredAt) > e.TTL
}

// CacheKey derives the cache key for a request: "GET /v1/files/abc?depth=1".
// Query parameters are sorted by name.
func CacheKey(method, requestPath string, query url.Values) string {
	key := strings.ToUpper(method) + " " + requestPath
	if encoded := query.Encode(); encoded != "" {
		key += "?" + encoded
	}

	return key
}

// InvalidationTargets returns what a successful mutation of requestPath makes
// stale: the resource itself with everything beneath it, and the unfiltered
// and filtered listings of its parent collection. Keys match exactly while
// prefixes match by leading text.
func InvalidationTargets(requestPath string) (prefixes []string, keys []string) {
	clean := path.Clean("/" + strings.TrimSpace(requestPath))
	self := CacheKey("GET", clean, nil)
	keys = []string{self}
	prefixes = []string{self + "?", self + "/"}

	if parent := path.Dir(clean); parent != "/" && parent != clean {
		listKey := CacheKey("GET", parent, nil)
		prefixes = append(prefixes, listKey+"?")
		keys = append(keys, listKey)
	}

	return prefixes, keys
}

// MemoryCache is a bounded in-process cache. Expired entries are dropped
// lazily on Get; when full, the oldest inserted key is evicted.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*list.Element
	order   list.List // of *memoryItem, oldest insertion first
	maxSize int
	now     func() time.Time
}

type memoryItem struct {
	key   string
	entry *CacheEntry
}

// NewMemoryCache creates a memory cache holding at most maxSize entries.
func NewMemoryCache(maxSize int) *MemoryCache {
	if maxSize <= 0 {
		maxSize = constants.DefaultCacheSize
	}

	return &MemoryCache{
		entries: make(map[string]*list.Element),
		maxSize: maxSize,
		now:     time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (c *MemoryCache) WithClock(now func() time.Time) *MemoryCache {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = now

	return c
}

// Get returns a live entry.
func (c *MemoryCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	c.mu.RLock()
	elem, ok := c.entries[key]

	var entry *CacheEntry
	if ok {
		item, _ := elem.Value.(*memoryItem)
		entry = item.entry
	}

	now := c.now
	c.mu.RUnlock()

	if !ok {
		return nil, ErrCacheMiss
	}

	if !entry.Expired(now()) {
		return entry, nil
	}

	c.mu.Lock()
	// Re-check: the key may have been replaced since the read lock was released.
	if current, still := c.entries[key]; still && current == elem {
		c.removeLocked(elem)
	}
	c.mu.Unlock()

	return nil, ErrEntryExpired
}

// Set stores entry. Replacing a key keeps its original insertion slot.
func (c *MemoryCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		item, _ := elem.Value.(*memoryItem)
		item.entry = entry

		return nil
	}

	for len(c.entries) >= c.maxSize {
		oldest := c.order.Front()
		if oldest == nil {
			break
		}

		c.removeLocked(oldest)
	}

	c.entries[key] = c.order.PushBack(&memoryItem{key: key, entry: entry})

	return nil
}

// Delete removes a key.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.removeLocked(elem)
	}

	return nil
}

// DeletePrefix removes every key with the given prefix.
func (c *MemoryCache) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0

	for key, elem := range c.entries {
		if strings.HasPrefix(key, prefix) {
			c.removeLocked(elem)
			removed++
		}
	}

	return removed, nil
}

// Clear removes all entries.
func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*list.Element)
	c.order.Init()

	return nil
}

// Has reports whether a live entry exists for key.
func (c *MemoryCache) Has(ctx context.Context, key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	elem, ok := c.entries[key]
	if !ok {
		return false
	}

	item, _ := elem.Value.(*memoryItem)

	return !item.entry.Expired(c.now())
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Cleanup drops every expired entry.
func (c *MemoryCache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()

	for elem := c.order.Front(); elem != nil; {
		next := elem.Next()

		item, _ := elem.Value.(*memoryItem)
		if item.entry.Expired(now) {
			c.removeLocked(elem)
		}

		elem = next
	}
}

func (c *MemoryCache) removeLocked(elem *list.Element) {
	item, _ := elem.Value.(*memoryItem)
	delete(c.entries, item.key)
	c.order.Remove(elem)
}

// CacheStats counts cache activity for a client.
type CacheStats struct {
	Hits          int64 `json:"hits"          yaml:"hits"`
	Misses        int64 `json:"misses"        yaml:"misses"`
	Sets          int64 `json:"sets"          yaml:"sets"`
	Invalidations int64 `json:"invalidations" yaml:"invalidations"`
}

// GetHitRate returns hits / (hits + misses).
func (s *CacheStats) GetHitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}

	return float64(s.Hits) / float64(total)
}

// CacheCounters is the concurrent counterpart of CacheStats.
type CacheCounters struct {
	hits          atomic.Int64
	misses        atomic.Int64
	sets          atomic.Int64
	invalidations atomic.Int64
}

// Hit records a cache hit.
func (c *CacheCounters) Hit() { c.hits.Add(1) }

// Miss records a cache miss.
func (c *CacheCounters) Miss() { c.misses.Add(1) }

// Stored records a cache write.
func (c *CacheCounters) Stored() { c.sets.Add(1) }

// Invalidated records n removed entries.
func (c *CacheCounters) Invalidated(n int) { c.invalidations.Add(int64(n)) }

// Snapshot returns the current counts.
func (c *CacheCounters) Snapshot() CacheStats {
	return CacheStats{
		Hits:          c.hits.Load(),
		Misses:        c.misses.Load(),
		Sets:          c.sets.Load(),
		Invalidations: c.invalidations.Load(),
	}
}
