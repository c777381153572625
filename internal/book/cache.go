package book

import (
	"sync"
	"time"
)

// ChoiceCache remembers the move resolved for a book key. Implementations
// expire entries after their own time window.
type ChoiceCache interface {
	Get(key string) (string, bool)
	Put(key, uci string)
}

type cachedChoice struct {
	uci     string
	expires time.Time
}

// MemoryCache is an in-process ChoiceCache.
type MemoryCache struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	items map[string]cachedChoice
}

// NewMemoryCache creates a cache whose entries live for ttl.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return NewMemoryCacheWithClock(ttl, time.Now)
}

// NewMemoryCacheWithClock is NewMemoryCache with an injectable clock.
func NewMemoryCacheWithClock(ttl time.Duration, now func() time.Time) *MemoryCache {
	return &MemoryCache{
		ttl:   ttl,
		now:   now,
		items: make(map[string]cachedChoice),
	}
}

func (c *MemoryCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.items[key]
	if !ok {
		return "", false
	}
	if !c.now().Before(item.expires) {
		delete(c.items, key)
		return "", false
	}
	return item.uci, true
}

func (c *MemoryCache) Put(key, uci string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = cachedChoice{uci: uci, expires: c.now().Add(c.ttl)}
}

// noCache never remembers anything.
type noCache struct{}

// NoCache returns a ChoiceCache that always misses.
func NoCache() ChoiceCache { return noCache{} }

func (noCache) Get(string) (string, bool) { return "", false }
func (noCache) Put(string, string)        {}
