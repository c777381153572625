package tablebase

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/hailam/renaissance/internal/board"
)

// DefaultCacheSize is used when NewCachedProber is given a size below 1.
const DefaultCacheSize = 4096

// CachedProber remembers answers of another prober by FEN, the same key
// the service is queried with, so positions hashed with different
// zobrist tables share entries. Failures are not cached, so a transient
// outage is retried next turn.
type CachedProber struct {
	inner   Prober
	mu      sync.RWMutex
	cache   map[string]board.Move
	maxSize int
	hits    uint64
	misses  uint64
}

// NewCachedProber creates a cached prober wrapping the given prober.
func NewCachedProber(inner Prober, cacheSize int) *CachedProber {
	if cacheSize < 1 {
		cacheSize = DefaultCacheSize
	}
	return &CachedProber{
		inner:   inner,
		cache:   make(map[string]board.Move, cacheSize),
		maxSize: cacheSize,
	}
}

func (cp *CachedProber) BestMove(ctx context.Context, pos *board.Position) (board.Move, error) {
	key := pos.ToFEN()

	cp.mu.Lock()
	if m, ok := cp.cache[key]; ok {
		cp.hits++
		cp.mu.Unlock()
		return m, nil
	}
	cp.misses++
	cp.mu.Unlock()

	m, err := cp.inner.BestMove(ctx, pos)
	if err != nil {
		return board.NoMove, errors.WithStack(err)
	}

	cp.mu.Lock()
	if len(cp.cache) >= cp.maxSize {
		// Drop about half the entries, at least one.
		drop := max(cp.maxSize/2, 1)
		for k := range cp.cache {
			if drop == 0 {
				break
			}
			delete(cp.cache, k)
			drop--
		}
	}
	cp.cache[key] = m
	cp.mu.Unlock()

	return m, nil
}

// HitRate returns the cache hit rate as a percentage.
func (cp *CachedProber) HitRate() float64 {
	cp.mu.RLock()
	defer cp.mu.RUnlock()
	total := cp.hits + cp.misses
	if total == 0 {
		return 0
	}
	return float64(cp.hits) / float64(total) * 100
}

// CacheSize returns the current number of cached entries.
func (cp *CachedProber) CacheSize() int {
	cp.mu.RLock()
	defer cp.mu.RUnlock()
	return len(cp.cache)
}
