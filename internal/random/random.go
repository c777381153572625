// Package random provides the seedable random source shared by zobrist key
// generation, opening-book draws and search fallbacks.
package random

import (
	"encoding/binary"
	"sync"

	"lukechampine.com/frand"
)

// Source is a goroutine-safe wrapper around a frand generator.
// A zero seed draws from system entropy; any other seed is reproducible.
type Source struct {
	mu  sync.Mutex
	rng *frand.RNG
}

// New creates a Source. Seed 0 means "unseeded".
func New(seed uint64) *Source {
	if seed == 0 {
		return &Source{rng: frand.New()}
	}
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], seed)
	binary.LittleEndian.PutUint64(key[8:16], seed^0x9E3779B97F4A7C15)
	return &Source{rng: frand.NewCustom(key[:], 1024, 12)}
}

// Uint64 returns a uniformly distributed 64-bit value.
func (s *Source) Uint64() uint64 {
	var buf [8]byte
	s.mu.Lock()
	s.rng.Read(buf[:])
	s.mu.Unlock()
	return binary.LittleEndian.Uint64(buf[:])
}

// Intn returns a uniform value in [0, n). It panics if n <= 0.
func (s *Source) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}
