// Package book implements the two opening-book tiers: a weighted book keyed
// by zobrist hash and a static ECO table matched against the move history.
package book

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/hailam/renaissance/internal/random"
)

// DefaultChoiceTTL is how long a resolved book move is reused for a key.
const DefaultChoiceTTL = 30 * time.Minute

// ErrBookDisabled wraps every load failure. Once a load fails the book
// answers no further probes for the rest of the session.
var ErrBookDisabled = errors.New("opening book disabled")

// Entry is one candidate move for a position.
type Entry struct {
	UCI    string `json:"uci"`
	Weight int    `json:"weight"`
}

// Data maps an uppercase hex zobrist key to its candidate moves.
type Data map[string][]Entry

// WeightedBook is the hash-keyed book. It is loaded once, possibly in the
// background, and is safe for concurrent probes.
type WeightedBook struct {
	sources []string
	client  *http.Client
	cache   ChoiceCache
	rng     *random.Source
	log     zerolog.Logger

	once  sync.Once
	ready chan struct{}

	mu      sync.RWMutex
	entries Data
	enabled bool
	err     error
}

// Option configures a WeightedBook.
type Option func(*WeightedBook)

// WithCache replaces the default in-memory choice cache.
func WithCache(c ChoiceCache) Option {
	return func(b *WeightedBook) { b.cache = c }
}

// WithRandom sets the source used for weighted draws.
func WithRandom(src *random.Source) Option {
	return func(b *WeightedBook) { b.rng = src }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(b *WeightedBook) { b.log = l }
}

// WithHTTPClient sets the client used for http(s) sources.
func WithHTTPClient(c *http.Client) Option {
	return func(b *WeightedBook) { b.client = c }
}

// NewWeightedBook creates a book over the given sources. Sources are file
// paths or http(s) URLs; a ".zst" suffix means zstd-compressed JSON.
func NewWeightedBook(sources []string, opts ...Option) *WeightedBook {
	b := &WeightedBook{
		sources: sources,
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     zerolog.Nop(),
		ready:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.cache == nil {
		b.cache = NewMemoryCache(DefaultChoiceTTL)
	}
	if b.rng == nil {
		b.rng = random.New(0)
	}
	return b
}

// Start loads the book in a background goroutine.
func (b *WeightedBook) Start(ctx context.Context) {
	go func() {
		_ = b.Initialize(ctx)
	}()
}

// Initialize loads every source and merges them. Only the first call does
// any work; later calls wait for it and return the same result.
func (b *WeightedBook) Initialize(ctx context.Context) error {
	b.once.Do(func() {
		defer close(b.ready)

		start := time.Now()
		data, err := b.loadAll(ctx)

		b.mu.Lock()
		defer b.mu.Unlock()
		if err != nil {
			b.err = errors.Wrapf(ErrBookDisabled, "%v", err)
			b.log.Warn().Err(err).Msg("opening book disabled")
			return
		}
		b.entries = data
		b.enabled = true
		b.log.Info().
			Int("sources", len(b.sources)).
			Int("positions", len(data)).
			Dur("elapsed", time.Since(start)).
			Msg("opening book loaded")
	})
	<-b.ready

	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.err
}

// Ready returns a channel closed once loading has finished.
func (b *WeightedBook) Ready() <-chan struct{} {
	return b.ready
}

// Enabled reports whether the book loaded successfully.
func (b *WeightedBook) Enabled() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.enabled
}

// Size returns the number of positions in the book.
func (b *WeightedBook) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// Probe returns a move for the position key. A move chosen within the
// cache window is returned again without a new draw. A book that is still
// loading or disabled has no moves.
func (b *WeightedBook) Probe(key string) (string, bool) {
	b.mu.RLock()
	enabled := b.enabled
	entries := b.entries[key]
	b.mu.RUnlock()

	if !enabled {
		return "", false
	}
	if uci, ok := b.cache.Get(key); ok {
		return uci, true
	}
	if len(entries) == 0 {
		b.log.Debug().Str("key", key).Msg("out of book")
		return "", false
	}

	uci := b.draw(entries)
	b.cache.Put(key, uci)
	b.log.Debug().Str("key", key).Str("move", uci).Msg("book move")
	return uci, true
}

// draw picks an entry with probability proportional to its weight.
func (b *WeightedBook) draw(entries []Entry) string {
	total := lo.SumBy(entries, func(e Entry) int { return e.Weight })
	r := b.rng.Intn(total)
	for _, e := range entries {
		r -= e.Weight
		if r < 0 {
			return e.UCI
		}
	}
	return entries[len(entries)-1].UCI
}

func (b *WeightedBook) loadAll(ctx context.Context) (Data, error) {
	parts := make([]Data, len(b.sources))

	g, ctx := errgroup.WithContext(ctx)
	for i, src := range b.sources {
		i, src := i, src
		g.Go(func() error {
			data, err := b.loadSource(ctx, src)
			if err != nil {
				return errors.Wrapf(err, "load %s", src)
			}
			parts[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	merged := Merge(parts...)
	if err := checkTotals(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

func (b *WeightedBook) loadSource(ctx context.Context, src string) (Data, error) {
	var r io.ReadCloser
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
		if err != nil {
			return nil, err
		}
		resp, err := b.client.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, errors.Errorf("unexpected status %s", resp.Status)
		}
		r = resp.Body
	} else {
		f, err := os.Open(src)
		if err != nil {
			return nil, err
		}
		r = f
	}
	defer r.Close()

	if strings.HasSuffix(src, ".zst") {
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return Decode(zr)
	}
	return Decode(r)
}

// Decode reads and validates book JSON. Every move must be a 4-character
// coordinate string, every weight positive, and the weights of a key
// must sum without overflowing.
func Decode(r io.Reader) (Data, error) {
	var data Data
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(err, "decode book")
	}
	for key, entries := range data {
		for _, e := range entries {
			if len(e.UCI) != 4 {
				return nil, errors.Errorf("key %s: bad move %q", key, e.UCI)
			}
			if e.Weight <= 0 {
				return nil, errors.Errorf("key %s: move %s has weight %d", key, e.UCI, e.Weight)
			}
		}
	}
	if err := checkTotals(data); err != nil {
		return nil, err
	}
	return data, nil
}

// checkTotals rejects any key whose weights do not sum to a positive int.
func checkTotals(data Data) error {
	for key, entries := range data {
		total := 0
		for _, e := range entries {
			if e.Weight > math.MaxInt-total {
				return errors.Errorf("key %s: total weight overflows", key)
			}
			total += e.Weight
		}
	}
	return nil
}

// Merge combines books key by key. Lists for a shared key are
// concatenated in argument order, so repeated moves add their weights.
func Merge(books ...Data) Data {
	merged := make(Data)
	for _, d := range books {
		for key, entries := range d {
			merged[key] = append(merged[key], entries...)
		}
	}
	return merged
}
