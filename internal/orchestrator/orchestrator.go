// Package orchestrator chooses the computer's move by consulting, in
// order, the weighted opening book, the ECO line book, the endgame
// tablebase and finally the search.
package orchestrator

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/hailam/renaissance/internal/board"
	"github.com/hailam/renaissance/internal/engine"
	"github.com/hailam/renaissance/internal/tablebase"
)

// MaxBookPlies is the ply count from which the weighted book is no
// longer consulted (15 moves per side).
const MaxBookPlies = 30

// DefaultTablebaseTimeout bounds one tablebase request.
const DefaultTablebaseTimeout = 5 * time.Second

// ErrNoLegalMoves is returned when the side to move has no legal move.
var ErrNoLegalMoves = errors.New("no legal moves")

// Source tells which stage produced a move.
type Source int

const (
	SourceNone Source = iota
	SourceBook
	SourceECO
	SourceTablebase
	SourceSearch
)

// String returns the stage name.
func (s Source) String() string {
	switch s {
	case SourceBook:
		return "book"
	case SourceECO:
		return "eco"
	case SourceTablebase:
		return "tablebase"
	case SourceSearch:
		return "search"
	default:
		return "none"
	}
}

// HashBook answers by position hash key.
type HashBook interface {
	Probe(key string) (string, bool)
}

// LineBook answers by the UCI move history.
type LineBook interface {
	Recommend(history []string) (string, bool)
}

// Searcher finds a move for the side to move.
type Searcher interface {
	Search(ctx context.Context, pos *board.Position) (board.Move, engine.SearchInfo)
}

// Orchestrator runs the move-selection pipeline.
type Orchestrator struct {
	book      HashBook
	eco       LineBook
	prober    tablebase.Prober
	searcher  Searcher
	tbTimeout time.Duration
	log       zerolog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithBook sets the weighted hash book.
func WithBook(b HashBook) Option {
	return func(o *Orchestrator) { o.book = b }
}

// WithECO sets the line book used for White's first move.
func WithECO(b LineBook) Option {
	return func(o *Orchestrator) { o.eco = b }
}

// WithTablebase sets the endgame prober.
func WithTablebase(p tablebase.Prober) Option {
	return func(o *Orchestrator) { o.prober = p }
}

// WithTablebaseTimeout bounds each tablebase request.
func WithTablebaseTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.tbTimeout = d }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// New creates an orchestrator that always falls back to searcher.
func New(searcher Searcher, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		searcher:  searcher,
		prober:    tablebase.NoopProber{},
		tbTimeout: DefaultTablebaseTimeout,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// BestMove returns the computer's move for the side to move in pos.
// Book and tablebase answers are only used when legal in pos.
func (o *Orchestrator) BestMove(ctx context.Context, pos *board.Position) (board.Move, Source, error) {
	m, src, err := o.choose(ctx, pos)
	if err != nil {
		return m, src, err
	}
	o.log.Info().
		Str("source", src.String()).
		Str("move", m.String()).
		Int("ply", pos.Plies()).
		Msg("move selected")
	return m, src, nil
}

// Hint runs the same pipeline on behalf of the human player.
func (o *Orchestrator) Hint(ctx context.Context, pos *board.Position) (board.Move, Source, error) {
	m, src, err := o.choose(ctx, pos)
	if err != nil {
		return m, src, err
	}
	o.log.Debug().
		Str("source", src.String()).
		Str("move", m.String()).
		Msg("hint")
	return m, src, nil
}

func (o *Orchestrator) choose(ctx context.Context, pos *board.Position) (board.Move, Source, error) {
	if len(pos.LegalMoves()) == 0 {
		return board.NoMove, SourceNone, ErrNoLegalMoves
	}

	plies := pos.Plies()

	if o.book != nil && plies < MaxBookPlies {
		key := pos.HashHex()
		if uci, ok := o.book.Probe(key); ok {
			if m, ok := o.legal(pos, uci); ok {
				return m, SourceBook, nil
			}
			o.log.Warn().Str("key", key).Str("move", uci).Msg("ignoring illegal book move")
		}
	}

	if o.eco != nil && pos.SideToMove == board.White && plies == 0 {
		if uci, ok := o.eco.Recommend(pos.UCIHistory()); ok {
			if m, ok := o.legal(pos, uci); ok {
				return m, SourceECO, nil
			}
			o.log.Warn().Str("move", uci).Msg("ignoring illegal opening move")
		}
	}

	if pos.PieceCount() <= tablebase.MaxPieces {
		if m, ok := o.probe(ctx, pos); ok {
			return m, SourceTablebase, nil
		}
	}

	m, info := o.searcher.Search(ctx, pos)
	if m == board.NoMove {
		return board.NoMove, SourceNone, ErrNoLegalMoves
	}
	o.log.Debug().
		Int("depth", info.Depth).
		Str("score", engine.ScoreToString(info.Score)).
		Bool("random", info.Random).
		Msg("search result")
	return m, SourceSearch, nil
}

func (o *Orchestrator) probe(ctx context.Context, pos *board.Position) (board.Move, bool) {
	if o.tbTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.tbTimeout)
		defer cancel()
	}
	m, err := o.prober.BestMove(ctx, pos)
	if err != nil {
		o.log.Debug().Err(err).Msg("no tablebase move")
		return board.NoMove, false
	}
	if !pos.IsLegal(m) {
		o.log.Warn().Str("move", m.String()).Msg("ignoring illegal tablebase move")
		return board.NoMove, false
	}
	return m, true
}

func (o *Orchestrator) legal(pos *board.Position, uci string) (board.Move, bool) {
	m, err := board.ParseMove(uci)
	if err != nil || !pos.IsLegal(m) {
		return board.NoMove, false
	}
	return m, true
}
