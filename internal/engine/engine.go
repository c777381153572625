package engine

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/renaissance/internal/board"
	"github.com/hailam/renaissance/internal/random"
)

// SearchInfo contains information about a finished search.
type SearchInfo struct {
	Depth   int
	Score   int
	Nodes   uint64
	Time    time.Duration
	Move    board.Move
	Random  bool // no move improved on the sentinel; Move was drawn at random
	Aborted bool // the context ended before every root move was searched
}

// SearchLimits specifies constraints on the search.
type SearchLimits struct {
	Depth    int           // Plies to search (before the check extension)
	MoveTime time.Duration // Deadline for the search (0 = no limit)
}

// Difficulty represents the AI difficulty level.
type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
)

// DifficultySettings maps difficulty to search limits.
var DifficultySettings = map[Difficulty]SearchLimits{
	Easy:   {Depth: 2},
	Medium: {Depth: 3},
	Hard:   {Depth: 4},
}

// String returns the difficulty name.
func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Hard:
		return "hard"
	default:
		return "medium"
	}
}

// ParseDifficulty parses "easy", "medium" or "hard".
func ParseDifficulty(s string) (Difficulty, bool) {
	for _, d := range []Difficulty{Easy, Medium, Hard} {
		if d.String() == s {
			return d, true
		}
	}
	return Medium, false
}

// Engine is the chess AI engine.
type Engine struct {
	personality Personality
	limits      SearchLimits
	rng         *random.Source
	log         zerolog.Logger

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates an engine at Medium difficulty. A nil src draws
// fallback moves from system entropy.
func NewEngine(p Personality, src *random.Source, log zerolog.Logger) *Engine {
	if src == nil {
		src = random.New(0)
	}
	return &Engine{
		personality: p,
		limits:      DifficultySettings[Medium],
		rng:         src,
		log:         log,
	}
}

// SetDifficulty sets the engine difficulty.
func (e *Engine) SetDifficulty(d Difficulty) {
	e.limits = DifficultySettings[d]
}

// SetLimits overrides the search limits.
func (e *Engine) SetLimits(l SearchLimits) {
	e.limits = l
}

// Limits returns the current search limits.
func (e *Engine) Limits() SearchLimits {
	return e.limits
}

// SetPersonality sets the evaluation personality.
func (e *Engine) SetPersonality(p Personality) {
	e.personality = p
}

// Personality returns the evaluation personality.
func (e *Engine) Personality() Personality {
	return e.personality
}

// Search finds a move for the side to move using the engine limits.
// It returns NoMove only when there is no legal move.
func (e *Engine) Search(ctx context.Context, pos *board.Position) (board.Move, SearchInfo) {
	if e.limits.MoveTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.limits.MoveTime)
		defer cancel()
	}
	return e.SearchDepth(ctx, pos, e.limits.Depth)
}

// SearchDepth runs the root search to depth. If no root move strictly
// improves on the initial sentinel, or ctx ends before any root move
// completes, a uniformly random legal move is returned.
func (e *Engine) SearchDepth(ctx context.Context, pos *board.Position, depth int) (board.Move, SearchInfo) {
	start := time.Now()
	moves := pos.LegalMoves()
	if len(moves) == 0 {
		return board.NoMove, SearchInfo{}
	}
	if depth < 1 {
		depth = 1
	}

	s := NewSearcher(ctx, e.personality)
	res := s.searchRoot(pos, depth, moves)

	info := SearchInfo{
		Depth:   res.depth,
		Score:   res.score,
		Nodes:   s.Nodes(),
		Move:    res.move,
		Aborted: s.IsStopped(),
	}
	if info.Move == board.NoMove {
		info.Move = moves[e.rng.Intn(len(moves))]
		info.Random = true
	}
	info.Time = time.Since(start)

	e.log.Debug().
		Int("depth", info.Depth).
		Str("score", ScoreToString(info.Score)).
		Uint64("nodes", info.Nodes).
		Dur("elapsed", info.Time).
		Str("move", info.Move.String()).
		Bool("random", info.Random).
		Bool("aborted", info.Aborted).
		Msg("search finished")

	if e.OnInfo != nil {
		e.OnInfo(info)
	}
	return info.Move, info
}

// Evaluate returns the static evaluation of a position.
func (e *Engine) Evaluate(pos *board.Position) int {
	return Evaluate(pos, e.personality)
}

// ScoreToString converts a score to a human-readable string.
func ScoreToString(score int) string {
	switch {
	case score >= Infinity:
		return "mate"
	case score <= -Infinity:
		return "mated"
	}

	// Convert centipawns to pawns
	sign := ""
	if score < 0 {
		sign = "-"
		score = -score
	}
	cents := strconv.Itoa(score % 100)
	if len(cents) == 1 {
		cents = "0" + cents
	}
	return sign + strconv.Itoa(score/100) + "." + cents
}
