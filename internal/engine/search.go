package engine

import (
	"context"
	"sync/atomic"

	"github.com/hailam/renaissance/internal/board"
)

// Infinity is the score of a checkmate. It is larger than any static
// evaluation and is not adjusted for distance to mate.
const Infinity = 1 << 30

// ctxCheckInterval is how many nodes pass between context checks.
const ctxCheckInterval = 1024

// Searcher runs one alpha-beta search. It is not safe for concurrent use.
type Searcher struct {
	ctx         context.Context
	personality Personality
	nodes       uint64
	stopFlag    atomic.Bool
}

// NewSearcher creates a searcher bound to ctx.
func NewSearcher(ctx context.Context, p Personality) *Searcher {
	return &Searcher{ctx: ctx, personality: p}
}

// Stop signals the search to stop.
func (s *Searcher) Stop() {
	s.stopFlag.Store(true)
}

// IsStopped returns true if the search has been stopped.
func (s *Searcher) IsStopped() bool {
	return s.stopFlag.Load()
}

// Nodes returns the number of nodes searched.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

func (s *Searcher) stopped() bool {
	if s.stopFlag.Load() {
		return true
	}
	if s.nodes%ctxCheckInterval == 0 && s.ctx.Err() != nil {
		s.stopFlag.Store(true)
		return true
	}
	return false
}

// Minimax searches pos to the given depth. White maximizes and Black
// minimizes. A side with no legal move scores -Infinity for the
// maximizer or +Infinity for the minimizer when mated, 0 when stalemated.
// A stopped search returns 0; callers must check IsStopped.
func (s *Searcher) Minimax(pos *board.Position, depth, alpha, beta int, maximizing bool) int {
	s.nodes++
	if s.stopped() {
		return 0
	}
	if depth == 0 {
		return Evaluate(pos, s.personality)
	}

	moves := pos.LegalMoves()
	if len(moves) == 0 {
		if pos.IsInCheck(pos.SideToMove) {
			if maximizing {
				return -Infinity
			}
			return Infinity
		}
		return 0
	}

	if maximizing {
		best := -Infinity
		for _, m := range moves {
			child := pos.Clone()
			child.MakeMove(m)
			v := s.Minimax(child, depth-1, alpha, beta, false)
			best = max(best, v)
			alpha = max(alpha, v)
			if beta <= alpha {
				break
			}
		}
		return best
	}

	best := Infinity
	for _, m := range moves {
		child := pos.Clone()
		child.MakeMove(m)
		v := s.Minimax(child, depth-1, alpha, beta, true)
		best = min(best, v)
		beta = min(beta, v)
		if beta <= alpha {
			break
		}
	}
	return best
}

// rootResult is the outcome of a root search.
type rootResult struct {
	move  board.Move
	score int
	depth int
}

// searchRoot evaluates every root move in generation order. The first
// move that strictly improves the running best is kept. Black in check
// is searched one ply deeper. A root move whose subtree was cut short
// by cancellation is ignored.
func (s *Searcher) searchRoot(pos *board.Position, depth int, moves []board.Move) rootResult {
	us := pos.SideToMove
	if us == board.Black && pos.IsInCheck(board.Black) {
		depth++
	}

	maximizing := us == board.White
	res := rootResult{move: board.NoMove, score: Infinity, depth: depth}
	if maximizing {
		res.score = -Infinity
	}

	for _, m := range moves {
		if s.ctx.Err() != nil {
			s.Stop()
			break
		}
		child := pos.Clone()
		child.MakeMove(m)

		var v int
		if maximizing {
			v = s.Minimax(child, depth-1, res.score, Infinity, false)
		} else {
			v = s.Minimax(child, depth-1, -Infinity, res.score, true)
		}
		if s.IsStopped() {
			break
		}

		if (maximizing && v > res.score) || (!maximizing && v < res.score) {
			res.score = v
			res.move = m
		}
	}
	return res
}
