// Package tablebase queries an endgame tablebase service for positions
// with few pieces left.
package tablebase

import (
	"context"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/hailam/renaissance/internal/board"
)

// MaxPieces is the largest piece count (kings included) the service covers.
const MaxPieces = 7

// ErrUnavailable is returned when the tablebase has no usable answer:
// too many pieces, a network or HTTP failure, a malformed response or
// an empty move list.
var ErrUnavailable = errors.New("tablebase unavailable")

// WDL is the win/draw/loss value from the side to move's point of view.
type WDL int

const (
	WDLLoss        WDL = -2
	WDLBlessedLoss WDL = -1 // loss, but the fifty-move rule may save it
	WDLDraw        WDL = 0
	WDLCursedWin   WDL = 1 // win, but the fifty-move rule may spoil it
	WDLWin         WDL = 2
)

// Category values reported by the service.
const (
	CategoryWin         = "win"
	CategoryLoss        = "loss"
	CategoryDraw        = "draw"
	CategoryDTZWin      = "dtz-win"
	CategoryDTZLoss     = "dtz-loss"
	CategoryBlessedLoss = "blessed-loss"
	CategoryCursedWin   = "cursed-win"
)

// MoveInfo describes one legal move in a tablebase answer.
type MoveInfo struct {
	UCI      string `json:"uci"`
	SAN      string `json:"san"`
	WDL      *WDL   `json:"wdl"`
	DTZ      *int   `json:"dtz"`
	DTM      *int   `json:"dtm"`
	Category string `json:"category"`
}

// Response is a tablebase answer for a position.
type Response struct {
	WDL      *WDL       `json:"wdl"`
	DTZ      *int       `json:"dtz"`
	DTM      *int       `json:"dtm"`
	Category string     `json:"category"`
	Moves    []MoveInfo `json:"moves"`
}

// Prober recommends a move for a low-material position.
type Prober interface {
	// BestMove returns the recommended move, or an error wrapping
	// ErrUnavailable when there is none.
	BestMove(ctx context.Context, pos *board.Position) (board.Move, error)
}

func winning(m MoveInfo) bool {
	switch m.Category {
	case CategoryWin, CategoryDTZWin, CategoryCursedWin:
		return true
	}
	return false
}

// SelectMove applies the selection rule: the first winning move if any,
// otherwise the first move listed.
func SelectMove(resp *Response) (string, bool) {
	if resp == nil || len(resp.Moves) == 0 {
		return "", false
	}
	if wins := lo.Filter(resp.Moves, func(m MoveInfo, _ int) bool { return winning(m) }); len(wins) > 0 {
		return wins[0].UCI, true
	}
	return resp.Moves[0].UCI, true
}

// NoopProber never has an answer.
type NoopProber struct{}

func (NoopProber) BestMove(context.Context, *board.Position) (board.Move, error) {
	return board.NoMove, ErrUnavailable
}
