package board

import "github.com/pkg/errors"

var (
	// ErrIllegalMove is returned by Play when the move is not legal in the position.
	ErrIllegalMove = errors.New("illegal move")
	// ErrInvalidFEN is returned by ParseFEN for malformed input.
	ErrInvalidFEN = errors.New("invalid FEN")
)
