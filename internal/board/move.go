package board

import "github.com/pkg/errors"

// Move encodes a move in 16 bits:
// bits 0-5:  from square
// bits 6-11: to square
// Promotion is implicit: a pawn reaching the last rank always becomes a queen.
type Move uint16

// NoMove represents an invalid or null move.
const NoMove Move = 0

// NewMove creates a move between two squares.
func NewMove(from, to Square) Move {
	return Move(from) | Move(to)<<6
}

// From returns the origin square.
func (m Move) From() Square {
	return Square(m & 0x3F)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square((m >> 6) & 0x3F)
}

// String returns the 4-character coordinate form of the move (e.g. "e2e4").
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	return m.From().String() + m.To().String()
}

// ParseMove parses a coordinate move such as "e2e4". A fifth promotion
// character is accepted and ignored.
func ParseMove(s string) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return NoMove, errors.Errorf("invalid move string %q", s)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, errors.Wrapf(err, "parse move %q", s)
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, errors.Wrapf(err, "parse move %q", s)
	}
	if from == to {
		return NoMove, errors.Errorf("null move %q", s)
	}
	return NewMove(from, to), nil
}
