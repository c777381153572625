package engine

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/hailam/renaissance/internal/board"
)

// Personality biases the static evaluation toward certain pieces.
type Personality int

const (
	// Tactician uses plain material values.
	Tactician Personality = iota
	// Grandmaster values knights 10% higher.
	Grandmaster
	// Oracle values pawns 20% higher.
	Oracle
)

var personalityNames = [...]string{
	Tactician:   "Minimax The Tactician",
	Grandmaster: "Stockfish The Grandmaster",
	Oracle:      "LC0 The Oracle",
}

// Personalities lists every personality.
var Personalities = []Personality{Tactician, Grandmaster, Oracle}

// String returns the display name.
func (p Personality) String() string {
	if p < 0 || int(p) >= len(personalityNames) {
		return "Unknown"
	}
	return personalityNames[p]
}

// Key returns the short lowercase name used in configuration.
func (p Personality) Key() string {
	switch p {
	case Grandmaster:
		return "grandmaster"
	case Oracle:
		return "oracle"
	default:
		return "tactician"
	}
}

// ParsePersonality accepts a short name or a display name, case-insensitively.
func ParsePersonality(s string) (Personality, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, p := range Personalities {
		if s == p.Key() || s == strings.ToLower(p.String()) {
			return p, nil
		}
	}
	return Tactician, errors.Errorf("unknown personality %q", s)
}

// MaterialValue returns the value of a piece type under this personality.
func (p Personality) MaterialValue(pt board.PieceType) int {
	v := pieceValues[pt]
	switch {
	case p == Grandmaster && pt == board.Knight:
		return v * 110 / 100
	case p == Oracle && pt == board.Pawn:
		return v * 120 / 100
	}
	return v
}
