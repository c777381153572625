package book

import (
	"strings"

	"github.com/samber/lo"

	"github.com/hailam/renaissance/internal/random"
)

// Opening names a line of the ECO table.
type Opening struct {
	Code  string
	Name  string
	Moves []string
}

func line(moves, code, name string) Opening {
	return Opening{Code: code, Name: name, Moves: strings.Split(moves, ",")}
}

// ecoTable lists the known lines, shortest first.
var ecoTable = []Opening{
	line("e2e4", "B00", "King's Pawn Opening"),
	line("d2d4", "A40", "Queen's Pawn Opening"),
	line("c2c4", "A10", "English Opening"),
	line("g1f3", "A04", "Réti Opening"),
	line("f2f4", "A02", "Bird's Opening"),

	line("e2e4,e7e5", "C20", "King's Pawn Game"),
	line("e2e4,c7c5", "B20", "Sicilian Defense"),
	line("e2e4,e7e6", "C00", "French Defense"),
	line("e2e4,d7d5", "B01", "Scandinavian Defense"),
	line("e2e4,c7c6", "B10", "Caro-Kann Defense"),
	line("d2d4,d7d5", "D00", "Queen's Pawn Game"),
	line("d2d4,g8f6", "A45", "Indian Defense"),
	line("c2c4,e7e5", "A20", "English Opening"),
	line("g1f3,d7d5", "A06", "Réti Opening"),

	line("e2e4,e7e5,g1f3", "C40", "King's Knight Opening"),
	line("e2e4,c7c5,g1f3", "B21", "Sicilian, Smith-Morra"),
	line("d2d4,d7d5,c2c4", "D06", "Queen's Gambit"),
	line("e2e4,e7e6,d2d4", "C01", "French, Exchange"),
	line("e2e4,c7c6,d2d4", "B12", "Caro-Kann, Advance"),

	line("e2e4,e7e5,g1f3,b8c6", "C44", "Italian/Scotch Game"),
	line("e2e4,e7e5,g1f3,g8f6", "C42", "Petrov's Defense"),
	line("e2e4,c7c5,g1f3,d7d6", "B50", "Sicilian Defense"),
	line("e2e4,c7c5,g1f3,b8c6", "B30", "Sicilian, Rossolimo"),
	line("d2d4,d7d5,c2c4,e7e6", "D30", "Queen's Gambit Declined"),
	line("d2d4,d7d5,c2c4,d5c4", "D20", "Queen's Gambit Accepted"),
	line("d2d4,d7d5,c2c4,c7c6", "D10", "Slav Defense"),
	line("d2d4,g8f6,c2c4,e7e6", "E10", "Blumenfeld Countergambit"),
	line("d2d4,g8f6,c2c4,g7g6", "E60", "King's Indian Defense"),

	line("e2e4,e7e5,g1f3,b8c6,f1c4", "C50", "Italian Game"),
	line("e2e4,e7e5,g1f3,b8c6,f1b5", "C60", "Ruy López"),
	line("e2e4,e7e5,g1f3,b8c6,d2d4", "C45", "Scotch Game"),
	line("e2e4,c7c5,g1f3,d7d6,d2d4", "B53", "Sicilian, Chekhover"),
	line("d2d4,g8f6,c2c4,e7e6,g1f3", "E12", "Queen's Indian Defense"),

	line("e2e4,e7e5,g1f3,b8c6,f1c4,f8c5", "C53", "Giuoco Piano"),
	line("e2e4,e7e5,g1f3,b8c6,f1c4,g8f6", "C55", "Two Knights Defense"),
	line("e2e4,e7e5,g1f3,b8c6,f1b5,a7a6", "C70", "Ruy López, Morphy Defense"),
	line("e2e4,c7c5,g1f3,d7d6,d2d4,c5d4", "B54", "Sicilian, Modern Variations"),
	line("d2d4,g8f6,c2c4,e7e6,g1f3,b7b6", "E12", "Queen's Indian Defense"),
	line("d2d4,g8f6,c2c4,g7g6,b1c3,f8g7", "E90", "King's Indian, Classical"),

	line("e2e4,e7e5,g1f3,b8c6,f1b5,a7a6,b5a4", "C77", "Ruy López, Morphy Defense"),
	line("e2e4,c7c5,g1f3,d7d6,d2d4,c5d4,f3d4", "B56", "Sicilian"),
	line("e2e4,e7e5,g1f3,b8c6,f1c4,f8c5,c2c3", "C54", "Giuoco Piano"),

	line("e2e4,e7e5,g1f3,b8c6,f1b5,a7a6,b5a4,g8f6", "C78", "Ruy López, Morphy Defense"),
	line("e2e4,c7c5,g1f3,d7d6,d2d4,c5d4,f3d4,g8f6", "B90", "Sicilian, Najdorf"),
	line("e2e4,c7c5,g1f3,d7d6,d2d4,c5d4,f3d4,e7e6", "B53", "Sicilian, Taimanov"),

	line("e2e4,e7e5,g1f3,b8c6,f1b5,a7a6,b5a4,g8f6,e1g1", "C84", "Ruy López, Closed"),
	line("e2e4,c7c5,g1f3,d7d6,d2d4,c5d4,f3d4,g8f6,b1c3", "B90", "Sicilian, Najdorf"),
}

// Lookup is the ECO book's view of a move history.
type Lookup struct {
	// Current is the longest table line the history starts with, or nil.
	Current *Opening
	// InBook holds while some line still starts with the whole history.
	InBook bool
	// Candidates are the distinct next moves of the lines extending the history.
	Candidates []string
}

// ECOBook is the static prefix-indexed opening table.
type ECOBook struct {
	openings []Opening
	rng      *random.Source
}

// NewECOBook creates the book over the built-in table.
func NewECOBook(src *random.Source) *ECOBook {
	if src == nil {
		src = random.New(0)
	}
	return &ECOBook{openings: ecoTable, rng: src}
}

func hasPrefix(moves, prefix []string) bool {
	if len(prefix) > len(moves) {
		return false
	}
	for i := range prefix {
		if moves[i] != prefix[i] {
			return false
		}
	}
	return true
}

// OpeningMove is the only book reply before any move is played.
const OpeningMove = "e2e4"

// Lookup matches history against the table. An empty history has no
// current opening and OpeningMove as its single candidate.
func (b *ECOBook) Lookup(history []string) Lookup {
	if len(history) == 0 {
		return Lookup{InBook: true, Candidates: []string{OpeningMove}}
	}

	var res Lookup
	longest := 0
	for i := range b.openings {
		o := &b.openings[i]
		if len(o.Moves) > longest && hasPrefix(history, o.Moves) {
			res.Current = o
			longest = len(o.Moves)
		}
		if hasPrefix(o.Moves, history) {
			res.InBook = true
			if len(o.Moves) > len(history) {
				res.Candidates = append(res.Candidates, o.Moves[len(history)])
			}
		}
	}
	res.Candidates = lo.Uniq(res.Candidates)
	return res
}

// Recommend picks one of the distinct candidate replies uniformly.
func (b *ECOBook) Recommend(history []string) (string, bool) {
	res := b.Lookup(history)
	if len(res.Candidates) == 0 {
		return "", false
	}
	return res.Candidates[b.rng.Intn(len(res.Candidates))], true
}
