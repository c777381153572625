package board

import (
	"sort"
	"testing"

	"github.com/notnil/chess"

	"github.com/hailam/renaissance/internal/random"
)

// legalSet returns the sorted coordinate strings of the legal moves.
func legalSet(pos *Position) []string {
	var out []string
	for _, m := range pos.LegalMoves() {
		out = append(out, m.String())
	}
	sort.Strings(out)
	return out
}

// referenceSet asks notnil/chess for the legal moves of fen, collapsing
// the four promotion choices into one from/to pair.
func referenceSet(t *testing.T, fen string) []string {
	t.Helper()
	opt, err := chess.FEN(fen)
	if err != nil {
		t.Fatalf("reference FEN %q: %v", fen, err)
	}
	game := chess.NewGame(opt)
	seen := make(map[string]bool)
	var out []string
	for _, m := range game.ValidMoves() {
		s := m.S1().String() + m.S2().String()
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Positions without castling rights, where both generators must agree.
var referencePositions = []string{
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1",
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w - - 0 1",
	"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w - - 0 1",
	"r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10",
	"4k3/1P6/8/8/8/8/6p1/4K3 w - - 0 1",
	"4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1",
	"R6k/6pp/8/8/8/8/8/K7 b - - 0 1",
}

func TestLegalMovesMatchReference(t *testing.T) {
	for _, fen := range referencePositions {
		t.Run(fen, func(t *testing.T) {
			pos, err := ParseFEN(fen, nil)
			if err != nil {
				t.Fatalf("ParseFEN: %v", err)
			}
			got := legalSet(pos)
			want := referenceSet(t, fen)
			if !equalStrings(got, want) {
				t.Errorf("legal moves differ\n got: %v\nwant: %v", got, want)
			}
		})
	}
}

func TestRandomGamesMatchReference(t *testing.T) {
	src := random.New(99)
	for game := 0; game < 20; game++ {
		pos, err := ParseFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1", nil)
		if err != nil {
			t.Fatal(err)
		}
		for ply := 0; ply < 60; ply++ {
			moves := pos.LegalMoves()
			if len(moves) == 0 {
				break
			}
			fen := pos.ToFEN()
			if got, want := legalSet(pos), referenceSet(t, fen); !equalStrings(got, want) {
				t.Fatalf("game %d ply %d (%s): got %v, want %v", game, ply, fen, got, want)
			}
			pos.MakeMove(moves[src.Intn(len(moves))])
		}
	}
}

func TestLegalMovesNeverLeaveKingInCheck(t *testing.T) {
	src := random.New(5)
	pos := NewSeededPosition(src)
	for ply := 0; ply < 200; ply++ {
		moves := pos.LegalMoves()
		if len(moves) == 0 {
			break
		}
		us := pos.SideToMove
		for _, m := range moves {
			child := pos.Clone()
			child.MakeMove(m)
			if child.IsInCheck(us) {
				t.Fatalf("%s leaves %s king in check in %s", m, us, pos.ToFEN())
			}
		}
		pos.MakeMove(moves[src.Intn(len(moves))])
	}
}

func TestLegalMovesFrom(t *testing.T) {
	pos := NewPosition()

	tests := []struct {
		name string
		sq   Square
		want int
	}{
		{"empty square", E4, 0},
		{"opponent piece", E7, 0},
		{"pawn", E2, 2},
		{"knight", G1, 2},
		{"blocked bishop", F1, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := len(pos.LegalMovesFrom(tc.sq)); got != tc.want {
				t.Errorf("LegalMovesFrom(%s) = %d moves, want %d", tc.sq, got, tc.want)
			}
		})
	}
}

func TestAttacksFromNeverCastles(t *testing.T) {
	pos, err := ParseFEN("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", nil)
	if err != nil {
		t.Fatal(err)
	}
	dests := pos.AttacksFrom(E1)
	if dests.IsSet(G1) || dests.IsSet(C1) {
		t.Errorf("king destinations include castling squares:\n%s", dests)
	}
}

func TestPlayRejectsIllegalMove(t *testing.T) {
	pos := NewPosition()
	before := pos.ToFEN()
	hash := pos.Hash

	for _, s := range []string{"e2e5", "e7e5", "e1e2", "a1a1"} {
		if _, err := pos.PlayUCI(s); err == nil {
			t.Errorf("PlayUCI(%s) succeeded, want error", s)
		}
	}
	if pos.ToFEN() != before || pos.Hash != hash || pos.Plies() != 0 {
		t.Error("rejected move mutated the position")
	}
}

func TestPromotionAlwaysQueen(t *testing.T) {
	pos, err := ParseFEN("8/P6k/8/8/8/8/8/K7 w - - 0 1", nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := pos.Play(NewMove(A7, A8)); err != nil {
		t.Fatal(err)
	}
	if got := pos.PieceAt(A8); got != WhiteQueen {
		t.Errorf("a8 holds %v, want Q", got)
	}
	if pos.Hash != pos.ComputeHash() {
		t.Error("hash mismatch after promotion")
	}
}

func TestEnPassantCapture(t *testing.T) {
	pos, err := ParseFEN("4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1", nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := pos.Play(NewMove(E5, D6)); err != nil {
		t.Fatal(err)
	}
	if !pos.IsEmpty(D5) {
		t.Error("captured pawn still on d5")
	}
	if got := pos.PieceAt(D6); got != WhitePawn {
		t.Errorf("d6 holds %v, want P", got)
	}
	if got := pos.SANHistory()[0]; got != "exd6" {
		t.Errorf("SAN = %q, want exd6", got)
	}
}

func TestCastlingRightsRevocation(t *testing.T) {
	tests := []struct {
		name  string
		fen   string
		moves []string
		want  CastlingRights
	}{
		{"king move", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", []string{"e1e2"}, BlackKingSideCastle | BlackQueenSideCastle},
		{"queen rook", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", []string{"a1b1"}, WhiteKingSideCastle | BlackKingSideCastle | BlackQueenSideCastle},
		{"rook captured", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", []string{"h1h8"}, WhiteQueenSideCastle | BlackQueenSideCastle},
		{"black king", "r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1", []string{"e8d8"}, WhiteKingSideCastle | WhiteQueenSideCastle},
		{"lost right stays lost", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", []string{"a1a2", "a8a7", "a2a1"}, WhiteKingSideCastle | BlackKingSideCastle},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := ParseFEN(tc.fen, nil)
			if err != nil {
				t.Fatal(err)
			}
			for _, s := range tc.moves {
				if _, err := pos.PlayUCI(s); err != nil {
					t.Fatalf("play %s: %v", s, err)
				}
				if pos.Hash != pos.ComputeHash() {
					t.Fatalf("hash mismatch after %s", s)
				}
			}
			if pos.CastlingRights != tc.want {
				t.Errorf("rights = %s, want %s", pos.CastlingRights, tc.want)
			}
		})
	}
}
