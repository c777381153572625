package book

import (
	"sort"
	"strings"
	"testing"

	"github.com/hailam/renaissance/internal/random"
)

func moves(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func TestECOLookupCurrentOpening(t *testing.T) {
	b := NewECOBook(random.New(1))

	tests := []struct {
		history string
		code    string
		name    string
	}{
		{"e2e4", "B00", "King's Pawn Opening"},
		{"e2e4,e7e5,g1f3,b8c6", "C44", "Italian/Scotch Game"},
		{"e2e4,e7e5,g1f3,b8c6,f1c4,f8c5", "C53", "Giuoco Piano"},
		{"e2e4,e7e5,g1f3,b8c6,f1c4,f8c5,d2d3", "C53", "Giuoco Piano"},
		{"e2e4,c7c5,g1f3,d7d6,d2d4,c5d4,f3d4,e7e6", "B53", "Sicilian, Taimanov"},
		{"g1f3,d7d5,c2c4", "A06", "Réti Opening"},
	}
	for _, tc := range tests {
		t.Run(tc.history, func(t *testing.T) {
			res := b.Lookup(moves(tc.history))
			if res.Current == nil {
				t.Fatal("no current opening")
			}
			if res.Current.Code != tc.code || res.Current.Name != tc.name {
				t.Errorf("current = %s %s, want %s %s", res.Current.Code, res.Current.Name, tc.code, tc.name)
			}
		})
	}
}

func TestECOLookupOutOfBook(t *testing.T) {
	b := NewECOBook(random.New(1))

	res := b.Lookup(moves("a2a3"))
	if res.Current != nil || res.InBook || len(res.Candidates) != 0 {
		t.Errorf("a2a3: %+v", res)
	}

	// Known opening, but no line continues it.
	res = b.Lookup(moves("e2e4,e7e5,g1f3,b8c6,f1c4,f8c5,d2d3"))
	if res.InBook {
		t.Error("still in book after leaving every line")
	}
	if _, ok := b.Recommend(moves("e2e4,e7e5,g1f3,b8c6,f1c4,f8c5,d2d3")); ok {
		t.Error("recommendation out of book")
	}

	// The last move of a line is still in book, with nothing to play.
	res = b.Lookup(moves("e2e4,e7e5,g1f3,b8c6,f1b5,a7a6,b5a4,g8f6,e1g1"))
	if !res.InBook || len(res.Candidates) != 0 {
		t.Errorf("end of line: %+v", res)
	}
}

func TestECOCandidatesAreDistinct(t *testing.T) {
	b := NewECOBook(random.New(1))

	tests := []struct {
		history string
		want    []string
	}{
		{"", []string{"e2e4"}},
		{"e2e4,e7e5,g1f3,b8c6", []string{"d2d4", "f1b5", "f1c4"}},
		{"e2e4,c7c5,g1f3,d7d6,d2d4,c5d4,f3d4", []string{"e7e6", "g8f6"}},
	}
	for _, tc := range tests {
		t.Run(tc.history, func(t *testing.T) {
			got := b.Lookup(moves(tc.history)).Candidates
			sort.Strings(got)
			if strings.Join(got, ",") != strings.Join(tc.want, ",") {
				t.Errorf("candidates = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestECORecommendIsUniform(t *testing.T) {
	b := NewECOBook(random.New(4))
	history := moves("e2e4,e7e5,g1f3,b8c6")

	counts := map[string]int{}
	const n = 3000
	for i := 0; i < n; i++ {
		m, ok := b.Recommend(history)
		if !ok {
			t.Fatal("no recommendation")
		}
		counts[m]++
	}
	// f1c4 heads four lines but must not be favoured.
	for _, m := range []string{"d2d4", "f1b5", "f1c4"} {
		if c := counts[m]; c < 850 || c > 1150 {
			t.Errorf("%s chosen %d/%d times, want about 1000", m, c, n)
		}
	}
}

func TestECOFirstMoveIsKingsPawn(t *testing.T) {
	b := NewECOBook(random.New(2))
	for i := 0; i < 50; i++ {
		if m, ok := b.Recommend(nil); !ok || m != OpeningMove {
			t.Fatalf("Recommend(nil) = %q, %v, want %s", m, ok, OpeningMove)
		}
	}
	if res := b.Lookup(nil); res.Current != nil || !res.InBook {
		t.Errorf("empty history: %+v", res)
	}
}
