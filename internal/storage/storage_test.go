package storage

import (
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/renaissance/internal/book"
)

var _ book.ChoiceCache = (*BookCache)(nil)

func openTest(t *testing.T) *Storage {
	t.Helper()
	s, err := OpenInMemory(zerolog.Nop())
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPreferences(t *testing.T) {
	s := openTest(t)

	prefs, err := s.LoadPreferences()
	if err != nil {
		t.Fatal(err)
	}
	if *prefs != *DefaultPreferences() {
		t.Errorf("fresh database: got %+v, want defaults", prefs)
	}

	prefs.Personality = "oracle"
	prefs.Difficulty = "hard"
	prefs.Color = "black"
	if err := s.SavePreferences(prefs); err != nil {
		t.Fatal(err)
	}

	got, err := s.LoadPreferences()
	if err != nil {
		t.Fatal(err)
	}
	if got.Personality != "oracle" || got.Difficulty != "hard" || got.Color != "black" {
		t.Errorf("round trip: got %+v", got)
	}
	if got.LastPlayed.IsZero() {
		t.Error("LastPlayed not set on save")
	}
}

func TestRecordGame(t *testing.T) {
	s := openTest(t)

	results := []GameResult{
		{Won: true, Difficulty: "easy", Plies: 40},
		{Won: true, Difficulty: "hard", Plies: 60},
		{Draw: true, Plies: 80},
		{Personality: "oracle", Plies: 20},
		{Won: true, Difficulty: "hard", Plies: 30},
	}
	for _, r := range results {
		if err := s.RecordGame(r); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := s.LoadStats()
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name      string
		got, want int
	}{
		{"games", stats.GamesPlayed, 5},
		{"wins", stats.Wins, 3},
		{"losses", stats.Losses, 1},
		{"draws", stats.Draws, 1},
		{"plies", stats.TotalPlies, 230},
		{"longest streak", stats.LongestWinStrk, 2},
		{"current streak", stats.CurrentStreak, 1},
		{"hard wins", stats.WinsByDiff["hard"], 2},
		{"oracle losses", stats.LossesByPersona["oracle"], 1},
	}
	for _, tc := range tests {
		if tc.got != tc.want {
			t.Errorf("%s = %d, want %d", tc.name, tc.got, tc.want)
		}
	}
	if rate := stats.WinRate(); rate != 60 {
		t.Errorf("win rate = %.2f, want 60", rate)
	}
}

func TestWinRateEmpty(t *testing.T) {
	if rate := NewGameStats().WinRate(); rate != 0 {
		t.Errorf("empty stats win rate = %.2f", rate)
	}
}

func TestBookCache(t *testing.T) {
	s := openTest(t)
	c := s.BookCache(time.Hour)

	if _, ok := c.Get("ABC"); ok {
		t.Fatal("hit on empty cache")
	}
	c.Put("ABC", "e2e4")
	if uci, ok := c.Get("ABC"); !ok || uci != "e2e4" {
		t.Errorf("Get = %q, %v", uci, ok)
	}
	if _, ok := c.Get("ABD"); ok {
		t.Error("hit for unrelated key")
	}
}

func TestBookCacheExpiry(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for a badger TTL")
	}
	s := openTest(t)
	c := s.BookCache(time.Second)

	c.Put("ABC", "e2e4")
	time.Sleep(2100 * time.Millisecond)
	if _, ok := c.Get("ABC"); ok {
		t.Error("entry still present after its TTL")
	}
}

func TestOpenOnDisk(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	prefs := DefaultPreferences()
	prefs.Color = "black"
	if err := s.SavePreferences(prefs); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(dir, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	got, err := s.LoadPreferences()
	if err != nil {
		t.Fatal(err)
	}
	if got.Color != "black" {
		t.Errorf("color after reopen = %q", got.Color)
	}
}

func TestDataPaths(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	dataDir, err := DataDir()
	if err != nil {
		t.Fatalf("DataDir failed: %v", err)
	}
	if _, err := os.Stat(dataDir); err != nil {
		t.Errorf("data directory was not created: %v", err)
	}

	dbDir, err := DatabaseDir("")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(dbDir); err != nil {
		t.Errorf("database directory was not created: %v", err)
	}
}
