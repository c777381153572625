package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Storage keys
const (
	keyPreferences = "preferences"
	keyStats       = "stats"
	bookKeyPrefix  = "book:"
)

// Preferences stores user settings. Values use the names accepted by the
// command-line flags.
type Preferences struct {
	Personality string    `json:"personality"`
	Difficulty  string    `json:"difficulty"`
	Color       string    `json:"color"`
	LastPlayed  time.Time `json:"last_played"`
}

// DefaultPreferences returns default user preferences.
func DefaultPreferences() *Preferences {
	return &Preferences{
		Personality: "tactician",
		Difficulty:  "medium",
		Color:       "white",
	}
}

// GameStats stores game statistics.
type GameStats struct {
	GamesPlayed     int            `json:"games_played"`
	Wins            int            `json:"wins"`
	Losses          int            `json:"losses"`
	Draws           int            `json:"draws"`
	WinsByDiff      map[string]int `json:"wins_by_difficulty"`
	LossesByPersona map[string]int `json:"losses_by_personality"`
	TotalPlies      int            `json:"total_plies"`
	TotalPlayTime   time.Duration  `json:"total_play_time"`
	LongestWinStrk  int            `json:"longest_win_streak"`
	CurrentStreak   int            `json:"current_streak"`
}

// NewGameStats returns empty game statistics.
func NewGameStats() *GameStats {
	return &GameStats{
		WinsByDiff:      make(map[string]int),
		LossesByPersona: make(map[string]int),
	}
}

// WinRate returns the win rate as a percentage (0-100).
func (s *GameStats) WinRate() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.GamesPlayed) * 100
}

// GameResult is the outcome of a finished game from the human's side.
type GameResult struct {
	Won         bool
	Draw        bool
	Difficulty  string
	Personality string
	Plies       int
	Duration    time.Duration
}

// Storage wraps BadgerDB for persistent storage.
type Storage struct {
	db  *badger.DB
	log zerolog.Logger
}

// Open opens (creating if needed) the database under dataDir. An empty
// dataDir uses the platform data directory.
func Open(dataDir string, log zerolog.Logger) (*Storage, error) {
	dbDir, err := DatabaseDir(dataDir)
	if err != nil {
		return nil, err
	}
	s, err := open(badger.DefaultOptions(dbDir), log)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("dir", dbDir).Msg("storage opened")
	return s, nil
}

// OpenInMemory opens a database that lives only as long as the process.
func OpenInMemory(log zerolog.Logger) (*Storage, error) {
	return open(badger.DefaultOptions("").WithInMemory(true), log)
}

func open(opts badger.Options, log zerolog.Logger) (*Storage, error) {
	opts.Logger = badgerLogger{log: log.With().Str("component", "badger").Logger()}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "open badger")
	}
	return &Storage{db: db, log: log}, nil
}

// Close closes the database.
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Storage) putJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encode %s", key)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// getJSON decodes key into v. A missing key leaves v untouched.
func (s *Storage) getJSON(key string, v any) error {
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
	return errors.Wrapf(err, "load %s", key)
}

// SavePreferences saves user preferences.
func (s *Storage) SavePreferences(prefs *Preferences) error {
	prefs.LastPlayed = time.Now()
	return s.putJSON(keyPreferences, prefs)
}

// LoadPreferences loads user preferences, returns defaults if not found.
func (s *Storage) LoadPreferences() (*Preferences, error) {
	prefs := DefaultPreferences()
	return prefs, s.getJSON(keyPreferences, prefs)
}

// SaveStats saves game statistics.
func (s *Storage) SaveStats(stats *GameStats) error {
	return s.putJSON(keyStats, stats)
}

// LoadStats loads game statistics, returns empty stats if not found.
func (s *Storage) LoadStats() (*GameStats, error) {
	stats := NewGameStats()
	if err := s.getJSON(keyStats, stats); err != nil {
		return stats, err
	}
	if stats.WinsByDiff == nil {
		stats.WinsByDiff = make(map[string]int)
	}
	if stats.LossesByPersona == nil {
		stats.LossesByPersona = make(map[string]int)
	}
	return stats, nil
}

// RecordGame records a completed game and updates statistics.
func (s *Storage) RecordGame(result GameResult) error {
	stats, err := s.LoadStats()
	if err != nil {
		return err
	}

	stats.GamesPlayed++
	stats.TotalPlies += result.Plies
	stats.TotalPlayTime += result.Duration

	switch {
	case result.Draw:
		stats.Draws++
		stats.CurrentStreak = 0
	case result.Won:
		stats.Wins++
		stats.CurrentStreak++
		if stats.CurrentStreak > stats.LongestWinStrk {
			stats.LongestWinStrk = stats.CurrentStreak
		}
		stats.WinsByDiff[result.Difficulty]++
	default:
		stats.Losses++
		stats.CurrentStreak = 0
		stats.LossesByPersona[result.Personality]++
	}

	s.log.Info().
		Int("games", stats.GamesPlayed).
		Float64("win_rate", stats.WinRate()).
		Msg("game recorded")
	return s.SaveStats(stats)
}

// BookCache remembers opening-book choices in the database. Entries
// expire after ttl.
type BookCache struct {
	db  *badger.DB
	ttl time.Duration
	log zerolog.Logger
}

// BookCache returns a book choice cache backed by this database.
func (s *Storage) BookCache(ttl time.Duration) *BookCache {
	return &BookCache{db: s.db, ttl: ttl, log: s.log}
}

// Get returns the cached move for a position key.
func (c *BookCache) Get(key string) (string, bool) {
	var uci string
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(bookKeyPrefix + key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			uci = string(val)
			return nil
		})
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			c.log.Warn().Err(err).Str("key", key).Msg("book cache read failed")
		}
		return "", false
	}
	return uci, true
}

// Put stores a move for a position key.
func (c *BookCache) Put(key, uci string) {
	err := c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(bookKeyPrefix+key), []byte(uci))
		if c.ttl > 0 {
			e = e.WithTTL(c.ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("book cache write failed")
	}
}

// badgerLogger routes badger's logging through zerolog.
type badgerLogger struct {
	log zerolog.Logger
}

func trim(format string, args []any) string {
	return strings.TrimSpace(fmt.Sprintf(format, args...))
}

func (l badgerLogger) Errorf(format string, args ...any) {
	l.log.Error().Msg(trim(format, args))
}

func (l badgerLogger) Warningf(format string, args ...any) {
	l.log.Warn().Msg(trim(format, args))
}

func (l badgerLogger) Infof(format string, args ...any) {
	l.log.Debug().Msg(trim(format, args))
}

func (l badgerLogger) Debugf(format string, args ...any) {
	l.log.Trace().Msg(trim(format, args))
}
