// Command renaissance plays chess against the engine in a terminal.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hailam/renaissance/internal/board"
	"github.com/hailam/renaissance/internal/book"
	"github.com/hailam/renaissance/internal/console"
	"github.com/hailam/renaissance/internal/engine"
	"github.com/hailam/renaissance/internal/orchestrator"
	"github.com/hailam/renaissance/internal/random"
	"github.com/hailam/renaissance/internal/storage"
	"github.com/hailam/renaissance/internal/tablebase"
)

var (
	depth        = flag.Int("depth", 0, "search depth in plies (overrides -difficulty)")
	difficulty   = flag.String("difficulty", "medium", "easy, medium or hard")
	personality  = flag.String("personality", "tactician", "tactician, grandmaster or oracle")
	color        = flag.String("color", "white", "side you play: white, black or both")
	moveTime     = flag.Duration("movetime", 0, "search deadline per move (0 = none)")
	books        = flag.String("book", "", "comma-separated opening book files or URLs (env RENAISSANCE_BOOKS)")
	bookTTL      = flag.Duration("book-ttl", book.DefaultChoiceTTL, "how long a book choice is reused for a position")
	tablebaseURL = flag.String("tablebase-url", tablebase.DefaultURL, "endgame tablebase service")
	noTablebase  = flag.Bool("no-tablebase", false, "never query the tablebase")
	seed         = flag.Uint64("seed", 0, "random seed (0 = system entropy)")
	dataDir      = flag.String("data-dir", "", "directory for preferences and statistics")
	logLevel     = flag.String("log-level", "warn", "log level (env RENAISSANCE_LOG)")
	cpuprofile   = flag.String("cpuprofile", "", "write cpu profile to file (env CPUPROFILE)")
)

func main() {
	flag.Parse()
	log := newLogger()

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create CPU profile")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer pprof.StopCPUProfile()
		log.Info().Str("path", profilePath).Msg("CPU profiling enabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, log); err != nil {
		log.Error().Err(err).Msg("renaissance stopped")
	}
}

func newLogger() zerolog.Logger {
	level := *logLevel
	if env := os.Getenv("RENAISSANCE_LOG"); env != "" && !isSet("log-level") {
		level = env
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.WarnLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(lvl).
		With().Timestamp().Logger()
}

func isSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func run(ctx context.Context, log zerolog.Logger) error {
	store, err := storage.Open(*dataDir, log)
	if err != nil {
		log.Warn().Err(err).Msg("storage unavailable, preferences and statistics disabled")
		store = nil
	} else {
		defer store.Close()
	}

	prefs := storage.DefaultPreferences()
	if store != nil {
		if prefs, err = store.LoadPreferences(); err != nil {
			log.Warn().Err(err).Msg("could not load preferences")
		}
	}
	// Explicit flags win over saved preferences.
	if isSet("personality") || store == nil {
		prefs.Personality = *personality
	}
	if isSet("difficulty") || store == nil {
		prefs.Difficulty = *difficulty
	}
	if isSet("color") || store == nil {
		prefs.Color = *color
	}

	p, err := engine.ParsePersonality(prefs.Personality)
	if err != nil {
		return err
	}
	diff, ok := engine.ParseDifficulty(prefs.Difficulty)
	if !ok {
		log.Warn().Str("difficulty", prefs.Difficulty).Msg("unknown difficulty, using medium")
	}
	human := board.White
	switch strings.ToLower(prefs.Color) {
	case "black":
		human = board.Black
	case "both":
		human = board.NoColor
	}

	src := random.New(*seed)

	eng := engine.NewEngine(p, src, log.With().Str("component", "engine").Logger())
	eng.SetDifficulty(diff)
	if *depth > 0 || *moveTime > 0 {
		limits := eng.Limits()
		if *depth > 0 {
			limits.Depth = *depth
		}
		limits.MoveTime = *moveTime
		eng.SetLimits(limits)
	}

	eco := book.NewECOBook(src)
	opts := []orchestrator.Option{
		orchestrator.WithECO(eco),
		orchestrator.WithLogger(log.With().Str("component", "orchestrator").Logger()),
	}

	if sources := bookSources(); len(sources) > 0 {
		var cache book.ChoiceCache = book.NewMemoryCache(*bookTTL)
		if store != nil {
			cache = store.BookCache(*bookTTL)
		}
		wb := book.NewWeightedBook(sources,
			book.WithCache(cache),
			book.WithRandom(src),
			book.WithLogger(log.With().Str("component", "book").Logger()),
		)
		wb.Start(ctx)
		opts = append(opts, orchestrator.WithBook(wb))
	}

	var prober *tablebase.CachedProber
	if !*noTablebase {
		client := tablebase.NewClient(*tablebaseURL, nil, log.With().Str("component", "tablebase").Logger())
		prober = tablebase.NewCachedProber(client, tablebase.DefaultCacheSize)
		opts = append(opts, orchestrator.WithTablebase(prober))
	}

	c := console.New(console.Config{
		Orchestrator: orchestrator.New(eng, opts...),
		Engine:       eng,
		ECO:          eco,
		Storage:      store,
		Random:       src,
		Human:        human,
		Difficulty:   diff,
		Log:          log,
	}, os.Stdout)

	runErr := c.Run(ctx, os.Stdin)

	if prober != nil {
		log.Info().
			Int("entries", prober.CacheSize()).
			Float64("hit_rate", prober.HitRate()).
			Msg("tablebase cache")
	}

	if store != nil {
		prefs.Personality = eng.Personality().Key()
		prefs.Difficulty = diff.String()
		if err := store.SavePreferences(prefs); err != nil {
			log.Warn().Err(err).Msg("could not save preferences")
		}
	}
	return runErr
}

func bookSources() []string {
	list := *books
	if list == "" {
		list = os.Getenv("RENAISSANCE_BOOKS")
	}
	var sources []string
	for _, s := range strings.Split(list, ",") {
		if s = strings.TrimSpace(s); s != "" {
			sources = append(sources, s)
		}
	}
	return sources
}
