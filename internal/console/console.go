// Package console implements a line-oriented text front-end for playing
// against the engine. It is not a UCI implementation.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/hailam/renaissance/internal/board"
	"github.com/hailam/renaissance/internal/book"
	"github.com/hailam/renaissance/internal/engine"
	"github.com/hailam/renaissance/internal/orchestrator"
	"github.com/hailam/renaissance/internal/random"
	"github.com/hailam/renaissance/internal/storage"
)

// Config wires a Console to its collaborators. Storage may be nil.
type Config struct {
	Orchestrator *orchestrator.Orchestrator
	Engine       *engine.Engine
	ECO          *book.ECOBook
	Storage      *storage.Storage
	Random       *random.Source

	// Human is the side the user plays. NoColor lets the user move
	// both sides; the engine then only moves on "go".
	Human      board.Color
	Difficulty engine.Difficulty
	Log        zerolog.Logger
}

// Console plays one game at a time against the engine.
type Console struct {
	cfg      Config
	out      io.Writer
	position *board.Position
	started  time.Time
	over     bool
}

// New creates a console writing to out, with a fresh game set up.
func New(cfg Config, out io.Writer) *Console {
	c := &Console{cfg: cfg, out: out}
	c.reset(nil)
	return c
}

// Position returns the current game position.
func (c *Console) Position() *board.Position {
	return c.position
}

func (c *Console) reset(pos *board.Position) {
	if pos == nil {
		pos = board.NewSeededPosition(c.cfg.Random)
	}
	c.position = pos
	c.started = time.Now()
	c.over = false
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// Run reads commands from in until "quit", end of input or ctx ends.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	c.printf("Renaissance vs %s (%s)\n", c.cfg.Engine.Personality(), c.cfg.Difficulty)
	c.engineTurn(ctx)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "quit", "exit":
			return nil
		case "new":
			c.reset(nil)
			c.printf("new game\n")
			c.engineTurn(ctx)
		case "load":
			c.handleLoad(ctx, args)
		case "move":
			if len(args) == 0 {
				c.printf("usage: move <from><to>\n")
				continue
			}
			c.handleMove(ctx, args[0])
		case "go":
			c.computerMove(ctx)
		case "hint":
			c.handleHint(ctx)
		case "fen":
			c.printf("%s\n", c.position.ToFEN())
		case "d":
			c.printf("%s", c.position.String())
		case "moves":
			c.handleMoves()
		case "history":
			c.printf("%s\n", strings.Join(c.position.SANHistory(), " "))
		case "opening":
			c.handleOpening()
		case "perft":
			c.handlePerft(args)
		case "personality":
			c.handlePersonality(args)
		case "help":
			c.printf("commands: new, load <fen>, move <uci>, go, hint, fen, d, moves, history, opening, perft <n>, personality <name>, quit\n")
		default:
			if _, err := board.ParseMove(cmd); err == nil {
				c.handleMove(ctx, cmd)
				continue
			}
			c.printf("unknown command %q\n", cmd)
		}
	}
	return errors.Wrap(scanner.Err(), "read commands")
}

// handleLoad sets up a position from FEN: load <fen fields...>
func (c *Console) handleLoad(ctx context.Context, args []string) {
	pos, err := board.ParseFEN(strings.Join(args, " "), c.position.Zobrist())
	if err != nil {
		c.printf("error: %v\n", err)
		return
	}
	c.reset(pos)
	c.printf("%s\n", pos.ToFEN())
	c.checkGameEnd()
	c.engineTurn(ctx)
}

func (c *Console) handleMove(ctx context.Context, uci string) {
	if c.over {
		c.printf("game over, type new\n")
		return
	}
	if _, err := c.position.PlayUCI(uci); err != nil {
		c.printf("illegal move: %s\n", uci)
		c.cfg.Log.Debug().Err(err).Msg("rejected move")
		return
	}
	c.printf("you: %s\n", lastSAN(c.position))
	if c.checkGameEnd() {
		return
	}
	c.engineTurn(ctx)
}

// engineTurn moves for the engine when it is not the human's turn.
func (c *Console) engineTurn(ctx context.Context) {
	if c.over || c.cfg.Human == board.NoColor || c.position.SideToMove == c.cfg.Human {
		return
	}
	c.computerMove(ctx)
}

func (c *Console) computerMove(ctx context.Context) {
	if c.over {
		c.printf("game over, type new\n")
		return
	}
	m, src, err := c.cfg.Orchestrator.BestMove(ctx, c.position)
	if err != nil {
		c.printf("error: %v\n", err)
		return
	}
	if err := c.position.Play(m); err != nil {
		c.printf("error: %v\n", err)
		return
	}
	c.printf("renaissance: %s (%s)\n", lastSAN(c.position), src)
	c.checkGameEnd()
}

func (c *Console) handleHint(ctx context.Context) {
	m, src, err := c.cfg.Orchestrator.Hint(ctx, c.position)
	if err != nil {
		c.printf("no hint: %v\n", err)
		return
	}
	c.printf("hint: %s %s (%s)\n", m, c.position.ToSAN(m), src)
}

func (c *Console) handleMoves() {
	moves := lo.Map(c.position.LegalMoves(), func(m board.Move, _ int) string {
		return m.String()
	})
	c.printf("%d: %s\n", len(moves), strings.Join(moves, " "))
}

func (c *Console) handleOpening() {
	res := c.cfg.ECO.Lookup(c.position.UCIHistory())
	if res.Current != nil {
		c.printf("%s %s\n", res.Current.Code, res.Current.Name)
	} else {
		c.printf("no named opening\n")
	}
	if res.InBook && len(res.Candidates) > 0 {
		c.printf("book moves: %s\n", strings.Join(res.Candidates, " "))
	} else if !res.InBook {
		c.printf("out of book\n")
	}
}

func (c *Console) handlePerft(args []string) {
	depth := 3
	if len(args) > 0 {
		d, err := strconv.Atoi(args[0])
		if err != nil || d < 1 {
			c.printf("usage: perft <depth>\n")
			return
		}
		depth = d
	}

	start := time.Now()
	nodes := c.position.Perft(depth)
	elapsed := time.Since(start)

	c.printf("nodes %d\n", nodes)
	c.printf("time %v\n", elapsed)
	if elapsed > 0 {
		c.printf("nps %.0f\n", float64(nodes)/elapsed.Seconds())
	}
}

func (c *Console) handlePersonality(args []string) {
	if len(args) == 0 {
		c.printf("%s\n", c.cfg.Engine.Personality())
		return
	}
	p, err := engine.ParsePersonality(strings.Join(args, " "))
	if err != nil {
		c.printf("error: %v\n", err)
		return
	}
	c.cfg.Engine.SetPersonality(p)
	c.printf("playing against %s\n", p)
}

// checkGameEnd announces checkmate or stalemate and records the result.
func (c *Console) checkGameEnd() bool {
	stm := c.position.SideToMove
	switch {
	case c.position.IsCheckmate(stm):
		c.printf("checkmate, %s wins\n", stm.Other())
		c.finish(stm.Other(), false)
	case c.position.IsStalemate(stm):
		c.printf("stalemate\n")
		c.finish(board.NoColor, true)
	default:
		return false
	}
	return true
}

func (c *Console) finish(winner board.Color, draw bool) {
	c.over = true
	if c.cfg.Storage == nil || c.cfg.Human == board.NoColor {
		return
	}
	result := storage.GameResult{
		Won:         !draw && winner == c.cfg.Human,
		Draw:        draw,
		Difficulty:  c.cfg.Difficulty.String(),
		Personality: c.cfg.Engine.Personality().Key(),
		Plies:       c.position.Plies(),
		Duration:    time.Since(c.started),
	}
	if err := c.cfg.Storage.RecordGame(result); err != nil {
		c.cfg.Log.Warn().Err(err).Msg("could not record game")
	}
}

func lastSAN(pos *board.Position) string {
	san := pos.SANHistory()
	if len(san) == 0 {
		return ""
	}
	return san[len(san)-1]
}
