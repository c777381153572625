package tablebase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/hailam/renaissance/internal/board"
)

// DefaultURL is the public Lichess tablebase.
const DefaultURL = "https://tablebase.lichess.ovh"

// Client queries a Lichess-compatible tablebase over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient creates a client for baseURL. An empty baseURL uses DefaultURL.
func NewClient(baseURL string, httpClient *http.Client, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    httpClient,
		log:     log,
	}
}

// Query fetches the tablebase answer for a FEN.
func (c *Client) Query(ctx context.Context, fen string) (*Response, error) {
	u := c.baseURL + "/standard?fen=" + url.QueryEscape(fen)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build tablebase request")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "tablebase request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("tablebase returned %s", resp.Status)
	}

	var result Response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.Wrap(err, "decode tablebase response")
	}
	return &result, nil
}

// BestMove queries the position and applies SelectMove. Every failure is
// logged and reported as ErrUnavailable.
func (c *Client) BestMove(ctx context.Context, pos *board.Position) (board.Move, error) {
	if n := pos.PieceCount(); n > MaxPieces {
		return board.NoMove, errors.Wrapf(ErrUnavailable, "%d pieces", n)
	}

	fen := pos.ToFEN()
	resp, err := c.Query(ctx, fen)
	if err != nil {
		c.log.Warn().Err(err).Str("fen", fen).Msg("tablebase query failed")
		return board.NoMove, errors.Wrap(ErrUnavailable, err.Error())
	}

	uci, ok := SelectMove(resp)
	if !ok {
		return board.NoMove, errors.Wrap(ErrUnavailable, "no moves in response")
	}
	m, err := board.ParseMove(uci)
	if err != nil {
		c.log.Warn().Err(err).Str("uci", uci).Msg("tablebase move unreadable")
		return board.NoMove, errors.Wrap(ErrUnavailable, err.Error())
	}

	c.log.Debug().Str("fen", fen).Str("move", uci).Str("category", resp.Category).Msg("tablebase hit")
	return m, nil
}
