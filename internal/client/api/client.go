// Package api is the HTTP client for the game search and statistics backend.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"chessdb/internal/core"
	"chessdb/internal/game"
	"chessdb/internal/position"
	"chessdb/internal/query"
)

const DefaultTimeout = 30 * time.Second

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		Logger: logger,
	}
}

// SetBaseURL updates the API base URL for the client
func (c *Client) SetBaseURL(u string) {
	c.BaseURL = strings.TrimRight(u, "/")
}

// doRequest issues a GET and decodes a JSON body into result. Every failure
// to get a 2xx response is a *core.TransportError.
func (c *Client) doRequest(ctx context.Context, path string, result any) error {
	requestID := uuid.New().String()
	start := time.Now()
	log := c.Logger.With(
		slog.String("method", http.MethodGet),
		slog.String("path", path),
		slog.String("request_id", requestID),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return &core.TransportError{Method: http.MethodGet, Path: path, Cause: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	log.Debug("api request")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		log.Debug("api request failed", slog.String("error", err.Error()))
		return &core.TransportError{Method: http.MethodGet, Path: path, Cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &core.TransportError{Method: http.MethodGet, Path: path, StatusCode: resp.StatusCode, Cause: err}
	}

	log.Debug("api response",
		slog.Int("status", resp.StatusCode),
		slog.Int("size", len(respBody)),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		te := &core.TransportError{Method: http.MethodGet, Path: path, StatusCode: resp.StatusCode}
		var errResp core.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			te.Code = errResp.Code
			te.Details = errResp.Error
			if errResp.Details != "" {
				te.Details += ": " + errResp.Details
			}
		} else {
			te.Details = http.StatusText(resp.StatusCode)
		}
		return te
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("%w: %s", core.ErrInvalidPayload, err)
		}
	}
	return nil
}

func expectKind(d query.Descriptor, kind query.Kind) error {
	if d.Kind != kind {
		return fmt.Errorf("descriptor kind %q, want %q", d.Kind, kind)
	}
	return nil
}

// API Methods

// TopMoves runs a /get_moves query.
func (c *Client) TopMoves(ctx context.Context, d query.Descriptor) ([]MoveStat, error) {
	if err := expectKind(d, query.KindTopMoves); err != nil {
		return nil, err
	}
	var rows []MoveStat
	if err := c.doRequest(ctx, d.Path(), &rows); err != nil {
		return nil, err
	}
	if err := checkRows(rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Games runs a /get_games query.
func (c *Client) Games(ctx context.Context, d query.Descriptor) ([]GameSummary, error) {
	if err := expectKind(d, query.KindGames); err != nil {
		return nil, err
	}
	var rows []GameSummary
	if err := c.doRequest(ctx, d.Path(), &rows); err != nil {
		return nil, err
	}
	if err := checkRows(rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// OutcomesByElo runs a /get_outcomes_by_elo query.
func (c *Client) OutcomesByElo(ctx context.Context, d query.Descriptor) ([]EloOutcome, error) {
	if err := expectKind(d, query.KindOutcomesByElo); err != nil {
		return nil, err
	}
	var rows []EloOutcome
	if err := c.doRequest(ctx, d.Path(), &rows); err != nil {
		return nil, err
	}
	if err := checkRows(rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Fetch dispatches d to the endpoint for its kind.
func (c *Client) Fetch(ctx context.Context, d query.Descriptor) (any, error) {
	switch d.Kind {
	case query.KindTopMoves:
		return c.TopMoves(ctx, d)
	case query.KindGames:
		return c.Games(ctx, d)
	case query.KindOutcomesByElo:
		return c.OutcomesByElo(ctx, d)
	default:
		return nil, fmt.Errorf("unknown query kind %q", d.Kind)
	}
}

// Game fetches one recorded game and builds its log. Every move record
// must carry a decodable pre-move position.
func (c *Client) Game(ctx context.Context, id int) (game.GameLog, error) {
	params := url.Values{}
	params.Set("game_id", strconv.Itoa(id))

	var payload gamePayload
	if err := c.doRequest(ctx, "/get_game?"+params.Encode(), &payload); err != nil {
		return game.GameLog{}, err
	}
	if err := checkStruct(payload); err != nil {
		return game.GameLog{}, err
	}

	meta := game.Meta{
		ID:       strconv.Itoa(id),
		White:    payload.Data.White,
		Black:    payload.Data.Black,
		WhiteElo: payload.Data.WhiteElo,
		BlackElo: payload.Data.BlackElo,
		Event:    payload.Data.Event,
		Date:     payload.Data.Date,
		Outcome:  core.Result(payload.Data.Outcome),
	}

	moves := make([]game.MoveRecord, 0, len(payload.Moves))
	for i, m := range payload.Moves {
		before, err := position.Parse(m.FenBefore)
		if err != nil {
			return game.GameLog{}, errors.Join(fmt.Errorf("%w: move %d", core.ErrInvalidPayload, i), err)
		}
		moves = append(moves, game.MoveRecord{Before: before, SAN: m.SAN, TurnNo: m.TurnNo})
	}
	return game.NewLog(meta, moves), nil
}

// Raw performs a GET and returns the body as undecoded JSON.
func (c *Client) Raw(ctx context.Context, path string) (json.RawMessage, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	var raw json.RawMessage
	if err := c.doRequest(ctx, path, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
