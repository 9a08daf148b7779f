// Package session couples the free board, its query feeds and the replay
// timeline, and switches between search and replay mode.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"chessdb/internal/client/feed"
	"chessdb/internal/freeboard"
	"chessdb/internal/game"
	"chessdb/internal/query"
	"chessdb/internal/rules"
)

type Mode int

const (
	ModeSearch Mode = iota
	ModeReplay
)

func (m Mode) String() string {
	if m == ModeReplay {
		return "replay"
	}
	return "search"
}

var (
	ErrNotSearching = errors.New("not in search mode")
	ErrNotReplaying = errors.New("not in replay mode")
)

// GameSource fetches a recorded game by id.
type GameSource interface {
	Game(ctx context.Context, id int) (game.GameLog, error)
}

// Session is driven from a single goroutine. Fetches run elsewhere and
// come back through Drain or Wait.
type Session struct {
	applier rules.Applier
	source  GameSource
	logger  *slog.Logger

	board       *freeboard.Controller
	completions chan feed.Completion
	top         *feed.Feed
	games       *feed.Feed
	outcomes    *feed.Feed

	mode     Mode
	timeline *game.Timeline
}

// New starts in search mode at the initial position and issues its first
// queries.
func New(ctx context.Context, applier rules.Applier, fetcher feed.Fetcher, source GameSource, builder query.Builder, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	completions := make(chan feed.Completion, 32)

	s := &Session{
		applier:     applier,
		source:      source,
		logger:      logger,
		board:       freeboard.New(applier),
		completions: completions,
		top:         feed.New(ctx, query.KindTopMoves, builder, fetcher, completions, logger),
		games:       feed.New(ctx, query.KindGames, builder, fetcher, completions, logger),
		outcomes:    feed.New(ctx, query.KindOutcomesByElo, builder, fetcher, completions, logger),
	}
	for _, f := range s.Feeds() {
		s.board.Subscribe(f)
		f.PositionChanged(s.board.Key())
	}
	return s
}

func (s *Session) Mode() Mode {
	return s.mode
}

func (s *Session) Board() *freeboard.Controller {
	return s.board
}

func (s *Session) TopMoves() *feed.Feed {
	return s.top
}

func (s *Session) Games() *feed.Feed {
	return s.games
}

func (s *Session) Outcomes() *feed.Feed {
	return s.outcomes
}

func (s *Session) Feeds() []*feed.Feed {
	return []*feed.Feed{s.top, s.games, s.outcomes}
}

// Move tries a free-board move. Accepted moves re-query every feed.
func (s *Session) Move(from, to string) (freeboard.Outcome, error) {
	if s.mode != ModeSearch {
		return freeboard.Rejected, ErrNotSearching
	}
	return s.board.TryMove(from, to), nil
}

// SetFilters replaces the game search filters.
func (s *Session) SetFilters(f query.Filters) error {
	if s.mode != ModeSearch {
		return ErrNotSearching
	}
	s.games.SetFilters(f)
	return nil
}

// EnterReplay fetches game id and replays it from the initial position.
// The free board and feeds keep their state; feeds stop applying results.
func (s *Session) EnterReplay(ctx context.Context, id int) error {
	log, err := s.source.Game(ctx, id)
	if err != nil {
		return fmt.Errorf("load game %d: %w", id, err)
	}

	s.timeline = game.NewTimeline(log, s.applier)
	s.mode = ModeReplay
	for _, f := range s.Feeds() {
		f.SetActive(false)
	}
	s.logger.Debug("replay entered", slog.String("game_id", log.Meta().ID), slog.Int("plies", log.Len()))
	return nil
}

// LeaveReplay discards the timeline and resumes search at the preserved
// free-board position.
func (s *Session) LeaveReplay() error {
	if s.mode != ModeReplay {
		return ErrNotReplaying
	}
	s.timeline = nil
	s.mode = ModeSearch
	for _, f := range s.Feeds() {
		f.SetActive(true)
	}
	return nil
}

func (s *Session) Timeline() (*game.Timeline, error) {
	if s.mode != ModeReplay {
		return nil, ErrNotReplaying
	}
	return s.timeline, nil
}

func (s *Session) apply(c feed.Completion) bool {
	for _, f := range s.Feeds() {
		if f.Kind() == c.Descriptor.Kind {
			return f.Apply(c)
		}
	}
	return false
}

// Drain applies every completion that has already arrived without
// blocking. It returns how many changed a feed.
func (s *Session) Drain() int {
	applied := 0
	for {
		select {
		case c := <-s.completions:
			if s.apply(c) {
				applied++
			}
		default:
			return applied
		}
	}
}

// Pending counts outstanding requests across feeds.
func (s *Session) Pending() int {
	n := 0
	for _, f := range s.Feeds() {
		n += f.Pending()
	}
	return n
}

// Wait applies completions until none are outstanding or timeout passes.
func (s *Session) Wait(ctx context.Context, timeout time.Duration) int {
	applied := s.Drain()
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for s.Pending() > 0 {
		select {
		case c := <-s.completions:
			if s.apply(c) {
				applied++
			}
		case <-timer.C:
			return applied
		case <-ctx.Done():
			return applied
		}
	}
	return applied
}
