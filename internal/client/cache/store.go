// Package cache keeps fetched game logs in SQLite. Recorded games never
// change, so an entry is valid for as long as it exists.
package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"chessdb/internal/core"
	"chessdb/internal/game"
	"chessdb/internal/position"
)

// Store handles SQLite operations with async writes
type Store struct {
	db           *sql.DB
	path         string
	logger       *slog.Logger
	writeChan    chan func(*sql.Tx) error
	healthStatus atomic.Bool
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
}

// Open opens or creates the cache at dataSourceName and starts the writer.
func Open(dataSourceName string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection keeps ":memory:" databases shared between reader and writer
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		db:        db,
		path:      dataSourceName,
		logger:    logger,
		writeChan: make(chan func(*sql.Tx) error, 64),
		ctx:       ctx,
		cancel:    cancel,
	}
	s.healthStatus.Store(true)

	s.wg.Add(1)
	go s.writerLoop()

	return s, nil
}

// writerLoop processes async write operations
func (s *Store) writerLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			// Drain queued writes
			deadline := time.After(2 * time.Second)
			for {
				select {
				case fn := <-s.writeChan:
					if s.healthStatus.Load() {
						s.executeWrite(fn)
					}
				case <-deadline:
					return
				default:
					return
				}
			}

		case fn := <-s.writeChan:
			if !s.healthStatus.Load() {
				continue
			}
			s.executeWrite(fn)
		}
	}
}

func (s *Store) executeWrite(fn func(*sql.Tx) error) {
	tx, err := s.db.Begin()
	if err != nil {
		s.degrade("failed to begin transaction", err)
		return
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		s.degrade("write operation failed", err)
		return
	}

	if err := tx.Commit(); err != nil {
		s.degrade("failed to commit", err)
	}
}

func (s *Store) degrade(msg string, err error) {
	s.logger.Warn("game cache degraded: "+msg, slog.String("error", err.Error()))
	s.healthStatus.Store(false)
}

// Healthy is false once a write has failed. A degraded cache drops writes.
func (s *Store) Healthy() bool {
	return s.healthStatus.Load()
}

// Put queues a game log for storage. It never blocks; writes are dropped
// when the queue is full or the store is degraded.
func (s *Store) Put(log game.GameLog) {
	if !s.healthStatus.Load() {
		return
	}

	meta := log.Meta()
	moves := log.Moves()
	write := func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM moves WHERE game_id = ?`, meta.ID); err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM games WHERE game_id = ?`, meta.ID); err != nil {
			return err
		}
		_, err := tx.Exec(`INSERT INTO games (
			game_id, white, black, white_elo, black_elo, event, date, outcome, fetched_utc
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			meta.ID, meta.White, meta.Black, meta.WhiteElo, meta.BlackElo,
			meta.Event, meta.Date, string(meta.Outcome), time.Now().UTC(),
		)
		if err != nil {
			return err
		}
		for i, m := range moves {
			_, err := tx.Exec(`INSERT INTO moves (game_id, ply, turn_no, san, fen_before) VALUES (?, ?, ?, ?, ?)`,
				meta.ID, i, m.TurnNo, m.SAN, m.Before.FEN(),
			)
			if err != nil {
				return err
			}
		}
		return nil
	}

	select {
	case s.writeChan <- write:
	default:
		s.logger.Debug("game cache write queue full, dropping game", slog.String("game_id", meta.ID))
	}
}

// Get loads a cached game log. ok is false on a miss.
func (s *Store) Get(ctx context.Context, id string) (game.GameLog, bool, error) {
	var g GameRow
	err := s.db.QueryRowContext(ctx, `SELECT
		game_id, white, black, white_elo, black_elo, event, date, outcome, fetched_utc
	FROM games WHERE game_id = ?`, id).Scan(
		&g.GameID, &g.White, &g.Black, &g.WhiteElo, &g.BlackElo,
		&g.Event, &g.Date, &g.Outcome, &g.FetchedUTC,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return game.GameLog{}, false, nil
	}
	if err != nil {
		return game.GameLog{}, false, fmt.Errorf("query failed: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT game_id, ply, turn_no, san, fen_before
	FROM moves WHERE game_id = ? ORDER BY ply`, id)
	if err != nil {
		return game.GameLog{}, false, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var moves []game.MoveRecord
	for rows.Next() {
		var m MoveRow
		if err := rows.Scan(&m.GameID, &m.Ply, &m.TurnNo, &m.SAN, &m.FENBefore); err != nil {
			return game.GameLog{}, false, fmt.Errorf("scan failed: %w", err)
		}
		before, err := position.Parse(m.FENBefore)
		if err != nil {
			return game.GameLog{}, false, fmt.Errorf("cached move %d: %w", m.Ply, err)
		}
		moves = append(moves, game.MoveRecord{Before: before, SAN: m.SAN, TurnNo: m.TurnNo})
	}
	if err := rows.Err(); err != nil {
		return game.GameLog{}, false, fmt.Errorf("rows iteration failed: %w", err)
	}

	meta := game.Meta{
		ID:       g.GameID,
		White:    g.White,
		Black:    g.Black,
		WhiteElo: g.WhiteElo,
		BlackElo: g.BlackElo,
		Event:    g.Event,
		Date:     g.Date,
		Outcome:  core.Result(g.Outcome),
	}
	return game.NewLog(meta, moves), true, nil
}

// Close stops the writer after draining queued writes.
func (s *Store) Close() error {
	s.cancel()
	s.wg.Wait()
	return s.db.Close()
}

// GameSource fetches a recorded game by id. *api.Client implements it.
type GameSource interface {
	Game(ctx context.Context, id int) (game.GameLog, error)
}

// ReadThrough serves games from the store and falls back to the source,
// caching what it fetches. A nil Store passes every call through.
type ReadThrough struct {
	Store  *Store
	Source GameSource
}

func (r ReadThrough) Game(ctx context.Context, id int) (game.GameLog, error) {
	if r.Store == nil {
		return r.Source.Game(ctx, id)
	}

	key := strconv.Itoa(id)
	if log, ok, err := r.Store.Get(ctx, key); err == nil && ok {
		return log, nil
	} else if err != nil {
		r.Store.logger.Debug("game cache read failed", slog.String("game_id", key), slog.String("error", err.Error()))
	}

	log, err := r.Source.Game(ctx, id)
	if err != nil {
		return game.GameLog{}, err
	}
	r.Store.Put(log)
	return log, nil
}
