package cache

import "time"

// GameRow represents a row in the games table
type GameRow struct {
	GameID     string    `db:"game_id"`
	White      string    `db:"white"`
	Black      string    `db:"black"`
	WhiteElo   int       `db:"white_elo"`
	BlackElo   int       `db:"black_elo"`
	Event      string    `db:"event"`
	Date       string    `db:"date"`
	Outcome    string    `db:"outcome"`
	FetchedUTC time.Time `db:"fetched_utc"`
}

// MoveRow represents a row in the moves table
type MoveRow struct {
	GameID    string `db:"game_id"`
	Ply       int    `db:"ply"`
	TurnNo    int    `db:"turn_no"`
	SAN       string `db:"san"`
	FENBefore string `db:"fen_before"`
}

// Schema defines the SQLite database structure
const Schema = `
CREATE TABLE IF NOT EXISTS games (
	game_id TEXT PRIMARY KEY,
	white TEXT NOT NULL DEFAULT '',
	black TEXT NOT NULL DEFAULT '',
	white_elo INTEGER NOT NULL DEFAULT 0,
	black_elo INTEGER NOT NULL DEFAULT 0,
	event TEXT NOT NULL DEFAULT '',
	date TEXT NOT NULL DEFAULT '',
	outcome TEXT NOT NULL DEFAULT '*',
	fetched_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS moves (
	game_id TEXT NOT NULL,
	ply INTEGER NOT NULL,
	turn_no INTEGER NOT NULL,
	san TEXT NOT NULL,
	fen_before TEXT NOT NULL,
	FOREIGN KEY (game_id) REFERENCES games(game_id) ON DELETE CASCADE,
	PRIMARY KEY (game_id, ply)
);
`
