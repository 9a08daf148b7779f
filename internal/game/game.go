// Package game holds a recorded game's move log and the replay timeline
// built on it.
package game

import (
	"chessdb/internal/core"
	"chessdb/internal/position"
)

// Meta describes a recorded game.
type Meta struct {
	ID       string
	White    string
	Black    string
	WhiteElo int
	BlackElo int
	Event    string
	Date     string
	Outcome  core.Result
}

// MoveRecord is one ply: the position before the move and the move in SAN.
type MoveRecord struct {
	Before position.Position
	SAN    string
	TurnNo int
}

// WhiteToMove reports which side played this ply.
func (m MoveRecord) WhiteToMove() bool {
	return m.Before.Turn() == core.ColorWhite
}

// GameLog is a game's ordered move records plus metadata. It is not
// modified after NewLog returns.
type GameLog struct {
	meta  Meta
	moves []MoveRecord
}

// NewLog copies moves. A record without a turn number takes it from the
// fullmove counter of its pre-move position.
func NewLog(meta Meta, moves []MoveRecord) GameLog {
	owned := make([]MoveRecord, len(moves))
	copy(owned, moves)
	for i := range owned {
		if owned[i].TurnNo <= 0 {
			owned[i].TurnNo = owned[i].Before.FullMove()
		}
	}
	return GameLog{meta: meta, moves: owned}
}

func (l GameLog) Meta() Meta {
	return l.meta
}

func (l GameLog) Len() int {
	return len(l.moves)
}

// Move returns record i. It panics if i is out of range.
func (l GameLog) Move(i int) MoveRecord {
	return l.moves[i]
}

// Moves returns a copy of the records.
func (l GameLog) Moves() []MoveRecord {
	out := make([]MoveRecord, len(l.moves))
	copy(out, l.moves)
	return out
}

// SANs returns the move list in SAN.
func (l GameLog) SANs() []string {
	sans := make([]string, 0, len(l.moves))
	for _, m := range l.moves {
		sans = append(sans, m.SAN)
	}
	return sans
}
