package game

import (
	"chessdb/internal/core"
	"chessdb/internal/position"
	"chessdb/internal/rules"
)

// StartIndex is the cursor value for the position before the first move.
const StartIndex = -1

// Timeline replays a GameLog. The cursor is its only mutable state and is
// always within [StartIndex, Len()-1]. Positions are recomputed from the
// log on every call.
type Timeline struct {
	log     GameLog
	applier rules.Applier
	cursor  int
}

func NewTimeline(log GameLog, applier rules.Applier) *Timeline {
	return &Timeline{
		log:     log,
		applier: applier,
		cursor:  StartIndex,
	}
}

func (t *Timeline) Log() GameLog {
	return t.log
}

func (t *Timeline) Cursor() int {
	return t.cursor
}

func (t *Timeline) Len() int {
	return t.log.Len()
}

func (t *Timeline) AtStart() bool {
	return t.cursor == StartIndex
}

func (t *Timeline) AtEnd() bool {
	return t.cursor == t.log.Len()-1
}

func (t *Timeline) CurrentPosition() (position.Position, error) {
	return t.PositionAt(t.cursor)
}

// Advance moves one ply forward, staying put on the last move. If the
// position there cannot be computed the cursor is left unchanged.
func (t *Timeline) Advance() (position.Position, error) {
	return t.moveTo(min(t.cursor+1, t.log.Len()-1))
}

// Retreat moves one ply back, staying put at the start. If the position
// there cannot be computed the cursor is left unchanged.
func (t *Timeline) Retreat() (position.Position, error) {
	return t.moveTo(max(t.cursor-1, StartIndex))
}

// Seek jumps to index. An index outside [StartIndex, Len()-1], or one whose
// position cannot be computed, leaves the cursor where it was.
func (t *Timeline) Seek(index int) (position.Position, error) {
	return t.moveTo(index)
}

func (t *Timeline) moveTo(index int) (position.Position, error) {
	p, err := t.PositionAt(index)
	if err != nil {
		return position.Position{}, err
	}
	t.cursor = index
	return p, nil
}

// PositionAt returns the position after move index, or the starting
// position for StartIndex.
func (t *Timeline) PositionAt(index int) (position.Position, error) {
	if err := t.checkRange(index); err != nil {
		return position.Position{}, err
	}
	if index == StartIndex {
		return position.Start(), nil
	}

	rec := t.log.Move(index)
	next, err := t.applier.Apply(rec.Before, rules.SAN(rec.SAN))
	if err != nil {
		return position.Position{}, &core.IllegalReplayMoveError{
			GameID: t.log.Meta().ID,
			Index:  index,
			SAN:    rec.SAN,
			Cause:  err,
		}
	}
	return next, nil
}

func (t *Timeline) checkRange(index int) error {
	if index < StartIndex || index > t.log.Len()-1 {
		return &core.OutOfRangeError{Index: index, Min: StartIndex, Max: t.log.Len() - 1}
	}
	return nil
}

// Ply is one half of a move list row.
type Ply struct {
	Index   int
	SAN     string
	Current bool
}

// MoveListRow is one numbered line of the move list.
type MoveListRow struct {
	TurnNo int
	White  *Ply
	Black  *Ply
}

// MoveList groups plies into numbered rows and marks the ply under the cursor.
func (t *Timeline) MoveList() []MoveListRow {
	var rows []MoveListRow
	for i, rec := range t.log.moves {
		ply := &Ply{Index: i, SAN: rec.SAN, Current: i == t.cursor}

		if rec.WhiteToMove() || len(rows) == 0 || rows[len(rows)-1].Black != nil {
			rows = append(rows, MoveListRow{TurnNo: rec.TurnNo})
		}
		row := &rows[len(rows)-1]
		if rec.WhiteToMove() {
			row.White = ply
		} else {
			row.Black = ply
		}
	}
	return rows
}
