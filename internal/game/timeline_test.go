package game

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chessdb/internal/core"
	"chessdb/internal/position"
	"chessdb/internal/rules"
)

const (
	afterE4   = "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1"
	afterE4E5 = "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 0 2"
)

// buildLog plays sans from the start and records each pre-move position.
func buildLog(t *testing.T, sans ...string) GameLog {
	t.Helper()
	e := rules.NewEngine()
	p := position.Start()
	var moves []MoveRecord
	for _, san := range sans {
		moves = append(moves, MoveRecord{Before: p, SAN: san})
		next, err := e.Apply(p, rules.SAN(san))
		require.NoError(t, err, san)
		p = next
	}
	return NewLog(Meta{ID: "42", White: "Morphy", Black: "Anderssen", Outcome: core.ResultWhiteWins}, moves)
}

func TestTimelineScenario(t *testing.T) {
	log := NewLog(Meta{ID: "1"}, []MoveRecord{
		{Before: position.Start(), SAN: "e4"},
		{Before: position.MustParse(afterE4), SAN: "e5"},
	})
	tl := NewTimeline(log, rules.NewEngine())

	p, err := tl.Seek(-1)
	require.NoError(t, err)
	assert.True(t, position.BoardEqual(position.Start(), p))

	p, err = tl.Seek(0)
	require.NoError(t, err)
	assert.True(t, position.BoardEqual(position.MustParse(afterE4), p))

	p, err = tl.Seek(1)
	require.NoError(t, err)
	assert.True(t, position.BoardEqual(position.MustParse(afterE4E5), p))

	again, err := tl.Advance()
	require.NoError(t, err)
	assert.Equal(t, 1, tl.Cursor())
	assert.Equal(t, p, again)
}

func TestTimelineStartsBeforeFirstMove(t *testing.T) {
	tl := NewTimeline(buildLog(t, "e4", "e5"), rules.NewEngine())

	assert.Equal(t, StartIndex, tl.Cursor())
	assert.True(t, tl.AtStart())

	p, err := tl.CurrentPosition()
	require.NoError(t, err)
	assert.Equal(t, position.Start(), p)
}

func TestTimelineSeekMatchesDirectComputation(t *testing.T) {
	log := buildLog(t, "e4", "c5", "Nf3", "d6", "d4", "cxd4", "Nxd4", "Nf6", "Nc3", "a6")
	tl := NewTimeline(log, rules.NewEngine())
	e := rules.NewEngine()

	for i := StartIndex; i < log.Len(); i++ {
		got, err := tl.Seek(i)
		require.NoError(t, err)
		assert.Equal(t, i, tl.Cursor())

		want := position.Start()
		if i >= 0 {
			want, err = e.Apply(log.Move(i).Before, rules.SAN(log.Move(i).SAN))
			require.NoError(t, err)
		}
		assert.Equal(t, want, got, "index %d", i)

		at, err := tl.PositionAt(i)
		require.NoError(t, err)
		assert.Equal(t, want, at)
	}
}

func TestTimelineAdvanceClampsAtEnd(t *testing.T) {
	log := buildLog(t, "d4", "d5", "c4")
	tl := NewTimeline(log, rules.NewEngine())

	var last position.Position
	for i := 0; i < log.Len()+5; i++ {
		p, err := tl.Advance()
		require.NoError(t, err)
		last = p
	}
	assert.Equal(t, log.Len()-1, tl.Cursor())
	assert.True(t, tl.AtEnd())

	want, err := tl.PositionAt(log.Len() - 1)
	require.NoError(t, err)
	assert.Equal(t, want, last)
}

func TestTimelineRetreatClampsAtStart(t *testing.T) {
	log := buildLog(t, "d4", "d5", "c4")
	tl := NewTimeline(log, rules.NewEngine())
	_, err := tl.Seek(log.Len() - 1)
	require.NoError(t, err)

	var last position.Position
	for i := 0; i < log.Len()+5; i++ {
		p, err := tl.Retreat()
		require.NoError(t, err)
		last = p
	}
	assert.Equal(t, StartIndex, tl.Cursor())
	assert.Equal(t, position.Start(), last)
}

func TestTimelineEmptyLog(t *testing.T) {
	tl := NewTimeline(NewLog(Meta{}, nil), rules.NewEngine())

	p, err := tl.Advance()
	require.NoError(t, err)
	assert.Equal(t, StartIndex, tl.Cursor())
	assert.Equal(t, position.Start(), p)

	_, err = tl.Seek(0)
	assert.ErrorIs(t, err, core.ErrOutOfRange)
}

func TestTimelineSeekOutOfRange(t *testing.T) {
	tl := NewTimeline(buildLog(t, "e4", "e5"), rules.NewEngine())
	_, err := tl.Seek(1)
	require.NoError(t, err)

	for _, idx := range []int{-2, 2, 100} {
		_, err := tl.Seek(idx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, core.ErrOutOfRange))

		var oor *core.OutOfRangeError
		require.True(t, errors.As(err, &oor))
		assert.Equal(t, idx, oor.Index)
		assert.Equal(t, -1, oor.Min)
		assert.Equal(t, 1, oor.Max)

		assert.Equal(t, 1, tl.Cursor(), "cursor must not move on a bad seek")
	}
}

func TestTimelineCorruptRecord(t *testing.T) {
	log := NewLog(Meta{ID: "7"}, []MoveRecord{
		{Before: position.Start(), SAN: "e4"},
		{Before: position.Start(), SAN: "e5"}, // white to move, e5 is not playable
	})
	tl := NewTimeline(log, rules.NewEngine())

	_, err := tl.Advance()
	require.NoError(t, err)

	_, err = tl.Advance()
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrIllegalReplayMove))
	assert.True(t, errors.Is(err, rules.ErrRejected))

	var ime *core.IllegalReplayMoveError
	require.True(t, errors.As(err, &ime))
	assert.Equal(t, "7", ime.GameID)
	assert.Equal(t, 1, ime.Index)
	assert.Equal(t, "e5", ime.SAN)
	assert.Contains(t, err.Error(), "corrupted")
}

func TestTimelineCorruptRecordKeepsCursor(t *testing.T) {
	log := NewLog(Meta{ID: "7"}, []MoveRecord{
		{Before: position.Start(), SAN: "e4"},
		{Before: position.Start(), SAN: "e5"},
	})
	tl := NewTimeline(log, rules.NewEngine())

	_, err := tl.Advance()
	require.NoError(t, err)

	_, err = tl.Advance()
	require.Error(t, err)
	assert.Equal(t, 0, tl.Cursor())

	_, err = tl.Seek(1)
	require.Error(t, err)
	assert.Equal(t, 0, tl.Cursor())

	p, err := tl.CurrentPosition()
	require.NoError(t, err)
	assert.True(t, position.BoardEqual(position.MustParse(afterE4), p))

	p, err = tl.Retreat()
	require.NoError(t, err)
	assert.True(t, tl.AtStart())
	assert.Equal(t, position.Start(), p)
}

func TestMoveList(t *testing.T) {
	tl := NewTimeline(buildLog(t, "e4", "e5", "Nf3"), rules.NewEngine())
	_, err := tl.Seek(1)
	require.NoError(t, err)

	rows := tl.MoveList()
	require.Len(t, rows, 2)

	assert.Equal(t, 1, rows[0].TurnNo)
	assert.Equal(t, "e4", rows[0].White.SAN)
	assert.Equal(t, "e5", rows[0].Black.SAN)
	assert.False(t, rows[0].White.Current)
	assert.True(t, rows[0].Black.Current)

	assert.Equal(t, 2, rows[1].TurnNo)
	assert.Equal(t, "Nf3", rows[1].White.SAN)
	assert.Equal(t, 2, rows[1].White.Index)
	assert.Nil(t, rows[1].Black)
}

func TestMoveListStartingWithBlack(t *testing.T) {
	before := position.MustParse(afterE4)
	tl := NewTimeline(NewLog(Meta{}, []MoveRecord{{Before: before, SAN: "c5"}}), rules.NewEngine())

	rows := tl.MoveList()
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].White)
	assert.Equal(t, "c5", rows[0].Black.SAN)
	assert.Equal(t, 1, rows[0].TurnNo)
}

func TestGameLogIsACopy(t *testing.T) {
	moves := []MoveRecord{{Before: position.Start(), SAN: "e4"}}
	log := NewLog(Meta{}, moves)
	moves[0].SAN = "d4"

	assert.Equal(t, "e4", log.Move(0).SAN)
	out := log.Moves()
	out[0].SAN = "c4"
	assert.Equal(t, []string{"e4"}, log.SANs())
	assert.Equal(t, 1, log.Move(0).TurnNo)
}
