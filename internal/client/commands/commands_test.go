package commands

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chessdb/internal/client/api"
	"chessdb/internal/client/display"
	"chessdb/internal/client/session"
	"chessdb/internal/query"
	"chessdb/internal/rules"
	"chessdb/internal/testutil"
)

const gameBody = `{
	"data": {"outcome":"1-0","w_player":"Morphy, Paul","b_player":"Amateur","event":"Casual","date":"1858-01-01","w_elo":2600,"b_elo":0},
	"moves": [
		{"turn_no":1,"white_to_move":true,"san_str":"e4","fen_before":"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},
		{"turn_no":1,"white_to_move":false,"san_str":"e5","fen_before":"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"},
		{"turn_no":2,"white_to_move":true,"san_str":"Nf3","fen_before":"rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2"}
	]
}`

type harness struct {
	reg      *Registry
	out      *bytes.Buffer
	failMove atomic.Bool

	mu          sync.Mutex
	gameQueries []string
}

func (h *harness) queries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.gameQueries...)
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	display.SetColor(false)
	h := &harness{out: &bytes.Buffer{}}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/get_moves":
			if h.failMove.Load() {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			w.Write([]byte(`[{"san_str":"e4","occurrences":3,"wwin":2,"bwin":1,"draws":0},{"san_str":"b3","occurrences":0}]`))
		case "/get_games":
			h.mu.Lock()
			h.gameQueries = append(h.gameQueries, r.URL.RawQuery)
			h.mu.Unlock()
			w.Write([]byte(`[{"id":7,"date":"1858-01-01","outcome":"1-0","w_player":"Morphy, Paul","b_player":"Amateur"}]`))
		case "/get_outcomes_by_elo":
			w.Write([]byte(`[{"elor":2400,"occs":2,"wwin":1,"bwin":0,"draw":1}]`))
		case "/get_game":
			w.Write([]byte(gameBody))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	client := api.New(srv.URL, time.Second, testutil.NopLogger())
	sess := session.New(context.Background(), rules.NewEngine(), client, client, query.Builder{}, testutil.NopLogger())
	h.reg = NewRegistry(&Shell{
		Session:     sess,
		Client:      client,
		Out:         h.out,
		Level:       new(slog.LevelVar),
		WaitTimeout: 2 * time.Second,
	})
	return h
}

func (h *harness) run(t *testing.T, line string) string {
	t.Helper()
	h.out.Reset()
	require.NoError(t, h.reg.Execute(context.Background(), line))
	return h.out.String()
}

func TestUnknownCommand(t *testing.T) {
	h := newHarness(t)
	assert.Contains(t, h.run(t, "castle"), "Unknown command: castle")
	assert.Empty(t, h.run(t, "   "))
}

func TestExit(t *testing.T) {
	h := newHarness(t)
	assert.ErrorIs(t, h.reg.Execute(context.Background(), "exit"), ErrExit)
	assert.ErrorIs(t, h.reg.Execute(context.Background(), "x"), ErrExit)
}

func TestHelp(t *testing.T) {
	h := newHarness(t)
	out := h.run(t, "help")
	for _, name := range h.reg.Names() {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, h.run(t, "help goto"), "Usage: goto <ply>")
	assert.Contains(t, h.run(t, "? m"), "move - Move a piece")
}

func TestMoveAndTopMoves(t *testing.T) {
	h := newHarness(t)

	assert.Contains(t, h.run(t, "move e2 e5"), "Illegal move: e2e5")

	out := h.run(t, "m e2e4")
	assert.Contains(t, out, "Black to move")
	assert.Contains(t, h.run(t, "board"), "Key: rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq -")

	out = h.run(t, "top")
	assert.Contains(t, out, "66.7%")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, []string{"b3", "0", "-", "-", "-"}, strings.Fields(lines[len(lines)-1]))
}

func TestFiltersAndGames(t *testing.T) {
	h := newHarness(t)

	assert.Contains(t, h.run(t, "filter wname Morphy"), "wname = Morphy")
	assert.Contains(t, h.run(t, "filter wmin abc"), "wmin = abc")
	assert.Contains(t, h.run(t, "filter result any"), "result = any")
	assert.Contains(t, h.run(t, "filter colour white"), "unknown filter")

	out := h.run(t, "filters")
	assert.Contains(t, out, "wname   Morphy")
	assert.Contains(t, out, "result  -")

	out = h.run(t, "games")
	assert.Contains(t, out, "Morphy, Paul - Amateur")

	// The initial unfiltered search plus one for wname; the other two
	// filters leave the request unchanged.
	queries := h.queries()
	require.Len(t, queries, 2)
	var filtered string
	for _, q := range queries {
		if strings.Contains(q, "wname=") {
			filtered = q
		}
	}
	assert.Contains(t, filtered, "wname=Morphy")
	assert.NotContains(t, filtered, "wmin")
	assert.NotContains(t, filtered, "result")
}

func TestOutcomes(t *testing.T) {
	h := newHarness(t)
	assert.Contains(t, h.run(t, "outcomes"), "2400-2599")
}

func TestReplayFlow(t *testing.T) {
	h := newHarness(t)
	h.run(t, "move g1 f3")

	out := h.run(t, "open 7")
	assert.Contains(t, out, "Game 7")
	assert.Contains(t, out, "Start of game, 3 plies")

	assert.Contains(t, h.run(t, "next"), "Ply 1/3: 1. e4")
	assert.Contains(t, h.run(t, "n"), "Ply 2/3: 1... e5")
	assert.Contains(t, h.run(t, "goto 3"), "Ply 3/3: 2. Nf3")
	assert.Contains(t, h.run(t, "next"), "Ply 3/3")
	assert.Contains(t, h.run(t, "goto 0"), "Start of game")
	assert.Contains(t, h.run(t, "prev"), "Start of game")
	assert.Contains(t, h.run(t, "goto 9"), "index out of range")

	moves := h.run(t, "moves")
	assert.Contains(t, moves, "1. e4[1]")
	assert.Contains(t, moves, "e5[2]")

	assert.Contains(t, h.run(t, "top"), "not in search mode")
	assert.Contains(t, h.run(t, "move e2 e4"), "not in search mode")

	out = h.run(t, "back")
	assert.Contains(t, out, "Black to move")
	assert.Contains(t, h.run(t, "canon"), "rnbqkbnr/pppppppp/8/8/8/5N2/PPPPPPPP/RNBQKB1R b KQkq -")
	assert.Contains(t, h.run(t, "next"), "not in replay mode")
}

func TestOpenInvalid(t *testing.T) {
	h := newHarness(t)
	assert.Contains(t, h.run(t, "open seven"), "invalid game id")
	assert.Contains(t, h.run(t, "open"), "usage: open")
}

func TestRetryAfterFailure(t *testing.T) {
	h := newHarness(t)
	h.failMove.Store(true)
	h.run(t, "move d2 d4")

	out := h.run(t, "top")
	assert.Contains(t, out, "request failed")
	assert.Contains(t, out, "Type 'retry'")

	h.failMove.Store(false)
	assert.Contains(t, h.run(t, "retry"), "Retrying 1 queries.")
	h.run(t, "wait")
	out = h.run(t, "top")
	assert.NotContains(t, out, "request failed")
	assert.Contains(t, out, "e4")

	assert.Contains(t, h.run(t, "retry"), "Nothing to retry.")
}

func TestCanonWithPosition(t *testing.T) {
	h := newHarness(t)
	out := h.run(t, "canon rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1")
	assert.Equal(t, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq -\n", out)
	assert.Contains(t, h.run(t, "canon garbage"), "malformed position")
}

func TestURL(t *testing.T) {
	h := newHarness(t)
	assert.Contains(t, h.run(t, "url"), "Current API URL: http://127.0.0.1")
	assert.Contains(t, h.run(t, "url localhost:9000/"), "API URL set to: http://localhost:9000")
}

func TestVerboseSuffixRestoresLevel(t *testing.T) {
	h := newHarness(t)
	h.run(t, "board -v")
	assert.Equal(t, slog.LevelInfo, h.reg.shell.Level.Level())
}
