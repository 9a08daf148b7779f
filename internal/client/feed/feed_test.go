package feed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chessdb/internal/core"
	"chessdb/internal/position"
	"chessdb/internal/query"
	"chessdb/internal/testutil"
)

// echoFetcher answers every descriptor with its key, or with err when set.
type echoFetcher struct {
	mu    sync.Mutex
	err   error
	calls []query.Descriptor
}

func (e *echoFetcher) Fetch(_ context.Context, d query.Descriptor) (any, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, d)
	if e.err != nil {
		return nil, e.err
	}
	return string(d.Key), nil
}

func (e *echoFetcher) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.calls)
}

func (e *echoFetcher) fail(err error) {
	e.mu.Lock()
	e.err = err
	e.mu.Unlock()
}

var (
	keyP1 = position.Canonicalize(position.MustParse("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq -"))
	keyP2 = position.Canonicalize(position.MustParse("rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq -"))
)

func newFeed(t *testing.T, kind query.Kind) (*Feed, *echoFetcher, chan Completion) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	out := make(chan Completion, 16)
	fetcher := &echoFetcher{}
	return New(ctx, kind, query.Builder{}, fetcher, out, testutil.NopLogger()), fetcher, out
}

func receive(t *testing.T, out <-chan Completion, n int) []Completion {
	t.Helper()
	got := make([]Completion, 0, n)
	for len(got) < n {
		select {
		case c := <-out:
			got = append(got, c)
		case <-time.After(2 * time.Second):
			t.Fatalf("received %d of %d completions", len(got), n)
		}
	}
	return got
}

func byKey(cs []Completion, key position.CanonicalKey) Completion {
	for _, c := range cs {
		if c.Descriptor.Key == key {
			return c
		}
	}
	return Completion{}
}

func TestPositionChangedIssuesQuery(t *testing.T) {
	f, fetcher, out := newFeed(t, query.KindTopMoves)

	f.PositionChanged(keyP1)
	assert.Equal(t, 1, f.Pending())
	assert.False(t, f.Fresh())

	c := receive(t, out, 1)[0]
	require.True(t, f.Apply(c))
	assert.Equal(t, 0, f.Pending())
	assert.True(t, f.Fresh())
	assert.Equal(t, string(keyP1), f.Payload())
	assert.NoError(t, f.Err())
	assert.Equal(t, 1, fetcher.count())
}

func TestSameKeyIsDeduplicated(t *testing.T) {
	f, fetcher, out := newFeed(t, query.KindOutcomesByElo)

	f.PositionChanged(keyP1)
	f.PositionChanged(keyP1)
	receive(t, out, 1)

	assert.Equal(t, 1, f.Pending())
	assert.Equal(t, 1, fetcher.count())
}

func TestOutOfOrderCompletionIsDiscarded(t *testing.T) {
	f, _, out := newFeed(t, query.KindTopMoves)

	f.PositionChanged(keyP1)
	f.PositionChanged(keyP2)
	cs := receive(t, out, 2)

	// P2 answers first, then the late P1 response arrives.
	require.True(t, f.Apply(byKey(cs, keyP2)))
	assert.False(t, f.Apply(byKey(cs, keyP1)))

	assert.Equal(t, string(keyP2), f.Payload())
	assert.True(t, f.Fresh())
	assert.Equal(t, 0, f.Pending())
}

func TestStaleCompletionBeforeCurrentIsDiscarded(t *testing.T) {
	f, _, out := newFeed(t, query.KindTopMoves)

	f.PositionChanged(keyP1)
	f.PositionChanged(keyP2)
	cs := receive(t, out, 2)

	assert.False(t, f.Apply(byKey(cs, keyP1)))
	assert.Nil(t, f.Payload())
	require.True(t, f.Apply(byKey(cs, keyP2)))
	assert.Equal(t, string(keyP2), f.Payload())
}

func TestInactiveFeedDiscards(t *testing.T) {
	f, fetcher, out := newFeed(t, query.KindTopMoves)

	f.PositionChanged(keyP1)
	f.SetActive(false)
	c := receive(t, out, 1)[0]
	assert.False(t, f.Apply(c))
	assert.Nil(t, f.Payload())

	// Reactivation re-issues the query whose answer was dropped.
	f.SetActive(true)
	assert.Equal(t, 1, f.Pending())
	c = receive(t, out, 1)[0]
	require.True(t, f.Apply(c))
	assert.True(t, f.Fresh())
	assert.Equal(t, 2, fetcher.count())
}

func TestReactivateWithFreshPayloadDoesNotRequery(t *testing.T) {
	f, fetcher, out := newFeed(t, query.KindTopMoves)

	f.PositionChanged(keyP1)
	require.True(t, f.Apply(receive(t, out, 1)[0]))

	f.SetActive(false)
	f.SetActive(true)
	assert.Equal(t, 0, f.Pending())
	assert.Equal(t, 1, fetcher.count())
}

func TestOtherKindIgnored(t *testing.T) {
	f, _, _ := newFeed(t, query.KindTopMoves)
	f.PositionChanged(keyP1)

	other := query.Builder{}.OutcomesByElo(keyP1)
	assert.False(t, f.Apply(Completion{Descriptor: other, Payload: "x"}))
	assert.Equal(t, 1, f.Pending())
}

func TestErrorKeepsLastGoodPayloadAndRetry(t *testing.T) {
	f, fetcher, out := newFeed(t, query.KindTopMoves)

	f.PositionChanged(keyP1)
	require.True(t, f.Apply(receive(t, out, 1)[0]))

	fetcher.fail(&core.TransportError{Method: "GET", Path: "/get_moves", StatusCode: 503})
	f.PositionChanged(keyP2)
	require.True(t, f.Apply(receive(t, out, 1)[0]))

	assert.ErrorIs(t, f.Err(), core.ErrTransport)
	assert.Equal(t, string(keyP1), f.Payload())
	assert.False(t, f.Fresh())

	fetcher.fail(nil)
	require.True(t, f.Retry())
	require.True(t, f.Apply(receive(t, out, 1)[0]))
	assert.NoError(t, f.Err())
	assert.Equal(t, string(keyP2), f.Payload())
	assert.True(t, f.Fresh())
}

func TestRetryBeforeFirstQuery(t *testing.T) {
	f, fetcher, _ := newFeed(t, query.KindGames)
	assert.False(t, f.Retry())
	assert.Equal(t, 0, fetcher.count())
}

func TestSetFiltersRequeriesGames(t *testing.T) {
	f, fetcher, out := newFeed(t, query.KindGames)

	// Filters alone do not issue before a position is known.
	name := "Tal"
	f.SetFilters(query.Filters{WhiteName: &name})
	assert.Equal(t, 0, f.Pending())

	f.PositionChanged(keyP1)
	first := receive(t, out, 1)[0]
	assert.Equal(t, "Tal", first.Descriptor.Params.Get(query.ParamWhiteName))

	f.SetFilters(query.Filters{WhiteName: &name})
	assert.Equal(t, 1, f.Pending())
	assert.Equal(t, 1, fetcher.count())

	f.SetFilters(query.Filters{Result: core.ResultDraw})
	second := receive(t, out, 1)[0]
	assert.Equal(t, "1/2-1/2", second.Descriptor.Params.Get(query.ParamResult))

	// The response to the replaced filters no longer applies.
	assert.False(t, f.Apply(first))
	assert.True(t, f.Apply(second))
}

func TestCancelledContextDropsCompletion(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan Completion)
	fetcher := &echoFetcher{err: errors.New("boom")}
	f := New(ctx, query.KindTopMoves, query.Builder{}, fetcher, out, testutil.NopLogger())

	cancel()
	f.PositionChanged(keyP1)

	// Nobody reads out; the fetch goroutine must still return.
	require.Eventually(t, func() bool { return fetcher.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, keyP1, f.Key())
}
