// Package feed runs the position-driven queries of search mode. Each Feed
// owns one query kind, issues a request whenever its descriptor changes
// and keeps the last result that matched its current descriptor.
package feed

import (
	"context"
	"log/slog"

	"chessdb/internal/position"
	"chessdb/internal/query"
)

// Fetcher executes a descriptor. *api.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, d query.Descriptor) (any, error)
}

// Completion is a finished request, tagged with the descriptor it was
// issued for.
type Completion struct {
	Descriptor query.Descriptor
	Payload    any
	Err        error
}

// Feed is not safe for concurrent use. Only the goroutines it spawns run
// concurrently, and they touch nothing but the Fetcher and the output channel.
type Feed struct {
	ctx     context.Context
	kind    query.Kind
	builder query.Builder
	fetcher Fetcher
	out     chan<- Completion
	logger  *slog.Logger

	key     position.CanonicalKey
	filters query.Filters
	current query.Descriptor
	issued  bool
	active  bool
	pending int

	payload   any
	payloadID string
	err       error
}

// New creates an active feed. Completions are delivered on out and must be
// handed back through Apply by the owning goroutine.
func New(ctx context.Context, kind query.Kind, builder query.Builder, fetcher Fetcher, out chan<- Completion, logger *slog.Logger) *Feed {
	if logger == nil {
		logger = slog.Default()
	}
	return &Feed{
		ctx:     ctx,
		kind:    kind,
		builder: builder,
		fetcher: fetcher,
		out:     out,
		logger:  logger.With(slog.String("feed", string(kind))),
		active:  true,
	}
}

func (f *Feed) Kind() query.Kind {
	return f.kind
}

func (f *Feed) Key() position.CanonicalKey {
	return f.key
}

// Descriptor returns the descriptor of the most recent request.
func (f *Feed) Descriptor() query.Descriptor {
	return f.current
}

// PositionChanged implements freeboard.Subscriber. A publish that yields
// the descriptor already issued is ignored.
func (f *Feed) PositionChanged(key position.CanonicalKey) {
	f.key = key
	f.refresh()
}

func (f *Feed) Filters() query.Filters {
	return f.filters
}

// SetFilters replaces the filters and re-queries if the descriptor changed.
// Only the games kind is affected by filters.
func (f *Feed) SetFilters(filters query.Filters) {
	f.filters = filters
	if f.key != "" {
		f.refresh()
	}
}

func (f *Feed) refresh() {
	d := f.builder.Build(f.kind, f.key, f.filters)
	if f.issued && d.ID() == f.current.ID() {
		return
	}
	f.issue(d)
}

func (f *Feed) issue(d query.Descriptor) {
	if d.ID() != f.current.ID() {
		f.err = nil
	}
	f.current = d
	f.issued = true
	f.pending++

	f.logger.Debug("query issued", slog.String("id", d.ID()))

	ctx, fetcher, out := f.ctx, f.fetcher, f.out
	go func() {
		payload, err := fetcher.Fetch(ctx, d)
		select {
		case out <- Completion{Descriptor: d, Payload: payload, Err: err}:
		case <-ctx.Done():
		}
	}()
}

// Retry re-issues the current descriptor. It does nothing before the
// first query.
func (f *Feed) Retry() bool {
	if !f.issued {
		return false
	}
	f.issue(f.current)
	return true
}

func (f *Feed) Active() bool {
	return f.active
}

// SetActive switches result application on or off. Reactivating a feed
// whose result for the current descriptor was never applied re-issues it.
func (f *Feed) SetActive(active bool) {
	f.active = active
	if active && f.issued && f.payloadID != f.current.ID() && f.pending == 0 {
		f.issue(f.current)
	}
}

// Apply consumes a completion of this feed's kind. It reports whether the
// completion changed the feed's state. Completions for a descriptor other
// than the current one, or arriving while inactive, are discarded.
func (f *Feed) Apply(c Completion) bool {
	if c.Descriptor.Kind != f.kind {
		return false
	}
	if f.pending > 0 {
		f.pending--
	}

	if !f.active || !f.issued || c.Descriptor.ID() != f.current.ID() {
		f.logger.Debug("stale result discarded",
			slog.String("id", c.Descriptor.ID()),
			slog.Bool("active", f.active),
		)
		return false
	}

	if c.Err != nil {
		f.err = c.Err
		return true
	}
	f.payload = c.Payload
	f.payloadID = c.Descriptor.ID()
	f.err = nil
	return true
}

// Pending is the number of issued requests whose completion has not been applied.
func (f *Feed) Pending() int {
	return f.pending
}

// Payload returns the last applied result, which may belong to an earlier
// descriptor when Fresh is false.
func (f *Feed) Payload() any {
	return f.payload
}

// Fresh reports whether Payload answers the current descriptor.
func (f *Feed) Fresh() bool {
	return f.issued && f.payloadID == f.current.ID()
}

// Err is the failure of the last applied completion, nil after a success.
func (f *Feed) Err() error {
	return f.err
}
