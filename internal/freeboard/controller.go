// Package freeboard implements the editable board used in search mode.
package freeboard

import (
	"chessdb/internal/position"
	"chessdb/internal/rules"
)

// Outcome is the result of a move attempt.
type Outcome int

const (
	Rejected Outcome = iota
	Accepted
)

func (o Outcome) String() string {
	if o == Accepted {
		return "accepted"
	}
	return "rejected"
}

// Subscriber receives every accepted position change.
type Subscriber interface {
	PositionChanged(key position.CanonicalKey)
}

// SubscriberFunc adapts a function to Subscriber.
type SubscriberFunc func(key position.CanonicalKey)

func (f SubscriberFunc) PositionChanged(key position.CanonicalKey) {
	f(key)
}

// Controller holds the free-edit position. It keeps no history.
type Controller struct {
	applier     rules.Applier
	board       position.Position // as returned by the applier
	current     position.Position // board with the en passant field cleared
	subscribers []Subscriber
}

// New starts at the standard initial position.
func New(applier rules.Applier) *Controller {
	start := position.Start()
	return &Controller{
		applier: applier,
		board:   start,
		current: start.Sanitized(),
	}
}

// Subscribe registers s for position changes.
func (c *Controller) Subscribe(s Subscriber) {
	c.subscribers = append(c.subscribers, s)
}

// Position returns the displayed position.
func (c *Controller) Position() position.Position {
	return c.current
}

// Key returns the canonical key of the displayed position.
func (c *Controller) Key() position.CanonicalKey {
	return position.Canonicalize(c.current)
}

// TryMove attempts from-to on a copy of the board. Promotions default to a
// queen. On rejection nothing changes and nothing is published.
func (c *Controller) TryMove(from, to string) Outcome {
	trial := c.board
	next, err := c.applier.Apply(trial, rules.Coordinate(from, to))
	if err != nil {
		return Rejected
	}

	c.board = next
	c.current = next.Sanitized()
	c.publish()
	return Accepted
}

func (c *Controller) publish() {
	key := c.Key()
	for _, s := range c.subscribers {
		s.PositionChanged(key)
	}
}
