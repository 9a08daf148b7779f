package position

import (
	"fmt"
)

// CanonicalKey identifies a position for search lookups. Two positions
// share a key exactly when they are board-equal.
type CanonicalKey string

func (k CanonicalKey) String() string {
	return string(k)
}

// Canonicalize serializes placement, side to move and castling rights. The
// last-move field is always written as "-" and move counters are dropped:
// a board that records the last double pawn push serializes the same as one
// that does not.
func Canonicalize(p Position) CanonicalKey {
	return CanonicalKey(fmt.Sprintf("%s %c %s %s",
		p.Placement(), p.turn, p.castling, none))
}

// Sanitized returns p with its en passant field cleared.
func (p Position) Sanitized() Position {
	p.enPassant = none
	return p
}

// BoardEqual compares placement, side to move and castling rights, ignoring
// the en passant field and move counters.
func BoardEqual(a, b Position) bool {
	return a.squares == b.squares &&
		a.turn == b.turn &&
		a.castling == b.castling
}
