// Package rules applies single moves to positions. Move legality is
// delegated to github.com/corentings/chess/v2.
package rules

import (
	"errors"
	"fmt"

	"github.com/corentings/chess/v2"

	"chessdb/internal/position"
)

// ErrRejected is returned when a move is not legal in the given position.
var ErrRejected = errors.New("move rejected")

// Move is either a SAN string or a coordinate move.
// Promotion is one of 'q', 'r', 'b', 'n', or 0 for the default.
type Move struct {
	SAN       string
	From      string
	To        string
	Promotion byte
}

func SAN(san string) Move {
	return Move{SAN: san}
}

func Coordinate(from, to string) Move {
	return Move{From: from, To: to}
}

func (m Move) String() string {
	if m.SAN != "" {
		return m.SAN
	}
	if m.Promotion != 0 {
		return fmt.Sprintf("%s%s%c", m.From, m.To, m.Promotion)
	}
	return m.From + m.To
}

// Applier validates and applies one move.
type Applier interface {
	Apply(p position.Position, m Move) (position.Position, error)
}

// Engine is the Applier backed by the chess library.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

var _ Applier = (*Engine)(nil)

// Apply returns the position after m. A coordinate move without a
// promotion piece promotes to a queen.
func (e *Engine) Apply(p position.Position, m Move) (position.Position, error) {
	fen, err := chess.FEN(p.FEN())
	if err != nil {
		return position.Position{}, fmt.Errorf("%w: %s: %v", ErrRejected, m, err)
	}
	g := chess.NewGame(fen)

	var move *chess.Move
	if m.SAN != "" {
		move, err = chess.AlgebraicNotation{}.Decode(g.Position(), m.SAN)
		if err != nil {
			return position.Position{}, fmt.Errorf("%w: %s: %v", ErrRejected, m, err)
		}
	} else {
		move = findCoordinate(g.ValidMoves(), m)
		if move == nil {
			return position.Position{}, fmt.Errorf("%w: %s", ErrRejected, m)
		}
	}

	if err := g.Move(move, nil); err != nil {
		return position.Position{}, fmt.Errorf("%w: %s: %v", ErrRejected, m, err)
	}

	next, err := position.Parse(g.FEN())
	if err != nil {
		return position.Position{}, fmt.Errorf("decode position after %s: %w", m, err)
	}
	return next, nil
}

// Legal reports whether m applies to p.
func (e *Engine) Legal(p position.Position, m Move) bool {
	_, err := e.Apply(p, m)
	return err == nil
}

func findCoordinate(valid []chess.Move, m Move) *chess.Move {
	want := promotionPiece(m.Promotion)

	var queening *chess.Move
	for i := range valid {
		mv := valid[i]
		if mv.S1().String() != m.From || mv.S2().String() != m.To {
			continue
		}
		switch {
		case mv.Promo() == want:
			return &mv
		case want == chess.NoPieceType && mv.Promo() == chess.Queen:
			queening = &mv
		}
	}
	return queening
}

func promotionPiece(b byte) chess.PieceType {
	switch b {
	case 'q', 'Q':
		return chess.Queen
	case 'r', 'R':
		return chess.Rook
	case 'b', 'B':
		return chess.Bishop
	case 'n', 'N':
		return chess.Knight
	default:
		return chess.NoPieceType
	}
}
