// Package position decodes and encodes board positions and derives the
// canonical key used for search lookups.
package position

import (
	"fmt"
	"strconv"
	"strings"

	"chessdb/internal/core"
)

const (
	StartingFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

	none = "-"
)

// Position is an immutable board snapshot. The zero value is not a valid
// position; use Parse or Start.
type Position struct {
	squares   [8][8]byte // [0] is rank 8, as written in FEN
	turn      core.Color
	castling  string
	enPassant string
	halfmove  int
	fullmove  int
}

var start = MustParse(StartingFEN)

// Start returns the standard initial position.
func Start() Position {
	return start
}

// Parse decodes FEN text. Piece placement and side to move are required;
// castling and en passant default to "-", the counters to 0 and 1.
func Parse(text string) (Position, error) {
	parts := strings.Fields(text)
	if len(parts) < 2 {
		return Position{}, malformed(text, fmt.Sprintf("expected at least 2 fields, got %d", len(parts)))
	}
	if len(parts) > 6 {
		return Position{}, malformed(text, fmt.Sprintf("expected at most 6 fields, got %d", len(parts)))
	}

	p := Position{
		castling:  none,
		enPassant: none,
		halfmove:  0,
		fullmove:  1,
	}

	ranks := strings.Split(parts[0], "/")
	if len(ranks) != 8 {
		return Position{}, malformed(text, fmt.Sprintf("expected 8 ranks, got %d", len(ranks)))
	}

	for r := 0; r < 8; r++ {
		file := 0
		for _, ch := range ranks[r] {
			switch {
			case ch >= '1' && ch <= '8':
				file += int(ch - '0')
			case strings.ContainsRune("pnbrqkPNBRQK", ch):
				if file >= 8 {
					return Position{}, malformed(text, fmt.Sprintf("too many pieces in rank %d", 8-r))
				}
				p.squares[r][file] = byte(ch)
				file++
			default:
				return Position{}, malformed(text, fmt.Sprintf("invalid piece %q", ch))
			}
		}
		if file != 8 {
			return Position{}, malformed(text, fmt.Sprintf("rank %d has %d files", 8-r, file))
		}
	}

	switch parts[1] {
	case "w":
		p.turn = core.ColorWhite
	case "b":
		p.turn = core.ColorBlack
	default:
		return Position{}, malformed(text, "turn must be 'w' or 'b'")
	}

	if len(parts) > 2 {
		castling, ok := normalizeCastling(parts[2])
		if !ok {
			return Position{}, malformed(text, fmt.Sprintf("invalid castling rights %q", parts[2]))
		}
		p.castling = castling
	}

	if len(parts) > 3 {
		if !validEnPassant(parts[3]) {
			return Position{}, malformed(text, fmt.Sprintf("invalid en passant square %q", parts[3]))
		}
		p.enPassant = parts[3]
	}

	if len(parts) > 4 {
		n, err := strconv.Atoi(parts[4])
		if err != nil || n < 0 {
			return Position{}, malformed(text, "halfmove counter")
		}
		p.halfmove = n
	}
	if len(parts) > 5 {
		n, err := strconv.Atoi(parts[5])
		if err != nil || n < 0 {
			return Position{}, malformed(text, "fullmove counter")
		}
		p.fullmove = n
	}

	return p, nil
}

// MustParse is Parse for known-good literals.
func MustParse(text string) Position {
	p, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return p
}

func malformed(text, reason string) error {
	return &core.MalformedPositionError{Text: text, Reason: reason}
}

func normalizeCastling(s string) (string, bool) {
	if s == none {
		return none, true
	}
	var out strings.Builder
	for _, right := range "KQkq" {
		switch strings.Count(s, string(right)) {
		case 0:
		case 1:
			out.WriteRune(right)
		default:
			return "", false
		}
	}
	if out.Len() != len(s) {
		return "", false
	}
	return out.String(), true
}

func validEnPassant(s string) bool {
	if s == none {
		return true
	}
	return len(s) == 2 && s[0] >= 'a' && s[0] <= 'h' && (s[1] == '3' || s[1] == '6')
}

// Placement returns the first FEN field.
func (p Position) Placement() string {
	var sb strings.Builder
	for r := 0; r < 8; r++ {
		if r > 0 {
			sb.WriteByte('/')
		}
		empty := 0
		for f := 0; f < 8; f++ {
			piece := p.squares[r][f]
			if piece == 0 {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(piece)
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
	}
	return sb.String()
}

// FEN returns the full six-field serialization, en passant field as stored.
func (p Position) FEN() string {
	return fmt.Sprintf("%s %c %s %s %d %d",
		p.Placement(), p.turn, p.castling, p.enPassant, p.halfmove, p.fullmove)
}

func (p Position) String() string {
	return p.FEN()
}

func (p Position) Turn() core.Color {
	return p.turn
}

func (p Position) Castling() string {
	return p.castling
}

func (p Position) EnPassant() string {
	return p.enPassant
}

func (p Position) HalfMove() int {
	return p.halfmove
}

func (p Position) FullMove() int {
	return p.fullmove
}

// PieceAt returns the FEN letter on square (e.g. "e4"), or 0 if empty or invalid.
func (p Position) PieceAt(square string) byte {
	if len(square) != 2 {
		return 0
	}
	if square[0] < 'a' || square[0] > 'h' || square[1] < '1' || square[1] > '8' {
		return 0
	}
	file := square[0] - 'a'
	rank := '8' - square[1]
	return p.squares[rank][file]
}

// ToASCII creates an ASCII representation of the board
func (p Position) ToASCII() string {
	var sb strings.Builder
	sb.WriteString("  a b c d e f g h\n")

	for r := 0; r < 8; r++ {
		sb.WriteString(fmt.Sprintf("%d ", 8-r))
		for f := 0; f < 8; f++ {
			piece := p.squares[r][f]
			if piece == 0 {
				sb.WriteString(". ")
			} else {
				sb.WriteString(fmt.Sprintf("%c ", piece))
			}
		}
		sb.WriteString(fmt.Sprintf(" %d\n", 8-r))
	}
	sb.WriteString("  a b c d e f g h")

	return sb.String()
}
