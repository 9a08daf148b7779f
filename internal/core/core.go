package core

import "strings"

type Color byte

const (
	ColorWhite Color = 'w'
	ColorBlack Color = 'b'
)

func OppositeColor(c Color) Color {
	if c == ColorWhite {
		return ColorBlack
	}
	return ColorWhite
}

func (c Color) String() string {
	if c == ColorBlack {
		return "Black"
	}
	return "White"
}

// Result is a game outcome as stored by the search backend.
// ResultAny is a filter sentinel and never appears on a stored game.
type Result string

const (
	ResultAny       Result = "Any"
	ResultWhiteWins Result = "1-0"
	ResultBlackWins Result = "0-1"
	ResultDraw      Result = "1/2-1/2"
	ResultUnknown   Result = "*"
)

// ParseResult accepts the stored notation plus a few spoken forms used at the prompt.
func ParseResult(s string) (Result, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any":
		return ResultAny, true
	case "1-0", "white", "w":
		return ResultWhiteWins, true
	case "0-1", "black", "b":
		return ResultBlackWins, true
	case "1/2-1/2", "draw", "d", "=":
		return ResultDraw, true
	case "*":
		return ResultUnknown, true
	default:
		return "", false
	}
}

func (r Result) String() string {
	switch r {
	case ResultWhiteWins:
		return "White wins"
	case ResultBlackWins:
		return "Black wins"
	case ResultDraw:
		return "Draw"
	case ResultUnknown:
		return "Ongoing"
	default:
		return "Any"
	}
}

// Concrete reports whether r names a real outcome the backend can filter on.
func (r Result) Concrete() bool {
	return r == ResultWhiteWins || r == ResultBlackWins || r == ResultDraw
}
