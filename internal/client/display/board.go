// Package display renders positions, move lists and query results for the terminal.
package display

import (
	"fmt"
	"io"
	"strings"

	"chessdb/internal/core"
	"chessdb/internal/position"
)

// RenderBoard renders an ASCII board with colored pieces
func RenderBoard(w io.Writer, asciiBoard string) {
	lines := strings.Split(asciiBoard, "\n")

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		isFileLine := (i == 0) || (i == 9)

		for _, char := range line {
			switch {
			case char >= 'a' && char <= 'h' && isFileLine:
				fmt.Fprintf(w, "%s%c%s", Cyan, char, Reset)
			case char >= 'A' && char <= 'Z':
				// White pieces
				fmt.Fprintf(w, "%s%c%s", Blue, char, Reset)
			case char >= 'a' && char <= 'z' && !isFileLine:
				// Black pieces
				fmt.Fprintf(w, "%s%c%s", Red, char, Reset)
			case char >= '1' && char <= '8':
				fmt.Fprintf(w, "%s%c%s", Cyan, char, Reset)
			default:
				fmt.Fprintf(w, "%c", char)
			}
		}
		fmt.Fprintln(w)
	}
}

// RenderPosition draws the board and the side to move.
func RenderPosition(w io.Writer, p position.Position) {
	RenderBoard(w, p.ToASCII())
	fmt.Fprintf(w, "%s to move\n", ColorForTurn(p.Turn()))
}

// ColorForTurn returns colored turn indicator
func ColorForTurn(turn core.Color) string {
	if turn == core.ColorWhite {
		return Blue + turn.String() + Reset
	}
	return Red + turn.String() + Reset
}
