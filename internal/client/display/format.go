package display

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"chessdb/internal/core"
)

// PrettyPrintJSON prints formatted JSON
func PrettyPrintJSON(w io.Writer, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(w, "%sError formatting JSON: %s%s\n", Red, err.Error(), Reset)
		return
	}
	fmt.Fprintln(w, string(data))
}

// Error prints err for the user. Corrupt game records get a fixed message.
func Error(w io.Writer, err error) {
	msg := err.Error()
	if errors.Is(err, core.ErrIllegalReplayMove) {
		msg = core.ErrIllegalReplayMove.Error()
	}
	fmt.Fprintf(w, "%sError: %s%s\n", Red, msg, Reset)
}

// Info prints a neutral status line.
func Info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s%s%s\n", Cyan, fmt.Sprintf(format, args...), Reset)
}

// Success prints a confirmation line.
func Success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s%s%s\n", Green, fmt.Sprintf(format, args...), Reset)
}
