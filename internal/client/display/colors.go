package display

import (
	"os"

	"golang.org/x/term"
)

// Terminal color codes. Empty when color is disabled.
var (
	Reset   = "\033[0m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"
	Inverse = "\033[7m"
)

// SetColor turns ANSI color output on or off.
func SetColor(enabled bool) {
	if enabled {
		Reset, Red, Green, Yellow = "\033[0m", "\033[31m", "\033[32m", "\033[33m"
		Blue, Magenta, Cyan, White = "\033[34m", "\033[35m", "\033[36m", "\033[37m"
		Inverse = "\033[7m"
		return
	}
	Reset, Red, Green, Yellow, Blue, Magenta, Cyan, White, Inverse = "", "", "", "", "", "", "", "", ""
}

// DetectColor enables color only when f is a terminal.
func DetectColor(f *os.File) {
	SetColor(term.IsTerminal(int(f.Fd())))
}

// Prompt returns a colored prompt string
func Prompt(text string) string {
	return Yellow + text + " > " + Reset
}
