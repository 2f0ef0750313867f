package logging

import (
	"io"
	"os"

	"golang.org/x/term"
)

// isTerminal is swapped out in tests that need a color-capable writer.
var isTerminal = IsTTY

// IsTTY reports whether w is a terminal. Anything exposing Fd(), such as
// *os.File, is checked; other writers are never terminals.
func IsTTY(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// SupportsColor reports whether mcpswitch should write ANSI colors to w.
// NO_COLOR (https://no-color.org) and TERM=dumb turn color off even on a
// terminal.
func SupportsColor(w io.Writer) bool {
	return supportsColor(w, isTerminal(w))
}

func supportsColor(_ io.Writer, tty bool) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return tty
}
