// Package editor launches the user's preferred text editor on mcpswitch's
// own files.
package editor

import (
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/thoreinstein/mcpswitch/internal/errors"
)

// Streams connects the editor process to a terminal.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Open runs the preferred editor on path and waits for it to exit. The
// editor setting may carry arguments, as in EDITOR="code --wait".
func Open(ctx context.Context, path string, s Streams) error {
	fields := strings.Fields(Detect())
	if len(fields) == 0 {
		return errors.New("no editor configured")
	}

	args := append(fields[1:], path)
	cmd := exec.CommandContext(ctx, fields[0], args...)
	cmd.Stdin = s.In
	cmd.Stdout = s.Out
	cmd.Stderr = s.Err

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "running editor %s", fields[0])
	}
	return nil
}

// Detect returns the editor command: $EDITOR, then $VISUAL, then nano if
// installed, then vi. Blank variables count as unset.
func Detect() string {
	for _, env := range []string{"EDITOR", "VISUAL"} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v
		}
	}
	if _, err := exec.LookPath("nano"); err == nil {
		return "nano"
	}
	return "vi"
}
