package commands

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/thoreinstein/mcpswitch/internal/logging"
	"github.com/thoreinstein/mcpswitch/internal/mcp"
	"github.com/thoreinstein/mcpswitch/internal/reconcile"
)

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	offMark  = color.New(color.FgHiBlack).Sprint("✗")
	failMark = color.New(color.FgRed).Sprint("✗")
	dim      = color.New(color.FgHiBlack).SprintFunc()
	bold     = color.New(color.Bold).SprintFunc()
)

// truncate shortens s to maxLen runes, adding "..." when truncated.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// clientList formats clients for humans, "none" when empty.
func clientList(clients mcp.ClientSet) string {
	if clients.Len() == 0 {
		return "none"
	}
	return strings.Join(clients.Strings(), ", ")
}

// summarize returns the command or URL of def, whichever it runs.
func summarize(def *mcp.Definition) string {
	if def == nil {
		return ""
	}
	if def.IsRemote() {
		return def.URL()
	}
	return strings.TrimSpace(def.Command() + " " + strings.Join(def.Args(), " "))
}

// redacted returns a copy of def with secret-looking env and header values
// masked.
func redacted(def *mcp.Definition) *mcp.Definition {
	if def == nil {
		return nil
	}
	out := def.Clone()
	for _, key := range []string{mcp.KeyEnv, mcp.KeyHeaders} {
		m, ok := out.StringMap(key)
		if !ok || len(m) == 0 {
			continue
		}
		masked := make(map[string]any, len(m))
		for k, v := range logging.MaskSecrets(m) {
			masked[k] = v
		}
		out.Set(key, masked)
	}
	return out
}

// describeMode returns a human description of the clients mode targets.
func describeMode(e *reconcile.Engine, mode reconcile.Mode) string {
	return fmt.Sprintf("%s (%s)", mode, clientList(e.Clients(mode)))
}
