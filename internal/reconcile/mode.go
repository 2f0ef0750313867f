package reconcile

import (
	"strings"

	"github.com/thoreinstein/mcpswitch/internal/mcp"
)

// Mode names the clients an operation targets.
type Mode string

// Mode tokens. Any other token resolves to ModeAll.
const (
	ModeClaude Mode = "claude"
	ModeGemini Mode = "gemini"
	ModeCodex  Mode = "codex"
	// ModeBoth is the historical pair of Claude and Gemini.
	ModeBoth Mode = "both"
	ModeAll  Mode = "all"
)

// Modes returns the recognised mode tokens.
func Modes() []Mode {
	return []Mode{ModeClaude, ModeGemini, ModeCodex, ModeBoth, ModeAll}
}

// ModeFor returns the mode targeting only client.
func ModeFor(client mcp.ClientID) Mode {
	return Mode(client)
}

// ResolveMode returns the clients a mode token targets and whether the
// token was recognised. Empty and unrecognised tokens target every client.
func ResolveMode(mode Mode) (mcp.ClientSet, bool) {
	token := Mode(strings.ToLower(strings.TrimSpace(string(mode))))
	switch token {
	case "", ModeAll:
		return mcp.AllClients(), true
	case ModeBoth:
		return mcp.NewClientSet(mcp.Claude, mcp.Gemini), true
	}
	if id, ok := mcp.ParseClientID(string(token)); ok {
		return mcp.NewClientSet(id), true
	}
	return mcp.AllClients(), false
}
