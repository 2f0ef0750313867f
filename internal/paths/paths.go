package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"github.com/thoreinstein/mcpswitch/internal/errors"
)

// AppName is the directory name mcpswitch uses under the XDG roots.
const AppName = "mcpswitch"

// Client identifiers, mirrored from the mcp package as plain strings so this
// package stays dependency free.
const (
	ClientClaude = "claude"
	ClientGemini = "gemini"
	ClientCodex  = "codex"
)

// CodexHomeEnv overrides the Codex config directory, matching the Codex CLI.
const CodexHomeEnv = "CODEX_HOME"

// ErrHomeDirNotFound indicates the user's home directory could not be determined.
var ErrHomeDirNotFound = errors.New("home directory not found")

// DefaultDirPerm is the default permission for directories mcpswitch creates.
const DefaultDirPerm = 0o700

// EnsureDir creates the directory and any necessary parents.
// If perm is 0, DefaultDirPerm is used.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return os.MkdirAll(path, perm)
}

// ResolveHome returns the user's home directory.
func ResolveHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(ErrHomeDirNotFound, err.Error())
	}
	return home, nil
}

// Home returns the user's home directory, or an empty string if it cannot be
// determined. Use ResolveHome when the error matters.
func Home() string {
	h, _ := ResolveHome()
	return h
}

// ResolveTilde expands a leading "~" or "~/" to the home directory. Other
// paths, and all paths when the home directory is unknown, are returned
// unchanged.
func ResolveTilde(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home := Home()
	if home == "" {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

// ConfigHome returns the XDG config home directory.
func ConfigHome() string {
	return xdg.ConfigHome
}

// DataHome returns the XDG data home directory.
func DataHome() string {
	return xdg.DataHome
}

// AppConfigDir returns <ConfigHome>/mcpswitch.
func AppConfigDir() string {
	return filepath.Join(ConfigHome(), AppName)
}

// AppConfigFile returns the default application config file path.
func AppConfigFile() string {
	return filepath.Join(AppConfigDir(), "config.yaml")
}

// StorePath returns the default disabled-server store location.
func StorePath() string {
	return filepath.Join(AppConfigDir(), "disabled_servers.json")
}

// PresetsPath returns the default preset store location.
func PresetsPath() string {
	return filepath.Join(AppConfigDir(), "presets.json")
}

// BackupDir returns the root directory for client config backups.
func BackupDir() string {
	return filepath.Join(DataHome(), AppName, "backups")
}

// Clients returns the supported client identifiers in canonical order.
func Clients() []string {
	return []string{ClientClaude, ClientGemini, ClientCodex}
}

// ClientConfigPath returns the live MCP config file of a client.
//
//   - claude: ~/.claude.json (the main user file, not ~/.claude/)
//   - gemini: ~/.gemini/settings.json
//   - codex:  $CODEX_HOME/config.toml, defaulting to ~/.codex/config.toml
//
// Returns an empty string for unknown clients or when the home directory
// cannot be resolved.
func ClientConfigPath(client string) string {
	if client == ClientCodex {
		if dir := os.Getenv(CodexHomeEnv); dir != "" {
			return filepath.Join(dir, "config.toml")
		}
	}

	home := Home()
	if home == "" {
		return ""
	}

	switch client {
	case ClientClaude:
		return filepath.Join(home, ".claude.json")
	case ClientGemini:
		return filepath.Join(home, ".gemini", "settings.json")
	case ClientCodex:
		return filepath.Join(home, ".codex", "config.toml")
	default:
		return ""
	}
}
