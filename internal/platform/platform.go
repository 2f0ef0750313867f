package platform

import (
	"fmt"

	"github.com/thoreinstein/mcpswitch/internal/errors"
	"github.com/thoreinstein/mcpswitch/internal/mcp"
)

// ErrFormat marks a configuration file that exists but cannot be decoded.
var ErrFormat = errors.New("undecodable config file")

// Adapter reads and writes one client's configuration file.
//
// Each supported client (Claude, Gemini, Codex) implements this interface
// to translate between its on-disk schema and [mcp.Config].
//
// Implementations hold no mutable state and are safe for concurrent use.
type Adapter interface {
	// Client returns the client this adapter serves.
	Client() mcp.ClientID

	// DisplayName returns a human-readable client name.
	DisplayName() string

	// DefaultPath returns the configuration file location used when the
	// application config does not override it.
	//
	// Examples:
	//   - claude: ~/.claude.json
	//   - gemini: ~/.gemini/settings.json
	//   - codex: ~/.codex/config.toml
	DefaultPath() string

	// Parse reads the file at path. A missing file yields an empty config
	// with Exists set to false. A file that cannot be decoded yields a
	// *FormatError.
	Parse(path string) (*mcp.Config, error)

	// Write serializes cfg to path atomically, creating parent directories
	// and preserving document content the config does not own.
	Write(cfg *mcp.Config, path string) error

	// Validate reports whether every global server in cfg is structurally
	// valid.
	Validate(cfg *mcp.Config) bool
}

// FormatError reports a configuration file that could not be decoded.
type FormatError struct {
	Client mcp.ClientID
	Path   string
	Err    error
}

// NewFormatError wraps cause for the given client and path.
func NewFormatError(client mcp.ClientID, path string, cause error) *FormatError {
	return &FormatError{Client: client, Path: path, Err: cause}
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("parsing %s config %s: %v", e.Client, e.Path, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrFormat.
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}
