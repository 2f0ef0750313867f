package gemini

import (
	"os"
	"path/filepath"

	"github.com/thoreinstein/mcpswitch/internal/errors"
	"github.com/thoreinstein/mcpswitch/internal/mcp"
	"github.com/thoreinstein/mcpswitch/internal/mcp/validator"
	"github.com/thoreinstein/mcpswitch/internal/paths"
	"github.com/thoreinstein/mcpswitch/internal/platform"
	"github.com/thoreinstein/mcpswitch/pkg/fileutil"
)

const keyServers = "mcpServers"

// keyHTTPURL is Gemini's field for streamable-HTTP servers. A plain "url"
// means Server-Sent Events.
const keyHTTPURL = "httpUrl"

// Adapter reads and writes ~/.gemini/settings.json.
//
// Gemini has no project tables and no "type" field: the transport is
// implied by which of command, url or httpUrl is present. Parse makes the
// transport explicit and Write folds it back.
type Adapter struct{}

var _ platform.Adapter = (*Adapter)(nil)

// New creates a Gemini adapter.
func New() *Adapter {
	return &Adapter{}
}

// Client returns mcp.Gemini.
func (a *Adapter) Client() mcp.ClientID {
	return mcp.Gemini
}

// DisplayName returns a human-readable client name.
func (a *Adapter) DisplayName() string {
	return "Gemini CLI"
}

// DefaultPath returns ~/.gemini/settings.json.
func (a *Adapter) DefaultPath() string {
	return paths.ClientConfigPath(paths.ClientGemini)
}

// Parse reads the Gemini settings at path.
func (a *Adapter) Parse(path string) (*mcp.Config, error) {
	cfg := mcp.NewConfig(mcp.Gemini)

	data, exists, err := fileutil.ReadOptional(path)
	if err != nil {
		return nil, err
	}
	if !exists {
		return cfg, nil
	}
	cfg.Exists = true

	doc, err := platform.DecodeJSONDocument(data)
	if err != nil {
		return nil, platform.NewFormatError(mcp.Gemini, path, err)
	}

	servers, err := platform.DecodeServerTable(doc[keyServers])
	if err != nil {
		return nil, platform.NewFormatError(mcp.Gemini, path, errors.Wrap(err, keyServers))
	}
	for _, def := range servers {
		fromGemini(def)
	}

	cfg.Servers = servers
	cfg.Extra = doc.Extra(keyServers)
	return cfg, nil
}

// Write serializes cfg to path atomically.
func (a *Adapter) Write(cfg *mcp.Config, path string) error {
	if cfg == nil {
		return errors.New("nil config")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating directory %s", dir)
	}

	doc, err := platform.JSONDocumentFromExtra(cfg.Extra)
	if err != nil {
		return err
	}

	servers := make(map[string]*mcp.Definition, len(cfg.Servers))
	for name, def := range cfg.Servers {
		servers[name] = toGemini(def)
	}
	if err := doc.Set(keyServers, servers); err != nil {
		return err
	}

	return errors.Wrap(fileutil.AtomicWriteJSON(path, doc), "writing Gemini settings")
}

// Validate reports whether every global server in cfg is structurally valid.
func (a *Adapter) Validate(cfg *mcp.Config) bool {
	return validator.Valid(cfg)
}

// fromGemini makes the transport explicit in place:
//   - httpUrl becomes url with type http
//   - url without command or type becomes type sse
func fromGemini(def *mcp.Definition) {
	if def.Has(keyHTTPURL) && !def.Has(mcp.KeyURL) {
		def.Rename(keyHTTPURL, mcp.KeyURL)
		if !def.Has(mcp.KeyType) {
			def.Set(mcp.KeyType, mcp.TransportHTTP)
		}
		return
	}
	if def.URL() != "" && def.Command() == "" && !def.Has(mcp.KeyType) {
		def.Set(mcp.KeyType, mcp.TransportSSE)
	}
}

// toGemini returns a copy of def in Gemini's shape, reversing fromGemini.
func toGemini(def *mcp.Definition) *mcp.Definition {
	out := def.Clone()
	if out == nil || out.URL() == "" {
		return out
	}
	switch out.Type() {
	case mcp.TransportHTTP:
		out.Delete(mcp.KeyType)
		out.Rename(mcp.KeyURL, keyHTTPURL)
	case mcp.TransportSSE:
		if out.Command() == "" {
			out.Delete(mcp.KeyType)
		}
	}
	return out
}
