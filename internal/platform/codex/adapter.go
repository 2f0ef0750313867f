package codex

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/thoreinstein/mcpswitch/internal/errors"
	"github.com/thoreinstein/mcpswitch/internal/mcp"
	"github.com/thoreinstein/mcpswitch/internal/mcp/validator"
	"github.com/thoreinstein/mcpswitch/internal/paths"
	"github.com/thoreinstein/mcpswitch/internal/platform"
	"github.com/thoreinstein/mcpswitch/pkg/fileutil"
)

// Document keys owned by the adapter.
const (
	keyServers  = "mcp_servers"
	keyProjects = "projects"
	keyHeaders  = "http_headers"
)

// PlaceholderCommand is written as the command of remote servers. Codex
// rejects a server table without a command, even when url is set.
const PlaceholderCommand = "npx"

// Adapter reads and writes ~/.codex/config.toml.
//
// Codex keeps servers in [mcp_servers.<name>] tables and project servers in
// [projects."<path>".mcp_servers.<name>]. It has no "type" key: a server
// with a url is a streamable-HTTP server.
type Adapter struct{}

var _ platform.Adapter = (*Adapter)(nil)

// New creates a Codex adapter.
func New() *Adapter {
	return &Adapter{}
}

// Client returns mcp.Codex.
func (a *Adapter) Client() mcp.ClientID {
	return mcp.Codex
}

// DisplayName returns a human-readable client name.
func (a *Adapter) DisplayName() string {
	return "Codex CLI"
}

// DefaultPath returns $CODEX_HOME/config.toml, or ~/.codex/config.toml.
func (a *Adapter) DefaultPath() string {
	return paths.ClientConfigPath(paths.ClientCodex)
}

// Parse reads the Codex config at path.
func (a *Adapter) Parse(path string) (*mcp.Config, error) {
	cfg := mcp.NewConfig(mcp.Codex)

	data, exists, err := fileutil.ReadOptional(path)
	if err != nil {
		return nil, err
	}
	if !exists {
		return cfg, nil
	}
	cfg.Exists = true

	doc := make(map[string]any)
	if len(bytes.TrimSpace(data)) > 0 {
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, platform.NewFormatError(mcp.Codex, path, err)
		}
	}

	cfg.Servers, err = decodeTable(doc[keyServers])
	if err != nil {
		return nil, platform.NewFormatError(mcp.Codex, path, errors.Wrap(err, keyServers))
	}

	if projects, ok := doc[keyProjects].(map[string]any); ok {
		for projectPath, raw := range projects {
			project, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			table, ok := project[keyServers]
			if !ok {
				continue
			}
			servers, err := decodeTable(table)
			if err != nil {
				return nil, platform.NewFormatError(mcp.Codex, path, errors.Wrapf(err, "project %s", projectPath))
			}
			cfg.Projects[projectPath] = servers
		}
	}

	delete(doc, keyServers)
	cfg.Extra = doc
	return cfg, nil
}

// Write serializes cfg to path atomically. Comments in the original file
// are not preserved.
func (a *Adapter) Write(cfg *mcp.Config, path string) error {
	if cfg == nil {
		return errors.New("nil config")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating directory %s", dir)
	}

	doc := make(map[string]any, len(cfg.Extra)+1)
	for k, v := range cfg.Extra {
		doc[k] = v
	}

	if len(cfg.Servers) > 0 {
		doc[keyServers] = encodeTable(cfg.Servers)
	}

	if len(cfg.Projects) > 0 {
		projects := copyTable(doc[keyProjects])
		for projectPath, servers := range cfg.Projects {
			project := copyTable(projects[projectPath])
			if len(servers) > 0 {
				project[keyServers] = encodeTable(servers)
			} else {
				delete(project, keyServers)
			}
			projects[projectPath] = project
		}
		doc[keyProjects] = projects
	}

	return errors.Wrap(fileutil.AtomicWriteTOML(path, doc), "writing Codex config")
}

// Validate reports whether every global server in cfg is structurally valid.
func (a *Adapter) Validate(cfg *mcp.Config) bool {
	return validator.Valid(cfg)
}

func decodeTable(raw any) (map[string]*mcp.Definition, error) {
	servers := make(map[string]*mcp.Definition)
	if raw == nil {
		return servers, nil
	}
	table, ok := raw.(map[string]any)
	if !ok {
		return nil, errors.Newf("expected a table, got %T", raw)
	}
	for name, entry := range table {
		fields, ok := entry.(map[string]any)
		if !ok {
			return nil, errors.Newf("server %q: expected a table, got %T", name, entry)
		}
		servers[name] = fromCodex(fields)
	}
	return servers, nil
}

func encodeTable(servers map[string]*mcp.Definition) map[string]any {
	out := make(map[string]any, len(servers))
	for name, def := range servers {
		if def == nil {
			continue
		}
		out[name] = toCodex(def)
	}
	return out
}

// fromCodex converts a decoded server table to a definition:
//   - http_headers becomes headers
//   - the placeholder command of a remote server is dropped
//   - a url without a command becomes type http
func fromCodex(fields map[string]any) *mcp.Definition {
	def := mcp.DefinitionFromMap(fields)
	def.Rename(keyHeaders, mcp.KeyHeaders)

	if def.URL() != "" && def.Command() == PlaceholderCommand && len(def.Args()) == 0 {
		def.Delete(mcp.KeyCommand)
		def.Delete(mcp.KeyArgs)
	}
	if def.URL() != "" && def.Command() == "" && !def.Has(mcp.KeyType) {
		def.Set(mcp.KeyType, mcp.TransportHTTP)
	}
	return def
}

// toCodex converts a definition to a TOML-encodable table, reversing
// fromCodex. The placeholder command exists only in the written document.
func toCodex(def *mcp.Definition) map[string]any {
	out := make(map[string]any, def.Len()+1)
	for _, k := range def.Keys() {
		v, _ := def.Get(k)
		out[k] = tomlValue(v)
	}

	if def.IsRemote() && def.Command() == "" {
		out[mcp.KeyCommand] = PlaceholderCommand
	}
	delete(out, mcp.KeyType)

	if headers, ok := out[mcp.KeyHeaders]; ok {
		if _, taken := out[keyHeaders]; !taken {
			out[keyHeaders] = headers
			delete(out, mcp.KeyHeaders)
		}
	}
	return out
}

// tomlValue converts JSON-decoded values to types the TOML encoder writes
// natively. json.Number and whole floats become integers.
func tomlValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return tomlValue(f)
		}
		return t.String()
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1<<53 {
			return int64(t)
		}
		return t
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = tomlValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = tomlValue(e)
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = e
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = e
		}
		return out
	case *mcp.Definition:
		return tomlValue(t.ToMap())
	default:
		return v
	}
}

// copyTable returns a shallow copy of raw if it is a table, or an empty one.
func copyTable(raw any) map[string]any {
	out := make(map[string]any)
	if table, ok := raw.(map[string]any); ok {
		for k, v := range table {
			out[k] = v
		}
	}
	return out
}
