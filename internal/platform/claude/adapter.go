package claude

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/thoreinstein/mcpswitch/internal/errors"
	"github.com/thoreinstein/mcpswitch/internal/mcp"
	"github.com/thoreinstein/mcpswitch/internal/mcp/validator"
	"github.com/thoreinstein/mcpswitch/internal/paths"
	"github.com/thoreinstein/mcpswitch/internal/platform"
	"github.com/thoreinstein/mcpswitch/pkg/fileutil"
)

// Document keys owned by the adapter.
const (
	keyServers  = "mcpServers"
	keyProjects = "projects"
)

// Adapter reads and writes ~/.claude.json.
//
// The file holds a global "mcpServers" table and a "projects" object keyed
// by absolute project path, each of which may hold its own "mcpServers".
// Everything else in the file (history, settings, per-project state) is
// preserved verbatim.
type Adapter struct{}

var _ platform.Adapter = (*Adapter)(nil)

// New creates a Claude adapter.
func New() *Adapter {
	return &Adapter{}
}

// Client returns mcp.Claude.
func (a *Adapter) Client() mcp.ClientID {
	return mcp.Claude
}

// DisplayName returns a human-readable client name.
func (a *Adapter) DisplayName() string {
	return "Claude Code"
}

// DefaultPath returns ~/.claude.json.
func (a *Adapter) DefaultPath() string {
	return paths.ClientConfigPath(paths.ClientClaude)
}

// Parse reads the Claude config at path.
func (a *Adapter) Parse(path string) (*mcp.Config, error) {
	cfg := mcp.NewConfig(mcp.Claude)

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
		return nil, platform.NewFormatError(mcp.Claude, path, err)
	}

	cfg.Servers, err = platform.DecodeServerTable(doc[keyServers])
	if err != nil {
		return nil, platform.NewFormatError(mcp.Claude, path, errors.Wrap(err, keyServers))
	}

	cfg.Projects, err = decodeProjects(doc[keyProjects])
	if err != nil {
		return nil, platform.NewFormatError(mcp.Claude, path, errors.Wrap(err, keyProjects))
	}

	cfg.Extra = doc.Extra(keyServers)
	return cfg, nil
}

// Write serializes cfg to path atomically. The global table is always
// written; project tables are written into their existing project entries.
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

	servers := cfg.Servers
	if servers == nil {
		servers = map[string]*mcp.Definition{}
	}
	if err := doc.Set(keyServers, servers); err != nil {
		return err
	}

	if len(cfg.Projects) > 0 {
		projects, err := encodeProjects(doc[keyProjects], cfg.Projects)
		if err != nil {
			return err
		}
		doc[keyProjects] = projects
	}

	return errors.Wrap(fileutil.AtomicWriteJSON(path, doc), "writing Claude config")
}

// Validate reports whether every global server in cfg is structurally valid.
func (a *Adapter) Validate(cfg *mcp.Config) bool {
	return validator.Valid(cfg)
}

// decodeProjects extracts the server table of every project that has one.
func decodeProjects(raw json.RawMessage) (map[string]map[string]*mcp.Definition, error) {
	out := make(map[string]map[string]*mcp.Definition)
	if len(raw) == 0 {
		return out, nil
	}

	var projects map[string]platform.JSONDocument
	if err := json.Unmarshal(raw, &projects); err != nil {
		return nil, err
	}

	for path, project := range projects {
		table, ok := project[keyServers]
		if !ok {
			continue
		}
		servers, err := platform.DecodeServerTable(table)
		if err != nil {
			return nil, errors.Wrapf(err, "project %s", path)
		}
		out[path] = servers
	}
	return out, nil
}

// encodeProjects writes tables into the raw projects object, keeping every
// other project key as it was.
func encodeProjects(raw json.RawMessage, tables map[string]map[string]*mcp.Definition) (json.RawMessage, error) {
	projects := make(map[string]platform.JSONDocument)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &projects); err != nil {
			return nil, errors.Wrap(err, "decoding projects")
		}
	}

	for path, servers := range tables {
		project := projects[path]
		if project == nil {
			project = make(platform.JSONDocument)
		}
		if servers == nil {
			servers = map[string]*mcp.Definition{}
		}
		if err := project.Set(keyServers, servers); err != nil {
			return nil, errors.Wrapf(err, "project %s", path)
		}
		projects[path] = project
	}

	data, err := json.Marshal(projects)
	if err != nil {
		return nil, errors.Wrap(err, "encoding projects")
	}
	return data, nil
}
