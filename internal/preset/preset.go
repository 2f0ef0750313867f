package preset

import (
	"encoding/json"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"

	"github.com/thoreinstein/mcpswitch/internal/errors"
	"github.com/thoreinstein/mcpswitch/internal/logging"
	"github.com/thoreinstein/mcpswitch/internal/mcp"
	"github.com/thoreinstein/mcpswitch/internal/paths"
	"github.com/thoreinstein/mcpswitch/pkg/fileutil"
)

// ErrPresetNotFound is returned when a preset is neither saved nor built in.
var ErrPresetNotFound = errors.New("preset not found")

// Preset is a saved, named set of server definitions.
type Preset struct {
	Description string                     `json:"description"`
	Servers     map[string]*mcp.Definition `json:"servers"`
}

// Names returns the preset's server names, sorted.
func (p *Preset) Names() []string {
	return slices.Sorted(maps.Keys(p.Servers))
}

// Clone returns a deep copy of p.
func (p *Preset) Clone() *Preset {
	out := &Preset{
		Description: p.Description,
		Servers:     make(map[string]*mcp.Definition, len(p.Servers)),
	}
	for name, def := range p.Servers {
		out.Servers[name] = def.Clone()
	}
	return out
}

var builtinDefaults = map[string][]string{
	"minimal":   {"filesystem", "fetch"},
	"webdev":    {"filesystem", "fetch", "github", "puppeteer"},
	"fullstack": {"filesystem", "fetch", "github", "postgres", "sqlite", "memory", "puppeteer"},
	"testing":   {"filesystem", "puppeteer", "playwright"},
}

// Builtins returns the names of the built-in presets, sorted.
func Builtins() []string {
	return slices.Sorted(maps.Keys(builtinDefaults))
}

// file is the on-disk layout.
type file struct {
	Presets  map[string]*Preset  `json:"presets"`
	Defaults map[string][]string `json:"defaults"`
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Store holds saved presets and the default server lists of the built-ins.
// Mutations stay in memory until Save.
type Store struct {
	path     string
	logger   *slog.Logger
	presets  map[string]*Preset
	defaults map[string][]string
}

// New creates a store backed by path. An empty path means the default
// location under the XDG config directory.
func New(path string, opts ...Option) *Store {
	if path == "" {
		path = paths.PresetsPath()
	}
	s := &Store{
		path:     path,
		logger:   logging.Default(),
		presets:  make(map[string]*Preset),
		defaults: make(map[string][]string),
	}
	for name, servers := range builtinDefaults {
		s.defaults[name] = slices.Clone(servers)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the preset file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the preset file. A missing file leaves only the built-ins.
// Default lists in the file override the built-in ones.
func (s *Store) Load() error {
	data, exists, err := fileutil.ReadOptional(s.path)
	if err != nil {
		return errors.Wrapf(err, "reading presets %s", s.path)
	}
	if !exists || len(data) == 0 {
		return nil
	}

	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return errors.WithHint(
			errors.Wrapf(errors.Mark(err, errors.ErrInvalidConfig), "parsing presets %s", s.path),
			"fix or remove the preset file",
		)
	}

	for name, p := range f.Presets {
		if p == nil {
			s.logger.Warn("dropping empty preset", "preset", name)
			continue
		}
		if p.Servers == nil {
			p.Servers = make(map[string]*mcp.Definition)
		}
		maps.DeleteFunc(p.Servers, func(_ string, def *mcp.Definition) bool { return def == nil })
		s.presets[name] = p
	}
	for name, servers := range f.Defaults {
		if servers == nil {
			servers = []string{}
		}
		s.defaults[name] = servers
	}
	s.logger.Debug("loaded presets", "path", s.path, "saved", len(s.presets))
	return nil
}

// Save writes every saved preset and default list to disk.
func (s *Store) Save() error {
	f := file{
		Presets:  s.presets,
		Defaults: s.defaults,
	}
	if err := paths.EnsureDir(filepath.Dir(s.path), 0); err != nil {
		return errors.Wrapf(err, "creating directory for %s", s.path)
	}
	return errors.Wrap(fileutil.AtomicWriteJSON(s.path, f), "writing presets")
}

// DefaultServers returns the default server list for a built-in preset.
// Unknown names yield an empty list.
func (s *Store) DefaultServers(name string) []string {
	servers, ok := s.defaults[name]
	if !ok {
		return []string{}
	}
	return slices.Clone(servers)
}

// SavePreset stores a preset under name, replacing any existing one.
func (s *Store) SavePreset(name, description string, servers map[string]*mcp.Definition) error {
	if name == "" {
		return errors.ErrMissingName
	}
	p := &Preset{Description: description, Servers: make(map[string]*mcp.Definition, len(servers))}
	for n, def := range servers {
		if def != nil {
			p.Servers[n] = def.Clone()
		}
	}
	s.presets[name] = p
	return nil
}

// Get returns a copy of the saved preset called name.
func (s *Store) Get(name string) (*Preset, bool) {
	p, ok := s.presets[name]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// List returns the names of saved presets and presets with default lists,
// sorted and without duplicates.
func (s *Store) List() []string {
	names := slices.Collect(maps.Keys(s.presets))
	names = slices.AppendSeq(names, maps.Keys(s.defaults))
	slices.Sort(names)
	return slices.Compact(names)
}

// Delete removes the saved preset called name. Built-in default lists are
// not affected.
func (s *Store) Delete(name string) bool {
	if _, ok := s.presets[name]; !ok {
		return false
	}
	delete(s.presets, name)
	return true
}

// Targets returns the server names a preset selects: the saved preset's
// servers if one exists, otherwise its default list.
func (s *Store) Targets(name string) ([]string, error) {
	if p, ok := s.presets[name]; ok {
		return p.Names(), nil
	}
	if servers, ok := s.defaults[name]; ok {
		return slices.Clone(servers), nil
	}
	return nil, errors.Wrapf(ErrPresetNotFound, "%q", name)
}
