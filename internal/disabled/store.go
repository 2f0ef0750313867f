package disabled

import (
	"bytes"
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

// Keys of the current on-disk entry shape.
const (
	keyConfig      = "config"
	keyDisabledFor = "disabled_for"
)

// Entry is a server definition kept aside for the clients it is disabled
// for. DisabledFor is never empty while the entry is stored.
type Entry struct {
	Config      *mcp.Definition
	DisabledFor mcp.ClientSet
}

// Clone returns a deep copy of e.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	return &Entry{
		Config:      e.Config.Clone(),
		DisabledFor: e.DisabledFor.Clone(),
	}
}

// Entries maps server names to their disabled-store entries.
type Entries map[string]*Entry

// Get returns the entry for name.
func (es Entries) Get(name string) (*Entry, bool) {
	e, ok := es[name]
	return e, ok
}

// Names returns the stored names in sorted order.
func (es Entries) Names() []string {
	return slices.Sorted(maps.Keys(es))
}

// Clone returns a deep copy of es.
func (es Entries) Clone() Entries {
	out := make(Entries, len(es))
	for name, e := range es {
		out[name] = e.Clone()
	}
	return out
}

// storedEntry is one entry as resolved from disk. Decoding yields exactly
// one variant per name; nothing outside this file inspects the raw shape.
type storedEntry interface {
	resolve() (*Entry, bool)
}

// legacyEntry is a bare definition from the original store format. It is
// implicitly disabled for every client.
type legacyEntry struct {
	def *mcp.Definition
}

func (l legacyEntry) resolve() (*Entry, bool) {
	return &Entry{Config: l.def, DisabledFor: mcp.AllClients()}, true
}

// invalidEntry is a value that matches neither shape.
type invalidEntry struct{}

func (invalidEntry) resolve() (*Entry, bool) {
	return nil, false
}

// currentEntry is the on-disk shape written by Save.
type currentEntry struct {
	Config      *mcp.Definition `json:"config"`
	DisabledFor []string        `json:"disabled_for"`
}

// resolve drops unknown client ids. The second result is false if the
// entry has no usable definition or no clients left.
func (c currentEntry) resolve() (*Entry, bool) {
	if c.Config == nil {
		return nil, false
	}
	clients := mcp.NewClientSet()
	for _, s := range c.DisabledFor {
		if id, ok := mcp.ParseClientID(s); ok {
			clients.Add(id)
		}
	}
	if clients.Len() == 0 {
		return nil, false
	}
	return &Entry{Config: c.Config, DisabledFor: clients}, true
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger for load warnings and migration notices.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// Store persists disabled servers to a JSON file.
type Store struct {
	path   string
	logger *slog.Logger
}

// New creates a store backed by path. An empty path means the default
// location under the XDG config directory.
func New(path string, opts ...Option) *Store {
	if path == "" {
		path = paths.StorePath()
	}
	s := &Store{
		path:   path,
		logger: logging.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the store file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the store. A missing or undecodable file yields an empty
// store. Legacy entries are migrated and the migrated form is written back
// immediately; the returned error reports only a failure of that write,
// in which case the entries are still returned.
func (s *Store) Load() (Entries, error) {
	entries := make(Entries)

	data, exists, err := fileutil.ReadOptional(s.path)
	if err != nil {
		s.logger.Warn("reading disabled store, starting empty", "path", s.path, "error", err)
		return entries, nil
	}
	if !exists {
		return entries, nil
	}

	stored, err := decode(data)
	if err != nil {
		s.logger.Warn("disabled store is not valid JSON, starting empty", "path", s.path, "error", err)
		return entries, nil
	}

	migrated := 0
	for name, se := range stored {
		if _, legacy := se.(legacyEntry); legacy {
			migrated++
		}
		entry, ok := se.resolve()
		if !ok {
			s.logger.Warn("dropping unusable disabled store entry", "server", name)
			continue
		}
		entries[name] = entry
	}

	if migrated > 0 {
		s.logger.Info("migrating legacy disabled store entries", "path", s.path, "count", migrated)
		if err := s.Save(entries); err != nil {
			return entries, errors.Wrap(err, "persisting migrated disabled store")
		}
	}

	return entries, nil
}

// Save writes entries to disk. Entries with a nil DisabledFor are written
// as disabled for every client; entries with an empty set are dropped.
func (s *Store) Save(entries Entries) error {
	out := make(map[string]currentEntry, len(entries))
	for name, e := range entries {
		if e == nil || e.Config == nil {
			continue
		}
		clients := e.DisabledFor
		if clients == nil {
			clients = mcp.AllClients()
		}
		if clients.Len() == 0 {
			continue
		}
		out[name] = currentEntry{Config: e.Config, DisabledFor: clients.Strings()}
	}

	if err := paths.EnsureDir(filepath.Dir(s.path), 0); err != nil {
		return errors.Wrapf(err, "creating directory for %s", s.path)
	}
	return errors.Wrap(fileutil.AtomicWriteJSON(s.path, out), "writing disabled store")
}

// decode resolves each top-level value into its stored variant.
func decode(data []byte) (map[string]storedEntry, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	out := make(map[string]storedEntry, len(raw))
	for name, value := range raw {
		out[name] = decodeEntry(value)
	}
	return out, nil
}

func decodeEntry(value json.RawMessage) storedEntry {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(value, &fields); err != nil || fields == nil {
		return invalidEntry{}
	}

	if wrapped, ok := wrappedWithoutClients(fields); ok {
		def := new(mcp.Definition)
		if err := json.Unmarshal(wrapped, def); err != nil {
			return invalidEntry{}
		}
		return legacyEntry{def: def}
	}

	if _, current := fields[keyDisabledFor]; current {
		var ce currentEntry
		if err := json.Unmarshal(value, &ce); err != nil {
			return invalidEntry{}
		}
		return ce
	}

	def := new(mcp.Definition)
	if err := json.Unmarshal(value, def); err != nil {
		return invalidEntry{}
	}
	return legacyEntry{def: def}
}

// wrappedWithoutClients reports whether fields is a current-shaped entry
// whose disabled_for is null or absent. Such an entry carries no per-client
// information and resolves like a legacy one.
func wrappedWithoutClients(fields map[string]json.RawMessage) (json.RawMessage, bool) {
	cfg, ok := fields[keyConfig]
	if !ok || isNull(cfg) {
		return nil, false
	}
	for key := range fields {
		if key != keyConfig && key != keyDisabledFor {
			return nil, false
		}
	}
	if clients, ok := fields[keyDisabledFor]; ok && !isNull(clients) {
		return nil, false
	}
	return cfg, true
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
