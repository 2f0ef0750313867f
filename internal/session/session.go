package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/thoreinstein/mcpswitch/internal/backup"
	"github.com/thoreinstein/mcpswitch/internal/disabled"
	"github.com/thoreinstein/mcpswitch/internal/errors"
	"github.com/thoreinstein/mcpswitch/internal/logging"
	"github.com/thoreinstein/mcpswitch/internal/mcp"
	"github.com/thoreinstein/mcpswitch/internal/platform"
	"github.com/thoreinstein/mcpswitch/internal/platform/claude"
	"github.com/thoreinstein/mcpswitch/internal/platform/codex"
	"github.com/thoreinstein/mcpswitch/internal/platform/gemini"
	"github.com/thoreinstein/mcpswitch/internal/reconcile"
)

// StoreBackupName is the backup "client" under which the disabled store is
// backed up.
const StoreBackupName = "store"

// DefaultRegistry returns a registry holding the Claude, Gemini and Codex
// adapters.
func DefaultRegistry() *platform.Registry {
	return platform.NewRegistry(claude.New(), gemini.New(), codex.New())
}

// LoadError collects the clients whose config files could not be read.
type LoadError struct {
	Errors map[mcp.ClientID]error
}

func (e *LoadError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, c := range mcp.Clients() {
		if err, ok := e.Errors[c]; ok {
			parts = append(parts, err.Error())
		}
	}
	return strings.Join(parts, "; ")
}

// Is reports whether any per-client error matches target.
func (e *LoadError) Is(target error) bool {
	for _, err := range e.Errors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithClientPath overrides the config file location of client.
func WithClientPath(client mcp.ClientID, path string) Option {
	return func(s *Session) {
		if path != "" {
			s.paths[client] = path
		}
	}
}

// WithBackups backs up each client file before it is first rewritten.
func WithBackups(once *backup.Once) Option {
	return func(s *Session) {
		s.backups = once
	}
}

// Session tracks what was loaded so Save can tell what changed.
type Session struct {
	registry *platform.Registry
	store    *disabled.Store
	paths    map[mcp.ClientID]string
	backups  *backup.Once
	logger   *slog.Logger

	loaded    map[mcp.ClientID]string
	failed    map[mcp.ClientID]error
	storeSeen string
}

// New creates a session over the adapters in registry and the store.
func New(registry *platform.Registry, store *disabled.Store, opts ...Option) *Session {
	s := &Session{
		registry: registry,
		store:    store,
		paths:    make(map[mcp.ClientID]string),
		logger:   logging.NewDiscard(),
		loaded:   make(map[mcp.ClientID]string),
		failed:   make(map[mcp.ClientID]error),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the config file location used for client.
func (s *Session) Path(client mcp.ClientID) string {
	if p, ok := s.paths[client]; ok {
		return p
	}
	a, err := s.registry.Get(client)
	if err != nil {
		return ""
	}
	return a.DefaultPath()
}

// PathFor returns the location used for a's client. It fits
// platform.DetectAll.
func (s *Session) PathFor(a platform.Adapter) string {
	return s.Path(a.Client())
}

// Registry returns the session's adapter registry.
func (s *Session) Registry() *platform.Registry {
	return s.registry
}

// Failed returns the clients whose files could not be parsed by the last
// Load. Save never writes them.
func (s *Session) Failed() map[mcp.ClientID]error {
	return s.failed
}

// Load parses every client config and the disabled store. Clients that
// fail to parse are left out of the returned state and reported through a
// *LoadError; the state is still usable for the others.
func (s *Session) Load(ctx context.Context) (*reconcile.State, error) {
	st := &reconcile.State{
		Configs: make(map[mcp.ClientID]*mcp.Config),
	}
	s.loaded = make(map[mcp.ClientID]string)
	s.failed = make(map[mcp.ClientID]error)

	for _, a := range s.registry.All() {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "loading client configs")
		}
		client := a.Client()
		path := s.Path(client)

		cfg, err := a.Parse(path)
		if err != nil {
			s.logger.Warn("cannot read client config", "client", client, "path", path, "error", err)
			s.failed[client] = err
			continue
		}
		st.Configs[client] = cfg
		s.loaded[client] = cfg.Fingerprint()
		s.logger.Debug("loaded client config", "client", client, "path", path, "servers", len(cfg.Servers), "exists", cfg.Exists)
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "loading disabled store")
	}
	entries, err := s.store.Load()
	if err != nil {
		s.logger.Warn("disabled store migration was not persisted", "error", err)
	}
	st.Disabled = entries
	s.storeSeen = storeFingerprint(entries)

	if len(s.failed) > 0 {
		return st, &LoadError{Errors: s.failed}
	}
	return st, nil
}

// Save writes every client config and the store that changed since Load.
// A client file that did not exist and still has no servers is not
// created. It returns the clients that were written.
func (s *Session) Save(ctx context.Context, st *reconcile.State) ([]mcp.ClientID, error) {
	var written []mcp.ClientID

	for _, a := range s.registry.All() {
		if err := ctx.Err(); err != nil {
			return written, errors.Wrap(err, "saving client configs")
		}
		client := a.Client()
		if _, broken := s.failed[client]; broken {
			continue
		}
		cfg, ok := st.Configs[client]
		if !ok || cfg == nil {
			continue
		}

		fp := cfg.Fingerprint()
		if seen, ok := s.loaded[client]; ok && seen == fp {
			continue
		}
		if !cfg.Exists && len(cfg.Servers) == 0 && len(cfg.Projects) == 0 {
			continue
		}

		path := s.Path(client)
		if s.backups != nil {
			if err := s.backups.Ensure(string(client), []string{path}); err != nil {
				return written, err
			}
		}
		if err := a.Write(cfg, path); err != nil {
			return written, errors.Wrapf(err, "writing %s config", client)
		}
		cfg.Exists = true
		s.loaded[client] = fp
		written = append(written, client)
		s.logger.Debug("wrote client config", "client", client, "path", path)
	}

	if err := ctx.Err(); err != nil {
		return written, errors.Wrap(err, "saving disabled store")
	}
	if fp := storeFingerprint(st.Disabled); fp != s.storeSeen {
		if s.backups != nil {
			if err := s.backups.Ensure(StoreBackupName, []string{s.store.Path()}); err != nil {
				return written, err
			}
		}
		if err := s.store.Save(st.Disabled); err != nil {
			return written, err
		}
		s.storeSeen = fp
		s.logger.Debug("wrote disabled store", "path", s.store.Path(), "entries", len(st.Disabled))
	}

	return written, nil
}

func storeFingerprint(entries disabled.Entries) string {
	data, err := json.Marshal(entries)
	if err != nil {
		return ""
	}
	return string(data)
}
