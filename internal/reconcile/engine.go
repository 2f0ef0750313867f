package reconcile

import (
	"log/slog"

	"github.com/thoreinstein/mcpswitch/internal/disabled"
	"github.com/thoreinstein/mcpswitch/internal/logging"
	"github.com/thoreinstein/mcpswitch/internal/mcp"
)

// Engine applies enable, disable, add, delete and sync operations to a
// State. It holds no state of its own.
type Engine struct {
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for debug tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger: logging.NewDiscard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Clients resolves mode, logging unrecognised tokens.
func (e *Engine) Clients(mode Mode) mcp.ClientSet {
	clients, ok := ResolveMode(mode)
	if !ok {
		e.logger.Debug("unknown mode, targeting all clients", "mode", string(mode))
	}
	return clients
}

// Disable removes name from the live configs of the mode's clients and
// records it in the store. The store snapshot is refreshed from the live
// copy when one exists. Returns false if no definition exists anywhere.
func (e *Engine) Disable(st *State, name string, mode Mode) bool {
	return e.disable(st, name, e.Clients(mode))
}

func (e *Engine) disable(st *State, name string, clients mcp.ClientSet) bool {
	def, _, live := st.liveDefinition(name)
	entry, tracked := st.Disabled[name]
	if !live {
		if !tracked || entry == nil || entry.Config == nil {
			e.logger.Debug("disable: unknown server", "server", name)
			return false
		}
		def = entry.Config
	}
	def = def.Clone()

	for _, c := range clients.Sorted() {
		if st.Config(c).Delete(name) {
			e.logger.Debug("disable: removed from live config", "server", name, "client", c)
		}
	}

	if st.Disabled == nil {
		st.Disabled = make(disabled.Entries)
	}
	if !tracked || entry == nil {
		st.Disabled[name] = &disabled.Entry{Config: def, DisabledFor: clients.Clone()}
		return true
	}
	prior := entry.DisabledFor
	if prior == nil {
		prior = mcp.AllClients()
	}
	entry.Config = def
	entry.DisabledFor = prior.Union(clients)
	return true
}

// Enable restores name from the store into the live configs of the mode's
// clients. The store entry is deleted once no client remains disabled.
// Returns false if the store has no entry for name.
func (e *Engine) Enable(st *State, name string, mode Mode) bool {
	return e.enable(st, name, e.Clients(mode))
}

func (e *Engine) enable(st *State, name string, clients mcp.ClientSet) bool {
	entry, ok := st.Disabled[name]
	if !ok || entry == nil || entry.Config == nil {
		e.logger.Debug("enable: nothing stored", "server", name)
		return false
	}

	for _, c := range clients.Sorted() {
		st.Config(c).Set(name, entry.Config)
	}
	st.untrack(name, clients)
	e.logger.Debug("enable", "server", name, "clients", clients.Strings())
	return true
}

// DisableAll disables every server enabled for at least one of the mode's
// clients. Returns the number of servers toggled.
func (e *Engine) DisableAll(st *State, mode Mode) int {
	clients := e.Clients(mode)
	count := 0
	for _, v := range e.Views(st) {
		if v.ActiveIn(clients) && e.disable(st, v.Name, clients) {
			count++
		}
	}
	return count
}

// EnableAll enables every stored server disabled for at least one of the
// mode's clients. Returns the number of servers toggled.
func (e *Engine) EnableAll(st *State, mode Mode) int {
	clients := e.Clients(mode)
	count := 0
	for _, name := range st.Disabled.Names() {
		entry := st.Disabled[name]
		if entry == nil || !entry.DisabledFor.Intersects(clients) {
			continue
		}
		if e.enable(st, name, clients) {
			count++
		}
	}
	return count
}

// Add copies def into the live configs of the mode's clients, replacing
// any entry of the same name, and stops tracking those clients in the
// store. Returns false for an empty name or nil definition.
func (e *Engine) Add(st *State, name string, def *mcp.Definition, mode Mode) bool {
	if name == "" || def == nil {
		return false
	}
	clients := e.Clients(mode)
	if clients.Len() == 0 {
		return false
	}
	for _, c := range clients.Sorted() {
		st.Config(c).Set(name, def)
	}
	st.untrack(name, clients)
	e.logger.Debug("add", "server", name, "clients", clients.Strings())
	return true
}

// Delete removes name for the mode's clients. With fromDisabled only the
// store is touched; otherwise both the live configs and the store are.
// Returns whether anything was removed.
func (e *Engine) Delete(st *State, name string, mode Mode, fromDisabled bool) bool {
	clients := e.Clients(mode)
	removed := false

	if !fromDisabled {
		for _, c := range clients.Sorted() {
			if st.Config(c).Delete(name) {
				removed = true
			}
		}
	}
	if st.untrack(name, clients) {
		removed = true
	}

	e.logger.Debug("delete", "server", name, "clients", clients.Strings(), "from_disabled", fromDisabled, "removed", removed)
	return removed
}

// Sync makes target's enabled state match source's for each name. A nil
// names list means every known server. Enabling copies source's live
// definition; disabling goes through the store. Returns the number of
// servers changed.
func (e *Engine) Sync(st *State, names []string, source, target mcp.ClientID) int {
	if source == target {
		return 0
	}

	views := e.Unify(st)
	if names == nil {
		for _, v := range e.Views(st) {
			names = append(names, v.Name)
		}
	}

	targets := mcp.NewClientSet(target)
	count := 0
	for _, name := range names {
		v, ok := views[name]
		if !ok {
			continue
		}
		srcOn, dstOn := v.EnabledIn(source), v.EnabledIn(target)

		switch {
		case srcOn && !dstOn:
			def, _ := st.Config(source).Get(name)
			st.Config(target).Set(name, def)
			st.untrack(name, targets)
			count++
		case !srcOn && dstOn:
			if e.disable(st, name, targets) {
				count++
			}
		}
	}

	e.logger.Debug("sync", "source", source, "target", target, "changed", count)
	return count
}
