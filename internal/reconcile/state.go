package reconcile

import (
	"github.com/thoreinstein/mcpswitch/internal/disabled"
	"github.com/thoreinstein/mcpswitch/internal/mcp"
)

// State is everything the engine operates on: the live config of each
// client and the disabled-server store. Operations mutate it in place;
// persisting it is the caller's job.
type State struct {
	Configs  map[mcp.ClientID]*mcp.Config
	Disabled disabled.Entries
}

// NewState returns a state with an empty config for every client and an
// empty store.
func NewState() *State {
	st := &State{
		Configs:  make(map[mcp.ClientID]*mcp.Config),
		Disabled: make(disabled.Entries),
	}
	for _, c := range mcp.Clients() {
		st.Configs[c] = mcp.NewConfig(c)
	}
	return st
}

// Config returns the live config for client, creating an empty one if the
// state has none.
func (st *State) Config(client mcp.ClientID) *mcp.Config {
	if st.Configs == nil {
		st.Configs = make(map[mcp.ClientID]*mcp.Config)
	}
	cfg, ok := st.Configs[client]
	if !ok || cfg == nil {
		cfg = mcp.NewConfig(client)
		st.Configs[client] = cfg
	}
	return cfg
}

// liveDefinition returns the definition of name from the first client in
// canonical order that has it enabled.
func (st *State) liveDefinition(name string) (*mcp.Definition, mcp.ClientID, bool) {
	for _, c := range mcp.Clients() {
		cfg, ok := st.Configs[c]
		if !ok || cfg == nil {
			continue
		}
		if def, ok := cfg.Get(name); ok && def != nil {
			return def, c, true
		}
	}
	return nil, "", false
}

// untrack removes clients from the store entry for name, deleting the
// entry once no client remains. It reports whether the entry changed.
func (st *State) untrack(name string, clients mcp.ClientSet) bool {
	entry, ok := st.Disabled[name]
	if !ok {
		return false
	}
	if entry == nil || entry.DisabledFor == nil {
		// No per-client information: treat as disabled everywhere.
		if entry == nil {
			delete(st.Disabled, name)
			return true
		}
		entry.DisabledFor = mcp.AllClients()
	}
	if !entry.DisabledFor.Intersects(clients) {
		return false
	}
	entry.DisabledFor = entry.DisabledFor.Minus(clients)
	if entry.DisabledFor.Len() == 0 {
		delete(st.Disabled, name)
	}
	return true
}
