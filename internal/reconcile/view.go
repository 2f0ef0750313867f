package reconcile

import (
	"maps"
	"slices"

	"github.com/thoreinstein/mcpswitch/internal/mcp"
)

// View is the derived per-client status of one server.
type View struct {
	// Name is the server name.
	Name string

	// Enabled holds an entry for every supported client.
	Enabled map[mcp.ClientID]bool

	// Definition is the live copy from the first enabled client in
	// canonical order, or the store snapshot when no client has it.
	Definition *mcp.Definition

	// DisabledFor is a copy of the store entry's client set. It is empty
	// when the store does not track the server.
	DisabledFor mcp.ClientSet
}

// EnabledIn reports whether the server is enabled for client.
func (v *View) EnabledIn(client mcp.ClientID) bool {
	return v.Enabled[client]
}

// ActiveIn reports whether the server is enabled for at least one of clients.
func (v *View) ActiveIn(clients mcp.ClientSet) bool {
	for c := range clients {
		if v.Enabled[c] {
			return true
		}
	}
	return false
}

// EnabledClients returns the clients the server is enabled for.
func (v *View) EnabledClients() mcp.ClientSet {
	out := mcp.NewClientSet()
	for c, on := range v.Enabled {
		if on {
			out.Add(c)
		}
	}
	return out
}

func newView(name string) *View {
	v := &View{
		Name:        name,
		Enabled:     make(map[mcp.ClientID]bool, len(mcp.Clients())),
		DisabledFor: mcp.NewClientSet(),
	}
	for _, c := range mcp.Clients() {
		v.Enabled[c] = false
	}
	return v
}

// Unify computes the view of every server known to any live config or the
// store. The store only ever clears a client's enabled flag; it never sets
// one.
func (e *Engine) Unify(st *State) map[string]*View {
	views := make(map[string]*View)

	for _, c := range mcp.Clients() {
		cfg, ok := st.Configs[c]
		if !ok || cfg == nil {
			continue
		}
		for name, def := range cfg.Servers {
			if def == nil {
				continue
			}
			v, ok := views[name]
			if !ok {
				v = newView(name)
				views[name] = v
			}
			v.Enabled[c] = true
			if v.Definition == nil {
				v.Definition = def.Clone()
			}
		}
	}

	for name, entry := range st.Disabled {
		if entry == nil {
			continue
		}
		v, ok := views[name]
		if !ok {
			v = newView(name)
			views[name] = v
		}
		if v.Definition == nil {
			v.Definition = entry.Config.Clone()
		}
		clients := entry.DisabledFor
		if clients == nil {
			clients = mcp.AllClients()
		}
		for c := range clients {
			v.Enabled[c] = false
		}
		v.DisabledFor = clients.Clone()
	}

	return views
}

// Views returns Unify's result sorted by server name.
func (e *Engine) Views(st *State) []*View {
	views := e.Unify(st)
	out := make([]*View, 0, len(views))
	for _, name := range slices.Sorted(maps.Keys(views)) {
		out = append(out, views[name])
	}
	return out
}
