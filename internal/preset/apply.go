package preset

import (
	"slices"

	"github.com/thoreinstein/mcpswitch/internal/mcp"
	"github.com/thoreinstein/mcpswitch/internal/reconcile"
)

// ApplyResult lists what Apply changed.
type ApplyResult struct {
	// Enabled holds target servers that were enabled.
	Enabled []string `json:"enabled"`

	// Disabled holds active servers outside the target set.
	Disabled []string `json:"disabled"`

	// Missing holds target servers with no definition anywhere.
	Missing []string `json:"missing"`
}

// Changed reports whether Apply changed anything.
func (r *ApplyResult) Changed() bool {
	return len(r.Enabled) > 0 || len(r.Disabled) > 0
}

// Apply makes the preset the active set for the mode's clients. Every
// server active in at least one of those clients but outside the preset is
// disabled. Every preset server not enabled in all of them is enabled from
// the disabled store, or added from the preset's own definition, or from a
// live copy held by another client.
func (s *Store) Apply(e *reconcile.Engine, st *reconcile.State, name string, mode reconcile.Mode) (*ApplyResult, error) {
	targets, err := s.Targets(name)
	if err != nil {
		return nil, err
	}
	clients := e.Clients(mode)
	saved := s.presets[name]
	res := &ApplyResult{}

	for _, v := range e.Views(st) {
		if !v.ActiveIn(clients) || slices.Contains(targets, v.Name) {
			continue
		}
		if e.Disable(st, v.Name, mode) {
			res.Disabled = append(res.Disabled, v.Name)
		}
	}

	views := e.Unify(st)
	for _, server := range targets {
		v, known := views[server]
		if known && enabledInAll(v, clients) {
			continue
		}

		if _, stored := st.Disabled[server]; stored && e.Enable(st, server, mode) {
			res.Enabled = append(res.Enabled, server)
			continue
		}

		var def *mcp.Definition
		if saved != nil {
			def = saved.Servers[server]
		}
		if def == nil && known {
			def = v.Definition
		}
		if def == nil {
			res.Missing = append(res.Missing, server)
			continue
		}
		if e.Add(st, server, def, mode) {
			res.Enabled = append(res.Enabled, server)
		}
	}

	s.logger.Debug("applied preset", "preset", name, "enabled", len(res.Enabled), "disabled", len(res.Disabled), "missing", len(res.Missing))
	return res, nil
}

func enabledInAll(v *reconcile.View, clients mcp.ClientSet) bool {
	for c := range clients {
		if !v.EnabledIn(c) {
			return false
		}
	}
	return true
}
