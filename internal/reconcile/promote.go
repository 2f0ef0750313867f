package reconcile

import (
	"slices"

	"github.com/thoreinstein/mcpswitch/internal/errors"
	"github.com/thoreinstein/mcpswitch/internal/mcp"
)

// ErrUnknownStrategy is returned by ParseStrategy for unrecognised tokens.
var ErrUnknownStrategy = errors.New("unknown conflict strategy")

// Strategy decides what happens when a promoted candidate's name already
// exists globally.
type Strategy string

// Conflict strategies.
const (
	// KeepGlobal ignores the candidate.
	KeepGlobal Strategy = "keep_global"
	// KeepProject replaces the global definition with the candidate.
	KeepProject Strategy = "keep_project"
	// Merge combines both definitions; see MergeDefinitions.
	Merge Strategy = "merge"
)

// Strategies returns the supported strategies.
func Strategies() []Strategy {
	return []Strategy{KeepGlobal, KeepProject, Merge}
}

// ParseStrategy converts s to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	for _, st := range Strategies() {
		if string(st) == s {
			return st, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownStrategy, "%q (want keep_global, keep_project or merge)", s)
}

// Candidate is a server definition found outside the global tables, such
// as a project-scoped entry.
type Candidate struct {
	// Name is the server name.
	Name string

	// Location is where the candidate was found: a project path for
	// project-table candidates, or any caller-chosen label.
	Location string

	// Client owns Location, if any.
	Client mcp.ClientID

	// Definition is the candidate's definition.
	Definition *mcp.Definition
}

// ProjectCandidates lists every server in the project tables of the live
// configs, ordered by client, project path and name.
func ProjectCandidates(st *State) []Candidate {
	var out []Candidate
	for _, c := range mcp.Clients() {
		cfg, ok := st.Configs[c]
		if !ok || cfg == nil {
			continue
		}
		for _, path := range cfg.ProjectPaths() {
			table := cfg.Projects[path]
			names := make([]string, 0, len(table))
			for name, def := range table {
				if def != nil {
					names = append(names, name)
				}
			}
			slices.Sort(names)
			for _, name := range names {
				out = append(out, Candidate{
					Name:       name,
					Location:   path,
					Client:     c,
					Definition: table[name].Clone(),
				})
			}
		}
	}
	return out
}

// PromoteProjectServer copies cand into the global tables of the mode's
// clients, resolving name conflicts with strategy. Clients for which the
// server is disabled keep it disabled: their store snapshot is updated
// instead. Returns whether anything changed.
func (e *Engine) PromoteProjectServer(st *State, cand Candidate, mode Mode, strategy Strategy) bool {
	if cand.Name == "" || cand.Definition == nil {
		return false
	}
	clients := e.Clients(mode)
	changed := false

	entry, tracked := st.Disabled[cand.Name]
	if tracked && entry != nil && entry.Config != nil && entry.DisabledFor.Intersects(clients) {
		if next := resolveConflict(entry.Config, cand.Definition, strategy); !next.Equal(entry.Config) {
			entry.Config = next
			changed = true
		}
	}

	for _, c := range clients.Sorted() {
		if tracked && entry != nil && entry.DisabledFor.Has(c) {
			continue
		}
		cfg := st.Config(c)
		existing, ok := cfg.Get(cand.Name)
		next := cand.Definition
		if ok {
			next = resolveConflict(existing, cand.Definition, strategy)
			if next.Equal(existing) {
				continue
			}
		}
		cfg.Set(cand.Name, next)
		changed = true
	}

	e.logger.Debug("promote", "server", cand.Name, "location", cand.Location, "strategy", string(strategy), "changed", changed)
	return changed
}

// MergeDuplicateServers promotes only the candidates whose name is already
// enabled globally for at least one of the mode's clients. Returns the
// number of candidates that changed something.
func (e *Engine) MergeDuplicateServers(st *State, cands []Candidate, mode Mode, strategy Strategy) int {
	clients := e.Clients(mode)
	views := e.Unify(st)
	count := 0
	for _, cand := range cands {
		v, ok := views[cand.Name]
		if !ok || !v.ActiveIn(clients) {
			continue
		}
		if e.PromoteProjectServer(st, cand, mode, strategy) {
			count++
		}
	}
	return count
}

// ConsolidateServers promotes every candidate and then removes it from its
// project table when the candidate came from a loaded config. Returns the
// number of candidates promoted or removed.
func (e *Engine) ConsolidateServers(st *State, cands []Candidate, mode Mode, strategy Strategy) int {
	count := 0
	for _, cand := range cands {
		promoted := e.PromoteProjectServer(st, cand, mode, strategy)

		removed := false
		if cfg, ok := st.Configs[cand.Client]; ok && cfg != nil && cand.Location != "" {
			removed = cfg.DeleteProjectServer(cand.Location, cand.Name)
		}
		if promoted || removed {
			count++
		}
	}
	return count
}

func resolveConflict(global, candidate *mcp.Definition, strategy Strategy) *mcp.Definition {
	switch strategy {
	case KeepProject:
		return candidate.Clone()
	case Merge:
		return MergeDefinitions(global, candidate)
	default:
		return global.Clone()
	}
}

// MergeDefinitions combines global and candidate key by key:
//   - keys only one side has are kept
//   - two mappings merge one level deep, candidate keys winning
//   - two lists concatenate, dropping repeats but keeping first-seen order
//   - otherwise the global value is kept
func MergeDefinitions(global, candidate *mcp.Definition) *mcp.Definition {
	out := global.Clone()
	if out == nil {
		return candidate.Clone()
	}
	cand := candidate.ToMap()
	for _, k := range candidate.Keys() {
		cv := cand[k]
		gv, ok := out.Get(k)
		if !ok {
			out.Set(k, cv)
			continue
		}
		if gm, ok := asMap(gv); ok {
			if cm, ok := asMap(cv); ok {
				for mk, mv := range cm {
					gm[mk] = mv
				}
				out.Set(k, gm)
				continue
			}
		}
		if gl, ok := asList(gv); ok {
			if cl, ok := asList(cv); ok {
				out.Set(k, appendUnique(gl, cl))
			}
		}
	}
	return out
}

func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case map[string]string:
		out := make(map[string]any, len(t))
		for k, s := range t {
			out[k] = s
		}
		return out, true
	}
	return nil, false
}

func asList(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}

// appendUnique concatenates the lists, keeping the first occurrence of
// each value.
func appendUnique(base, extra []any) []any {
	out := make([]any, 0, len(base)+len(extra))
	for _, v := range slices.Concat(base, extra) {
		if !slices.ContainsFunc(out, func(e any) bool { return mcp.EqualValues(e, v) }) {
			out = append(out, v)
		}
	}
	return out
}
