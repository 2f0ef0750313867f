// Package reconcile keeps the three clients' server tables and the
// disabled-server store consistent with each other.
//
// Whether a server is enabled is a per-client fact: a name present in a
// client's live config is enabled for that client. Disabling removes the
// name from the live config and records the definition in the store, so
// enabling later can restore it without the user re-entering anything.
//
// An [Engine] operates on a [State] passed in by the caller:
//
//	st := &reconcile.State{Configs: configs, Disabled: entries}
//	eng := reconcile.New(reconcile.WithLogger(logger))
//
//	eng.Disable(st, "github", reconcile.ModeClaude)
//	for _, v := range eng.Views(st) {
//	    fmt.Println(v.Name, v.Enabled)
//	}
//
// Operations report expected failures (unknown server, nothing to enable)
// through their boolean or count results and never touch the filesystem.
//
// # Invariants
//
//   - A store entry never has an empty client set.
//   - For each server and client, the client is in at most one of: enabled
//     live, tracked as disabled.
//   - Loading, enabling and disabling never changes a definition's content.
package reconcile
