package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpswitch/internal/errors"
	"github.com/thoreinstein/mcpswitch/internal/mcp"
	"github.com/thoreinstein/mcpswitch/internal/reconcile"
)

// toggleOptions holds the enable and disable command flags.
type toggleOptions struct {
	all         bool
	interactive bool
}

var (
	enableOpts  toggleOptions
	disableOpts toggleOptions
)

func init() {
	enableCmd.Flags().BoolVar(&enableOpts.all, "all", false, "Enable every server in the disabled store")
	enableCmd.Flags().BoolVarP(&enableOpts.interactive, "interactive", "i", false, "Pick servers with a fuzzy finder")
	enableCmd.MarkFlagsMutuallyExclusive("all", "interactive")

	disableCmd.Flags().BoolVar(&disableOpts.all, "all", false, "Disable every enabled server")
	disableCmd.Flags().BoolVarP(&disableOpts.interactive, "interactive", "i", false, "Pick servers with a fuzzy finder")
	disableCmd.MarkFlagsMutuallyExclusive("all", "interactive")

	rootCmd.AddCommand(enableCmd)
	rootCmd.AddCommand(disableCmd)
}

var enableCmd = &cobra.Command{
	Use:   "enable [name...]",
	Short: "Enable MCP servers",
	Long: `Enable servers for the clients selected by --mode.

The definition saved in the disabled store is written back into each
client's config file exactly as it was. A server that is enabled in some
clients but was never disabled is copied from the first client that has it.`,
	Example: `  # Enable on all clients
  mcpswitch enable github

  # Enable on Codex only
  mcpswitch enable github --mode codex

  # Enable everything the store holds
  mcpswitch enable --all

  See Also:
    mcpswitch disable  - Disable a server
    mcpswitch list     - List servers`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFromCommand(cmd)
		return runToggleWithIO(cmd.Context(), cmd.OutOrStdout(), a, args, a.mode(modeFlag), enableOpts, true)
	},
}

var disableCmd = &cobra.Command{
	Use:   "disable [name...]",
	Short: "Disable MCP servers without losing their configuration",
	Long: `Disable servers for the clients selected by --mode.

The server is removed from each client's config file and its definition is
kept in the disabled store. Use 'mcpswitch enable' to restore it.`,
	Example: `  # Disable on all clients
  mcpswitch disable github

  # Disable for Claude and Gemini
  mcpswitch disable github --mode both

  # Choose servers interactively
  mcpswitch disable -i

  See Also:
    mcpswitch enable  - Enable a server
    mcpswitch list    - List servers`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFromCommand(cmd)
		return runToggleWithIO(cmd.Context(), cmd.OutOrStdout(), a, args, a.mode(modeFlag), disableOpts, false)
	},
}

// runToggleWithIO enables or disables names for mode. Every name is
// attempted; the command fails if any of them could not be toggled.
func runToggleWithIO(ctx context.Context, w io.Writer, a *app, names []string, mode reconcile.Mode, opts toggleOptions, enable bool) error {
	verb, past := "disable", "Disabled"
	if enable {
		verb, past = "enable", "Enabled"
	}

	clients := a.engine.Clients(mode)
	st, err := a.load(ctx, clients)
	if err != nil {
		return err
	}

	if opts.all {
		if len(names) > 0 {
			return errors.NewUserError(errors.New("--all does not take server names"), "")
		}
		var n int
		if enable {
			n = a.engine.EnableAll(st, mode)
		} else {
			n = a.engine.DisableAll(st, mode)
		}
		if err := a.save(ctx, st); err != nil {
			return err
		}
		fmt.Fprintf(w, "%s %d server(s) for %s\n", past, n, describeMode(a.engine, mode))
		return nil
	}

	if opts.interactive {
		picked, err := pickServers(verb, toggleCandidates(a.engine, st, clients, enable))
		if err != nil {
			return err
		}
		names = append(names, picked...)
	}

	if len(names) == 0 {
		return errors.NewUserError(
			errors.Newf("no servers to %s", verb),
			"Pass server names, --all or --interactive",
		)
	}

	var failed []string
	for _, name := range names {
		var ok bool
		var note string
		if enable {
			ok, note = enableOne(a.engine, st, name, mode, clients)
		} else {
			ok, note = disableOne(a.engine, st, name, mode, clients)
		}
		if !ok {
			failed = append(failed, name)
			fmt.Fprintf(w, "%s %s: %s\n", failMark, name, note)
			continue
		}
		fmt.Fprintf(w, "%s %s %s\n", okMark, past, name)
		if note != "" {
			fmt.Fprintf(w, "  %s\n", dim(note))
		}
	}

	if err := a.save(ctx, st); err != nil {
		return err
	}

	if len(failed) > 0 {
		return errors.NewUserError(
			errors.Wrapf(errors.ErrNotFound, "could not %s %v", verb, failed),
			"Run: mcpswitch list",
		)
	}
	return nil
}

func enableOne(e *reconcile.Engine, st *reconcile.State, name string, mode reconcile.Mode, clients mcp.ClientSet) (bool, string) {
	if e.Enable(st, name, mode) {
		return true, ""
	}

	v, ok := e.Unify(st)[name]
	if !ok || v.Definition == nil {
		return false, "not found in any client or the disabled store"
	}
	if clients.Minus(v.EnabledClients()).Len() == 0 {
		return true, "already enabled for " + clientList(clients)
	}
	e.Add(st, name, v.Definition, mode)
	return true, "copied from " + string(firstEnabled(v))
}

func disableOne(e *reconcile.Engine, st *reconcile.State, name string, mode reconcile.Mode, clients mcp.ClientSet) (bool, string) {
	v, known := e.Unify(st)[name]
	if !e.Disable(st, name, mode) {
		return false, "not found in any client or the disabled store"
	}
	if known && !v.ActiveIn(clients) {
		return true, "already disabled for " + clientList(clients)
	}
	return true, ""
}

// toggleCandidates lists the servers that enabling or disabling for
// clients would change.
func toggleCandidates(e *reconcile.Engine, st *reconcile.State, clients mcp.ClientSet, enable bool) []*reconcile.View {
	var out []*reconcile.View
	for _, v := range e.Views(st) {
		if enable && clients.Minus(v.EnabledClients()).Len() > 0 {
			out = append(out, v)
		}
		if !enable && v.ActiveIn(clients) {
			out = append(out, v)
		}
	}
	return out
}

func firstEnabled(v *reconcile.View) mcp.ClientID {
	for _, c := range mcp.Clients() {
		if v.EnabledIn(c) {
			return c
		}
	}
	return ""
}
