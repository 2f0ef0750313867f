package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/mcpswitch/internal/errors"
	"github.com/thoreinstein/mcpswitch/internal/mcp"
	"github.com/thoreinstein/mcpswitch/internal/reconcile"
)

// listOptions holds the list command flags.
type listOptions struct {
	json        bool
	yaml        bool
	showSecrets bool
}

var listOpts listOptions

func init() {
	listCmd.Flags().BoolVar(&listOpts.json, "json", false, "Output in JSON format")
	listCmd.Flags().BoolVar(&listOpts.yaml, "yaml", false, "Output in YAML format")
	listCmd.Flags().BoolVar(&listOpts.showSecrets, "show-secrets", false, "Reveal masked secrets in env and header values")
	listCmd.MarkFlagsMutuallyExclusive("json", "yaml")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls", "status"},
	Short:   "List every MCP server and where it is enabled",
	Long: `List every MCP server known to any client config or the disabled store,
with its state in Claude, Gemini and Codex.

A server that is missing from a client's file shows as disabled there. Servers
only the disabled store knows about are listed too, so nothing can be lost
from view.

Environment variables and headers that look like secrets are masked unless
--show-secrets is given.`,
	Example: `  # Table of all servers
  mcpswitch list

  # Machine-readable output
  mcpswitch list --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runListWithIO(cmd.Context(), cmd.OutOrStdout(), appFromCommand(cmd), listOpts)
	},
}

// listEntry is one server in JSON and YAML output.
type listEntry struct {
	Name        string          `json:"name" yaml:"name"`
	Enabled     map[string]bool `json:"enabled" yaml:"enabled"`
	DisabledFor []string        `json:"disabled_for,omitempty" yaml:"disabled_for,omitempty"`
	Config      map[string]any  `json:"config,omitempty" yaml:"config,omitempty"`
}

// runListWithIO allows injecting a writer for testing.
func runListWithIO(ctx context.Context, w io.Writer, a *app, opts listOptions) error {
	st, err := a.load(ctx, mcp.NewClientSet())
	if err != nil {
		return err
	}
	views := a.engine.Views(st)

	switch {
	case opts.json:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(listEntries(views, opts.showSecrets)), "encoding JSON")
	case opts.yaml:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return errors.Wrap(enc.Encode(listEntries(views, opts.showSecrets)), "encoding YAML")
	}

	printTable(w, a, views)
	return nil
}

func listEntries(views []*reconcile.View, showSecrets bool) []listEntry {
	out := make([]listEntry, 0, len(views))
	for _, v := range views {
		def := v.Definition
		if !showSecrets {
			def = redacted(def)
		}
		e := listEntry{
			Name:        v.Name,
			Enabled:     make(map[string]bool, len(v.Enabled)),
			DisabledFor: v.DisabledFor.Strings(),
		}
		for c, on := range v.Enabled {
			e.Enabled[string(c)] = on
		}
		if def != nil {
			e.Config = def.ToMap()
		}
		out = append(out, e)
	}
	return out
}

func printTable(w io.Writer, a *app, views []*reconcile.View) {
	if len(views) == 0 {
		fmt.Fprintln(w, "No MCP servers configured")
		return
	}

	clients := mcp.Clients()
	failed := a.session.Failed()

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprint(tw, bold("NAME"))
	for _, c := range clients {
		fmt.Fprintf(tw, "\t%s", bold(string(c)))
	}
	fmt.Fprintf(tw, "\t%s\n", bold("COMMAND/URL"))

	for _, v := range views {
		fmt.Fprint(tw, v.Name)
		for _, c := range clients {
			mark := offMark
			switch {
			case failed[c] != nil:
				mark = failMark
			case v.EnabledIn(c):
				mark = okMark
			}
			fmt.Fprintf(tw, "\t%s", mark)
		}
		fmt.Fprintf(tw, "\t%s\n", dim(truncate(summarize(v.Definition), 50)))
	}
	tw.Flush()

	for _, c := range clients {
		if err := failed[c]; err != nil {
			fmt.Fprintf(w, "\n%s %s could not be read: %v\n", failMark, c, err)
		}
	}
}
