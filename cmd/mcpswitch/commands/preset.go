package commands

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpswitch/internal/errors"
	"github.com/thoreinstein/mcpswitch/internal/mcp"
	"github.com/thoreinstein/mcpswitch/internal/preset"
	"github.com/thoreinstein/mcpswitch/internal/reconcile"
)

var presetDescription string

func init() {
	presetSaveCmd.Flags().StringVarP(&presetDescription, "description", "d", "", "preset description")

	presetCmd.AddCommand(presetListCmd)
	presetCmd.AddCommand(presetShowCmd)
	presetCmd.AddCommand(presetSaveCmd)
	presetCmd.AddCommand(presetDeleteCmd)
	presetCmd.AddCommand(presetApplyCmd)
	rootCmd.AddCommand(presetCmd)
}

var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Save and apply named sets of servers",
	Long: `Presets are named sets of servers. Applying one makes it the active set for
the clients selected by --mode: servers outside the preset are disabled and
servers in it are enabled.

The built-in presets (minimal, webdev, fullstack, testing) list common server
names; a saved preset of the same name takes precedence.`,
	Example: `  mcpswitch preset save work -d "day job"
  mcpswitch preset apply work --mode both
  mcpswitch preset list`,
}

var presetListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List presets",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runPresetListWithIO(cmd.OutOrStdout(), appFromCommand(cmd))
	},
}

var presetShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show the servers of a preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPresetShowWithIO(cmd.OutOrStdout(), appFromCommand(cmd), args[0])
	},
}

var presetSaveCmd = &cobra.Command{
	Use:   "save <name> [server...]",
	Short: "Save enabled servers as a preset",
	Long: `Save servers and their definitions as a preset. Without server names, every
server enabled for at least one of the clients selected by --mode is saved.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFromCommand(cmd)
		return runPresetSaveWithIO(cmd.Context(), cmd.OutOrStdout(), a, args[0], args[1:], presetDescription, a.mode(modeFlag))
	},
}

var presetDeleteCmd = &cobra.Command{
	Use:     "delete <name>",
	Aliases: []string{"rm"},
	Short:   "Delete a saved preset",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPresetDeleteWithIO(cmd.OutOrStdout(), appFromCommand(cmd), args[0])
	},
}

var presetApplyCmd = &cobra.Command{
	Use:   "apply <name>",
	Short: "Make a preset the active set of servers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFromCommand(cmd)
		return runPresetApplyWithIO(cmd.Context(), cmd.OutOrStdout(), a, args[0], a.mode(modeFlag))
	},
}

func loadPresets(a *app) error {
	if err := a.presets.Load(); err != nil {
		return errors.NewUserError(err, "")
	}
	return nil
}

func runPresetListWithIO(w io.Writer, a *app) error {
	if err := loadPresets(a); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\n", bold("NAME"), bold("SERVERS"), bold("DESCRIPTION"))
	for _, name := range a.presets.List() {
		targets, err := a.presets.Targets(name)
		if err != nil {
			return err
		}
		desc := ""
		if p, ok := a.presets.Get(name); ok {
			desc = p.Description
		} else if slices.Contains(preset.Builtins(), name) {
			desc = dim("(built-in)")
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n", name, len(targets), truncate(desc, 60))
	}
	return tw.Flush()
}

func runPresetShowWithIO(w io.Writer, a *app, name string) error {
	if err := loadPresets(a); err != nil {
		return err
	}
	targets, err := a.presets.Targets(name)
	if err != nil {
		return errors.NewUserError(err, "Run: mcpswitch preset list")
	}

	saved, ok := a.presets.Get(name)
	if ok && saved.Description != "" {
		fmt.Fprintf(w, "%s\n\n", saved.Description)
	}
	for _, server := range targets {
		line := server
		if ok {
			line += "  " + dim(truncate(summarize(saved.Servers[server]), 60))
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

func runPresetSaveWithIO(ctx context.Context, w io.Writer, a *app, name string, servers []string, description string, mode reconcile.Mode) error {
	if err := loadPresets(a); err != nil {
		return err
	}
	clients := a.engine.Clients(mode)
	st, err := a.load(ctx, mcp.NewClientSet())
	if err != nil {
		return err
	}

	views := a.engine.Unify(st)
	defs := make(map[string]*mcp.Definition)
	if len(servers) == 0 {
		for _, v := range a.engine.Views(st) {
			if v.ActiveIn(clients) {
				defs[v.Name] = v.Definition
			}
		}
	}
	var unknown []string
	for _, s := range servers {
		v, ok := views[s]
		if !ok || v.Definition == nil {
			unknown = append(unknown, s)
			continue
		}
		defs[s] = v.Definition
	}
	if len(unknown) > 0 {
		return errors.NewUserError(
			errors.Wrapf(errors.ErrNotFound, "unknown servers %s", strings.Join(unknown, ", ")),
			"Run: mcpswitch list",
		)
	}

	if err := a.presets.SavePreset(name, description, defs); err != nil {
		return errors.NewUserError(err, "")
	}
	if err := a.presets.Save(); err != nil {
		return errors.NewSystemError(err, "")
	}
	fmt.Fprintf(w, "%s Saved preset %s with %d server(s)\n", okMark, name, len(defs))
	return nil
}

func runPresetDeleteWithIO(w io.Writer, a *app, name string) error {
	if err := loadPresets(a); err != nil {
		return err
	}
	if !a.presets.Delete(name) {
		return errors.NewUserError(
			errors.Wrapf(preset.ErrPresetNotFound, "%q is not a saved preset", name),
			"Run: mcpswitch preset list",
		)
	}
	if err := a.presets.Save(); err != nil {
		return errors.NewSystemError(err, "")
	}
	fmt.Fprintf(w, "%s Deleted preset %s\n", okMark, name)
	return nil
}

func runPresetApplyWithIO(ctx context.Context, w io.Writer, a *app, name string, mode reconcile.Mode) error {
	if err := loadPresets(a); err != nil {
		return err
	}
	st, err := a.load(ctx, a.engine.Clients(mode))
	if err != nil {
		return err
	}

	res, err := a.presets.Apply(a.engine, st, name, mode)
	if err != nil {
		return errors.NewUserError(err, "Run: mcpswitch preset list")
	}
	if err := a.save(ctx, st); err != nil {
		return err
	}

	for _, s := range res.Enabled {
		fmt.Fprintf(w, "%s Enabled %s\n", okMark, s)
	}
	for _, s := range res.Disabled {
		fmt.Fprintf(w, "%s Disabled %s\n", offMark, s)
	}
	for _, s := range res.Missing {
		fmt.Fprintf(w, "%s %s: no definition found\n", failMark, s)
	}
	if !res.Changed() {
		fmt.Fprintf(w, "Preset %s is already active for %s\n", name, describeMode(a.engine, mode))
		return nil
	}
	fmt.Fprintf(w, "Applied preset %s to %s\n", name, describeMode(a.engine, mode))
	return nil
}
