package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpswitch/internal/errors"
	"github.com/thoreinstein/mcpswitch/internal/reconcile"
)

var removeFromDisabled bool

func init() {
	removeCmd.Flags().BoolVar(&removeFromDisabled, "disabled", false,
		"only forget the server in the disabled store, leaving client configs alone")
	rootCmd.AddCommand(removeCmd)
}

var removeCmd = &cobra.Command{
	Use:     "remove <name...>",
	Aliases: []string{"rm", "delete"},
	Short:   "Remove MCP servers for good",
	Long: `Remove servers from the clients selected by --mode and from the disabled
store. Unlike disable, nothing is kept to restore later.`,
	Example: `  mcpswitch remove github
  mcpswitch remove old-server --disabled

  See Also:
    mcpswitch disable  - Disable a server but keep it`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFromCommand(cmd)
		return runRemoveWithIO(cmd.Context(), cmd.OutOrStdout(), a, args, a.mode(modeFlag), removeFromDisabled)
	},
}

// runRemoveWithIO allows injecting a writer for testing.
func runRemoveWithIO(ctx context.Context, w io.Writer, a *app, names []string, mode reconcile.Mode, fromDisabled bool) error {
	st, err := a.load(ctx, a.engine.Clients(mode))
	if err != nil {
		return err
	}

	var missing []string
	for _, name := range names {
		if !a.engine.Delete(st, name, mode, fromDisabled) {
			missing = append(missing, name)
			fmt.Fprintf(w, "%s %s: nothing to remove\n", failMark, name)
			continue
		}
		fmt.Fprintf(w, "%s Removed %s\n", okMark, name)
	}

	if err := a.save(ctx, st); err != nil {
		return err
	}
	if len(missing) > 0 {
		return errors.NewUserError(
			errors.Wrapf(errors.ErrNotFound, "could not remove %v", missing),
			"Run: mcpswitch list",
		)
	}
	return nil
}
