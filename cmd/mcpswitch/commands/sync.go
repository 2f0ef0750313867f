package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpswitch/internal/errors"
	"github.com/thoreinstein/mcpswitch/internal/mcp"
)

var (
	syncFrom string
	syncTo   string
)

func init() {
	syncCmd.Flags().StringVar(&syncFrom, "from", "", "client to copy state from: claude, gemini, codex")
	syncCmd.Flags().StringVar(&syncTo, "to", "", "client to copy state to: claude, gemini, codex")
	_ = syncCmd.MarkFlagRequired("from")
	_ = syncCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync [name...]",
	Short: "Make one client's servers match another's",
	Long: `Copy the enabled or disabled state of servers from one client to another.

A server enabled in the source is written to the target with the source's
definition. A server disabled in the source is disabled in the target and
kept in the disabled store. Without names every known server is synced.`,
	Example: `  # Give Codex the same servers as Claude
  mcpswitch sync --from claude --to codex

  # Only sync two servers
  mcpswitch sync github fs --from gemini --to claude`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSyncWithIO(cmd.Context(), cmd.OutOrStdout(), appFromCommand(cmd), args, syncFrom, syncTo)
	},
}

// runSyncWithIO allows injecting a writer for testing.
func runSyncWithIO(ctx context.Context, w io.Writer, a *app, names []string, from, to string) error {
	source, err := parseClient(from, "--from")
	if err != nil {
		return err
	}
	target, err := parseClient(to, "--to")
	if err != nil {
		return err
	}
	if source == target {
		return errors.NewUserError(errors.New("--from and --to name the same client"), "")
	}

	st, err := a.load(ctx, mcp.NewClientSet(source, target))
	if err != nil {
		return err
	}

	if len(names) == 0 {
		names = nil
	}
	n := a.engine.Sync(st, names, source, target)
	if err := a.save(ctx, st); err != nil {
		return err
	}

	fmt.Fprintf(w, "%s Synced %d server(s) from %s to %s\n", okMark, n, source, target)
	return nil
}

// parseClient validates a client flag value.
func parseClient(s, flagName string) (mcp.ClientID, error) {
	c, ok := mcp.ParseClientID(s)
	if !ok {
		return "", errors.NewUserError(
			errors.Wrapf(errors.ErrUnknownClient, "invalid %s %q", flagName, s),
			"Valid clients: claude, gemini, codex",
		)
	}
	return c, nil
}
