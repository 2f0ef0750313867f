package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpswitch/internal/backup"
	"github.com/thoreinstein/mcpswitch/internal/errors"
	"github.com/thoreinstein/mcpswitch/internal/mcp"
	"github.com/thoreinstein/mcpswitch/internal/session"
)

var backupListJSON bool

func init() {
	backupListCmd.Flags().BoolVar(&backupListJSON, "json", false, "Output in JSON format")

	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupCreateCmd)
	backupCmd.AddCommand(backupRestoreCmd)
	rootCmd.AddCommand(backupCmd)
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage backups of client configs and the disabled store",
	Long: `mcpswitch backs up each file once per run, just before it first rewrites it,
and keeps the newest backups up to backup.retention.

Backup targets are the client names (claude, gemini, codex) and "store" for
the disabled store.`,
}

var backupListCmd = &cobra.Command{
	Use:   "list [target...]",
	Short: "List available backups",
	Example: `  mcpswitch backup list
  mcpswitch backup list codex --json

  See Also:
    mcpswitch backup restore - Restore from a backup`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBackupListWithIO(cmd.OutOrStdout(), appFromCommand(cmd), args, backupListJSON)
	},
}

var backupCreateCmd = &cobra.Command{
	Use:   "create [target...]",
	Short: "Back up files now",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBackupCreateWithIO(cmd.OutOrStdout(), appFromCommand(cmd), args)
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <target> [backup-id]",
	Short: "Restore from a backup",
	Long: `Restore a client config or the disabled store from a backup.

Without a backup ID the most recent backup is used. The current file is
backed up before it is overwritten, so a restore can itself be undone.`,
	Example: `  mcpswitch backup restore claude
  mcpswitch backup restore codex 20260123T100712.000000000`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := ""
		if len(args) == 2 {
			id = args[1]
		}
		return runBackupRestoreWithIO(cmd.OutOrStdout(), appFromCommand(cmd), args[0], id)
	},
}

// backupTargets maps each named target to the file it covers. No names
// means every target.
func backupTargets(a *app, names []string) ([]string, map[string]string, error) {
	files := make(map[string]string, len(mcp.Clients())+1)
	order := make([]string, 0, len(mcp.Clients())+1)
	for _, c := range mcp.Clients() {
		files[string(c)] = a.session.Path(c)
		order = append(order, string(c))
	}
	files[session.StoreBackupName] = a.cfg.ResolvedStorePath()
	order = append(order, session.StoreBackupName)

	if len(names) == 0 {
		return order, files, nil
	}
	for _, n := range names {
		if _, ok := files[n]; !ok {
			return nil, nil, errors.NewUserError(
				errors.Wrapf(errors.ErrUnknownClient, "unknown backup target %q", n),
				"Valid targets: claude, gemini, codex, store",
			)
		}
	}
	return names, files, nil
}

// backupInfo represents a single backup in JSON output.
type backupInfo struct {
	Target    string    `json:"target"`
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	FileCount int       `json:"file_count"`
	Version   string    `json:"mcpswitch_version"`
}

func runBackupListWithIO(w io.Writer, a *app, names []string, asJSON bool) error {
	targets, _, err := backupTargets(a, names)
	if err != nil {
		return err
	}

	infos := []backupInfo{}
	for _, t := range targets {
		manifests, err := a.backups.List(t)
		if err != nil {
			if errors.Is(err, backup.ErrNoBackupsFound) {
				continue
			}
			return errors.NewSystemError(err, "")
		}
		for _, m := range manifests {
			infos = append(infos, backupInfo{
				Target:    t,
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				FileCount: len(m.Files),
				Version:   m.ToolVersion,
			})
		}
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(infos), "encoding JSON")
	}

	if len(infos) == 0 {
		fmt.Fprintln(w, "No backups found")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\n", bold("TARGET"), bold("ID"), bold("CREATED"))
	for _, i := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", i.Target, i.ID, i.CreatedAt.Local().Format(time.DateTime))
	}
	return tw.Flush()
}

func runBackupCreateWithIO(w io.Writer, a *app, names []string) error {
	targets, files, err := backupTargets(a, names)
	if err != nil {
		return err
	}

	for _, t := range targets {
		m, err := a.backups.Backup(t, []string{files[t]})
		if err != nil {
			if errors.Is(err, backup.ErrNothingToBackUp) {
				fmt.Fprintf(w, "%s %s: %s\n", offMark, t, dim("no file at "+files[t]))
				continue
			}
			return errors.NewSystemError(err, "")
		}
		if err := a.backups.Prune(t, a.cfg.Backup.Retention); err != nil {
			a.logger.Warn("pruning backups failed", "target", t, "error", err)
		}
		fmt.Fprintf(w, "%s %s: %s\n", okMark, t, m.ID)
	}
	return nil
}

func runBackupRestoreWithIO(w io.Writer, a *app, target, id string) error {
	if _, _, err := backupTargets(a, []string{target}); err != nil {
		return err
	}

	if id == "" {
		manifests, err := a.backups.List(target)
		if err != nil {
			if errors.Is(err, backup.ErrNoBackupsFound) {
				return errors.NewUserError(err, "Run: mcpswitch backup list")
			}
			return errors.NewSystemError(err, "")
		}
		id = manifests[0].ID
	}

	if err := a.backups.Restore(target, id); err != nil {
		if errors.Is(err, backup.ErrNoBackupsFound) {
			return errors.NewUserError(err, "Run: mcpswitch backup list")
		}
		return errors.NewSystemError(err, "")
	}
	fmt.Fprintf(w, "%s Restored %s from %s\n", okMark, target, id)
	return nil
}
