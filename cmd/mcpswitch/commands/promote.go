package commands

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpswitch/internal/errors"
	"github.com/thoreinstein/mcpswitch/internal/platform"
	"github.com/thoreinstein/mcpswitch/internal/reconcile"
	"github.com/thoreinstein/mcpswitch/pkg/fileutil"
)

// projectServersKey is the server table of a project .mcp.json file.
const projectServersKey = "mcpServers"

// promoteOptions holds the promote command flags.
type promoteOptions struct {
	file           string
	project        string
	strategy       string
	duplicatesOnly bool
	consolidate    bool
}

var promoteOpts promoteOptions

func init() {
	promoteCmd.Flags().StringVar(&promoteOpts.file, "file", "",
		"promote servers from a project .mcp.json file instead of the client project tables")
	promoteCmd.Flags().StringVar(&promoteOpts.project, "project", "",
		"only promote servers of this project path")
	promoteCmd.Flags().StringVar(&promoteOpts.strategy, "strategy", string(reconcile.KeepGlobal),
		"conflict strategy: keep_global, keep_project, merge")
	promoteCmd.Flags().BoolVar(&promoteOpts.duplicatesOnly, "duplicates-only", false,
		"only promote servers that already exist globally")
	promoteCmd.Flags().BoolVar(&promoteOpts.consolidate, "consolidate", false,
		"remove promoted servers from their project tables")
	promoteCmd.MarkFlagsMutuallyExclusive("duplicates-only", "consolidate")
	promoteCmd.MarkFlagsMutuallyExclusive("file", "project")
	rootCmd.AddCommand(promoteCmd)
}

var promoteCmd = &cobra.Command{
	Use:   "promote [name...]",
	Short: "Promote project-scoped servers to the global configs",
	Long: `Copy servers defined for a single project into the global server tables of
the clients selected by --mode.

By default the candidates are the per-project servers Claude keeps under
"projects" in ~/.claude.json and the ones Codex keeps under
[projects.<path>.mcp_servers] in ~/.codex/config.toml. Use --file to promote
from a project's .mcp.json instead.

When the name already exists globally, --strategy decides the outcome:
  keep_global   leave the global definition alone
  keep_project  replace it with the project definition
  merge         combine both: the global value wins on scalar conflicts,
                nested mappings such as env take the project's keys, and
                lists concatenate without duplicates in first-seen order

Servers disabled for a client stay disabled; their stored definition is
updated instead.`,
	Example: `  mcpswitch promote
  mcpswitch promote github --strategy merge
  mcpswitch promote --file ./.mcp.json --mode codex
  mcpswitch promote --consolidate --strategy keep_project`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFromCommand(cmd)
		return runPromoteWithIO(cmd.Context(), cmd.OutOrStdout(), a, args, a.mode(modeFlag), promoteOpts)
	},
}

// runPromoteWithIO allows injecting a writer for testing.
func runPromoteWithIO(ctx context.Context, w io.Writer, a *app, names []string, mode reconcile.Mode, opts promoteOptions) error {
	strategy, err := reconcile.ParseStrategy(opts.strategy)
	if err != nil {
		return errors.NewUserError(err, "")
	}

	st, err := a.load(ctx, a.engine.Clients(mode))
	if err != nil {
		return err
	}

	var cands []reconcile.Candidate
	if opts.file != "" {
		cands, err = fileCandidates(opts.file)
		if err != nil {
			return err
		}
	} else {
		cands = reconcile.ProjectCandidates(st)
	}
	cands = filterCandidates(cands, names, opts.project)

	if len(cands) == 0 {
		fmt.Fprintln(w, "No project servers to promote")
		return nil
	}

	var n int
	switch {
	case opts.duplicatesOnly:
		n = a.engine.MergeDuplicateServers(st, cands, mode, strategy)
	case opts.consolidate:
		n = a.engine.ConsolidateServers(st, cands, mode, strategy)
	default:
		for _, c := range cands {
			if a.engine.PromoteProjectServer(st, c, mode, strategy) {
				n++
			}
		}
	}

	if err := a.save(ctx, st); err != nil {
		return err
	}

	for _, c := range cands {
		fmt.Fprintf(w, "  %s %s\n", c.Name, dim("("+c.Location+")"))
	}
	fmt.Fprintf(w, "%s Promoted %d of %d server(s) to %s\n", okMark, n, len(cands), describeMode(a.engine, mode))
	return nil
}

// fileCandidates reads the server table of a project .mcp.json file.
func fileCandidates(path string) ([]reconcile.Candidate, error) {
	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		return nil, errors.NewUserError(err, "")
	}
	doc, err := platform.DecodeJSONDocument(data)
	if err != nil {
		return nil, errors.NewUserError(errors.Wrapf(err, "parsing %s", path), "")
	}
	table, err := platform.DecodeServerTable(doc[projectServersKey])
	if err != nil {
		return nil, errors.NewUserError(errors.Wrapf(err, "parsing %s in %s", projectServersKey, path), "")
	}

	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	slices.Sort(names)

	cands := make([]reconcile.Candidate, 0, len(names))
	for _, name := range names {
		cands = append(cands, reconcile.Candidate{
			Name:       name,
			Location:   path,
			Definition: table[name],
		})
	}
	return cands, nil
}

func filterCandidates(cands []reconcile.Candidate, names []string, project string) []reconcile.Candidate {
	if len(names) == 0 && project == "" {
		return cands
	}
	out := cands[:0:0]
	for _, c := range cands {
		if len(names) > 0 && !slices.Contains(names, c.Name) {
			continue
		}
		if project != "" && c.Location != project {
			continue
		}
		out = append(out, c)
	}
	return out
}
