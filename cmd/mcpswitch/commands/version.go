package commands

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpswitch/cmd"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(c *cobra.Command, _ []string) {
		printVersion(c.OutOrStdout())
	},
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "mcpswitch %s\n", cmd.Version)
	fmt.Fprintf(w, "  commit: %s\n", cmd.Commit)
	fmt.Fprintf(w, "  built:  %s\n", cmd.Date)
	fmt.Fprintf(w, "  go:     %s\n", runtime.Version())
}
