// Package main is the entry point for the mcpswitch CLI.
package main

import (
	"fmt"
	"os"

	"github.com/thoreinstein/mcpswitch/cmd/mcpswitch/commands"
	"github.com/thoreinstein/mcpswitch/internal/errors"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if hint := errors.Suggestion(err); hint != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(errors.ExitCode(err))
	}
}
