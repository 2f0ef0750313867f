// Package commands implements the CLI commands for mcpswitch.
package commands

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpswitch/cmd"
	"github.com/thoreinstein/mcpswitch/internal/backup"
	"github.com/thoreinstein/mcpswitch/internal/config"
	"github.com/thoreinstein/mcpswitch/internal/errors"
	"github.com/thoreinstein/mcpswitch/internal/logging"
)

// debugEnv raises verbosity when no -v flag is given.
const debugEnv = "MCPSWITCH_DEBUG"

var (
	// modeFlag holds the --mode flag.
	modeFlag string

	// configFlag holds the --config flag.
	configFlag string

	// verbosity holds the count of -v flags.
	verbosity int

	// quiet holds the -q/--quiet flag.
	quiet bool

	// logFormat holds the --log-format flag.
	logFormat string

	// logFile holds the --log-file flag.
	logFile string
)

var (
	// loadedConfig is the application config read by initConfig.
	loadedConfig *config.Config

	// configLoadErr holds any error from loading the config, reported by
	// commands that need it.
	configLoadErr error
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&modeFlag, "mode", "m", "",
		"target clients: claude, gemini, codex, both (claude+gemini), all (default from config)")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "",
		"config file (default ~/.config/mcpswitch/config.yaml)")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")

	rootCmd.Version = cmd.Version
	backup.Version = cmd.Version
	rootCmd.SetVersionTemplate("mcpswitch version {{.Version}}\n")

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	config.Init()
	loadedConfig, configLoadErr = config.Load(configFlag)
}

var rootCmd = &cobra.Command{
	Use:   "mcpswitch",
	Short: "Switch MCP servers on and off across Claude, Gemini and Codex",
	Long: `mcpswitch keeps the MCP server entries of Claude Code (~/.claude.json),
Gemini CLI (~/.gemini/settings.json) and Codex CLI (~/.codex/config.toml)
consistent.

Each server is enabled or disabled per client. Disabling removes the entry
from the client's file and keeps its definition in mcpswitch's disabled
store, so enabling it later restores it exactly.

Use --mode to choose which clients a command targets.`,
	Example: `  # Show every server and where it is enabled
  mcpswitch list

  # Disable a server for Claude only
  mcpswitch disable github --mode claude

  # Turn a preset into the active set everywhere
  mcpswitch preset apply minimal

  See Also: mcpswitch config init, mcpswitch validate`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		return checkConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(errors.New("conflicting flags"), "cannot use --quiet and --verbose together")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity
		if v == 0 {
			switch os.Getenv(debugEnv) {
			case "1", "true":
				v = 2
			case "2":
				v = 3
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	opts := &slog.HandlerOptions{Level: level}

	var primary slog.Handler
	switch logging.Format(logFormat) {
	case logging.FormatJSON:
		primary = slog.NewJSONHandler(cmd.ErrOrStderr(), opts)
	default:
		primary = logging.NewHandler(cmd.ErrOrStderr(), opts)
	}

	handler := primary
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return errors.NewUserError(err, "failed to open log file")
		}
		handler = logging.NewMultiHandler(primary, slog.NewJSONHandler(f, opts))
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))
	return nil
}

// configOptional lists the command paths, below the root, that must work
// without a valid config.
var configOptional = map[string]bool{
	"help":        true,
	"version":     true,
	"config":      true,
	"config show": true,
	"config path": true,
	"config init": true,
	"config edit": true,
}

// checkConfig surfaces a config load failure, except for commands that
// must work without a valid config.
func checkConfig(cmd *cobra.Command) error {
	path := strings.TrimPrefix(cmd.CommandPath(), cmd.Root().Name()+" ")
	if configOptional[path] {
		return nil
	}
	if configLoadErr != nil {
		return errors.NewConfigError(configLoadErr)
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
