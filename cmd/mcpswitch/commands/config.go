package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/mcpswitch/internal/config"
	"github.com/thoreinstein/mcpswitch/internal/editor"
	"github.com/thoreinstein/mcpswitch/internal/errors"
	"github.com/thoreinstein/mcpswitch/internal/mcp"
	"github.com/thoreinstein/mcpswitch/internal/paths"
)

var (
	configInitForce bool
	configPathAll   bool
)

func init() {
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false, "overwrite an existing config file")
	configPathCmd.Flags().BoolVarP(&configPathAll, "all", "a", false, "also print every file mcpswitch reads or writes")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage mcpswitch configuration",
	Long: `Manage mcpswitch configuration stored in ~/.config/mcpswitch/config.yaml.

Every key can also be set through the environment, for example
MCPSWITCH_DEFAULT_MODE=both or MCPSWITCH_BACKUP_ENABLED=false.

Without a subcommand, shows the effective configuration.`,
	Example: `  mcpswitch config init
  mcpswitch config set default_mode both
  mcpswitch config set clients.codex.path ~/work/codex.toml

See Also: mcpswitch validate`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		warnConfigLoad(cmd.ErrOrStderr())
		return runConfigShow(cmd.OutOrStdout(), effectiveConfig())
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		warnConfigLoad(cmd.ErrOrStderr())
		return runConfigShow(cmd.OutOrStdout(), effectiveConfig())
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runConfigPath(cmd.OutOrStdout(), effectiveConfig(), configPathAll)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with default values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runConfigInit(cmd.OutOrStdout(), configFile(), configInitForce)
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a single configuration value by key.

Supports dot notation for nested keys.`,
	Example: `  mcpswitch config get default_mode
  mcpswitch config get backup.retention`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfigGet(cmd.OutOrStdout(), args[0])
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and save the config file.

The result is validated before it is written.`,
	Example: `  mcpswitch config set default_mode codex
  mcpswitch config set backup.enabled false`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfigSet(cmd.OutOrStdout(), configFile(), args[0], args[1])
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the config file in $EDITOR",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runConfigEdit(cmd.Context(), cmd, configFile())
	},
}

// effectiveConfig returns the loaded config, or defaults when loading
// failed or never ran.
func effectiveConfig() *config.Config {
	if loadedConfig != nil {
		return loadedConfig
	}
	return config.Default()
}

// warnConfigLoad reports a config file that failed to load; the values
// shown are then the defaults.
func warnConfigLoad(w io.Writer) {
	if configLoadErr != nil {
		fmt.Fprintf(w, "warning: %v (showing defaults)\n", configLoadErr)
	}
}

// configFile returns the config file commands read and write: --config,
// the file Viper found, or the default location.
func configFile() string {
	if configFlag != "" {
		return configFlag
	}
	if used := config.FileUsed(); used != "" {
		return used
	}
	return paths.AppConfigFile()
}

func runConfigShow(w io.Writer, cfg *config.Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return errors.Wrap(err, "marshaling config")
	}
	return errors.Wrap(enc.Close(), "marshaling config")
}

func runConfigPath(w io.Writer, cfg *config.Config, all bool) error {
	path := configFile()
	if !all {
		fmt.Fprintln(w, path)
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "config\t%s\n", path)
	for _, c := range mcp.Clients() {
		fmt.Fprintf(tw, "%s\t%s\n", c, cfg.ClientPath(string(c)))
	}
	fmt.Fprintf(tw, "disabled store\t%s\n", cfg.ResolvedStorePath())
	fmt.Fprintf(tw, "presets\t%s\n", cfg.ResolvedPresetsPath())
	fmt.Fprintf(tw, "backups\t%s\n", cfg.ResolvedBackupDir())
	return tw.Flush()
}

func runConfigInit(w io.Writer, path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.NewUserError(
			errors.Newf("config file already exists at %s", path),
			"Use --force to overwrite it",
		)
	}
	if err := config.Save(config.Default(), path); err != nil {
		return errors.NewSystemError(err, "")
	}
	fmt.Fprintf(w, "%s Wrote %s\n", okMark, path)
	return nil
}

func runConfigGet(w io.Writer, key string) error {
	if !viper.IsSet(key) {
		fmt.Fprintln(w, "not set")
		return nil
	}

	switch v := viper.Get(key).(type) {
	case map[string]any:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return errors.Wrap(enc.Encode(v), "marshaling value")
	default:
		fmt.Fprintln(w, viper.GetString(key))
	}
	return nil
}

func runConfigSet(w io.Writer, path, key, value string) error {
	viper.Set(key, value)

	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return errors.NewUserError(errors.Wrapf(err, "setting %s", key), "")
	}
	if errs := config.Validate(&cfg); len(errs) > 0 {
		return errors.NewUserError(errors.Mark(errs[0], errors.ErrInvalidConfig), "Run: mcpswitch config show")
	}
	if err := config.Save(&cfg, path); err != nil {
		return errors.NewSystemError(err, "")
	}

	loadedConfig = &cfg
	fmt.Fprintf(w, "Set %s = %s\n", key, value)
	return nil
}

func runConfigEdit(ctx context.Context, cmd *cobra.Command, path string) error {
	if _, err := os.Stat(path); err != nil {
		return errors.NewUserError(
			errors.Wrapf(errors.ErrNotFound, "config file not found at %s", path),
			"Run: mcpswitch config init",
		)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Location: %s\n", path)
	return editor.Open(ctx, path, editor.Streams{
		In:  cmd.InOrStdin(),
		Out: cmd.OutOrStdout(),
		Err: cmd.ErrOrStderr(),
	})
}
