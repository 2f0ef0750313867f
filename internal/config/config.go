// Package config provides configuration management for mcpswitch using Viper.
package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/thoreinstein/mcpswitch/internal/backup"
	"github.com/thoreinstein/mcpswitch/internal/errors"
	"github.com/thoreinstein/mcpswitch/internal/paths"
	"github.com/thoreinstein/mcpswitch/pkg/fileutil"
)

// EnvPrefix prefixes every environment variable override.
const EnvPrefix = "MCPSWITCH"

// ConfigDirEnv names a directory searched for config.yaml before the
// default location.
const ConfigDirEnv = EnvPrefix + "_CONFIG_DIR"

// CurrentVersion is the only supported config file version.
const CurrentVersion = 1

// Config represents the top-level configuration structure.
type Config struct {
	Version     int                       `mapstructure:"version" yaml:"version"`
	DefaultMode string                    `mapstructure:"default_mode" yaml:"default_mode"`
	Clients     map[string]ClientOverride `mapstructure:"clients" yaml:"clients,omitempty"`
	StorePath   string                    `mapstructure:"store_path" yaml:"store_path,omitempty"`
	PresetsPath string                    `mapstructure:"presets_path" yaml:"presets_path,omitempty"`
	Backup      BackupConfig              `mapstructure:"backup" yaml:"backup"`
}

// ClientOverride contains configuration overrides for one client.
type ClientOverride struct {
	// Path replaces the client's default config file location.
	Path string `mapstructure:"path" yaml:"path"`
}

// BackupConfig controls backups of client files before they are rewritten.
type BackupConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	Dir       string `mapstructure:"dir" yaml:"dir,omitempty"`
	Retention int    `mapstructure:"retention" yaml:"retention"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Version:     CurrentVersion,
		DefaultMode: "all",
		Backup: BackupConfig{
			Enabled:   true,
			Retention: backup.DefaultRetentionCount,
		},
	}
}

// Init resets Viper and installs defaults, search paths and environment
// bindings. Call it once at startup before Load.
func Init() {
	viper.Reset()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	if dir := strings.TrimSpace(os.Getenv(ConfigDirEnv)); dir != "" {
		viper.AddConfigPath(dir)
	}
	viper.AddConfigPath(paths.AppConfigDir())

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	d := Default()
	viper.SetDefault("version", d.Version)
	viper.SetDefault("default_mode", d.DefaultMode)
	viper.SetDefault("store_path", "")
	viper.SetDefault("presets_path", "")
	viper.SetDefault("backup.enabled", d.Backup.Enabled)
	viper.SetDefault("backup.dir", "")
	viper.SetDefault("backup.retention", d.Backup.Retention)
}

// Load reads the configuration file. An explicit path must exist; with an
// empty path the search locations are tried and defaults are used when no
// file is found. The result is validated.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && path == "":
		case path != "" && errors.Is(err, fs.ErrNotExist):
			return nil, errors.WithHint(
				errors.Wrapf(errors.Mark(err, errors.ErrNotFound), "config file not found at %s", path),
				"Run: mcpswitch config init",
			)
		default:
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errors.Wrap(errors.Mark(errs[0], errors.ErrInvalidConfig), "validating config")
	}
	return &cfg, nil
}

// FileUsed returns the config file Load read, if any.
func FileUsed() string {
	return viper.ConfigFileUsed()
}

// Save writes cfg as YAML to path, creating parent directories.
func Save(cfg *Config, path string) error {
	if err := paths.EnsureDir(filepath.Dir(path), 0); err != nil {
		return errors.Wrapf(err, "creating directory for %s", path)
	}
	return errors.Wrap(fileutil.AtomicWriteYAML(path, cfg), "writing config")
}

// ClientPath returns the config file for client: the override when one is
// set, otherwise the client's default location.
func (c *Config) ClientPath(client string) string {
	if o, ok := c.Clients[client]; ok && o.Path != "" {
		return paths.ResolveTilde(o.Path)
	}
	return paths.ClientConfigPath(client)
}

// ResolvedStorePath returns the disabled store location.
func (c *Config) ResolvedStorePath() string {
	if c.StorePath != "" {
		return paths.ResolveTilde(c.StorePath)
	}
	return paths.StorePath()
}

// ResolvedPresetsPath returns the preset file location.
func (c *Config) ResolvedPresetsPath() string {
	if c.PresetsPath != "" {
		return paths.ResolveTilde(c.PresetsPath)
	}
	return paths.PresetsPath()
}

// ResolvedBackupDir returns the backup root directory.
func (c *Config) ResolvedBackupDir() string {
	if c.Backup.Dir != "" {
		return paths.ResolveTilde(c.Backup.Dir)
	}
	return paths.BackupDir()
}
