package config

import (
	"maps"
	"path/filepath"
	"slices"
	"strings"

	"github.com/thoreinstein/mcpswitch/internal/errors"
	"github.com/thoreinstein/mcpswitch/internal/mcp"
	"github.com/thoreinstein/mcpswitch/internal/reconcile"
)

// Validation errors for configuration fields.
var (
	// ErrUnsupportedVersion indicates a config version this build cannot read.
	ErrUnsupportedVersion = errors.New("unsupported config version")

	// ErrInvalidMode indicates an unrecognised default_mode.
	ErrInvalidMode = errors.New("invalid default mode")

	// ErrInvalidClient indicates an unrecognised client override key.
	ErrInvalidClient = errors.New("invalid client override key")

	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.New("invalid path")

	// ErrNegativeRetention indicates backup.retention is below zero.
	ErrNegativeRetention = errors.New("backup retention must be >= 0")
)

// Validate checks a Config and returns every problem found.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	if cfg.Version != CurrentVersion {
		errs = append(errs, errors.Wrapf(ErrUnsupportedVersion, "%d", cfg.Version))
	}

	if cfg.DefaultMode != "" && !slices.Contains(reconcile.Modes(), reconcile.Mode(cfg.DefaultMode)) {
		errs = append(errs, errors.Wrapf(ErrInvalidMode, "%s", cfg.DefaultMode))
	}

	for _, key := range slices.Sorted(maps.Keys(cfg.Clients)) {
		if !slices.Contains(mcp.Clients(), mcp.ClientID(key)) {
			errs = append(errs, errors.Wrapf(ErrInvalidClient, "%s", key))
			continue
		}
		if err := validatePath(cfg.Clients[key].Path); err != nil {
			errs = append(errs, &PathError{Field: "clients." + key + ".path", Path: cfg.Clients[key].Path, Err: err})
		}
	}

	for _, f := range []struct{ field, path string }{
		{"store_path", cfg.StorePath},
		{"presets_path", cfg.PresetsPath},
		{"backup.dir", cfg.Backup.Dir},
	} {
		if err := validatePath(f.path); err != nil {
			errs = append(errs, &PathError{Field: f.field, Path: f.path, Err: err})
		}
	}

	if cfg.Backup.Retention < 0 {
		errs = append(errs, ErrNegativeRetention)
	}

	return errs
}

// validatePath checks that a path is well formed. It does not check that
// the path exists. Empty paths mean "use the default" and are valid.
func validatePath(path string) error {
	if path == "" {
		return nil
	}
	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}
	if cleaned := filepath.Clean(path); cleaned == "." {
		return ErrInvalidPath
	}
	return nil
}

// PathError represents an error for a specific path field.
type PathError struct {
	Field string
	Path  string
	Err   error
}

func (e *PathError) Error() string {
	return e.Field + ": " + e.Err.Error() + ": " + e.Path
}

func (e *PathError) Unwrap() error {
	return e.Err
}
