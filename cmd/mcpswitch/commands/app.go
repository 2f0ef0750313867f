package commands

import (
	"context"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/mcpswitch/internal/backup"
	"github.com/thoreinstein/mcpswitch/internal/config"
	"github.com/thoreinstein/mcpswitch/internal/disabled"
	"github.com/thoreinstein/mcpswitch/internal/errors"
	"github.com/thoreinstein/mcpswitch/internal/logging"
	"github.com/thoreinstein/mcpswitch/internal/mcp"
	"github.com/thoreinstein/mcpswitch/internal/preset"
	"github.com/thoreinstein/mcpswitch/internal/reconcile"
	"github.com/thoreinstein/mcpswitch/internal/session"
)

// app bundles everything one command invocation needs to load, change and
// save the client configs.
type app struct {
	cfg     *config.Config
	session *session.Session
	engine  *reconcile.Engine
	presets *preset.Store
	backups *backup.Manager
	logger  *slog.Logger
}

func newApp(cfg *config.Config, logger *slog.Logger) *app {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logging.NewDiscard()
	}

	mgr := backup.NewManager(
		backup.WithBackupDir(cfg.ResolvedBackupDir()),
		backup.WithRetentionCount(cfg.Backup.Retention),
		backup.WithLogger(logger),
	)

	opts := []session.Option{session.WithLogger(logger)}
	for _, c := range mcp.Clients() {
		opts = append(opts, session.WithClientPath(c, cfg.ClientPath(string(c))))
	}
	if cfg.Backup.Enabled {
		opts = append(opts, session.WithBackups(backup.NewOnce(mgr)))
	}

	store := disabled.New(cfg.ResolvedStorePath(), disabled.WithLogger(logger))

	return &app{
		cfg:     cfg,
		session: session.New(session.DefaultRegistry(), store, opts...),
		engine:  reconcile.New(reconcile.WithLogger(logger)),
		presets: preset.New(cfg.ResolvedPresetsPath(), preset.WithLogger(logger)),
		backups: mgr,
		logger:  logger,
	}
}

// appFromCommand builds an app from the loaded config and the logger
// attached to cmd's context.
func appFromCommand(cmd *cobra.Command) *app {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return newApp(loadedConfig, logging.FromContext(ctx))
}

// mode returns the mode named by flag, or the configured default when flag
// is empty. Unknown names fall back to all clients with a warning.
func (a *app) mode(flag string) reconcile.Mode {
	name := flag
	if name == "" {
		name = a.cfg.DefaultMode
	}
	m := reconcile.Mode(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := reconcile.ResolveMode(m); !ok {
		a.logger.Warn("unknown mode, targeting all clients", "mode", name)
	}
	return m
}

// load reads every client config and the disabled store. A client that
// cannot be parsed aborts the command when it is one of targets; otherwise
// it is left untouched and the command carries on with the rest.
func (a *app) load(ctx context.Context, targets mcp.ClientSet) (*reconcile.State, error) {
	st, err := a.session.Load(ctx)
	if err == nil {
		return st, nil
	}

	var loadErr *session.LoadError
	if !errors.As(err, &loadErr) {
		return nil, errors.NewSystemError(err, "")
	}
	for c := range loadErr.Errors {
		if targets.Has(c) {
			return nil, errors.NewSystemError(err, "Fix the file by hand or choose another --mode")
		}
	}
	return st, nil
}

// save writes every changed client config and the store.
func (a *app) save(ctx context.Context, st *reconcile.State) error {
	written, err := a.session.Save(ctx, st)
	if err != nil {
		return errors.NewSystemError(err, "")
	}
	if len(written) > 0 {
		a.logger.Info("updated client configs", "clients", written)
	}
	return nil
}
