// Package paths resolves the file locations mcpswitch reads and writes.
//
// Two groups of paths exist. Client config files belong to the AI CLIs and
// live where those tools expect them:
//
//	| Client | Live config              | Format |
//	|--------|--------------------------|--------|
//	| claude | ~/.claude.json           | JSON   |
//	| gemini | ~/.gemini/settings.json  | JSON   |
//	| codex  | ~/.codex/config.toml     | TOML   |
//
// Files owned by mcpswitch itself follow the XDG Base Directory layout via
// github.com/adrg/xdg:
//
//	<config home>/mcpswitch/config.yaml            application config
//	<config home>/mcpswitch/disabled_servers.json  disabled-server store
//	<config home>/mcpswitch/presets.json           preset store
//	<data home>/mcpswitch/backups/                 client config backups
package paths
