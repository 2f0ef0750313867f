// Package config loads and validates mcpswitch's own settings.
//
// These are distinct from the client config files mcpswitch edits. The
// file lives at ~/.config/mcpswitch/config.yaml (XDG config home):
//
//	version: 1
//	default_mode: all
//	clients:
//	  codex:
//	    path: ~/work/.codex/config.toml
//	store_path: ~/.config/mcpswitch/disabled_servers.json
//	presets_path: ~/.config/mcpswitch/presets.json
//	backup:
//	  enabled: true
//	  retention: 5
//
// Every key can be overridden from the environment with the MCPSWITCH_
// prefix, dots replaced by underscores (MCPSWITCH_BACKUP_ENABLED=false).
// Call [Init] once, then [Load]; loaded configurations are validated.
package config
