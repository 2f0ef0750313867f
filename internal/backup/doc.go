// Package backup copies client config files aside before mcpswitch
// rewrites them, and restores them on request.
//
// Each backup lives in its own directory:
//
//	<data dir>/mcpswitch/backups/
//	└── {client}/
//	    └── {id}/
//	        ├── manifest.json
//	        └── {copied files...}
//
// The manifest records a SHA256 hash per file; [Manager.Restore] refuses
// to restore a file whose hash no longer matches ([ErrBackupCorrupted]).
// [Manager.Prune] keeps the newest backups per client, and [Once] makes
// sure a command backs up each client at most once before writing.
package backup
