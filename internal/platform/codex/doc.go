// Package codex adapts the Codex CLI configuration file
// (~/.codex/config.toml, or $CODEX_HOME/config.toml) to the client-neutral
// [mcp.Config].
//
// Codex's schema differs from the canonical JSON shape in three ways that
// the adapter hides:
//
//   - There is no "type" key. A server with a url is an HTTP server.
//   - Remote request headers are called "http_headers".
//   - A server table needs a command even when it has a url, so remote
//     servers are written with [PlaceholderCommand] and read back without it.
//
// Writing re-encodes the whole document; TOML comments are not preserved.
package codex
