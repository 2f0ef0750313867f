// Package mcp defines the client-neutral model shared by every mcpswitch
// component: client identifiers and sets, server definitions, and the
// parsed view of one client's configuration file.
//
// # Server Definitions
//
// A [Definition] is an ordered, opaque key/value mapping. mcpswitch reads
// the fields it understands (command, args, env, url, headers, type) through
// typed accessors and carries every other key through untouched:
//
//	def := mcp.NewDefinition()
//	def.Set(mcp.KeyCommand, "npx")
//	def.Set(mcp.KeyArgs, []any{"-y", "@modelcontextprotocol/server-filesystem"})
//	def.Set("timeout", 30000) // client-specific, preserved
//
// JSON decoding records key order and keeps numbers as [encoding/json.Number],
// so a definition is written back the way it was read.
//
// # Clients
//
// [Clients] lists the supported clients in canonical order: claude, gemini,
// codex. When several clients hold a live definition for the same server,
// the first one in canonical order is authoritative. [ClientSet] is the set
// type used for modes and for the disabled store's per-client records.
//
// # Configs
//
// A [Config] is one client's file as the engine sees it: the global
// Servers table (presence means enabled), per-project tables, and Extra,
// the rest of the document that adapters write back unchanged.
package mcp
