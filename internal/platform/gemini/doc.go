// Package gemini adapts the Gemini CLI settings file (~/.gemini/settings.json)
// to the client-neutral [mcp.Config].
//
// Gemini keeps servers under "mcpServers" and distinguishes transports by
// field name rather than by a "type" key:
//
//	{"command": "npx", ...}                  stdio
//	{"url": "https://host/sse"}              sse
//	{"httpUrl": "https://host/mcp"}          streamable http
//
// Parsed definitions carry an explicit "type" so they can be copied to
// other clients unchanged; writing removes it again.
package gemini
