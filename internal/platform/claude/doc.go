// Package claude adapts the Claude Code configuration file (~/.claude.json)
// to the client-neutral [mcp.Config].
//
// Servers live under "mcpServers" at the top level and under
// "projects.<path>.mcpServers" for project-scoped servers. Claude's native
// definition shape is also the canonical shape, so definitions pass through
// unchanged:
//
//	{
//	  "mcpServers": {
//	    "github": {"command": "npx", "args": ["-y", "@modelcontextprotocol/server-github"]},
//	    "api": {"type": "http", "url": "https://api.example.com/mcp"}
//	  }
//	}
package claude
