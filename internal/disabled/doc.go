// Package disabled persists the definitions of servers that are turned off
// for one or more clients, so they can be restored without re-entering
// their configuration.
//
// The store is a JSON object keyed by server name:
//
//	{
//	  "github": {
//	    "config": {"command": "npx", "args": ["-y", "@modelcontextprotocol/server-github"]},
//	    "disabled_for": ["claude", "codex"]
//	  }
//	}
//
// Older versions stored the bare definition, meaning disabled for every
// client. [Store.Load] migrates such entries once and writes the current
// shape back.
package disabled
