// Package platform defines the adapter contract between mcpswitch and the
// configuration files of the supported AI CLIs.
//
// Each client (Claude Code, Gemini CLI, Codex CLI) has an [Adapter] in its
// own subpackage that parses the client's file into an [mcp.Config] and
// writes it back. Adapters own schema differences: the engine only ever
// sees canonical definitions.
//
// # Adapters
//
// A [Registry] holds one adapter per client and returns them in canonical
// client order:
//
//	reg := platform.NewRegistry(claude.New(), gemini.New(), codex.New())
//	for _, a := range reg.All() {
//	    cfg, err := a.Parse(a.DefaultPath())
//	    ...
//	}
//
// # Errors
//
// A missing file parses to an empty config. A file that exists but cannot
// be decoded yields a [*FormatError], which matches [ErrFormat]:
//
//	if errors.Is(err, platform.ErrFormat) {
//	    // report and skip this client
//	}
//
// # Detection
//
// [Detect] and [DetectAll] report whether a client's file exists
// ([StatusInstalled]), whether only its directory exists ([StatusPartial]),
// or neither ([StatusNotInstalled]).
//
// # Thread Safety
//
// All functions and adapters in this package are safe for concurrent use.
package platform
