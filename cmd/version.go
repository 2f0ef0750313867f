// Package cmd holds the mcpswitch build metadata.
package cmd

// Set at release time with
//
//	-ldflags "-X github.com/thoreinstein/mcpswitch/cmd.Version=v1.2.3"
//
// Backups record Version in their manifests.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
