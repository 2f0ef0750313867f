package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/mcpswitch/internal/mcp"
	"github.com/thoreinstein/mcpswitch/internal/reconcile"
)

func TestListCommand_Metadata(t *testing.T) {
	assert.Equal(t, "list", listCmd.Use)
	assert.NotEmpty(t, listCmd.Short)
	for _, f := range []string{"json", "yaml", "show-secrets"} {
		assert.NotNil(t, listCmd.Flags().Lookup(f), "--%s flag should be defined", f)
	}
}

func TestList_Empty(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	require.NoError(t, runListWithIO(context.Background(), &buf, env.fresh(), listOptions{}))
	assert.Contains(t, buf.String(), "No MCP servers configured")
}

func TestList_Table(t *testing.T) {
	env := newTestEnv(t)
	env.seed()
	require.NoError(t, runToggleWithIO(context.Background(), &bytes.Buffer{}, env.fresh(), []string{"github"}, reconcile.ModeCodex, toggleOptions{}, false))

	var buf bytes.Buffer
	require.NoError(t, runListWithIO(context.Background(), &buf, env.fresh(), listOptions{}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "NAME")
	assert.Contains(t, lines[0], "codex")
	assert.True(t, strings.HasPrefix(lines[1], "fs"))
	assert.Contains(t, lines[1], "npx -y @modelcontextprotocol/server-filesystem")
	assert.True(t, strings.HasPrefix(lines[2], "github"))
	assert.Equal(t, 3, strings.Count(lines[1], "✓"))
	assert.Equal(t, 2, strings.Count(lines[2], "✓"))
}

func TestList_JSONMasksSecrets(t *testing.T) {
	env := newTestEnv(t)
	env.seed()

	var buf bytes.Buffer
	require.NoError(t, runListWithIO(context.Background(), &buf, env.fresh(), listOptions{json: true}))

	var out []listEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "github", out[1].Name)
	assert.True(t, out[1].Enabled[string(mcp.Codex)])

	envVars := out[1].Config["env"].(map[string]any)
	assert.NotEqual(t, "ghp_abcdefghijklmnop", envVars["GITHUB_TOKEN"])
	assert.NotContains(t, buf.String(), "ghp_abcdefghijklmnop")
}

func TestList_ShowSecrets(t *testing.T) {
	env := newTestEnv(t)
	env.seed()

	var buf bytes.Buffer
	require.NoError(t, runListWithIO(context.Background(), &buf, env.fresh(), listOptions{json: true, showSecrets: true}))
	assert.Contains(t, buf.String(), "ghp_abcdefghijklmnop")
}

func TestList_YAMLIncludesStoreOnlyServers(t *testing.T) {
	env := newTestEnv(t)
	env.seed()
	require.NoError(t, runToggleWithIO(context.Background(), &bytes.Buffer{}, env.fresh(), []string{"fs"}, reconcile.ModeAll, toggleOptions{}, false))

	var buf bytes.Buffer
	require.NoError(t, runListWithIO(context.Background(), &buf, env.fresh(), listOptions{yaml: true}))

	var out []listEntry
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 2)
	assert.Equal(t, "fs", out[0].Name)
	assert.False(t, out[0].Enabled[string(mcp.Claude)])
	assert.ElementsMatch(t, []string{"claude", "gemini", "codex"}, out[0].DisabledFor)
	assert.Equal(t, "npx", out[0].Config["command"])
}

func TestList_ReportsUnreadableClient(t *testing.T) {
	env := newTestEnv(t)
	env.seed()
	env.write(mcp.Codex, "[mcp_servers\n")

	var buf bytes.Buffer
	require.NoError(t, runListWithIO(context.Background(), &buf, env.fresh(), listOptions{}))
	assert.Contains(t, buf.String(), "codex could not be read")
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"héllo wörld", 8, "héllo..."},
		{"abc", 2, "ab"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncate(tt.in, tt.max), tt.in)
	}
}
