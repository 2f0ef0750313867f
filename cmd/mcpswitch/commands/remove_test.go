package commands

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/mcpswitch/internal/errors"
	"github.com/thoreinstein/mcpswitch/internal/mcp"
	"github.com/thoreinstein/mcpswitch/internal/reconcile"
)

func TestRemove_LiveAndStore(t *testing.T) {
	env := newTestEnv(t)
	env.seed()
	ctx := context.Background()
	require.NoError(t, runToggleWithIO(ctx, &bytes.Buffer{}, env.fresh(), []string{"fs"}, reconcile.ModeClaude, toggleOptions{}, false))

	var buf bytes.Buffer
	require.NoError(t, runRemoveWithIO(ctx, &buf, env.fresh(), []string{"fs"}, reconcile.ModeAll, false))
	assert.Contains(t, buf.String(), "Removed fs")

	st := env.state()
	for _, c := range mcp.Clients() {
		assert.False(t, st.Config(c).Has("fs"), c)
	}
	_, tracked := st.Disabled.Get("fs")
	assert.False(t, tracked)
}

func TestRemove_FromDisabledOnly(t *testing.T) {
	env := newTestEnv(t)
	env.seed()
	ctx := context.Background()
	require.NoError(t, runToggleWithIO(ctx, &bytes.Buffer{}, env.fresh(), []string{"github"}, reconcile.ModeCodex, toggleOptions{}, false))

	require.NoError(t, runRemoveWithIO(ctx, &bytes.Buffer{}, env.fresh(), []string{"github"}, reconcile.ModeAll, true))

	st := env.state()
	assert.True(t, st.Config(mcp.Claude).Has("github"))
	_, tracked := st.Disabled.Get("github")
	assert.False(t, tracked)
}

func TestRemove_Unknown(t *testing.T) {
	env := newTestEnv(t)
	env.seed()

	var buf bytes.Buffer
	err := runRemoveWithIO(context.Background(), &buf, env.fresh(), []string{"ghost"}, reconcile.ModeAll, false)
	assert.ErrorIs(t, err, errors.ErrNotFound)
	assert.Contains(t, buf.String(), "ghost: nothing to remove")
}

func TestSync(t *testing.T) {
	env := newTestEnv(t)
	env.write(mcp.Claude, `{"mcpServers": {"a": {"command": "a"}, "b": {"command": "b"}}}`)
	env.write(mcp.Codex, `[mcp_servers.c]
command = "c"
`)

	var buf bytes.Buffer
	require.NoError(t, runSyncWithIO(context.Background(), &buf, env.fresh(), nil, "claude", "codex"))
	assert.Contains(t, buf.String(), "Synced 3 server(s) from claude to codex")

	st := env.state()
	assert.Equal(t, []string{"a", "b"}, st.Config(mcp.Codex).Names())
	entry, ok := st.Disabled.Get("c")
	require.True(t, ok)
	assert.True(t, entry.DisabledFor.Has(mcp.Codex))
	assert.False(t, st.Config(mcp.Gemini).Exists)
}

func TestSync_Names(t *testing.T) {
	env := newTestEnv(t)
	env.write(mcp.Claude, `{"mcpServers": {"a": {"command": "a"}, "b": {"command": "b"}}}`)

	require.NoError(t, runSyncWithIO(context.Background(), &bytes.Buffer{}, env.fresh(), []string{"b"}, "claude", "gemini"))
	assert.Equal(t, []string{"b"}, env.state().Config(mcp.Gemini).Names())
}

func TestSync_BadClients(t *testing.T) {
	env := newTestEnv(t)

	err := runSyncWithIO(context.Background(), &bytes.Buffer{}, env.fresh(), nil, "cursor", "codex")
	assert.ErrorIs(t, err, errors.ErrUnknownClient)

	err = runSyncWithIO(context.Background(), &bytes.Buffer{}, env.fresh(), nil, "codex", "codex")
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))
}
