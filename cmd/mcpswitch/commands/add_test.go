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

func TestBuildDefinition(t *testing.T) {
	tests := []struct {
		name    string
		command []string
		opts    addOptions
		check   func(t *testing.T, def *mcp.Definition)
		wantErr error
	}{
		{
			name:    "stdio with env",
			command: []string{"npx", "-y", "server"},
			opts:    addOptions{env: []string{"A=1", "B=x=y"}},
			check: func(t *testing.T, def *mcp.Definition) {
				assert.Equal(t, "npx", def.Command())
				assert.Equal(t, []string{"-y", "server"}, def.Args())
				env, _ := def.StringMap(mcp.KeyEnv)
				assert.Equal(t, map[string]string{"A": "1", "B": "x=y"}, env)
				assert.False(t, def.Has(mcp.KeyType))
			},
		},
		{
			name: "remote defaults to http",
			opts: addOptions{url: "https://example.com/mcp", headers: []string{"Authorization=Bearer t"}},
			check: func(t *testing.T, def *mcp.Definition) {
				assert.Equal(t, mcp.TransportHTTP, def.Type())
				assert.Equal(t, "https://example.com/mcp", def.URL())
				h, _ := def.StringMap(mcp.KeyHeaders)
				assert.Equal(t, "Bearer t", h["Authorization"])
			},
		},
		{
			name: "remote sse",
			opts: addOptions{url: "https://example.com/sse", transport: "SSE"},
			check: func(t *testing.T, def *mcp.Definition) {
				assert.Equal(t, mcp.TransportSSE, def.Type())
			},
		},
		{
			name: "raw json keeps unknown keys",
			opts: addOptions{json: `{"command":"uvx","args":["git"],"timeout":30}`},
			check: func(t *testing.T, def *mcp.Definition) {
				assert.Equal(t, []string{"command", "args", "timeout"}, def.Keys())
			},
		},
		{name: "nothing", wantErr: errAddMissingCommandOrURL},
		{name: "both", command: []string{"npx"}, opts: addOptions{url: "https://x"}, wantErr: errAddBothCommandAndURL},
		{name: "json and command", command: []string{"npx"}, opts: addOptions{json: "{}"}, wantErr: errAddJSONWithFields},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := buildDefinition(tt.command, tt.opts)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, def)
		})
	}
}

func TestBuildDefinition_BadInput(t *testing.T) {
	_, err := buildDefinition([]string{"npx"}, addOptions{env: []string{"NOEQUALS"}})
	assert.ErrorContains(t, err, "expected KEY=VALUE")

	_, err = buildDefinition(nil, addOptions{json: `["not","an","object"]`})
	assert.Error(t, err)
}

func TestAdd_WritesSelectedClients(t *testing.T) {
	env := newTestEnv(t)
	env.seed()

	var buf bytes.Buffer
	err := runAddWithIO(context.Background(), &buf, env.fresh(), []string{"git", "uvx", "mcp-server-git"}, reconcile.ModeBoth, addOptions{})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Added git to claude, gemini")

	st := env.state()
	assert.True(t, st.Config(mcp.Claude).Has("git"))
	assert.True(t, st.Config(mcp.Gemini).Has("git"))
	assert.False(t, st.Config(mcp.Codex).Has("git"))
}

func TestAdd_CreatesMissingClientFile(t *testing.T) {
	env := newTestEnv(t)

	err := runAddWithIO(context.Background(), &bytes.Buffer{}, env.fresh(), []string{"git", "uvx", "mcp-server-git"}, reconcile.ModeCodex, addOptions{})
	require.NoError(t, err)

	st := env.state()
	assert.True(t, st.Config(mcp.Codex).Exists)
	assert.False(t, st.Config(mcp.Claude).Exists, "untargeted clients are not created")
}

func TestAdd_ExistingNeedsForce(t *testing.T) {
	env := newTestEnv(t)
	env.seed()
	ctx := context.Background()

	err := runAddWithIO(ctx, &bytes.Buffer{}, env.fresh(), []string{"fs", "node", "fs.js"}, reconcile.ModeAll, addOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errAddExists)
	assert.Equal(t, "Use --force to overwrite", errors.Suggestion(err))

	require.NoError(t, runAddWithIO(ctx, &bytes.Buffer{}, env.fresh(), []string{"fs", "node", "fs.js"}, reconcile.ModeAll, addOptions{force: true}))
	def, _ := env.state().Config(mcp.Gemini).Get("fs")
	assert.Equal(t, "node", def.Command())
}

func TestAdd_DisabledServerIsReEnabled(t *testing.T) {
	env := newTestEnv(t)
	env.seed()
	ctx := context.Background()
	require.NoError(t, runToggleWithIO(ctx, &bytes.Buffer{}, env.fresh(), []string{"fs"}, reconcile.ModeClaude, toggleOptions{}, false))

	require.NoError(t, runAddWithIO(ctx, &bytes.Buffer{}, env.fresh(), []string{"fs", "node", "fs.js"}, reconcile.ModeClaude, addOptions{}))

	st := env.state()
	assert.True(t, st.Config(mcp.Claude).Has("fs"))
	_, tracked := st.Disabled.Get("fs")
	assert.False(t, tracked)
}

func TestAdd_InvalidDefinition(t *testing.T) {
	env := newTestEnv(t)

	err := runAddWithIO(context.Background(), &bytes.Buffer{}, env.fresh(), []string{"bad"}, reconcile.ModeAll, addOptions{json: `{"type":"http"}`})
	require.Error(t, err)
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))
	assert.False(t, env.enabled(mcp.Claude, "bad"))
}
