package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/mcpswitch/internal/errors"
	"github.com/thoreinstein/mcpswitch/internal/mcp"
	"github.com/thoreinstein/mcpswitch/internal/report"
)

func TestValidate_Clean(t *testing.T) {
	env := newTestEnv(t)
	env.seed()

	var buf bytes.Buffer
	require.NoError(t, runValidateWithIO(context.Background(), &buf, env.fresh(), report.FormatText))
	assert.Contains(t, buf.String(), "Validation passed")
}

func TestValidate_MissingClientIsInfo(t *testing.T) {
	env := newTestEnv(t)
	env.write(mcp.Claude, `{"mcpServers": {}}`)

	var buf bytes.Buffer
	require.NoError(t, runValidateWithIO(context.Background(), &buf, env.fresh(), report.FormatText))
	assert.Contains(t, buf.String(), "codex: no config file (not_installed)")
	assert.Contains(t, buf.String(), "Validation passed")
}

func TestValidate_ReportsProblems(t *testing.T) {
	env := newTestEnv(t)
	env.write(mcp.Claude, `{"mcpServers": {"remote": {"type": "http"}}}`)
	env.write(mcp.Codex, "[mcp_servers\n")

	var buf bytes.Buffer
	err := runValidateWithIO(context.Background(), &buf, env.fresh(), report.FormatJSON)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)

	var res report.Result
	require.NoError(t, json.Unmarshal(buf.Bytes(), &res))

	var sources []string
	for _, i := range res.Errors() {
		sources = append(sources, i.Source)
	}
	assert.ElementsMatch(t, []string{"claude", "codex"}, sources)
}

func TestValidate_ChecksStoreAndPresets(t *testing.T) {
	env := newTestEnv(t)
	env.seed()
	ctx := context.Background()

	require.NoError(t, runToggleWithIO(ctx, &bytes.Buffer{}, env.fresh(), []string{"fs"}, "all", toggleOptions{}, false))
	require.NoError(t, runPresetSaveWithIO(ctx, &bytes.Buffer{}, env.fresh(), "p", []string{"github"}, "", "all"))

	var buf bytes.Buffer
	require.NoError(t, runValidateWithIO(ctx, &buf, env.fresh(), report.FormatJSON))

	var res report.Result
	require.NoError(t, json.Unmarshal(buf.Bytes(), &res))
	assert.False(t, res.HasErrors())
}
