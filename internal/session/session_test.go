package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/mcpswitch/internal/backup"
	"github.com/thoreinstein/mcpswitch/internal/disabled"
	"github.com/thoreinstein/mcpswitch/internal/errors"
	"github.com/thoreinstein/mcpswitch/internal/logging"
	"github.com/thoreinstein/mcpswitch/internal/mcp"
	"github.com/thoreinstein/mcpswitch/internal/platform"
	"github.com/thoreinstein/mcpswitch/internal/reconcile"
)

func existing(client mcp.ClientID, servers map[string]*mcp.Definition) *mcp.Config {
	cfg := mcp.NewConfig(client)
	cfg.Exists = true
	for name, def := range servers {
		cfg.Set(name, def)
	}
	return cfg
}

func stdio(cmd string) *mcp.Definition {
	return mcp.DefinitionFromMap(map[string]any{"command": cmd})
}

type fixture struct {
	claude, gemini, codex *mockAdapter
	store                 *disabled.Store
	session               *Session
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		claude: newMockAdapter(mcp.Claude),
		gemini: newMockAdapter(mcp.Gemini),
		codex:  newMockAdapter(mcp.Codex),
		store:  disabled.New(filepath.Join(t.TempDir(), "disabled.json"), disabled.WithLogger(logging.ForTest(t))),
	}
	reg := platform.NewRegistry(f.claude, f.gemini, f.codex)
	opts = append([]Option{WithLogger(logging.ForTest(t))}, opts...)
	f.session = New(reg, f.store, opts...)
	t.Cleanup(func() {
		f.claude.AssertExpectations(t)
		f.gemini.AssertExpectations(t)
		f.codex.AssertExpectations(t)
	})
	return f
}

func TestLoad_AllClients(t *testing.T) {
	f := newFixture(t, WithClientPath(mcp.Codex, "/custom/codex.toml"))
	f.claude.On("Parse", "/default/claude").Return(existing(mcp.Claude, map[string]*mcp.Definition{"a": stdio("a")}), nil)
	f.gemini.On("Parse", "/default/gemini").Return(mcp.NewConfig(mcp.Gemini), nil)
	f.codex.On("Parse", "/custom/codex.toml").Return(existing(mcp.Codex, nil), nil)

	st, err := f.session.Load(context.Background())
	require.NoError(t, err)

	assert.Len(t, st.Configs, 3)
	assert.True(t, st.Config(mcp.Claude).Has("a"))
	assert.NotNil(t, st.Disabled)
	assert.Empty(t, f.session.Failed())
}

func TestLoad_FormatErrorIsolated(t *testing.T) {
	f := newFixture(t)
	formatErr := platform.NewFormatError(mcp.Gemini, "/default/gemini", errors.New("bad json"))
	f.claude.On("Parse", mock.Anything).Return(existing(mcp.Claude, nil), nil)
	f.gemini.On("Parse", mock.Anything).Return(nil, formatErr)
	f.codex.On("Parse", mock.Anything).Return(existing(mcp.Codex, nil), nil)

	st, err := f.session.Load(context.Background())
	require.Error(t, err)
	require.NotNil(t, st)

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Contains(t, loadErr.Errors, mcp.Gemini)
	assert.True(t, errors.Is(err, platform.ErrFormat))
	assert.NotContains(t, st.Configs, mcp.Gemini)
	assert.Contains(t, f.session.Failed(), mcp.Gemini)
}

func TestLoad_Cancelled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.session.Load(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSave_WritesOnlyChanged(t *testing.T) {
	f := newFixture(t)
	f.claude.On("Parse", mock.Anything).Return(existing(mcp.Claude, map[string]*mcp.Definition{"a": stdio("a")}), nil)
	f.gemini.On("Parse", mock.Anything).Return(existing(mcp.Gemini, map[string]*mcp.Definition{"a": stdio("a")}), nil)
	f.codex.On("Parse", mock.Anything).Return(mcp.NewConfig(mcp.Codex), nil)

	st, err := f.session.Load(context.Background())
	require.NoError(t, err)

	e := reconcile.New()
	require.True(t, e.Disable(st, "a", reconcile.ModeClaude))

	f.claude.On("Write", mock.MatchedBy(func(cfg *mcp.Config) bool { return !cfg.Has("a") }), "/default/claude").Return(nil).Once()

	written, err := f.session.Save(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, []mcp.ClientID{mcp.Claude}, written)

	entries, err := f.store.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"claude"}, entries["a"].DisabledFor.Strings())

	written, err = f.session.Save(context.Background(), st)
	require.NoError(t, err)
	assert.Empty(t, written, "second save has nothing to write")
}

func TestSave_DoesNotCreateEmptyFiles(t *testing.T) {
	f := newFixture(t)
	for _, a := range []*mockAdapter{f.claude, f.gemini, f.codex} {
		a.On("Parse", mock.Anything).Return(mcp.NewConfig(a.client), nil)
	}
	st, err := f.session.Load(context.Background())
	require.NoError(t, err)

	e := reconcile.New()
	e.Add(st, "x", stdio("x"), reconcile.ModeGemini)
	e.Delete(st, "x", reconcile.ModeGemini, false)

	written, err := f.session.Save(context.Background(), st)
	require.NoError(t, err)
	assert.Empty(t, written)
	_, statErr := os.Stat(f.store.Path())
	assert.True(t, os.IsNotExist(statErr), "unchanged store is not written")
}

func TestSave_CreatesFileWhenServersAdded(t *testing.T) {
	f := newFixture(t)
	for _, a := range []*mockAdapter{f.claude, f.gemini, f.codex} {
		a.On("Parse", mock.Anything).Return(mcp.NewConfig(a.client), nil)
	}
	st, err := f.session.Load(context.Background())
	require.NoError(t, err)

	reconcile.New().Add(st, "x", stdio("x"), reconcile.ModeCodex)
	f.codex.On("Write", mock.Anything, "/default/codex").Return(nil).Once()

	written, err := f.session.Save(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, []mcp.ClientID{mcp.Codex}, written)
	assert.True(t, st.Config(mcp.Codex).Exists)
}

func TestSave_SkipsBrokenClients(t *testing.T) {
	f := newFixture(t)
	f.claude.On("Parse", mock.Anything).Return(nil, platform.NewFormatError(mcp.Claude, "p", errors.New("bad")))
	f.gemini.On("Parse", mock.Anything).Return(existing(mcp.Gemini, nil), nil)
	f.codex.On("Parse", mock.Anything).Return(existing(mcp.Codex, nil), nil)

	st, err := f.session.Load(context.Background())
	require.Error(t, err)

	reconcile.New().Add(st, "x", stdio("x"), reconcile.ModeAll)
	f.gemini.On("Write", mock.Anything, mock.Anything).Return(nil).Once()
	f.codex.On("Write", mock.Anything, mock.Anything).Return(nil).Once()

	written, err := f.session.Save(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, []mcp.ClientID{mcp.Gemini, mcp.Codex}, written)
	f.claude.AssertNotCalled(t, "Write", mock.Anything, mock.Anything)
}

func TestSave_WriteErrorStops(t *testing.T) {
	f := newFixture(t)
	for _, a := range []*mockAdapter{f.claude, f.gemini, f.codex} {
		a.On("Parse", mock.Anything).Return(existing(a.client, nil), nil)
	}
	st, err := f.session.Load(context.Background())
	require.NoError(t, err)

	reconcile.New().Add(st, "x", stdio("x"), reconcile.ModeAll)
	f.claude.On("Write", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()

	written, err := f.session.Save(context.Background(), st)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "writing claude config")
	assert.Empty(t, written)
}

func TestSave_BacksUpBeforeWrite(t *testing.T) {
	dir := t.TempDir()
	claudePath := filepath.Join(dir, ".claude.json")
	require.NoError(t, os.WriteFile(claudePath, []byte(`{"mcpServers":{}}`), 0o600))

	mgr := backup.NewManager(backup.WithBackupDir(filepath.Join(dir, "backups")))
	f := newFixture(t, WithClientPath(mcp.Claude, claudePath), WithBackups(backup.NewOnce(mgr)))
	for _, a := range []*mockAdapter{f.claude, f.gemini, f.codex} {
		a.On("Parse", mock.Anything).Return(existing(a.client, nil), nil)
	}
	st, err := f.session.Load(context.Background())
	require.NoError(t, err)

	reconcile.New().Add(st, "x", stdio("x"), reconcile.ModeClaude)
	f.claude.On("Write", mock.Anything, claudePath).Return(nil).Once()

	_, err = f.session.Save(context.Background(), st)
	require.NoError(t, err)

	list, err := mgr.List("claude")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, claudePath, list[0].Files[0].OriginalPath)
}

func TestLoadError_Message(t *testing.T) {
	err := &LoadError{Errors: map[mcp.ClientID]error{
		mcp.Codex:  errors.New("codex broken"),
		mcp.Claude: errors.New("claude broken"),
	}}
	assert.Equal(t, "claude broken; codex broken", err.Error())
}

func TestDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()
	assert.Equal(t, mcp.Clients(), reg.Clients())
}
