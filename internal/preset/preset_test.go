package preset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/mcpswitch/internal/errors"
	"github.com/thoreinstein/mcpswitch/internal/logging"
	"github.com/thoreinstein/mcpswitch/internal/mcp"
	"github.com/thoreinstein/mcpswitch/internal/reconcile"
)

func newStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "presets.json")
	return New(path, WithLogger(logging.ForTest(t))), path
}

func stdio(cmd string) *mcp.Definition {
	return mcp.DefinitionFromMap(map[string]any{"command": cmd})
}

func TestDefaultServers(t *testing.T) {
	s, _ := newStore(t)

	tests := []struct {
		name string
		want []string
	}{
		{"minimal", []string{"filesystem", "fetch"}},
		{"webdev", []string{"filesystem", "fetch", "github", "puppeteer"}},
		{"fullstack", []string{"filesystem", "fetch", "github", "postgres", "sqlite", "memory", "puppeteer"}},
		{"testing", []string{"filesystem", "puppeteer", "playwright"}},
		{"unknown", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.DefaultServers(tt.name))
		})
	}
}

func TestDefaultServers_ReturnsCopy(t *testing.T) {
	s, _ := newStore(t)
	got := s.DefaultServers("minimal")
	got[0] = "changed"
	assert.Equal(t, "filesystem", s.DefaultServers("minimal")[0])
}

func TestLoad_MissingFile(t *testing.T) {
	s, _ := newStore(t)
	require.NoError(t, s.Load())
	assert.Equal(t, Builtins(), s.List())
}

func TestLoad_InvalidFile(t *testing.T) {
	s, path := newStore(t)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	err := s.Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidConfig))
	assert.NotEmpty(t, errors.Suggestion(err))
}

func TestLoad_OverridesDefaults(t *testing.T) {
	s, path := newStore(t)
	content := `{
  "presets": {"work": {"description": "day job", "servers": {"jira": {"command": "jira-mcp"}}}},
  "defaults": {"minimal": ["fetch"], "custom": ["a", "b"]}
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	require.NoError(t, s.Load())

	assert.Equal(t, []string{"fetch"}, s.DefaultServers("minimal"))
	assert.Equal(t, []string{"a", "b"}, s.DefaultServers("custom"))
	assert.Equal(t, []string{"filesystem", "puppeteer", "playwright"}, s.DefaultServers("testing"))

	p, ok := s.Get("work")
	require.True(t, ok)
	assert.Equal(t, "day job", p.Description)
	assert.Equal(t, "jira-mcp", p.Servers["jira"].Command())

	assert.Equal(t, []string{"custom", "fullstack", "minimal", "testing", "webdev", "work"}, s.List())
}

func TestSaveAndReload(t *testing.T) {
	s, path := newStore(t)
	require.NoError(t, s.SavePreset("mine", "my servers", map[string]*mcp.Definition{
		"a": stdio("a-cmd"),
		"b": mcp.DefinitionFromMap(map[string]any{"type": "http", "url": "https://b"}),
	}))
	require.NoError(t, s.Save())

	reloaded := New(path, WithLogger(logging.ForTest(t)))
	require.NoError(t, reloaded.Load())

	p, ok := reloaded.Get("mine")
	require.True(t, ok)
	assert.Equal(t, "my servers", p.Description)
	assert.Equal(t, []string{"a", "b"}, p.Names())
	assert.Equal(t, "https://b", p.Servers["b"].URL())
	assert.Equal(t, []string{"filesystem", "fetch"}, reloaded.DefaultServers("minimal"))
}

func TestSavePreset_RequiresName(t *testing.T) {
	s, _ := newStore(t)
	err := s.SavePreset("", "", nil)
	assert.True(t, errors.Is(err, errors.ErrMissingName))
}

func TestGet_ReturnsCopy(t *testing.T) {
	s, _ := newStore(t)
	require.NoError(t, s.SavePreset("p", "", map[string]*mcp.Definition{"a": stdio("a")}))

	p, _ := s.Get("p")
	p.Servers["a"].Set("command", "changed")

	again, _ := s.Get("p")
	assert.Equal(t, "a", again.Servers["a"].Command())

	_, ok := s.Get("minimal")
	assert.False(t, ok, "built-ins are not saved presets")
}

func TestDelete(t *testing.T) {
	s, _ := newStore(t)
	require.NoError(t, s.SavePreset("p", "", nil))

	assert.True(t, s.Delete("p"))
	assert.False(t, s.Delete("p"))
	assert.False(t, s.Delete("minimal"))
	assert.Contains(t, s.List(), "minimal")
}

func TestTargets(t *testing.T) {
	s, _ := newStore(t)
	require.NoError(t, s.SavePreset("minimal", "shadow", map[string]*mcp.Definition{"only": stdio("x")}))

	got, err := s.Targets("minimal")
	require.NoError(t, err)
	assert.Equal(t, []string{"only"}, got, "saved presets win over defaults")

	got, err = s.Targets("webdev")
	require.NoError(t, err)
	assert.Len(t, got, 4)

	_, err = s.Targets("nope")
	assert.True(t, errors.Is(err, ErrPresetNotFound))
}

func TestApply_DefaultPreset(t *testing.T) {
	s, _ := newStore(t)
	e := reconcile.New(reconcile.WithLogger(logging.ForTest(t)))
	st := reconcile.NewState()
	e.Add(st, "filesystem", stdio("fs"), reconcile.ModeAll)
	e.Add(st, "github", stdio("gh"), reconcile.ModeAll)
	e.Add(st, "fetch", stdio("fetch"), reconcile.ModeAll)
	e.Disable(st, "fetch", reconcile.ModeAll)

	res, err := s.Apply(e, st, "minimal", reconcile.ModeAll)
	require.NoError(t, err)

	assert.Equal(t, []string{"github"}, res.Disabled)
	assert.Equal(t, []string{"fetch"}, res.Enabled)
	assert.Empty(t, res.Missing)
	assert.True(t, res.Changed())

	for _, c := range mcp.Clients() {
		assert.True(t, st.Config(c).Has("filesystem"))
		assert.True(t, st.Config(c).Has("fetch"))
		assert.False(t, st.Config(c).Has("github"))
	}
	assert.Equal(t, []string{"github"}, st.Disabled.Names())
}

func TestApply_ReportsMissing(t *testing.T) {
	s, _ := newStore(t)
	e := reconcile.New()
	st := reconcile.NewState()

	res, err := s.Apply(e, st, "testing", reconcile.ModeClaude)
	require.NoError(t, err)
	assert.Equal(t, []string{"filesystem", "puppeteer", "playwright"}, res.Missing)
	assert.False(t, res.Changed())
}

func TestApply_SavedPresetAddsDefinitions(t *testing.T) {
	s, _ := newStore(t)
	require.NoError(t, s.SavePreset("work", "", map[string]*mcp.Definition{"jira": stdio("jira-mcp")}))
	e := reconcile.New()
	st := reconcile.NewState()
	e.Add(st, "other", stdio("other"), reconcile.ModeAll)

	res, err := s.Apply(e, st, "work", reconcile.ModeCodex)
	require.NoError(t, err)

	assert.Equal(t, []string{"jira"}, res.Enabled)
	assert.Equal(t, []string{"other"}, res.Disabled)
	assert.True(t, st.Config(mcp.Codex).Has("jira"))
	assert.False(t, st.Config(mcp.Claude).Has("jira"), "other clients untouched")
	assert.True(t, st.Config(mcp.Claude).Has("other"))
}

func TestApply_FillsMissingClientsFromLiveCopy(t *testing.T) {
	s, _ := newStore(t)
	e := reconcile.New()
	st := reconcile.NewState()
	e.Add(st, "filesystem", stdio("fs"), reconcile.ModeClaude)
	e.Add(st, "fetch", stdio("fetch"), reconcile.ModeBoth)

	res, err := s.Apply(e, st, "minimal", reconcile.ModeBoth)
	require.NoError(t, err)

	assert.Equal(t, []string{"filesystem"}, res.Enabled)
	got, ok := st.Config(mcp.Gemini).Get("filesystem")
	require.True(t, ok)
	assert.Equal(t, "fs", got.Command())
}

func TestApply_Idempotent(t *testing.T) {
	s, _ := newStore(t)
	e := reconcile.New()
	st := reconcile.NewState()
	e.Add(st, "filesystem", stdio("fs"), reconcile.ModeAll)
	e.Add(st, "memory", stdio("mem"), reconcile.ModeAll)

	_, err := s.Apply(e, st, "minimal", reconcile.ModeAll)
	require.NoError(t, err)
	res, err := s.Apply(e, st, "minimal", reconcile.ModeAll)
	require.NoError(t, err)
	assert.False(t, res.Changed())
}

func TestApply_UnknownPreset(t *testing.T) {
	s, _ := newStore(t)
	_, err := s.Apply(reconcile.New(), reconcile.NewState(), "nope", reconcile.ModeAll)
	assert.True(t, errors.Is(err, ErrPresetNotFound))
}
