package paths

import (
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
)

func TestClientConfigPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(CodexHomeEnv, "")

	tests := []struct {
		client string
		want   string
	}{
		{ClientClaude, filepath.Join(home, ".claude.json")},
		{ClientGemini, filepath.Join(home, ".gemini", "settings.json")},
		{ClientCodex, filepath.Join(home, ".codex", "config.toml")},
		{"cursor", ""},
	}

	for _, tt := range tests {
		t.Run(tt.client, func(t *testing.T) {
			if got := ClientConfigPath(tt.client); got != tt.want {
				t.Errorf("ClientConfigPath(%q) = %q, want %q", tt.client, got, tt.want)
			}
		})
	}
}

func TestClientConfigPath_CodexHome(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(CodexHomeEnv, dir)

	if got, want := ClientConfigPath(ClientCodex), filepath.Join(dir, "config.toml"); got != want {
		t.Errorf("ClientConfigPath(codex) = %q, want %q", got, want)
	}
}

func TestAppPaths(t *testing.T) {
	cfg := t.TempDir()
	data := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", cfg)
	t.Setenv("XDG_DATA_HOME", data)
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"config file", AppConfigFile(), filepath.Join(cfg, AppName, "config.yaml")},
		{"store", StorePath(), filepath.Join(cfg, AppName, "disabled_servers.json")},
		{"presets", PresetsPath(), filepath.Join(cfg, AppName, "presets.json")},
		{"backups", BackupDir(), filepath.Join(data, AppName, "backups")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestClients(t *testing.T) {
	got := Clients()
	want := []string{ClientClaude, ClientGemini, ClientCodex}
	if len(got) != len(want) {
		t.Fatalf("Clients() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Clients()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if err := EnsureDir(dir, 0); err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}
	if err := EnsureDir(dir, 0); err != nil {
		t.Errorf("EnsureDir() should be idempotent, got %v", err)
	}
}

func TestResolveTilde(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		in   string
		want string
	}{
		{"~", home},
		{"~/.codex/config.toml", filepath.Join(home, ".codex", "config.toml")},
		{"~other/file", "~other/file"},
		{"/abs/path", "/abs/path"},
		{"rel/path", "rel/path"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ResolveTilde(tt.in); got != tt.want {
				t.Errorf("ResolveTilde(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
