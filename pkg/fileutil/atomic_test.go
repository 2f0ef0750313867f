package fileutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAtomicWriteFile(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		perm os.FileMode
	}{
		{"successful write", []byte("hello world\n"), 0o644},
		{"empty data", []byte{}, 0o644},
		{"private file", []byte(`{"mcpServers":{}}`), 0o600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "test-file")

			if err := AtomicWriteFile(path, tt.data, tt.perm); err != nil {
				t.Fatalf("AtomicWriteFile() error = %v", err)
			}

			got, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("reading file: %v", err)
			}
			if string(got) != string(tt.data) {
				t.Errorf("content = %q, want %q", got, tt.data)
			}

			info, err := os.Stat(path)
			if err != nil {
				t.Fatalf("stating file: %v", err)
			}
			if info.Mode().Perm() != tt.perm {
				t.Errorf("permissions = %o, want %o", info.Mode().Perm(), tt.perm)
			}
		})
	}
}

func TestAtomicWriteFile_DirectoryNotExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "file")
	if err := AtomicWriteFile(path, []byte("x"), 0o644); err == nil {
		t.Error("expected error when parent directory does not exist")
	}
}

func TestAtomicWriteFile_NoTempFileLeft(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file")
	if err := AtomicWriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".mcpswitch-atomic-") {
			t.Errorf("temp file %s left behind", e.Name())
		}
	}
}

func TestAtomicWriteJSON(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		wantJSON string
		wantErr  bool
	}{
		{
			name:     "map",
			value:    map[string]int{"count": 42},
			wantJSON: "{\n  \"count\": 42\n}\n",
		},
		{
			name:     "no html escaping",
			value:    map[string]string{"url": "https://x.dev/mcp?a=1&b=2"},
			wantJSON: "{\n  \"url\": \"https://x.dev/mcp?a=1&b=2\"\n}\n",
		},
		{
			name:    "unmarshalable channel",
			value:   make(chan int),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "test.json")

			err := AtomicWriteJSON(path, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("AtomicWriteJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if _, err := os.Stat(path); err == nil {
					t.Error("file should not exist after marshal error")
				}
				return
			}

			got, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("reading file: %v", err)
			}
			if string(got) != tt.wantJSON {
				t.Errorf("content = %q, want %q", got, tt.wantJSON)
			}
		})
	}
}

func TestAtomicWriteJSON_KeepsExistingPerm(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{}"), 0o640); err != nil {
		t.Fatal(err)
	}

	if err := AtomicWriteJSON(path, map[string]any{"a": 1}); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o640 {
		t.Errorf("permissions = %o, want 640", info.Mode().Perm())
	}
}

func TestAtomicWriteTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	doc := map[string]any{
		"model": "o4",
		"mcp_servers": map[string]any{
			"fetch": map[string]any{"command": "uvx", "args": []any{"mcp-server-fetch"}},
		},
	}

	if err := AtomicWriteTOML(path, doc); err != nil {
		t.Fatalf("AtomicWriteTOML() error = %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"model = ", "o4", "[mcp_servers.fetch]", "uvx"} {
		if !strings.Contains(string(got), want) {
			t.Errorf("TOML output missing %q:\n%s", want, got)
		}
	}
}

func TestAtomicWriteYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := AtomicWriteYAML(path, map[string]any{"default_mode": "all"}); err != nil {
		t.Fatalf("AtomicWriteYAML() error = %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "default_mode: all\n" {
		t.Errorf("content = %q, want %q", got, "default_mode: all\n")
	}
}
