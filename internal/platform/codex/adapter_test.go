package codex

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/thoreinstein/mcpswitch/internal/mcp"
	"github.com/thoreinstein/mcpswitch/internal/platform"
)

const sampleConfig = `model = "o4-mini"
approval_policy = "on-request"

[mcp_servers.filesystem]
command = "npx"
args = ["-y", "@modelcontextprotocol/server-filesystem"]
startup_timeout_sec = 20

[mcp_servers.filesystem.env]
ROOT = "/tmp"

[mcp_servers.remote]
command = "npx"
url = "https://api.example.com/mcp"

[mcp_servers.remote.http_headers]
Authorization = "Bearer x"

[projects."/work/app"]
trust_level = "trusted"

[projects."/work/app".mcp_servers.db]
command = "uvx"
args = ["mcp-server-sqlite"]
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func readDoc(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("written config is not TOML: %v\n%s", err, data)
	}
	return doc
}

func TestAdapter_Parse(t *testing.T) {
	cfg, err := New().Parse(writeFile(t, sampleConfig))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	fs, ok := cfg.Get("filesystem")
	if !ok {
		t.Fatal("filesystem missing")
	}
	if fs.Transport() != mcp.TransportStdio || fs.Command() != "npx" {
		t.Errorf("filesystem = %v", fs.ToMap())
	}
	if env, _ := fs.StringMap(mcp.KeyEnv); env["ROOT"] != "/tmp" {
		t.Errorf("env = %v", env)
	}

	remote, ok := cfg.Get("remote")
	if !ok {
		t.Fatal("remote missing")
	}
	if remote.Type() != mcp.TransportHTTP {
		t.Errorf("remote type = %q, want http", remote.Type())
	}
	if remote.Has(mcp.KeyCommand) {
		t.Error("placeholder command should be stripped")
	}
	if headers, ok := remote.StringMap(mcp.KeyHeaders); !ok || headers["Authorization"] != "Bearer x" {
		t.Errorf("headers = %v", headers)
	}

	if _, ok := cfg.Projects["/work/app"]["db"]; !ok {
		t.Error("project server db missing")
	}
	if cfg.Extra["model"] != "o4-mini" {
		t.Errorf("Extra = %v", cfg.Extra)
	}
	if !New().Validate(cfg) {
		t.Error("parsed config should validate")
	}
}

func TestAdapter_RoundTrip(t *testing.T) {
	a := New()
	path := writeFile(t, sampleConfig)

	first, err := a.Parse(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Write(first, path); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	second, err := a.Parse(path)
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range first.Names() {
		if !first.Servers[name].Equal(second.Servers[name]) {
			t.Errorf("server %q changed: %v -> %v", name, first.Servers[name].ToMap(), second.Servers[name].ToMap())
		}
	}
	if !first.Projects["/work/app"]["db"].Equal(second.Projects["/work/app"]["db"]) {
		t.Error("project server changed")
	}

	doc := readDoc(t, path)
	if doc["approval_policy"] != "on-request" {
		t.Errorf("top-level keys lost: %v", doc)
	}
	project := doc["projects"].(map[string]any)["/work/app"].(map[string]any)
	if project["trust_level"] != "trusted" {
		t.Errorf("project keys lost: %v", project)
	}
}

func TestAdapter_Write_RemoteServer(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".codex", "config.toml")

	var def mcp.Definition
	if err := json.Unmarshal([]byte(`{"type":"http","url":"https://x/mcp","headers":{"X-Key":"k"},"timeout":30}`), &def); err != nil {
		t.Fatal(err)
	}
	cfg := mcp.NewConfig(mcp.Codex)
	cfg.Set("api", &def)

	if err := New().Write(cfg, path); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	doc := readDoc(t, path)
	api := doc["mcp_servers"].(map[string]any)["api"].(map[string]any)
	if api["command"] != PlaceholderCommand {
		t.Errorf("command = %v, want placeholder", api["command"])
	}
	if _, ok := api["type"]; ok {
		t.Error("type should not be written")
	}
	if _, ok := api["http_headers"]; !ok {
		t.Errorf("headers should be written as http_headers: %v", api)
	}
	if api["timeout"] != int64(30) {
		t.Errorf("timeout = %#v, want int64(30)", api["timeout"])
	}

	back, err := New().Parse(path)
	if err != nil {
		t.Fatal(err)
	}
	if !back.Servers["api"].Equal(cfg.Servers["api"]) {
		t.Errorf("round trip: %v -> %v", cfg.Servers["api"].ToMap(), back.Servers["api"].ToMap())
	}
	if cfg.Servers["api"].Has(mcp.KeyCommand) {
		t.Error("placeholder must not leak into the caller's definition")
	}
}

func TestAdapter_Write_NoServersOmitsTable(t *testing.T) {
	path := writeFile(t, "model = \"o3\"\n\n[mcp_servers.only]\ncommand = \"npx\"\n")

	cfg, err := New().Parse(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Delete("only")
	if err := New().Write(cfg, path); err != nil {
		t.Fatal(err)
	}

	doc := readDoc(t, path)
	if _, ok := doc["mcp_servers"]; ok {
		t.Errorf("empty mcp_servers table written: %v", doc)
	}
	if doc["model"] != "o3" {
		t.Errorf("model = %v", doc["model"])
	}
}

func TestAdapter_Parse_FormatErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "invalid toml", content: "[mcp_servers\ncommand = "},
		{name: "servers not a table", content: "mcp_servers = 3\n"},
		{name: "server not a table", content: "[mcp_servers]\nfs = \"npx\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New().Parse(writeFile(t, tt.content))
			if !errors.Is(err, platform.ErrFormat) {
				t.Fatalf("Parse() error = %v, want ErrFormat", err)
			}
		})
	}
}

func TestAdapter_Parse_EmptyFile(t *testing.T) {
	cfg, err := New().Parse(writeFile(t, ""))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !cfg.Exists || len(cfg.Servers) != 0 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestTOMLValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{name: "json integer", in: json.Number("42"), want: int64(42)},
		{name: "json float", in: json.Number("1.5"), want: 1.5},
		{name: "whole float", in: float64(7), want: int64(7)},
		{name: "fraction", in: 0.25, want: 0.25},
		{name: "string", in: "x", want: "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tomlValue(tt.in); got != tt.want {
				t.Errorf("tomlValue(%#v) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}
