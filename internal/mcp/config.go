package mcp

import (
	"encoding/json"
	"maps"
	"slices"
)

// Config is one client's view of its configuration file: the global
// server table, the per-project server tables, and the rest of the
// document the engine does not own.
//
// A name present in Servers means the server is enabled for Client.
type Config struct {
	// Client identifies the owning client.
	Client ClientID

	// Servers maps server names to their global definitions.
	Servers map[string]*Definition

	// Projects maps a project path to that project's server table.
	// Only Claude and Codex have project tables.
	Projects map[string]map[string]*Definition

	// Extra holds the remaining top-level document content, exactly as the
	// adapter decoded it. It is written back unchanged.
	Extra map[string]any

	// Exists records whether the file existed when it was parsed.
	Exists bool
}

// NewConfig returns an empty config for client.
func NewConfig(client ClientID) *Config {
	return &Config{
		Client:   client,
		Servers:  make(map[string]*Definition),
		Projects: make(map[string]map[string]*Definition),
		Extra:    make(map[string]any),
	}
}

// Names returns the global server names in sorted order.
func (c *Config) Names() []string {
	return slices.Sorted(maps.Keys(c.Servers))
}

// Has reports whether name is in the global table.
func (c *Config) Has(name string) bool {
	_, ok := c.Servers[name]
	return ok
}

// Get returns the global definition for name.
func (c *Config) Get(name string) (*Definition, bool) {
	def, ok := c.Servers[name]
	return def, ok
}

// Set stores a copy of def under name, replacing any existing entry.
func (c *Config) Set(name string, def *Definition) {
	if c.Servers == nil {
		c.Servers = make(map[string]*Definition)
	}
	c.Servers[name] = def.Clone()
}

// Delete removes name from the global table and reports whether it was
// present.
func (c *Config) Delete(name string) bool {
	if _, ok := c.Servers[name]; !ok {
		return false
	}
	delete(c.Servers, name)
	return true
}

// ProjectPaths returns the project paths in sorted order.
func (c *Config) ProjectPaths() []string {
	return slices.Sorted(maps.Keys(c.Projects))
}

// DeleteProjectServer removes name from the project table at path.
func (c *Config) DeleteProjectServer(path, name string) bool {
	table, ok := c.Projects[path]
	if !ok {
		return false
	}
	if _, ok := table[name]; !ok {
		return false
	}
	delete(table, name)
	return true
}

// Fingerprint returns a stable encoding of the server and project tables,
// used to tell whether a config changed since it was parsed.
func (c *Config) Fingerprint() string {
	data, err := json.Marshal(struct {
		Servers  map[string]*Definition            `json:"servers"`
		Projects map[string]map[string]*Definition `json:"projects"`
	}{c.Servers, c.Projects})
	if err != nil {
		return ""
	}
	return string(data)
}
