package mcp

import (
	"encoding/json"
	"slices"
	"strings"
)

// ClientID identifies one of the supported AI CLIs.
type ClientID string

// Supported clients.
const (
	Claude ClientID = "claude"
	Gemini ClientID = "gemini"
	Codex  ClientID = "codex"
)

// Clients returns every supported client in canonical order.
// Canonical order decides which live copy of a definition is authoritative
// when several clients hold one.
func Clients() []ClientID {
	return []ClientID{Claude, Gemini, Codex}
}

// ParseClientID converts s to a ClientID. Matching ignores case and
// surrounding whitespace.
func ParseClientID(s string) (ClientID, bool) {
	id := ClientID(strings.ToLower(strings.TrimSpace(s)))
	for _, c := range Clients() {
		if c == id {
			return id, true
		}
	}
	return "", false
}

// String implements fmt.Stringer.
func (c ClientID) String() string {
	return string(c)
}

// ClientSet is a set of clients. The zero value (nil) is a valid empty set
// for reads; use NewClientSet before calling Add.
type ClientSet map[ClientID]struct{}

// NewClientSet returns a set holding ids.
func NewClientSet(ids ...ClientID) ClientSet {
	s := make(ClientSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// AllClients returns a set holding every supported client.
func AllClients() ClientSet {
	return NewClientSet(Clients()...)
}

// Has reports whether id is in the set.
func (s ClientSet) Has(id ClientID) bool {
	_, ok := s[id]
	return ok
}

// Add inserts ids into the set.
func (s ClientSet) Add(ids ...ClientID) {
	for _, id := range ids {
		s[id] = struct{}{}
	}
}

// Remove deletes ids from the set.
func (s ClientSet) Remove(ids ...ClientID) {
	for _, id := range ids {
		delete(s, id)
	}
}

// Len returns the number of clients in the set.
func (s ClientSet) Len() int {
	return len(s)
}

// Clone returns an independent copy. Cloning nil yields nil.
func (s ClientSet) Clone() ClientSet {
	if s == nil {
		return nil
	}
	out := make(ClientSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Union returns a new set holding the clients of s and other.
func (s ClientSet) Union(other ClientSet) ClientSet {
	out := NewClientSet()
	for id := range s {
		out[id] = struct{}{}
	}
	for id := range other {
		out[id] = struct{}{}
	}
	return out
}

// Minus returns a new set holding the clients of s that are not in other.
func (s ClientSet) Minus(other ClientSet) ClientSet {
	out := NewClientSet()
	for id := range s {
		if !other.Has(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// Intersects reports whether s and other share at least one client.
func (s ClientSet) Intersects(other ClientSet) bool {
	for id := range s {
		if other.Has(id) {
			return true
		}
	}
	return false
}

// Equal reports whether s and other hold the same clients.
func (s ClientSet) Equal(other ClientSet) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if !other.Has(id) {
			return false
		}
	}
	return true
}

// Sorted returns the members in canonical client order. Members that are
// not supported clients are appended in lexical order.
func (s ClientSet) Sorted() []ClientID {
	out := make([]ClientID, 0, len(s))
	for _, id := range Clients() {
		if s.Has(id) {
			out = append(out, id)
		}
	}
	if len(out) == len(s) {
		return out
	}
	var extra []string
	for id := range s {
		if !slices.Contains(Clients(), id) {
			extra = append(extra, string(id))
		}
	}
	slices.Sort(extra)
	for _, id := range extra {
		out = append(out, ClientID(id))
	}
	return out
}

// Strings returns Sorted as plain strings.
func (s ClientSet) Strings() []string {
	ids := s.Sorted()
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

// MarshalJSON encodes the set as a list in canonical order.
func (s ClientSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Strings())
}
