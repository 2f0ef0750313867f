package mcp

import (
	"bytes"
	"encoding/json"
	"math"
	"reflect"
	"slices"

	"github.com/thoreinstein/mcpswitch/internal/errors"
)

// Keys of the definition fields mcpswitch knows about. Everything else is
// carried through untouched.
const (
	KeyType    = "type"
	KeyCommand = "command"
	KeyArgs    = "args"
	KeyEnv     = "env"
	KeyURL     = "url"
	KeyHeaders = "headers"
)

// Transport values of the "type" field.
const (
	// TransportStdio launches Command as a local process. It is also the
	// transport of a definition without a type.
	TransportStdio = "stdio"
	// TransportHTTP connects to URL using streamable HTTP.
	TransportHTTP = "http"
	// TransportSSE connects to URL using Server-Sent Events.
	TransportSSE = "sse"
)

// Definition is the opaque description of one MCP server: command, args,
// env, url, headers, type and any client-specific keys. It keeps keys in
// insertion order so JSON files are rewritten the way they were read.
//
// Values are the generic shapes produced by the JSON and TOML decoders:
// map[string]any, []any, string, bool, json.Number, int64, float64.
type Definition struct {
	keys   []string
	values map[string]any
}

// NewDefinition returns an empty definition.
func NewDefinition() *Definition {
	return &Definition{values: make(map[string]any)}
}

// DefinitionFromMap builds a definition from m with keys in lexical order.
// Values are deep-copied.
func DefinitionFromMap(m map[string]any) *Definition {
	d := NewDefinition()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		d.Set(k, cloneValue(m[k]))
	}
	return d
}

// Len returns the number of keys.
func (d *Definition) Len() int {
	if d == nil {
		return 0
	}
	return len(d.keys)
}

// Keys returns the keys in order.
func (d *Definition) Keys() []string {
	if d == nil {
		return nil
	}
	return slices.Clone(d.keys)
}

// Get returns the value stored under key.
func (d *Definition) Get(key string) (any, bool) {
	if d == nil {
		return nil, false
	}
	v, ok := d.values[key]
	return v, ok
}

// Has reports whether key is present.
func (d *Definition) Has(key string) bool {
	_, ok := d.Get(key)
	return ok
}

// Set stores value under key. New keys are appended; existing keys keep
// their position.
func (d *Definition) Set(key string, value any) {
	if d.values == nil {
		d.values = make(map[string]any)
	}
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

// Delete removes key. Deleting a missing key is a no-op.
func (d *Definition) Delete(key string) {
	if _, ok := d.values[key]; !ok {
		return
	}
	delete(d.values, key)
	d.keys = slices.DeleteFunc(d.keys, func(k string) bool { return k == key })
}

// Rename moves the value under from to to, keeping its position. It is a
// no-op when from is missing or to already exists.
func (d *Definition) Rename(from, to string) {
	v, ok := d.values[from]
	if !ok || d.Has(to) {
		return
	}
	delete(d.values, from)
	d.values[to] = v
	i := slices.Index(d.keys, from)
	d.keys[i] = to
}

// Clone returns a deep copy. Cloning nil yields nil.
func (d *Definition) Clone() *Definition {
	if d == nil {
		return nil
	}
	out := &Definition{
		keys:   slices.Clone(d.keys),
		values: make(map[string]any, len(d.values)),
	}
	for k, v := range d.values {
		out.values[k] = cloneValue(v)
	}
	return out
}

// ToMap returns a deep copy of the definition as a plain map.
func (d *Definition) ToMap() map[string]any {
	out := make(map[string]any, d.Len())
	for _, k := range d.Keys() {
		out[k] = cloneValue(d.values[k])
	}
	return out
}

// Equal reports whether d and other hold the same keys and values.
// Key order is ignored and numbers compare by value, so a definition read
// from TOML equals its JSON counterpart.
func (d *Definition) Equal(other *Definition) bool {
	if d.Len() != other.Len() {
		return false
	}
	for _, k := range d.Keys() {
		ov, ok := other.Get(k)
		if !ok {
			return false
		}
		if !EqualValues(d.values[k], ov) {
			return false
		}
	}
	return true
}

// Type returns the declared transport type, or an empty string.
func (d *Definition) Type() string {
	return d.String(KeyType)
}

// Transport returns the effective transport: the declared type, or
// TransportStdio when none is declared.
func (d *Definition) Transport() string {
	if t := d.Type(); t != "" {
		return t
	}
	return TransportStdio
}

// IsRemote reports whether the effective transport is http or sse.
func (d *Definition) IsRemote() bool {
	t := d.Transport()
	return t == TransportHTTP || t == TransportSSE
}

// Command returns the command field, or an empty string.
func (d *Definition) Command() string {
	return d.String(KeyCommand)
}

// URL returns the url field, or an empty string.
func (d *Definition) URL() string {
	return d.String(KeyURL)
}

// String returns the value under key if it is a string.
func (d *Definition) String(key string) string {
	v, _ := d.Get(key)
	s, _ := v.(string)
	return s
}

// Args returns the string elements of the args field.
func (d *Definition) Args() []string {
	v, ok := d.Get(KeyArgs)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case []string:
		return slices.Clone(t)
	case []any:
		out := make([]string, 0, len(t))
		for _, a := range t {
			if s, ok := a.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// StringMap returns the value under key as a string map. Non-string values
// are skipped. The second result is false when key is missing or not a
// mapping.
func (d *Definition) StringMap(key string) (map[string]string, bool) {
	v, ok := d.Get(key)
	if !ok {
		return nil, false
	}
	switch t := v.(type) {
	case map[string]string:
		out := make(map[string]string, len(t))
		for k, s := range t {
			out[k] = s
		}
		return out, true
	case map[string]any:
		out := make(map[string]string, len(t))
		for k, a := range t {
			if s, ok := a.(string); ok {
				out[k] = s
			}
		}
		return out, true
	}
	return nil, false
}

// MarshalJSON encodes the definition as an object in key order.
func (d *Definition) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range d.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := marshalNoEscape(d.values[k])
		if err != nil {
			return nil, errors.Wrapf(err, "encoding %q", k)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object, recording key order. Numbers decode as
// json.Number so they are written back exactly as read.
func (d *Definition) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.Newf("server definition must be an object, got %v", tok)
	}

	d.keys = nil
	d.values = make(map[string]any)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return errors.Newf("unexpected token %v", tok)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return errors.Wrapf(err, "decoding %q", key)
		}
		d.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// EqualValues reports whether two definition values are deeply equal,
// comparing numbers by value regardless of how they were decoded.
func EqualValues(a, b any) bool {
	return reflect.DeepEqual(normalizeNumbers(a), normalizeNumbers(b))
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = e
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = e
		}
		return out
	case *Definition:
		return t.ToMap()
	default:
		return v
	}
}

// normalizeNumbers converts numbers to float64 and typed containers to their
// generic forms so values decoded by different codecs compare equal.
func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalizeNumbers(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeNumbers(e)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = e
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = e
		}
		return out
	case *Definition:
		return normalizeNumbers(t.ToMap())
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case int64:
		return float64(t)
	case int:
		return float64(t)
	case float64:
		if math.IsNaN(t) {
			return "NaN"
		}
		return t
	default:
		return v
	}
}
