package platform

import (
	"bytes"
	"encoding/json"

	"github.com/thoreinstein/mcpswitch/internal/errors"
	"github.com/thoreinstein/mcpswitch/internal/mcp"
)

// JSONDocument is a JSON object decoded one level deep. Values the
// adapters do not own stay raw and are re-encoded verbatim.
type JSONDocument map[string]json.RawMessage

// DecodeJSONDocument decodes a top-level JSON object. An empty or
// whitespace-only input is an empty document.
func DecodeJSONDocument(data []byte) (JSONDocument, error) {
	doc := make(JSONDocument)
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.New("top-level value must be an object")
	}
	return doc, nil
}

// DecodeServerTable decodes a name to definition table. A missing or null
// table is empty. Entries whose value is null are dropped.
func DecodeServerTable(raw json.RawMessage) (map[string]*mcp.Definition, error) {
	servers := make(map[string]*mcp.Definition)
	if len(raw) == 0 {
		return servers, nil
	}
	var decoded map[string]*mcp.Definition
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}
	for name, def := range decoded {
		if def != nil {
			servers[name] = def
		}
	}
	return servers, nil
}

// Extra returns the document entries other than owned, as values that can
// be stored in mcp.Config.Extra.
func (d JSONDocument) Extra(owned ...string) map[string]any {
	out := make(map[string]any, len(d))
	for k, v := range d {
		out[k] = v
	}
	for _, k := range owned {
		delete(out, k)
	}
	return out
}

// JSONDocumentFromExtra rebuilds a document from mcp.Config.Extra. Values
// that are not raw JSON are encoded.
func JSONDocumentFromExtra(extra map[string]any) (JSONDocument, error) {
	doc := make(JSONDocument, len(extra)+1)
	for k, v := range extra {
		if raw, ok := v.(json.RawMessage); ok {
			doc[k] = raw
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, errors.Wrapf(err, "encoding %q", k)
		}
		doc[k] = raw
	}
	return doc, nil
}

// Set encodes v under key.
func (d JSONDocument) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encoding %q", key)
	}
	d[key] = raw
	return nil
}
