package platform

import (
	"sync"

	"github.com/thoreinstein/mcpswitch/internal/errors"
	"github.com/thoreinstein/mcpswitch/internal/mcp"
)

// Sentinel errors for registry operations.
var (
	// ErrAdapterAlreadyRegistered is returned when attempting to register
	// an adapter for a client that already has one.
	ErrAdapterAlreadyRegistered = errors.New("adapter already registered")

	// ErrInvalidAdapter is returned when attempting to register a nil
	// adapter or one for an unsupported client.
	ErrInvalidAdapter = errors.New("invalid adapter")

	// ErrAdapterNotFound is returned when no adapter serves a client.
	ErrAdapterNotFound = errors.New("no adapter for client")
)

// Registry maps clients to their adapters.
// It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	adapters map[mcp.ClientID]Adapter
}

// NewRegistry creates a registry holding adapters.
// It panics if an adapter is invalid or registered twice.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{
		adapters: make(map[mcp.ClientID]Adapter),
	}
	for _, a := range adapters {
		if err := r.Register(a); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds an adapter to the registry.
// Returns an error if:
//   - The adapter is nil or serves an unsupported client
//   - An adapter for the same client is already registered
func (r *Registry) Register(a Adapter) error {
	if a == nil {
		return ErrInvalidAdapter
	}
	if _, ok := mcp.ParseClientID(string(a.Client())); !ok {
		return errors.Wrapf(ErrInvalidAdapter, "client %q", a.Client())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.adapters[a.Client()]; exists {
		return errors.Wrapf(ErrAdapterAlreadyRegistered, "client %q", a.Client())
	}

	r.adapters[a.Client()] = a
	return nil
}

// Get returns the adapter serving client.
func (r *Registry) Get(client mcp.ClientID) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.adapters[client]
	if !ok {
		return nil, errors.Wrapf(ErrAdapterNotFound, "client %q", client)
	}
	return a, nil
}

// All returns the registered adapters in canonical client order.
func (r *Registry) All() []Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]Adapter, 0, len(r.adapters))
	for _, c := range mcp.Clients() {
		if a, ok := r.adapters[c]; ok {
			results = append(results, a)
		}
	}
	return results
}

// Clients returns the registered clients in canonical order.
func (r *Registry) Clients() []mcp.ClientID {
	all := r.All()
	out := make([]mcp.ClientID, len(all))
	for i, a := range all {
		out[i] = a.Client()
	}
	return out
}
