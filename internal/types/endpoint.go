package types

import (
	"fmt"
	"sync"
)

// Descriptor is the untyped view of an Endpoint used by metadata clients.
type Descriptor interface {
	Path() string
	DecodeAny(data []byte) (any, error)
}

// Endpoint identifies a metadata resource by path together with the
// function decoding its body. Two endpoints are the same resource when
// their paths are equal; the decoder does not take part in identity.
type Endpoint[T any] struct {
	path   string
	decode func(data []byte) (T, error)
}

func (e *Endpoint[T]) Path() string {
	return e.path
}

func (e *Endpoint[T]) Decode(data []byte) (T, error) {
	return e.decode(data)
}

func (e *Endpoint[T]) DecodeAny(data []byte) (any, error) {
	return e.decode(data)
}

func (e *Endpoint[T]) String() string {
	return "endpoint " + e.path
}

// EndpointRegistry hands out one Endpoint per path for as long as the
// registry lives. Entries are only ever added.
type EndpointRegistry struct {
	mu        sync.Mutex
	endpoints map[string]Descriptor
}

func NewEndpointRegistry() *EndpointRegistry {
	return &EndpointRegistry{endpoints: map[string]Descriptor{}}
}

// Register returns the endpoint already known for path, or stores a new one
// built from decode. Registering a path under a different result type
// panics since that is a programming error.
func Register[T any](registry *EndpointRegistry, path string, decode func(data []byte) (T, error)) *Endpoint[T] {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if existing, ok := registry.endpoints[path]; ok {
		typed, ok := existing.(*Endpoint[T])
		if !ok {
			panic(fmt.Sprintf("endpoint %s registered with a different result type", path))
		}
		return typed
	}
	endpoint := &Endpoint[T]{path: path, decode: decode}
	registry.endpoints[path] = endpoint
	return endpoint
}

// Len reports how many distinct endpoints have been registered.
func (r *EndpointRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.endpoints)
}

// MetadataSet holds the decoded results of one resolution, keyed by path.
type MetadataSet struct {
	BaseURL string
	results map[string]any
}

func NewMetadataSet(baseURL string, results map[string]any) MetadataSet {
	copied := make(map[string]any, len(results))
	for path, value := range results {
		copied[path] = value
	}
	return MetadataSet{BaseURL: baseURL, results: copied}
}

func (s MetadataSet) Len() int {
	return len(s.results)
}

// Lookup returns the decoded result for endpoint.
func Lookup[T any](set MetadataSet, endpoint *Endpoint[T]) (T, bool) {
	var zero T
	if endpoint == nil {
		return zero, false
	}
	raw, ok := set.results[endpoint.Path()]
	if !ok {
		return zero, false
	}
	typed, ok := raw.(T)
	return typed, ok
}
