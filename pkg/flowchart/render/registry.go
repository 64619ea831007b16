package render

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownFormat is returned when no encoder is registered for a format.
var ErrUnknownFormat = errors.New("unknown output format")

// Factory creates an Encoder.
type Factory func() (Encoder, error)

// Registry maps output formats to encoder factories.
// It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry returns a registry with the built-in encoders:
// png, svg and jpg through graphviz, and mmd through Mermaid.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for format := range graphvizFormats {
		r.Register(format, func() (Encoder, error) {
			return NewGraphvizEncoder(format)
		})
	}
	r.Register("mmd", func() (Encoder, error) {
		return NewMermaidEncoder(), nil
	})
	return r
}

// Register adds or replaces the factory for format.
func (r *Registry) Register(format string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[format] = f
}

// Has reports whether format is registered.
func (r *Registry) Has(format string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[format]
	return ok
}

// Encoder creates an encoder for format.
func (r *Registry) Encoder(format string) (Encoder, error) {
	r.mu.RLock()
	f, ok := r.factories[format]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return f()
}

// Formats returns the registered formats in sorted order.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	formats := make([]string, 0, len(r.factories))
	for f := range r.factories {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}
