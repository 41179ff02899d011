// Package convert translates between raw text and typed input values.
package convert

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ValueType is the semantic type tag of an input value.
type ValueType string

const (
	String   ValueType = "string"
	Bool     ValueType = "bool"
	Int      ValueType = "int"
	Float    ValueType = "float"
	Duration ValueType = "duration"
	Time     ValueType = "time"
	URL      ValueType = "url"
)

// ErrNoConverter indicates that no converter is registered for a value type.
var ErrNoConverter = errors.New("no converter registered")

// ConversionError reports text that is malformed for the target type.
type ConversionError struct {
	Type ValueType
	Raw  string
	Err  error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert %q to %s: %v", e.Raw, e.Type, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// Converter converts one value type to and from text.
type Converter interface {
	// FromText parses raw text into the typed value.
	FromText(raw string) (any, error)
	// ToText renders a typed value as text. It fails for values of the wrong type.
	ToText(value any) (string, error)
}

// Service is the conversion capability consumed by inputs and front-ends.
type Service interface {
	Convert(vt ValueType, raw string) (any, error)
	Format(vt ValueType, value any) (string, error)
	Coerce(vt ValueType, value any) (any, error)
	Has(vt ValueType) bool
}

// Registry is a Service backed by a set of registered converters.
type Registry struct {
	mu         sync.RWMutex
	converters map[ValueType]Converter
}

var _ Service = (*Registry)(nil)

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the shared registry holding the built-in converters.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a registry preloaded with the built-in converters.
func NewRegistry() *Registry {
	r := &Registry{converters: make(map[ValueType]Converter)}
	registerBuiltins(r)
	return r
}

// Register adds or replaces the converter for vt.
func (r *Registry) Register(vt ValueType, c Converter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.converters[vt] = c
}

// Has reports whether a converter is registered for vt.
func (r *Registry) Has(vt ValueType) bool {
	_, ok := r.lookup(vt)
	return ok
}

// Types returns the registered value types in sorted order.
func (r *Registry) Types() []ValueType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]ValueType, 0, len(r.converters))
	for vt := range r.converters {
		types = append(types, vt)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

func (r *Registry) lookup(vt ValueType) (Converter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.converters[vt]
	return c, ok
}

// Convert parses raw text as vt.
func (r *Registry) Convert(vt ValueType, raw string) (any, error) {
	c, ok := r.lookup(vt)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoConverter, vt)
	}
	v, err := c.FromText(raw)
	if err != nil {
		return nil, &ConversionError{Type: vt, Raw: raw, Err: err}
	}
	return v, nil
}

// Format renders value as text for vt.
func (r *Registry) Format(vt ValueType, value any) (string, error) {
	c, ok := r.lookup(vt)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoConverter, vt)
	}
	s, err := c.ToText(value)
	if err != nil {
		return "", &ConversionError{Type: vt, Raw: fmt.Sprint(value), Err: err}
	}
	return s, nil
}

// Coerce normalizes value into the canonical Go type for vt.
// Strings are parsed; any other value goes through a text round trip.
func (r *Registry) Coerce(vt ValueType, value any) (any, error) {
	if raw, ok := value.(string); ok {
		return r.Convert(vt, raw)
	}
	text, err := r.Format(vt, value)
	if err != nil {
		return nil, err
	}
	return r.Convert(vt, text)
}
