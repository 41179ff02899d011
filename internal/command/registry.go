package command

import (
	"fmt"
	"sort"
)

// Registry locates command factories by name for front-ends.
type Registry struct {
	factories map[string]Factory
	metadata  map[string]Metadata
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		metadata:  make(map[string]Metadata),
	}
}

// Register adds a factory keyed by the shellified metadata name.
func (r *Registry) Register(f Factory) error {
	if f == nil {
		return fmt.Errorf("registry: factory cannot be nil")
	}
	md := f().Metadata()
	key := ShellifyName(md.Name)
	if key == "" {
		return fmt.Errorf("registry: command name cannot be empty")
	}
	if _, exists := r.factories[key]; exists {
		return fmt.Errorf("registry: command already registered: %s", key)
	}
	r.factories[key] = f
	r.metadata[key] = md
	return nil
}

// MustRegister is Register that panics on error, for static wiring.
func (r *Registry) MustRegister(f Factory) {
	if err := r.Register(f); err != nil {
		panic(err)
	}
}

// Lookup finds a factory by metadata or shell name.
func (r *Registry) Lookup(name string) (Factory, bool) {
	f, ok := r.factories[ShellifyName(name)]
	return f, ok
}

// Metadata returns the metadata recorded at registration.
func (r *Registry) Metadata(name string) (Metadata, bool) {
	md, ok := r.metadata[ShellifyName(name)]
	return md, ok
}

// Names returns the shell names of all registered commands, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
