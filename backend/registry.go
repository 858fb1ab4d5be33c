package backend

import "fmt"

// Registry manages a collection of backends for lookup by name.
type Registry struct {
	backends map[string]Backend
}

// NewRegistry creates a new empty backend registry.
func NewRegistry() *Registry {
	return &Registry{
		backends: make(map[string]Backend),
	}
}

// Register adds a backend to the registry.
func (r *Registry) Register(b Backend) {
	r.backends[b.Name()] = b
}

// Get returns a backend by name and whether it was found.
func (r *Registry) Get(name string) (Backend, bool) {
	b, ok := r.backends[name]
	return b, ok
}

// MustGet returns a backend by name or panics if not found.
func (r *Registry) MustGet(name string) Backend {
	b, ok := r.backends[name]
	if !ok {
		panic(fmt.Sprintf("backend not found: %s", name))
	}
	return b
}

// List returns the names of all registered backends.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	return names
}
