package component

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps component names to implementations. It is populated at
// startup and validated against the flow table before any message is
// processed, so an unknown identifier fails fast instead of at call time.
type Registry struct {
	mu         sync.RWMutex
	components map[string]Component
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		components: make(map[string]Component),
	}
}

// Register adds a component. Registering the same name twice is a
// programmer error and is rejected.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.components[c.Name()]; exists {
		return fmt.Errorf("component already registered: %s", c.Name())
	}
	r.components[c.Name()] = c
	return nil
}

// MustRegister registers components and panics on conflict. Intended for
// startup wiring where a duplicate is unrecoverable anyway.
func (r *Registry) MustRegister(cs ...Component) {
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			panic(err)
		}
	}
}

// Resolve looks up a component by name.
func (r *Registry) Resolve(name string) (Component, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.components[name]
	if !ok {
		return nil, fmt.Errorf("component not registered: %s", name)
	}
	return c, nil
}

// Names returns the registered component names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.components))
	for name := range r.components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
