package runtime

import (
	"fmt"
	"slices"
	"sync"

	"github.com/goldsam/cert-generator/internal/ports"
)

// Factory opens a container runtime.
type Factory func() (ports.ContainerRuntime, error)

// Registry resolves container runtimes by name.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a runtime factory under name.
func (r *Registry) Register(name string, factory Factory) error {
	if name == "" {
		return fmt.Errorf("runtime factory missing name")
	}
	if factory == nil {
		return fmt.Errorf("runtime factory %q cannot be nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("duplicate runtime factory %q", name)
	}
	r.factories[name] = factory
	return nil
}

// Open constructs the runtime registered under name.
func (r *Registry) Open(name string) (ports.ContainerRuntime, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no container runtime registered as %q (known: %v)", name, r.Names())
	}

	rt, err := factory()
	if err != nil {
		return nil, fmt.Errorf("open %s runtime: %w", name, err)
	}
	return rt, nil
}

// Names lists the registered runtimes in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
