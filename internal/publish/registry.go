package publish

import (
	"fmt"

	"CryptoNewsRelay/internal/ports"
)

// Registry keeps a mapping from destination names to their implementations,
// preserving registration order for deterministic reporting.
type Registry struct {
	destinations map[string]ports.Destination
	order        []string
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{destinations: map[string]ports.Destination{}}
}

// Register adds or replaces a destination implementation.
func (r *Registry) Register(destination ports.Destination) {
	if r.destinations == nil {
		r.destinations = map[string]ports.Destination{}
	}
	name := destination.Name()
	if _, ok := r.destinations[name]; !ok {
		r.order = append(r.order, name)
	}
	r.destinations[name] = destination
}

// Resolve returns a destination by name or an error if it is absent.
func (r *Registry) Resolve(name string) (ports.Destination, error) {
	if destination, ok := r.destinations[name]; ok {
		return destination, nil
	}
	return nil, fmt.Errorf("destination %s is not registered", name)
}

// All returns every registered destination in registration order.
func (r *Registry) All() []ports.Destination {
	all := make([]ports.Destination, 0, len(r.order))
	for _, name := range r.order {
		all = append(all, r.destinations[name])
	}
	return all
}
