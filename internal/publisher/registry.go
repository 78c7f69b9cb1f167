package publisher

import "fmt"

// Registry keeps a mapping from platform names to their adapters. Adapters
// are registered at startup, so a missing platform is a configuration
// mistake, not a runtime surprise.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{adapters: map[string]Adapter{}}
}

// Register adds or replaces an adapter implementation.
func (r *Registry) Register(adapter Adapter) {
	if r.adapters == nil {
		r.adapters = map[string]Adapter{}
	}
	r.adapters[adapter.PlatformName()] = adapter
}

// Resolve returns an adapter by platform name or an error if it is absent.
func (r *Registry) Resolve(name string) (Adapter, error) {
	if adapter, ok := r.adapters[name]; ok {
		return adapter, nil
	}
	return nil, fmt.Errorf("platform %s has no registered adapter", name)
}
