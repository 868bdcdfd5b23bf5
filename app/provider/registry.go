package provider

import (
	"fmt"
	"strings"
)

// Registry holds the configured provider adapters, keyed by lower-cased
// name so inbound requests can address them case-insensitively.
type Registry struct {
	providers map[string]ProviderInterface
	names     []string
}

func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]ProviderInterface),
	}
}

func (r *Registry) Register(p ProviderInterface) {
	key := strings.ToLower(p.Name())
	if _, exists := r.providers[key]; !exists {
		r.names = append(r.names, p.Name())
	}
	r.providers[key] = p
}

func (r *Registry) Get(name string) (ProviderInterface, error) {
	p, ok := r.providers[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown provider '%s'", name)
	}
	return p, nil
}

// Names returns the canonical provider names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

func (r *Registry) Count() int {
	return len(r.providers)
}
