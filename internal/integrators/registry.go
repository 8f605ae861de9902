package integrators

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/deqscale/internal/dynamo"
)

type Registry struct {
	integrators map[string]func() dynamo.Integrator
	names       map[string]string
}

// NewRegistry returns a registry holding RK45, RK4, Heun and Euler.
func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func() dynamo.Integrator),
		names:       make(map[string]string),
	}

	r.Register("RK45", func() dynamo.Integrator { return NewRK45() })
	r.Register("RK4", func() dynamo.Integrator { return NewRK4() })
	r.Register("Heun", func() dynamo.Integrator { return NewHeun() })
	r.Register("Euler", func() dynamo.Integrator { return NewEuler() })

	return r
}

// Register adds or replaces a method. Lookups ignore case.
func (r *Registry) Register(name string, fn func() dynamo.Integrator) {
	key := strings.ToLower(name)
	r.integrators[key] = fn
	r.names[key] = name
}

// Get returns a fresh integrator and the canonical spelling of its name.
func (r *Registry) Get(name string) (dynamo.Integrator, string, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	fn, ok := r.integrators[key]
	if !ok {
		return nil, "", fmt.Errorf("%w: %q (known: %s)", dynamo.ErrUnknownMethod, name, strings.Join(r.List(), ", "))
	}
	return fn(), r.names[key], nil
}

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.names))
	for _, name := range r.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
