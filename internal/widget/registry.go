package widget

import (
	"fmt"
	"sort"
	"sync"

	"github.com/zouxin96/vibeStock/internal/layout"
)

// Factory builds a widget for a layout instance.
type Factory func(inst layout.Instance, deps Deps) (Widget, error)

// Registry maps widget kinds to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds f under kind. A kind can be registered once.
func (r *Registry) Register(kind string, f Factory) error {
	if kind == "" || f == nil {
		return fmt.Errorf("register %q: %w", kind, ErrUnknownKind)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[kind]; ok {
		return fmt.Errorf("register %q: %w", kind, ErrDuplicateKind)
	}
	r.factories[kind] = f
	return nil
}

// Has reports whether kind is registered.
func (r *Registry) Has(kind string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[kind]
	return ok
}

// Build creates the widget described by inst.
func (r *Registry) Build(inst layout.Instance, deps Deps) (Widget, error) {
	r.mu.RLock()
	f, ok := r.factories[inst.Kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("build %q: %w", inst.Kind, ErrUnknownKind)
	}
	return f(inst, deps)
}

// Kinds returns the registered kinds, sorted.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	kinds := make([]string, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	r.mu.RUnlock()
	sort.Strings(kinds)
	return kinds
}
