package widget

import (
	"fmt"
	"sort"
	"sync"
)

// BaseKind names a base rendering component.
type BaseKind string

const (
	BaseTable   BaseKind = "table"
	BasePie     BaseKind = "pie"
	BaseLine    BaseKind = "line"
	BaseCandle  BaseKind = "candle"
	BaseHeatmap BaseKind = "heatmap"
	BaseStatus  BaseKind = "status"
)

// Library holds the base components concrete widgets are assembled from.
// Entries are constructors; their concrete types belong to the rendering
// package that provides them.
type Library struct {
	mu    sync.RWMutex
	bases map[BaseKind]any
}

func NewLibrary() *Library {
	return &Library{bases: make(map[BaseKind]any)}
}

// Provide registers constructor for kind, replacing any previous entry.
func (l *Library) Provide(kind BaseKind, constructor any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bases[kind] = constructor
}

func (l *Library) lookup(kind BaseKind) (any, bool) {
	if l == nil {
		return nil, false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	v, ok := l.bases[kind]
	return v, ok
}

// Require returns ErrMissingBase naming the first absent kind.
func (l *Library) Require(kinds ...BaseKind) error {
	for _, k := range kinds {
		if _, ok := l.lookup(k); !ok {
			return fmt.Errorf("%s: %w", k, ErrMissingBase)
		}
	}
	return nil
}

// Kinds lists the provided base kinds, sorted.
func (l *Library) Kinds() []BaseKind {
	if l == nil {
		return nil
	}
	l.mu.RLock()
	out := make([]BaseKind, 0, len(l.bases))
	for k := range l.bases {
		out = append(out, k)
	}
	l.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Lookup returns the constructor for kind as T.
func Lookup[T any](l *Library, kind BaseKind) (T, error) {
	var zero T
	v, ok := l.lookup(kind)
	if !ok {
		return zero, fmt.Errorf("%s: %w", kind, ErrMissingBase)
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%s has type %T: %w", kind, v, ErrMissingBase)
	}
	return t, nil
}
