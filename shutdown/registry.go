// Package shutdown coordinates interrupt handling and resource cleanup for
// the CLI.
package shutdown

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Func releases one resource. It receives a context that may carry a
// deadline for cleanup.
type Func func(ctx context.Context) error

type entry struct {
	name     string
	fn       Func
	priority int // lower runs earlier
}

// Registry runs cleanup functions in priority order.
//
// Usage:
//
//	registry := NewRegistry()
//	registry.Register("generator", 10, func(ctx context.Context) error {
//	    return gen.Close()
//	})
//	registry.Register("history", 20, func(ctx context.Context) error {
//	    return database.Close()
//	})
//	defer registry.Shutdown(context.Background())
type Registry struct {
	mu      sync.Mutex
	entries []entry
	closed  bool
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds fn. Lower priorities run first; equal priorities run in
// registration order. Registering after Shutdown is a no-op.
func (r *Registry) Register(name string, priority int, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.entries = append(r.entries, entry{name: name, fn: fn, priority: priority})
}

// Shutdown runs every registered function once, even if some fail, and
// returns their errors prefixed with the function name. Later calls return
// nil.
func (r *Registry) Shutdown(ctx context.Context) []error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	sorted := r.sortedLocked()
	r.mu.Unlock()

	var errs []error
	for _, e := range sorted {
		if err := e.fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", e.name, err))
		}
	}
	return errs
}

// Names returns the registered names in execution order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	sorted := r.sortedLocked()
	names := make([]string, len(sorted))
	for i, e := range sorted {
		names[i] = e.name
	}
	return names
}

func (r *Registry) sortedLocked() []entry {
	sorted := make([]entry, len(r.entries))
	copy(sorted, r.entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].priority < sorted[j].priority
	})
	return sorted
}
