package advice

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gyaneshwarpardhi/depgraph/internal/impact"
)

// Registry maps suggestion types to their advisors.
// It is safe for concurrent reads; Register should only be called at startup.
type Registry struct {
	mu       sync.RWMutex
	advisors map[string]impact.Advisor
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{advisors: make(map[string]impact.Advisor)}
}

// Default returns a registry holding every built-in advisor.
func Default() *Registry {
	r := NewRegistry()
	r.Register(Parallelize{})
	r.Register(Split{})
	r.Register(Reassign{})
	r.Register(Reschedule{})
	return r
}

// Register adds an advisor. Panics on duplicate type to surface misconfiguration early.
func (r *Registry) Register(a impact.Advisor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.advisors[a.Type()]; exists {
		panic(fmt.Sprintf("advice registry: duplicate type %q", a.Type()))
	}
	r.advisors[a.Type()] = a
}

// Get returns the advisor for the given suggestion type.
func (r *Registry) Get(kind string) (impact.Advisor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.advisors[kind]
	if !ok {
		return nil, fmt.Errorf("no advisor registered for suggestion type %q", kind)
	}
	return a, nil
}

// Types returns all registered suggestion types, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.advisors))
	for k := range r.advisors {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
