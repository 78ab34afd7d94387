package notify

import (
	"fmt"
	"sort"
	"sync"
)

// Registry manages available sinks.
// It provides thread-safe registration and lookup of sinks.
type Registry struct {
	sinks map[string]Sink
	mu    sync.RWMutex
}

// NewRegistry creates a new empty sink registry.
func NewRegistry() *Registry {
	return &Registry{
		sinks: make(map[string]Sink),
	}
}

// Register adds a sink to the registry.
// Returns an error if a sink with the same ID already exists.
func (r *Registry) Register(sink Sink) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sinks[sink.ID()]; exists {
		return fmt.Errorf("sink %s already registered", sink.ID())
	}

	r.sinks[sink.ID()] = sink
	return nil
}

// Unregister removes a sink from the registry.
func (r *Registry) Unregister(sinkID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sinks[sinkID]; !exists {
		return fmt.Errorf("%w: %s", ErrSinkNotFound, sinkID)
	}

	delete(r.sinks, sinkID)
	return nil
}

// Get returns a sink by ID, nil if it doesn't exist.
func (r *Registry) Get(sinkID string) Sink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sinks[sinkID]
}

// GetAllEnabled returns the enabled sinks ordered by ID.
func (r *Registry) GetAllEnabled() []Sink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sinks []Sink
	for _, sink := range r.sinks {
		if sink.Config().Enabled {
			sinks = append(sinks, sink)
		}
	}
	sort.Slice(sinks, func(i, j int) bool { return sinks[i].ID() < sinks[j].ID() })

	return sinks
}

// Count returns the number of registered sinks.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sinks)
}
