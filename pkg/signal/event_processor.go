package signal

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// EventProcessor processes raw activity events into signals.
// Implementations handle one event type each (session, purchase, referral, review).
type EventProcessor interface {
	// EventType returns the type of event this processor handles.
	// Examples: "session_completed", "purchase_completed"
	EventType() string

	// Process validates the raw event and converts it into a signal with player context.
	Process(ctx context.Context, event interface{}, contextLoader PlayerContextLoader) (Signal, error)
}

// PlayerContextLoader provides player context for event processing.
// This allows event processors to enrich signals without direct store access.
type PlayerContextLoader interface {
	Load(ctx context.Context, userID string) (*PlayerContext, error)
}

// EventProcessorRegistry manages registered event processors.
type EventProcessorRegistry struct {
	mu         sync.RWMutex
	processors map[string]EventProcessor
}

// NewEventProcessorRegistry creates a new event processor registry.
func NewEventProcessorRegistry() *EventProcessorRegistry {
	return &EventProcessorRegistry{
		processors: make(map[string]EventProcessor),
	}
}

// Register adds an event processor to the registry, replacing one with the same event type.
func (r *EventProcessorRegistry) Register(processor EventProcessor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processors[processor.EventType()] = processor
}

// Get retrieves an event processor by event type.
func (r *EventProcessorRegistry) Get(eventType string) EventProcessor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.processors[eventType]
}

// EventTypes returns the registered event types in sorted order.
func (r *EventProcessorRegistry) EventTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.processors))
	for t := range r.processors {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Count returns the number of registered event processors.
func (r *EventProcessorRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.processors)
}

// Unregister removes an event processor from the registry.
func (r *EventProcessorRegistry) Unregister(eventType string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.processors[eventType]; !exists {
		return fmt.Errorf("event processor for type '%s' not found", eventType)
	}

	delete(r.processors, eventType)
	return nil
}
