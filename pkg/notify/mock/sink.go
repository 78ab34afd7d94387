package mock

import (
	"context"
	"sync"

	"github.com/AccelByte/extend-fitness-gamification/pkg/notify"
)

// Sink is a recording notify.Sink for testing
type Sink struct {
	// Function field for custom behavior
	PublishFunc func(ctx context.Context, event notify.Event) error

	// Simple fields for common scenarios
	SinkConfig notify.SinkConfig
	Error      error

	mu     sync.Mutex
	events []notify.Event
	calls  int
}

// NewSink creates an enabled recording sink
func NewSink(id string) *Sink {
	return &Sink{SinkConfig: notify.SinkConfig{ID: id, Type: "mock", Enabled: true}}
}

func (m *Sink) ID() string                { return m.SinkConfig.ID }
func (m *Sink) Name() string              { return "Mock" }
func (m *Sink) Config() notify.SinkConfig { return m.SinkConfig }

// Publish records the event, or fails with Error
func (m *Sink) Publish(ctx context.Context, event notify.Event) error {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, event)
	}
	if m.Error != nil {
		return m.Error
	}

	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()
	return nil
}

// Events returns the recorded events
func (m *Sink) Events() []notify.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notify.Event(nil), m.events...)
}

// Kinds returns the kinds of the recorded events in order
func (m *Sink) Kinds() []string {
	var kinds []string
	for _, e := range m.Events() {
		kinds = append(kinds, e.Kind())
	}
	return kinds
}

// Calls returns how many times Publish ran
func (m *Sink) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
