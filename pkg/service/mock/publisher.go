package mock

import (
	"context"
	"sync"

	"github.com/AccelByte/extend-fitness-gamification/pkg/notify"
)

var _ notify.Publisher = (*Publisher)(nil)

// Publisher is a mock implementation of notify.Publisher that records every event
type Publisher struct {
	// PublishFunc is called when Publish is invoked
	PublishFunc func(ctx context.Context, events ...notify.Event)

	mu     sync.Mutex
	events []notify.Event
}

// NewPublisher creates a new recording publisher
func NewPublisher() *Publisher {
	return &Publisher{}
}

// Publish records the events
func (m *Publisher) Publish(ctx context.Context, events ...notify.Event) {
	m.mu.Lock()
	m.events = append(m.events, events...)
	m.mu.Unlock()

	if m.PublishFunc != nil {
		m.PublishFunc(ctx, events...)
	}
}

// Events returns a copy of the recorded events
func (m *Publisher) Events() []notify.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notify.Event(nil), m.events...)
}

// EventsOfKind returns the recorded events of one kind
func (m *Publisher) EventsOfKind(kind string) []notify.Event {
	var out []notify.Event
	for _, e := range m.Events() {
		if e.Kind() == kind {
			out = append(out, e)
		}
	}
	return out
}
