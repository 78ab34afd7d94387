package notify

import (
	"context"
)

// Sink delivers progress events to an external channel.
// Sinks are registered in a Registry and driven by the Dispatcher.
type Sink interface {
	// ID returns unique sink identifier.
	ID() string

	// Name returns human-readable sink name.
	Name() string

	// Publish delivers one event.
	// A failure is logged by the dispatcher and never undoes the committed change.
	Publish(ctx context.Context, event Event) error

	// Config returns the sink's configuration.
	Config() SinkConfig
}

// Publisher is what the progress tracker depends on.
type Publisher interface {
	Publish(ctx context.Context, events ...Event)
}
