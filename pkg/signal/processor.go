package signal

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-fitness-gamification/pkg/state"
)

// Processor converts raw activity events into signals with enriched context.
type Processor struct {
	loader   PlayerContextLoader
	registry *EventProcessorRegistry
}

// NewProcessor creates a new signal processor with an empty event processor registry.
func NewProcessor(loader PlayerContextLoader) *Processor {
	return &Processor{
		loader:   loader,
		registry: NewEventProcessorRegistry(),
	}
}

// GetEventProcessorRegistry returns the registry for this processor.
// This allows registering custom event processors.
func (p *Processor) GetEventProcessorRegistry() *EventProcessorRegistry {
	return p.registry
}

// GetContextLoader returns the loader used to enrich signals.
func (p *Processor) GetContextLoader() PlayerContextLoader {
	return p.loader
}

// Process routes a raw event to the processor registered for its type.
// An unregistered type is a validation failure.
func (p *Processor) Process(ctx context.Context, eventType string, event interface{}) (Signal, error) {
	if event == nil {
		return nil, fmt.Errorf("%w: %s event is nil", state.ErrInvalidEntry, eventType)
	}

	processor := p.registry.Get(eventType)
	if processor == nil {
		return nil, fmt.Errorf("%w: no processor for event type '%s'", state.ErrInvalidEntry, eventType)
	}

	sig, err := processor.Process(ctx, event, p.loader)
	if err != nil {
		return nil, err
	}

	logrus.Debugf("processed %s event for user %s into %s signal with %d awards",
		eventType, sig.UserID(), sig.Type(), len(sig.Awards()))
	return sig, nil
}
