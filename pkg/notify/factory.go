package notify

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// SinkFactory is a function that creates a sink from a configuration.
type SinkFactory func(config SinkConfig) (Sink, error)

// factories stores registered sink factories by type
var factories = make(map[string]SinkFactory)

// RegisterSinkType registers a factory function for a sink type.
// This allows external packages to register their sink types without creating import cycles.
func RegisterSinkType(sinkType string, factory SinkFactory) {
	factories[sinkType] = factory
	logrus.Debugf("registered sink type: %s", sinkType)
}

// IsRegisteredType reports whether a factory exists for sinkType.
func IsRegisteredType(sinkType string) bool {
	_, ok := factories[sinkType]
	return ok
}

// CreateSink creates a sink instance based on the configuration.
// Disabled sinks yield nil without error.
func CreateSink(config SinkConfig) (Sink, error) {
	if !config.Enabled {
		logrus.Infof("skipping disabled sink: %s", config.ID)
		return nil, nil
	}

	factory, exists := factories[config.Type]
	if !exists {
		return nil, fmt.Errorf("%w: unknown sink type %s", ErrInvalidConfig, config.Type)
	}

	logrus.Infof("creating sink: id=%s, type=%s", config.ID, config.Type)
	return factory(config)
}

// RegisterSinks creates the configured sinks and adds them to registry.
func RegisterSinks(registry *Registry, configs []SinkConfig) error {
	for _, config := range configs {
		sink, err := CreateSink(config)
		if err != nil {
			return fmt.Errorf("failed to create sink %s: %w", config.ID, err)
		}
		if sink == nil {
			continue
		}
		if err := registry.Register(sink); err != nil {
			return fmt.Errorf("failed to register sink %s: %w", sink.ID(), err)
		}
	}

	logrus.Infof("registered %d sinks", registry.Count())
	return nil
}
