package builtin

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-fitness-gamification/pkg/notify"
)

const (
	// NoopSinkType drops events; useful to keep notifications wired but silent
	NoopSinkType = "noop"
)

type NoopSink struct {
	config notify.SinkConfig
}

func NewNoopSink(config notify.SinkConfig) *NoopSink {
	return &NoopSink{config: config}
}

func (s *NoopSink) ID() string {
	return s.config.ID
}

func (s *NoopSink) Name() string {
	return "No-op"
}

func (s *NoopSink) Config() notify.SinkConfig {
	return s.config
}

func (s *NoopSink) Publish(ctx context.Context, event notify.Event) error {
	logrus.Debugf("[NO-OP] dropping %s event for user %s", event.Kind(), event.UserID())
	return nil
}
