package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"

	"github.com/AccelByte/extend-fitness-gamification/pkg/metrics"
)

// Dispatcher fans every event out to the enabled sinks concurrently.
// Delivery is best effort: errors and panics are logged, never returned.
type Dispatcher struct {
	registry *Registry
}

// NewDispatcher creates a dispatcher over registry.
func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// Publish delivers events to every subscribed sink and waits for all deliveries.
func (d *Dispatcher) Publish(ctx context.Context, events ...Event) {
	sinks := d.registry.GetAllEnabled()
	if len(sinks) == 0 || len(events) == 0 {
		return
	}

	var wg conc.WaitGroup
	for _, sink := range sinks {
		wg.Go(func() {
			for _, event := range events {
				if !sink.Config().Accepts(event.Kind()) {
					continue
				}
				d.deliver(ctx, sink, event)
			}
		})
	}

	if recovered := wg.WaitAndRecover(); recovered != nil {
		logrus.Errorf("notification sink panicked: %v", recovered.Value)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, sink Sink, event Event) {
	cfg := sink.Config()
	attempts := 0

	err := backoff.Retry(func() error {
		attempts++
		return sink.Publish(ctx, event)
	}, retryPolicy(ctx, cfg.Retry))

	if err != nil {
		metrics.NotificationsPublished.WithLabelValues(sink.ID(), "failed").Inc()
		logrus.Errorf("sink %s failed to publish %s for user %s after %d attempts: %v",
			sink.ID(), event.Kind(), event.UserID(), attempts, fmt.Errorf("%w: %v", ErrMaxRetriesExceeded, err))
		return
	}

	metrics.NotificationsPublished.WithLabelValues(sink.ID(), "ok").Inc()
}

func retryPolicy(ctx context.Context, cfg *RetryConfig) backoff.BackOff {
	if cfg == nil || cfg.MaxAttempts <= 1 {
		return backoff.WithContext(&backoff.StopBackOff{}, ctx)
	}

	delay := cfg.Delay
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}

	var b backoff.BackOff
	if cfg.Backoff == "exponential" {
		exp := backoff.NewExponentialBackOff()
		exp.InitialInterval = delay
		exp.MaxElapsedTime = 0
		b = exp
	} else {
		b = backoff.NewConstantBackOff(delay)
	}

	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(cfg.MaxAttempts-1)), ctx)
}
