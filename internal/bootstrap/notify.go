// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bootstrap

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-fitness-gamification/pkg/notify"
	notifyBuiltin "github.com/AccelByte/extend-fitness-gamification/pkg/notify/builtin"
	"github.com/AccelByte/extend-fitness-gamification/pkg/pipeline"
)

// InitDispatcher creates the notification dispatcher with the sinks from the gamification config.
//
// ============================================================
// DEVELOPER: Register custom sink types here.
// ============================================================
// Sinks receive achievement, milestone and tier notifications
// after the state change committed. A failing sink never fails
// the operation that produced the event.
//
// The builtin sinks:
// - log → writes the event to the application log
// - redis_stream → XADDs the event to a Redis stream
// - noop → drops the event
// ============================================================
func InitDispatcher(config *pipeline.Config, deps *notifyBuiltin.Dependencies) (*notify.Dispatcher, *notify.Registry, error) {
	notifyBuiltin.RegisterSinks(deps)

	sinkConfigs := convertSinkConfigs(config.Sinks)

	registry := notify.NewRegistry()
	if err := notify.RegisterSinks(registry, sinkConfigs); err != nil {
		return nil, nil, fmt.Errorf("failed to register sinks: %w", err)
	}

	logrus.Infof("registered %d notification sinks", registry.Count())

	return notify.NewDispatcher(registry), registry, nil
}

func convertSinkConfigs(configs []pipeline.SinkConfig) []notify.SinkConfig {
	result := make([]notify.SinkConfig, len(configs))
	for i, sc := range configs {
		result[i] = notify.SinkConfig{
			ID:         sc.ID,
			Type:       sc.Type,
			Enabled:    sc.Enabled,
			Events:     sc.Events,
			Parameters: sc.Parameters,
		}
		if sc.Retry != nil {
			result[i].Retry = &notify.RetryConfig{
				MaxAttempts: sc.Retry.MaxAttempts,
				Delay:       sc.Retry.Delay,
				Backoff:     sc.Retry.Backoff,
			}
		}
	}
	return result
}
