package builtin

import (
	"github.com/go-redis/redis/v8"

	"github.com/AccelByte/extend-fitness-gamification/pkg/notify"
)

// Dependencies holds dependencies needed by built-in sinks.
type Dependencies struct {
	RedisClient *redis.Client
}

// RegisterSinks registers built-in sink factories with dependencies.
func RegisterSinks(deps *Dependencies) {
	notify.RegisterSinkType(LogSinkType, func(config notify.SinkConfig) (notify.Sink, error) {
		return NewLogSink(config), nil
	})

	notify.RegisterSinkType(RedisStreamSinkType, func(config notify.SinkConfig) (notify.Sink, error) {
		return NewRedisStreamSink(config, deps.RedisClient)
	})

	notify.RegisterSinkType(NoopSinkType, func(config notify.SinkConfig) (notify.Sink, error) {
		return NewNoopSink(config), nil
	})
}
