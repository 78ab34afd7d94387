package builtin

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/AccelByte/extend-fitness-gamification/pkg/notify"
)

const (
	// RedisStreamSinkType appends events to a Redis stream for downstream consumers
	RedisStreamSinkType = "redis_stream"

	defaultStreamKey    = "gamification:events"
	defaultStreamMaxLen = 10000
)

type RedisStreamSink struct {
	config notify.SinkConfig
	client *redis.Client
	stream string
	maxLen int64
}

func NewRedisStreamSink(config notify.SinkConfig, client *redis.Client) (*RedisStreamSink, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: sink %s needs a redis client", notify.ErrInvalidConfig, config.ID)
	}
	return &RedisStreamSink{
		config: config,
		client: client,
		stream: config.GetParameterString("stream", defaultStreamKey),
		maxLen: int64(config.GetParameterInt("max_len", defaultStreamMaxLen)),
	}, nil
}

func (s *RedisStreamSink) ID() string {
	return s.config.ID
}

func (s *RedisStreamSink) Name() string {
	return "Redis Stream"
}

func (s *RedisStreamSink) Config() notify.SinkConfig {
	return s.config
}

func (s *RedisStreamSink) Publish(ctx context.Context, event notify.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.Kind(), err)
	}

	err = s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"kind":    event.Kind(),
			"userId":  event.UserID(),
			"payload": string(payload),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to append to stream %s: %w", s.stream, err)
	}
	return nil
}
