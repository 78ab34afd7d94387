package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-fitness-gamification/pkg/state"
)

const settingsKey = "gamification:settings"

// RedisSettingsStore persists the gamification settings as one JSON document
type RedisSettingsStore struct {
	client *redis.Client
	cfg    RedisSettingsStoreConfig
}

type RedisSettingsStoreConfig struct {
	// Defaults is returned while nothing has been stored
	Defaults state.Settings
}

func NewRedisSettingsStore(client *redis.Client, cfg RedisSettingsStoreConfig) *RedisSettingsStore {
	if len(cfg.Defaults.TierThresholds) == 0 {
		cfg.Defaults = state.DefaultSettings()
	}
	return &RedisSettingsStore{client: client, cfg: cfg}
}

// Get returns a snapshot of the current settings
func (s *RedisSettingsStore) Get(ctx context.Context) (state.Settings, error) {
	data, err := s.client.Get(ctx, settingsKey).Result()
	if err == redis.Nil {
		return s.cfg.Defaults.Clone(), nil
	}
	if err != nil {
		logrus.Errorf("failed to get settings: %v", err)
		return state.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}

	var settings state.Settings
	if err := json.Unmarshal([]byte(data), &settings); err != nil {
		logrus.Errorf("failed to unmarshal settings: %v", err)
		return state.Settings{}, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	return settings, nil
}

// Put validates and stores new settings
func (s *RedisSettingsStore) Put(ctx context.Context, settings state.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := s.client.Set(ctx, settingsKey, data, 0).Err(); err != nil {
		logrus.Errorf("failed to set settings: %v", err)
		return fmt.Errorf("failed to set settings: %w", err)
	}

	logrus.Infof("updated gamification settings (multiplier %v)", settings.PointsMultiplier)
	return nil
}
