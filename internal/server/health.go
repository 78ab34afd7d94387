// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-fitness-gamification/pkg/service"
)

const storeCheckTimeout = 2 * time.Second

var errCatalogEmpty = errors.New("achievement catalog is empty")

// StoreChecker reports the service ready once Redis answers and the
// settings and the seeded achievement catalog can be read back.
type StoreChecker struct {
	client   *redis.Client
	settings service.SettingsStore
	catalog  service.Catalog
}

func NewStoreChecker(client *redis.Client, settings service.SettingsStore, catalog service.Catalog) *StoreChecker {
	return &StoreChecker{client: client, settings: settings, catalog: catalog}
}

// Check returns the first failing dependency
func (c *StoreChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, storeCheckTimeout)
	defer cancel()

	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis unreachable: %w", err)
	}
	if _, err := c.settings.Get(ctx); err != nil {
		return fmt.Errorf("settings unreadable: %w", err)
	}
	achievements, err := c.catalog.Achievements(ctx, false)
	if err != nil {
		return fmt.Errorf("catalog unreadable: %w", err)
	}
	if len(achievements) == 0 {
		return errCatalogEmpty
	}
	return nil
}

func (c *StoreChecker) IsHealthy(ctx context.Context) bool {
	if err := c.Check(ctx); err != nil {
		logrus.Errorf("store health check failed: %v", err)
		return false
	}
	logrus.Debugf("store health check passed")
	return true
}
