// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package app

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"
)

// Expirer closes pending redemptions whose expiry has passed.
type Expirer interface {
	ExpireDue(ctx context.Context, now time.Time) ([]string, error)
}

// ExpirySweeper periodically expires due redemptions in the background.
type ExpirySweeper struct {
	expirer  Expirer
	interval time.Duration
	now      func() time.Time

	wg     conc.WaitGroup
	cancel context.CancelFunc
}

// NewExpirySweeper creates a sweeper that runs every interval.
func NewExpirySweeper(expirer Expirer, interval time.Duration) *ExpirySweeper {
	return &ExpirySweeper{
		expirer:  expirer,
		interval: interval,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start launches the sweep loop; it runs one sweep immediately.
func (s *ExpirySweeper) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Go(func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			s.Sweep(ctx)

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	})

	logrus.Infof("redemption expiry sweeper started (every %s)", s.interval)
}

// Sweep runs one expiry pass and returns the number of expired redemptions.
func (s *ExpirySweeper) Sweep(ctx context.Context) int {
	expired, err := s.expirer.ExpireDue(ctx, s.now())
	if err != nil && ctx.Err() == nil {
		logrus.Errorf("redemption expiry sweep failed: %v", err)
	}
	return len(expired)
}

// Stop cancels the loop and waits for a sweep in progress to finish.
func (s *ExpirySweeper) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	logrus.Info("redemption expiry sweeper stopped")
}
