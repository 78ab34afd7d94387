// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package redemption

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-fitness-gamification/pkg/service"
	"github.com/AccelByte/extend-fitness-gamification/pkg/state"
)

const (
	createRewardUnitName = "redemption.create_reward"
	updateRewardUnitName = "redemption.update_reward"
)

// RewardUpdate carries the reward fields an operator changes. Nil fields are left alone.
type RewardUpdate struct {
	Name        *string
	Description *string
	PointCost   *int64
	Stock       *int64
	IsActive    *bool
	Tier        *state.Tier
	ExpiresAt   *time.Time
	ClearExpiry bool
}

func (u RewardUpdate) apply(r *state.Reward) {
	if u.Name != nil {
		r.Name = *u.Name
	}
	if u.Description != nil {
		r.Description = *u.Description
	}
	if u.PointCost != nil {
		r.PointCost = *u.PointCost
	}
	if u.Stock != nil {
		r.Stock = *u.Stock
	}
	if u.IsActive != nil {
		r.IsActive = *u.IsActive
	}
	if u.Tier != nil {
		r.Tier = *u.Tier
	}
	switch {
	case u.ClearExpiry:
		r.ExpiresAt = nil
	case u.ExpiresAt != nil:
		expiresAt := u.ExpiresAt.UTC()
		r.ExpiresAt = &expiresAt
	}
}

// CreateReward adds a reward to the catalog. The redemption count always starts at zero.
func (m *Manager) CreateReward(ctx context.Context, reward state.Reward) (*state.Reward, error) {
	reward.RedemptionCount = 0
	if err := reward.Validate(); err != nil {
		return nil, err
	}

	err := m.uow.Do(ctx, createRewardUnitName, func(tx *service.Tx) error {
		return m.rewards.AddRewardTx(tx, &reward)
	})
	if err != nil {
		return nil, err
	}

	logrus.Infof("reward %s created with cost %d and stock %d", reward.ID, reward.PointCost, reward.Stock)
	return &reward, nil
}

// UpdateReward changes price, stock, availability or expiry of a reward.
// It watches the same key as Redeem, so the two never interleave.
// Redemptions already made keep the cost they were charged.
func (m *Manager) UpdateReward(ctx context.Context, rewardID string, update RewardUpdate) (*state.Reward, error) {
	var reward *state.Reward
	err := m.uow.Do(ctx, updateRewardUnitName, func(tx *service.Tx) error {
		var err error
		reward, err = m.rewards.RewardTx(tx, rewardID)
		if err != nil {
			return err
		}
		update.apply(reward)
		if err := reward.Validate(); err != nil {
			return err
		}
		return m.rewards.PutRewardTx(tx, reward)
	})
	if err != nil {
		return nil, err
	}

	logrus.Infof("reward %s updated", rewardID)
	return reward, nil
}
