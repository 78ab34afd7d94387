// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package redemption exchanges points for catalog rewards. Stock, the
// redemption record and the ledger row of every step commit together.
package redemption

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-fitness-gamification/pkg/metrics"
	"github.com/AccelByte/extend-fitness-gamification/pkg/service"
	"github.com/AccelByte/extend-fitness-gamification/pkg/state"
)

const (
	redeemUnitName  = "redemption.redeem"
	fulfillUnitName = "redemption.fulfill"
	cancelUnitName  = "redemption.cancel"
	expireUnitName  = "redemption.expire"

	outcomeRedeemed = "redeemed"
)

// Manager runs the redemption state machine
type Manager struct {
	uow     *service.UnitOfWork
	ledger  service.Ledger
	rewards service.RewardStore
	now     func() time.Time
}

// NewManager creates a redemption manager
func NewManager(uow *service.UnitOfWork, ledger service.Ledger, rewards service.RewardStore) *Manager {
	return &Manager{
		uow:     uow,
		ledger:  ledger,
		rewards: rewards,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Redeem spends the reward's cost and reserves one unit of stock.
// The checks run in order: availability, stock, balance.
func (m *Manager) Redeem(ctx context.Context, userID, rewardID string) (*state.UserReward, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", state.ErrInvalidEntry)
	}

	var ur *state.UserReward
	err := m.uow.Do(ctx, redeemUnitName, func(tx *service.Tx) error {
		now := m.now()

		reward, err := m.rewards.RewardTx(tx, rewardID)
		if err != nil {
			return err
		}
		if !reward.AvailableAt(now) {
			return fmt.Errorf("%w: %s", state.ErrRewardUnavailable, rewardID)
		}
		if reward.Stock <= 0 {
			return fmt.Errorf("%w: %s", state.ErrOutOfStock, rewardID)
		}
		balance, err := m.ledger.BalanceTx(tx, userID)
		if err != nil {
			return err
		}
		if balance < reward.PointCost {
			return fmt.Errorf("%w: balance %d, cost %d", state.ErrInsufficientPoints, balance, reward.PointCost)
		}

		reward.Stock--
		reward.RedemptionCount++
		if err := m.rewards.PutRewardTx(tx, reward); err != nil {
			return err
		}

		ur = &state.UserReward{
			ID:         uuid.NewString(),
			UserID:     userID,
			RewardID:   reward.ID,
			PointsCost: reward.PointCost,
			Status:     state.RedemptionPending,
			RedeemedAt: now,
		}
		if reward.ExpiresAt != nil {
			expiresAt := *reward.ExpiresAt
			ur.ExpiresAt = &expiresAt
		}

		if reward.PointCost > 0 {
			row, err := m.ledger.AppendTx(tx, state.LedgerEntry{
				UserID:      userID,
				Points:      -reward.PointCost,
				Type:        state.TransactionSpend,
				Source:      state.SourceRewardRedemption,
				SourceID:    ur.ID,
				Description: fmt.Sprintf("Redeemed %s", reward.Name),
				Metadata: state.RedemptionMetadata{
					RewardID:     reward.ID,
					RewardName:   reward.Name,
					UserRewardID: ur.ID,
					Status:       state.RedemptionPending,
				},
			}, now)
			if err != nil {
				return err
			}
			ur.SpendTransactionID = row.ID
		}

		return m.rewards.PutUserRewardTx(tx, ur, true)
	})
	if err != nil {
		metrics.Redemptions.WithLabelValues(state.CodeOf(err)).Inc()
		logrus.Infof("redemption of %s by user %s rejected: %v", rewardID, userID, err)
		return nil, err
	}

	metrics.Redemptions.WithLabelValues(outcomeRedeemed).Inc()
	metrics.RedemptionTransitions.WithLabelValues(string(state.RedemptionPending)).Inc()
	logrus.Infof("user %s redeemed %s for %d points as %s", userID, rewardID, ur.PointsCost, ur.ID)
	return ur, nil
}

// Fulfill marks a pending redemption as delivered
func (m *Manager) Fulfill(ctx context.Context, userRewardID, fulfilledBy string, details *state.FulfillmentDetails) (*state.UserReward, error) {
	var ur *state.UserReward
	err := m.uow.Do(ctx, fulfillUnitName, func(tx *service.Tx) error {
		var err error
		ur, err = m.rewards.UserRewardTx(tx, userRewardID)
		if err != nil {
			return err
		}
		if err := ur.Transition(state.RedemptionFulfilled, m.now()); err != nil {
			return err
		}
		ur.FulfilledBy = fulfilledBy
		ur.FulfillmentDetails = details
		return m.rewards.PutUserRewardTx(tx, ur, false)
	})
	if err != nil {
		return nil, err
	}

	metrics.RedemptionTransitions.WithLabelValues(string(state.RedemptionFulfilled)).Inc()
	return ur, nil
}

// Cancel withdraws a pending redemption, restoring the stock and refunding the cost
func (m *Manager) Cancel(ctx context.Context, userRewardID string) (*state.UserReward, error) {
	return m.close(ctx, cancelUnitName, userRewardID, state.RedemptionCancelled, m.now())
}

// Expire closes a pending redemption whose expiry has passed, with the same compensation as Cancel
func (m *Manager) Expire(ctx context.Context, userRewardID string) (*state.UserReward, error) {
	return m.close(ctx, expireUnitName, userRewardID, state.RedemptionExpired, m.now())
}

func (m *Manager) close(ctx context.Context, unitName, userRewardID string, next state.RedemptionStatus, now time.Time) (*state.UserReward, error) {
	var ur *state.UserReward
	err := m.uow.Do(ctx, unitName, func(tx *service.Tx) error {
		var err error
		ur, err = m.rewards.UserRewardTx(tx, userRewardID)
		if err != nil {
			return err
		}
		if next == state.RedemptionExpired && !ur.DueAt(now) {
			return fmt.Errorf("%w: redemption %s is not due to expire", state.ErrInvalidTransition, ur.ID)
		}
		if err := ur.Transition(next, now); err != nil {
			return err
		}

		reward, err := m.rewards.RewardTx(tx, ur.RewardID)
		if err != nil {
			return err
		}
		reward.Stock++
		if err := m.rewards.PutRewardTx(tx, reward); err != nil {
			return err
		}

		if ur.PointsCost > 0 {
			row, err := m.ledger.AppendTx(tx, state.LedgerEntry{
				UserID:      ur.UserID,
				Points:      ur.PointsCost,
				Type:        state.TransactionAdjustment,
				Source:      state.SourceRewardRefund,
				SourceID:    ur.ID,
				Description: fmt.Sprintf("Refund for %s redemption of %s", next, reward.Name),
				Metadata: state.RedemptionMetadata{
					RewardID:     reward.ID,
					RewardName:   reward.Name,
					UserRewardID: ur.ID,
					Status:       next,
				},
			}, now)
			if err != nil {
				return err
			}
			ur.RefundTransactionID = row.ID
		}

		return m.rewards.PutUserRewardTx(tx, ur, false)
	})
	if err != nil {
		return nil, err
	}

	metrics.RedemptionTransitions.WithLabelValues(string(next)).Inc()
	logrus.Infof("redemption %s %s, refunded %d points to user %s", ur.ID, next, ur.PointsCost, ur.UserID)
	return ur, nil
}

// ExpireDue expires every pending redemption whose expiry is at or before now.
// A redemption closed concurrently is skipped.
func (m *Manager) ExpireDue(ctx context.Context, now time.Time) ([]string, error) {
	ids, err := m.rewards.DuePending(ctx, now)
	if err != nil {
		return nil, err
	}

	var expired []string
	var errs []error
	for _, id := range ids {
		if _, err := m.close(ctx, expireUnitName, id, state.RedemptionExpired, now); err != nil {
			if errors.Is(err, state.ErrInvalidTransition) {
				continue
			}
			logrus.Errorf("failed to expire redemption %s: %v", id, err)
			errs = append(errs, err)
			continue
		}
		expired = append(expired, id)
	}

	if len(expired) > 0 {
		logrus.Infof("expired %d pending redemptions", len(expired))
	}
	return expired, errors.Join(errs...)
}

// Get returns one redemption
func (m *Manager) Get(ctx context.Context, userRewardID string) (*state.UserReward, error) {
	return m.rewards.UserReward(ctx, userRewardID)
}

// ListForUser returns the user's redemptions, oldest first
func (m *Manager) ListForUser(ctx context.Context, userID string) ([]state.UserReward, error) {
	return m.rewards.UserRewards(ctx, userID)
}

// Rewards returns the catalog; availableAt filters to rewards redeemable at that time
func (m *Manager) Rewards(ctx context.Context, availableAt *time.Time) ([]state.Reward, error) {
	return m.rewards.Rewards(ctx, availableAt)
}
