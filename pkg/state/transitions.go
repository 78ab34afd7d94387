// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package state

import (
	"fmt"
	"time"
)

// AchievementStatus is the state of a (user, achievement) pair
type AchievementStatus string

const (
	AchievementNotStarted AchievementStatus = "not_started"
	AchievementInProgress AchievementStatus = "in_progress"
	AchievementCompleted  AchievementStatus = "completed"
)

var achievementTransitions = map[AchievementStatus][]AchievementStatus{
	AchievementNotStarted: {AchievementInProgress},
	AchievementInProgress: {AchievementCompleted},
}

// CanTransitionTo reports whether next is a legal successor of s
func (s AchievementStatus) CanTransitionTo(next AchievementStatus) bool {
	for _, allowed := range achievementTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// RedemptionStatus is the state of a UserReward
type RedemptionStatus string

const (
	RedemptionPending   RedemptionStatus = "pending"
	RedemptionFulfilled RedemptionStatus = "fulfilled"
	RedemptionCancelled RedemptionStatus = "cancelled"
	RedemptionExpired   RedemptionStatus = "expired"
)

var redemptionTransitions = map[RedemptionStatus][]RedemptionStatus{
	RedemptionPending: {RedemptionFulfilled, RedemptionCancelled, RedemptionExpired},
}

// CanTransitionTo reports whether next is a legal successor of s
func (s RedemptionStatus) CanTransitionTo(next RedemptionStatus) bool {
	for _, allowed := range redemptionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s
func (s RedemptionStatus) IsTerminal() bool {
	return len(redemptionTransitions[s]) == 0
}

// Transition moves the redemption to next, stamping the matching timestamp
func (r *UserReward) Transition(next RedemptionStatus, now time.Time) error {
	if !r.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: redemption %s cannot move from %s to %s",
			ErrInvalidTransition, r.ID, r.Status, next)
	}

	r.Status = next
	if next == RedemptionFulfilled {
		r.FulfilledAt = &now
	} else {
		r.ClosedAt = &now
	}
	return nil
}

// Advance applies a new progress value to the achievement state.
// The pair moves through in_progress before completed; a completed pair
// is left untouched. It returns true only on the transition to completed.
// When allowComplete is false the pair stops at in_progress.
func (u *UserAchievement) Advance(a *Achievement, progress int64, now time.Time, allowComplete bool) (bool, error) {
	if u.IsCompleted() {
		return false, nil
	}
	if progress < u.Progress {
		progress = u.Progress
	}
	u.Progress = progress
	u.UpdatedAt = now

	if u.Status == "" {
		u.Status = AchievementNotStarted
	}

	if progress > 0 && u.Status == AchievementNotStarted {
		if err := u.moveTo(AchievementInProgress); err != nil {
			return false, err
		}
	}

	if !allowComplete || progress < a.RequirementValue || u.Status != AchievementInProgress {
		return false, nil
	}

	if err := u.moveTo(AchievementCompleted); err != nil {
		return false, err
	}
	u.EarnedAt = &now
	u.PointsAwarded = a.PointValue
	return true, nil
}

func (u *UserAchievement) moveTo(next AchievementStatus) error {
	if !u.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: achievement %s cannot move from %s to %s",
			ErrInvalidTransition, u.AchievementID, u.Status, next)
	}
	u.Status = next
	return nil
}
