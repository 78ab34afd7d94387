// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package state

import (
	"github.com/shopspring/decimal"
)

// Typed metadata stored on ledger rows, one struct per source family.

// WorkoutMetadata is attached to workout_completion rows
type WorkoutMetadata struct {
	SessionID          string `json:"sessionId"`
	DurationMinutes    int64  `json:"durationMinutes,omitempty"`
	ExercisesCompleted int64  `json:"exercisesCompleted,omitempty"`
}

// ExerciseMetadata is attached to exercise_completion rows
type ExerciseMetadata struct {
	SessionID string `json:"sessionId"`
	Count     int64  `json:"count"`
}

// PurchaseMetadata is attached to purchase rows
type PurchaseMetadata struct {
	PackageID string          `json:"packageId"`
	OrderID   string          `json:"orderId,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
}

// ReferralMetadata is attached to referral rows
type ReferralMetadata struct {
	ReferredUserID string `json:"referredUserId"`
}

// ReviewMetadata is attached to review rows
type ReviewMetadata struct {
	ReviewID string `json:"reviewId"`
}

// BonusRuleMetadata is attached to rows awarded by a bonus rule
type BonusRuleMetadata struct {
	RuleID     string `json:"ruleId"`
	Reason     string `json:"reason"`
	StreakDays int64  `json:"streakDays,omitempty"`
}

// AchievementMetadata is attached to achievement_earned rows
type AchievementMetadata struct {
	AchievementID    string          `json:"achievementId"`
	Name             string          `json:"name"`
	RequirementType  RequirementType `json:"requirementType"`
	RequirementValue int64           `json:"requirementValue"`
}

// MilestoneMetadata is attached to milestone_reached rows
type MilestoneMetadata struct {
	MilestoneID  string `json:"milestoneId"`
	Name         string `json:"name"`
	TargetPoints int64  `json:"targetPoints"`
}

// RedemptionMetadata is attached to reward_redemption and reward_refund rows
type RedemptionMetadata struct {
	RewardID     string           `json:"rewardId"`
	RewardName   string           `json:"rewardName,omitempty"`
	UserRewardID string           `json:"userRewardId"`
	Status       RedemptionStatus `json:"status,omitempty"`
}

// AdjustmentMetadata is attached to admin_adjustment rows
type AdjustmentMetadata struct {
	Reason string `json:"reason"`
}

// FulfillmentDetails records how a redemption was delivered
type FulfillmentDetails struct {
	Code      string `json:"code,omitempty"`
	Reference string `json:"reference,omitempty"`
	Note      string `json:"note,omitempty"`
}
