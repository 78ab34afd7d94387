// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package state

import (
	"encoding/json"
	"fmt"
	"time"
)

// TransactionType classifies a ledger row
type TransactionType string

const (
	TransactionEarn       TransactionType = "earn"
	TransactionSpend      TransactionType = "spend"
	TransactionAdjustment TransactionType = "adjustment"
	TransactionBonus      TransactionType = "bonus"
	TransactionExpire     TransactionType = "expire"
)

// Valid reports whether t is one of the known transaction types
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionEarn, TransactionSpend, TransactionAdjustment, TransactionBonus, TransactionExpire:
		return true
	}
	return false
}

// CountsTowardLifetime reports whether rows of this type raise the lifetime-earned total
func (t TransactionType) CountsTowardLifetime() bool {
	return t == TransactionEarn || t == TransactionBonus
}

// Source is the enumerated origin of a ledger row
type Source string

const (
	SourceWorkoutCompletion  Source = "workout_completion"
	SourceExerciseCompletion Source = "exercise_completion"
	SourceStreakBonus        Source = "streak_bonus"
	SourceLongSession        Source = "long_session"
	SourceLevelUp            Source = "level_up"
	SourceReview             Source = "review"
	SourceReferral           Source = "referral"
	SourcePurchase           Source = "purchase"
	SourceAchievementEarned  Source = "achievement_earned"
	SourceMilestoneReached   Source = "milestone_reached"
	SourceRewardRedemption   Source = "reward_redemption"
	SourceRewardRefund       Source = "reward_refund"
	SourceAdminAdjustment    Source = "admin_adjustment"
)

// PointTransaction is an immutable ledger row.
// For one user, balance(n) = balance(n-1) + points(n).
type PointTransaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Points      int64           `json:"points"`
	Balance     int64           `json:"balance"`
	Type        TransactionType `json:"transactionType"`
	Source      Source          `json:"source"`
	SourceID    string          `json:"sourceId,omitempty"`
	Description string          `json:"description"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	AwardedBy   string          `json:"awardedBy,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// DecodeMetadata unmarshals the row metadata into one of the typed metadata structs
func (t *PointTransaction) DecodeMetadata(v interface{}) error {
	if len(t.Metadata) == 0 {
		return nil
	}
	if err := json.Unmarshal(t.Metadata, v); err != nil {
		return fmt.Errorf("failed to decode metadata of transaction %s: %w", t.ID, err)
	}
	return nil
}

// LedgerEntry is the input of a ledger append.
// Metadata should be one of the typed structs in metadata.go.
type LedgerEntry struct {
	UserID      string
	Points      int64
	Type        TransactionType
	Source      Source
	SourceID    string
	Description string
	Metadata    interface{}
	AwardedBy   string
}

// Validate checks the entry before any write
func (e LedgerEntry) Validate() error {
	if e.UserID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidEntry)
	}
	if e.Points == 0 {
		return ErrInvalidDelta
	}
	if !e.Type.Valid() {
		return fmt.Errorf("%w: unknown transaction type %q", ErrInvalidEntry, e.Type)
	}
	if e.Source == "" {
		return fmt.Errorf("%w: source is required", ErrInvalidEntry)
	}
	return nil
}

// RequirementType is the activity an achievement is measured against
type RequirementType string

const (
	RequirementSessionCount  RequirementType = "session_count"
	RequirementStreakDays    RequirementType = "streak_days"
	RequirementExerciseCount RequirementType = "exercise_count"
	RequirementReferralCount RequirementType = "referral_count"
	RequirementReviewCount   RequirementType = "review_count"
	RequirementPurchaseCount RequirementType = "purchase_count"
	RequirementPointsReached RequirementType = "points_reached"
	RequirementTierReached   RequirementType = "tier_reached"
)

// Valid reports whether the requirement type is one the tracker can measure
func (r RequirementType) Valid() bool {
	switch r {
	case RequirementSessionCount, RequirementStreakDays, RequirementExerciseCount,
		RequirementReferralCount, RequirementReviewCount, RequirementPurchaseCount,
		RequirementPointsReached, RequirementTierReached:
		return true
	}
	return false
}

// Achievement is a published definition. It is never edited after
// publishing; it can only be deactivated.
type Achievement struct {
	ID               string          `json:"id" yaml:"id"`
	Name             string          `json:"name" yaml:"name"`
	Description      string          `json:"description" yaml:"description"`
	RequirementType  RequirementType `json:"requirementType" yaml:"requirement_type"`
	RequirementValue int64           `json:"requirementValue" yaml:"requirement_value"`
	Tier             Tier            `json:"tier" yaml:"tier"`
	PointValue       int64           `json:"pointValue" yaml:"point_value"`
	IsActive         bool            `json:"isActive" yaml:"is_active"`
}

// UserAchievement is the per-user state of one achievement
type UserAchievement struct {
	UserID           string            `json:"userId"`
	AchievementID    string            `json:"achievementId"`
	Status           AchievementStatus `json:"status"`
	Progress         int64             `json:"progress"`
	PointsAwarded    int64             `json:"pointsAwarded"`
	EarnedAt         *time.Time        `json:"earnedAt,omitempty"`
	NotificationSent bool              `json:"notificationSent"`
	UpdatedAt        time.Time         `json:"updatedAt"`
}

// IsCompleted reports whether the achievement reached its terminal state
func (u *UserAchievement) IsCompleted() bool {
	return u.Status == AchievementCompleted
}

// Milestone awards bonus points once when a user's balance reaches TargetPoints
type Milestone struct {
	ID           string `json:"id" yaml:"id"`
	Name         string `json:"name" yaml:"name"`
	TargetPoints int64  `json:"targetPoints" yaml:"target_points"`
	BonusPoints  int64  `json:"bonusPoints" yaml:"bonus_points"`
	Tier         Tier   `json:"tier,omitempty" yaml:"tier"`
	IsActive     bool   `json:"isActive" yaml:"is_active"`
}

// UserMilestone records that a milestone fired for a user
type UserMilestone struct {
	UserID             string    `json:"userId"`
	MilestoneID        string    `json:"milestoneId"`
	ReachedAt          time.Time `json:"reachedAt"`
	BonusPointsAwarded int64     `json:"bonusPointsAwarded"`
	TransactionID      string    `json:"transactionId,omitempty"`
}

// Reward is a catalog entry that can be redeemed for points
type Reward struct {
	ID              string     `json:"id" yaml:"id"`
	Name            string     `json:"name" yaml:"name"`
	Description     string     `json:"description" yaml:"description"`
	PointCost       int64      `json:"pointCost" yaml:"point_cost"`
	Stock           int64      `json:"stock" yaml:"stock"`
	RedemptionCount int64      `json:"redemptionCount" yaml:"-"`
	IsActive        bool       `json:"isActive" yaml:"is_active"`
	Tier            Tier       `json:"tier,omitempty" yaml:"tier"`
	ExpiresAt       *time.Time `json:"expiresAt,omitempty" yaml:"expires_at"`
}

// Validate checks the fields an operator controls
func (r *Reward) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: reward needs an id", ErrInvalidEntry)
	}
	if r.PointCost <= 0 {
		return fmt.Errorf("%w: reward %s needs a positive cost", ErrInvalidEntry, r.ID)
	}
	if r.Stock < 0 {
		return fmt.Errorf("%w: reward %s has negative stock", ErrInvalidEntry, r.ID)
	}
	return nil
}

// AvailableAt reports whether the reward can be redeemed at the given time
func (r *Reward) AvailableAt(now time.Time) bool {
	if !r.IsActive {
		return false
	}
	return r.ExpiresAt == nil || now.Before(*r.ExpiresAt)
}

// UserReward is one redemption. PointsCost is frozen at redemption time.
type UserReward struct {
	ID                  string              `json:"id"`
	UserID              string              `json:"userId"`
	RewardID            string              `json:"rewardId"`
	PointsCost          int64               `json:"pointsCost"`
	Status              RedemptionStatus    `json:"status"`
	RedeemedAt          time.Time           `json:"redeemedAt"`
	ExpiresAt           *time.Time          `json:"expiresAt,omitempty"`
	FulfilledBy         string              `json:"fulfilledBy,omitempty"`
	FulfilledAt         *time.Time          `json:"fulfilledAt,omitempty"`
	FulfillmentDetails  *FulfillmentDetails `json:"fulfillmentDetails,omitempty"`
	ClosedAt            *time.Time          `json:"closedAt,omitempty"`
	SpendTransactionID  string              `json:"spendTransactionId"`
	RefundTransactionID string              `json:"refundTransactionId,omitempty"`
}

// DueAt reports whether the redemption carries an expiry that has passed at now
func (r *UserReward) DueAt(now time.Time) bool {
	return r.ExpiresAt != nil && !now.Before(*r.ExpiresAt)
}

// ActivityStats holds the cumulative activity that achievements are measured against
type ActivityStats struct {
	UserID           string     `json:"userId"`
	TotalSessions    int64      `json:"totalSessions"`
	TotalExercises   int64      `json:"totalExercises"`
	TotalReferrals   int64      `json:"totalReferrals"`
	TotalReviews     int64      `json:"totalReviews"`
	TotalPurchases   int64      `json:"totalPurchases"`
	StreakDays       int64      `json:"streakDays"`
	LongestStreak    int64      `json:"longestStreak"`
	LastActivityDate *time.Time `json:"lastActivityDate,omitempty"`
	GraceUsedAt      *time.Time `json:"graceUsedAt,omitempty"`
	Tier             Tier       `json:"tier"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}
