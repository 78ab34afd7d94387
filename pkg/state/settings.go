// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package state

import (
	"fmt"
)

// Tier is an ordered reputation bracket
type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

// TierThreshold is the minimum lifetime points for a tier
type TierThreshold struct {
	Tier      Tier  `json:"tier" yaml:"tier"`
	MinPoints int64 `json:"minPoints" yaml:"min_points"`
}

// Features holds the feature toggles
type Features struct {
	Leaderboard   bool `json:"leaderboard" yaml:"leaderboard"`
	Notifications bool `json:"notifications" yaml:"notifications"`
	AutoAward     bool `json:"autoAward" yaml:"auto_award"`
}

// Settings is the gamification configuration. Every operation receives
// one value of it and uses it for its whole duration.
type Settings struct {
	Enabled           bool            `json:"enabled" yaml:"enabled"`
	PointsPerWorkout  int64           `json:"pointsPerWorkout" yaml:"points_per_workout"`
	PointsPerExercise int64           `json:"pointsPerExercise" yaml:"points_per_exercise"`
	PointsPerStreak   int64           `json:"pointsPerStreak" yaml:"points_per_streak"`
	PointsPerLevel    int64           `json:"pointsPerLevel" yaml:"points_per_level"`
	PointsPerReview   int64           `json:"pointsPerReview" yaml:"points_per_review"`
	PointsPerReferral int64           `json:"pointsPerReferral" yaml:"points_per_referral"`
	PointsPerPurchase int64           `json:"pointsPerPurchase" yaml:"points_per_purchase"`
	PointsMultiplier  float64         `json:"pointsMultiplier" yaml:"points_multiplier"`
	TierThresholds    []TierThreshold `json:"tierThresholds" yaml:"tier_thresholds"`
	Features          Features        `json:"features" yaml:"features"`
	StreakGrace       bool            `json:"streakGrace" yaml:"streak_grace"`
}

// DefaultSettings returns the settings used when nothing has been stored
func DefaultSettings() Settings {
	return Settings{
		Enabled:           true,
		PointsPerWorkout:  50,
		PointsPerExercise: 10,
		PointsPerStreak:   20,
		PointsPerLevel:    100,
		PointsPerReview:   15,
		PointsPerReferral: 200,
		PointsPerPurchase: 25,
		PointsMultiplier:  1.0,
		TierThresholds: []TierThreshold{
			{Tier: TierBronze, MinPoints: 0},
			{Tier: TierSilver, MinPoints: 1000},
			{Tier: TierGold, MinPoints: 5000},
			{Tier: TierPlatinum, MinPoints: 20000},
		},
		Features: Features{
			Leaderboard:   true,
			Notifications: true,
			AutoAward:     true,
		},
		StreakGrace: true,
	}
}

// Clone returns a deep copy so a snapshot never aliases the stored value
func (s Settings) Clone() Settings {
	out := s
	out.TierThresholds = append([]TierThreshold(nil), s.TierThresholds...)
	return out
}

// Validate checks the settings before they are stored
func (s Settings) Validate() error {
	if s.PointsMultiplier <= 0 || s.PointsMultiplier > 10 {
		return fmt.Errorf("%w: points multiplier %v must be in (0, 10]", ErrInvalidSettings, s.PointsMultiplier)
	}

	base := map[string]int64{
		"points_per_workout":  s.PointsPerWorkout,
		"points_per_exercise": s.PointsPerExercise,
		"points_per_streak":   s.PointsPerStreak,
		"points_per_level":    s.PointsPerLevel,
		"points_per_review":   s.PointsPerReview,
		"points_per_referral": s.PointsPerReferral,
		"points_per_purchase": s.PointsPerPurchase,
	}
	for name, v := range base {
		if v < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidSettings, name)
		}
	}

	if len(s.TierThresholds) == 0 {
		return fmt.Errorf("%w: at least one tier threshold is required", ErrInvalidSettings)
	}
	if s.TierThresholds[0].MinPoints != 0 {
		return fmt.Errorf("%w: first tier must start at 0 points", ErrInvalidSettings)
	}
	for i := 1; i < len(s.TierThresholds); i++ {
		if s.TierThresholds[i].MinPoints <= s.TierThresholds[i-1].MinPoints {
			return fmt.Errorf("%w: tier %s must require more points than %s",
				ErrInvalidSettings, s.TierThresholds[i].Tier, s.TierThresholds[i-1].Tier)
		}
	}

	return nil
}

// TierFor returns the highest tier whose threshold is covered by points
func (s Settings) TierFor(points int64) Tier {
	var tier Tier
	for _, th := range s.TierThresholds {
		if points >= th.MinPoints {
			tier = th.Tier
		}
	}
	return tier
}

// TierRank returns the 1-based position of tier in the thresholds, 0 if unknown
func (s Settings) TierRank(tier Tier) int64 {
	for i, th := range s.TierThresholds {
		if th.Tier == tier {
			return int64(i + 1)
		}
	}
	return 0
}
