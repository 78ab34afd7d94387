// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package state

import (
	"time"

	"github.com/sirupsen/logrus"
)

// GraceWindow is the rolling window in which one missed day keeps a streak alive
const GraceWindow = 30 * 24 * time.Hour

// StreakChange describes what a session did to the streak
type StreakChange int

const (
	StreakUnchanged StreakChange = iota
	StreakStarted
	StreakExtended
	StreakGraceUsed
	StreakReset
)

// DayOf truncates t to its UTC calendar day
func DayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// RecordSession counts a completed session and updates the streak.
// Consecutive days extend the streak. A single missed day is bridged once
// per GraceWindow when grace is enabled. Any longer gap resets it to 1.
func RecordSession(stats *ActivityStats, at time.Time, grace bool) StreakChange {
	stats.TotalSessions++
	today := DayOf(at)

	change := StreakUnchanged
	if stats.LastActivityDate == nil {
		stats.StreakDays = 1
		change = StreakStarted
	} else {
		days := int(today.Sub(DayOf(*stats.LastActivityDate)).Hours() / 24)
		switch {
		case days <= 0:
			// same day, or an event delivered out of order
			if stats.StreakDays == 0 {
				stats.StreakDays = 1
			}
		case days == 1:
			stats.StreakDays++
			change = StreakExtended
		case days == 2 && grace && graceAvailable(stats, today):
			stats.StreakDays++
			stats.GraceUsedAt = &today
			change = StreakGraceUsed
			logrus.Debugf("streak grace day used for user %s", stats.UserID)
		default:
			stats.StreakDays = 1
			change = StreakReset
		}
	}

	if stats.LastActivityDate == nil || today.After(*stats.LastActivityDate) {
		stats.LastActivityDate = &today
	}
	if stats.StreakDays > stats.LongestStreak {
		stats.LongestStreak = stats.StreakDays
	}

	return change
}

func graceAvailable(stats *ActivityStats, today time.Time) bool {
	if stats.GraceUsedAt == nil {
		return true
	}
	return today.Sub(DayOf(*stats.GraceUsedAt)) >= GraceWindow
}

// ApplyActivity updates the counters that an award from source represents.
// units is the number of items the award covers, e.g. exercises in a session.
func ApplyActivity(stats *ActivityStats, source Source, units int64, at time.Time, grace bool) StreakChange {
	change := StreakUnchanged
	switch source {
	case SourceWorkoutCompletion:
		change = RecordSession(stats, at, grace)
	case SourceExerciseCompletion:
		stats.TotalExercises += units
	case SourceReferral:
		stats.TotalReferrals++
	case SourceReview:
		stats.TotalReviews++
	case SourcePurchase:
		stats.TotalPurchases++
	}
	stats.UpdatedAt = at
	return change
}

// ProgressFor measures a requirement against the user's activity.
// lifetime is the user's lifetime-earned points.
func ProgressFor(req RequirementType, stats *ActivityStats, lifetime int64, settings Settings) int64 {
	switch req {
	case RequirementSessionCount:
		return stats.TotalSessions
	case RequirementStreakDays:
		return stats.StreakDays
	case RequirementExerciseCount:
		return stats.TotalExercises
	case RequirementReferralCount:
		return stats.TotalReferrals
	case RequirementReviewCount:
		return stats.TotalReviews
	case RequirementPurchaseCount:
		return stats.TotalPurchases
	case RequirementPointsReached:
		return lifetime
	case RequirementTierReached:
		return settings.TierRank(settings.TierFor(lifetime))
	default:
		logrus.Warnf("unknown requirement type %q", req)
		return 0
	}
}
