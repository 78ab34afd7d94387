// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package state

import (
	"errors"
	"testing"
	"time"
)

func day(n int) time.Time {
	return time.Date(2025, 3, 1, 18, 30, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestRecordSession_Streak(t *testing.T) {
	tests := []struct {
		name       string
		days       []int
		grace      bool
		wantStreak int64
		wantLast   StreakChange
	}{
		{"first session", []int{0}, false, 1, StreakStarted},
		{"same day twice", []int{0, 0}, false, 1, StreakUnchanged},
		{"consecutive days", []int{0, 1, 2}, false, 3, StreakExtended},
		{"one missed day without grace", []int{0, 1, 3}, false, 1, StreakReset},
		{"one missed day with grace", []int{0, 1, 3}, true, 3, StreakGraceUsed},
		{"two missed days with grace", []int{0, 1, 4}, true, 1, StreakReset},
		{"grace used twice in window", []int{0, 2, 4}, true, 1, StreakReset},
		{"grace available after window", []int{0, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18,
			19, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29, 30, 31, 32, 34}, true, 33, StreakGraceUsed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := &ActivityStats{UserID: "user-1"}
			var last StreakChange
			for _, d := range tt.days {
				last = RecordSession(stats, day(d), tt.grace)
			}

			if stats.StreakDays != tt.wantStreak {
				t.Errorf("expected streak %d, got %d", tt.wantStreak, stats.StreakDays)
			}
			if last != tt.wantLast {
				t.Errorf("expected last change %d, got %d", tt.wantLast, last)
			}
			if stats.TotalSessions != int64(len(tt.days)) {
				t.Errorf("expected %d sessions, got %d", len(tt.days), stats.TotalSessions)
			}
			if stats.LongestStreak < stats.StreakDays {
				t.Errorf("longest streak %d below current %d", stats.LongestStreak, stats.StreakDays)
			}
		})
	}
}

func TestRecordSession_OutOfOrderDoesNotMoveLastDate(t *testing.T) {
	stats := &ActivityStats{}
	RecordSession(stats, day(5), false)
	RecordSession(stats, day(3), false)

	if !stats.LastActivityDate.Equal(DayOf(day(5))) {
		t.Errorf("expected last activity %v, got %v", DayOf(day(5)), stats.LastActivityDate)
	}
	if stats.StreakDays != 1 {
		t.Errorf("expected streak 1, got %d", stats.StreakDays)
	}
}

func TestApplyActivity(t *testing.T) {
	stats := &ActivityStats{}
	now := day(0)

	ApplyActivity(stats, SourceWorkoutCompletion, 1, now, false)
	ApplyActivity(stats, SourceExerciseCompletion, 4, now, false)
	ApplyActivity(stats, SourceReferral, 1, now, false)
	ApplyActivity(stats, SourceReview, 1, now, false)
	ApplyActivity(stats, SourcePurchase, 1, now, false)
	ApplyActivity(stats, SourceAdminAdjustment, 1, now, false)

	if stats.TotalSessions != 1 || stats.TotalExercises != 4 || stats.TotalReferrals != 1 ||
		stats.TotalReviews != 1 || stats.TotalPurchases != 1 {
		t.Errorf("unexpected counters: %+v", stats)
	}
}

func TestProgressFor(t *testing.T) {
	settings := DefaultSettings()
	stats := &ActivityStats{TotalSessions: 3, StreakDays: 2, TotalExercises: 12}

	tests := []struct {
		req      RequirementType
		lifetime int64
		want     int64
	}{
		{RequirementSessionCount, 0, 3},
		{RequirementStreakDays, 0, 2},
		{RequirementExerciseCount, 0, 12},
		{RequirementPointsReached, 750, 750},
		{RequirementTierReached, 0, 1},
		{RequirementTierReached, 5000, 3},
		{RequirementType("unknown"), 0, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.req), func(t *testing.T) {
			if got := ProgressFor(tt.req, stats, tt.lifetime, settings); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestUserAchievement_AdvanceCompletesOnce(t *testing.T) {
	a := &Achievement{ID: "five-sessions", RequirementValue: 5, PointValue: 40}
	ua := &UserAchievement{AchievementID: a.ID}
	now := day(0)

	completions := 0
	for _, p := range []int64{3, 5, 7} {
		done, err := ua.Advance(a, p, now, true)
		if err != nil {
			t.Fatalf("unexpected error at progress %d: %v", p, err)
		}
		if done {
			completions++
		}
	}

	if completions != 1 {
		t.Errorf("expected exactly one completion, got %d", completions)
	}
	if ua.Status != AchievementCompleted {
		t.Errorf("expected completed, got %s", ua.Status)
	}
	if ua.PointsAwarded != 40 {
		t.Errorf("expected points awarded 40, got %d", ua.PointsAwarded)
	}
	if ua.Progress != 5 {
		t.Errorf("completed progress should be frozen at 5, got %d", ua.Progress)
	}
}

func TestUserAchievement_AdvanceWithoutComplete(t *testing.T) {
	a := &Achievement{ID: "a", RequirementValue: 2, PointValue: 10}
	ua := &UserAchievement{AchievementID: a.ID}

	done, err := ua.Advance(a, 4, day(0), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if done || ua.Status != AchievementInProgress {
		t.Errorf("expected in_progress without completion, got %s (done=%v)", ua.Status, done)
	}

	ua.Advance(a, 1, day(0), false)
	if ua.Progress != 4 {
		t.Errorf("progress must not decrease, got %d", ua.Progress)
	}
}

func TestUserReward_Transition(t *testing.T) {
	now := day(0)
	r := &UserReward{ID: "ur-1", Status: RedemptionPending}

	if err := r.Transition(RedemptionFulfilled, now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.FulfilledAt == nil {
		t.Error("expected fulfilledAt to be set")
	}

	for _, next := range []RedemptionStatus{RedemptionCancelled, RedemptionExpired, RedemptionPending} {
		err := r.Transition(next, now)
		if !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("expected ErrInvalidTransition for %s, got %v", next, err)
		}
	}
	if KindOf(r.Transition(RedemptionCancelled, now)) != KindConflict {
		t.Error("expected invalid transition to be a conflict")
	}
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{"defaults", func(s *Settings) {}, false},
		{"zero multiplier", func(s *Settings) { s.PointsMultiplier = 0 }, true},
		{"multiplier above cap", func(s *Settings) { s.PointsMultiplier = 10.5 }, true},
		{"negative base", func(s *Settings) { s.PointsPerReview = -1 }, true},
		{"thresholds not starting at zero", func(s *Settings) { s.TierThresholds[0].MinPoints = 5 }, true},
		{"thresholds not ascending", func(s *Settings) { s.TierThresholds[2].MinPoints = 1000 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.mutate(&s)
			err := s.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error=%v, got %v", tt.wantErr, err)
			}
			if err != nil && !errors.Is(err, ErrInvalidSettings) {
				t.Errorf("expected ErrInvalidSettings, got %v", err)
			}
		})
	}
}

func TestSettings_CloneDoesNotAlias(t *testing.T) {
	s := DefaultSettings()
	c := s.Clone()
	c.TierThresholds[1].MinPoints = 1

	if s.TierThresholds[1].MinPoints != 1000 {
		t.Error("clone must not share tier thresholds")
	}
}

func TestLedgerEntry_Validate(t *testing.T) {
	entry := LedgerEntry{UserID: "u", Points: 0, Type: TransactionEarn, Source: SourceReview}
	if !errors.Is(entry.Validate(), ErrInvalidDelta) {
		t.Error("expected ErrInvalidDelta for zero points")
	}
	if KindOf(entry.Validate()) != KindValidation {
		t.Error("expected validation kind")
	}

	entry.Points = 5
	entry.Type = "gift"
	if !errors.Is(entry.Validate(), ErrInvalidEntry) {
		t.Error("expected ErrInvalidEntry for unknown type")
	}
}
