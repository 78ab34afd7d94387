// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package progress evaluates achievements, milestones and tiers against a
// user's activity and balance. Every completion and its bonus row commit in
// the same unit of work, so a condition pays out exactly once.
package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-fitness-gamification/pkg/metrics"
	"github.com/AccelByte/extend-fitness-gamification/pkg/notify"
	"github.com/AccelByte/extend-fitness-gamification/pkg/service"
	"github.com/AccelByte/extend-fitness-gamification/pkg/state"
)

const (
	evaluateUnitName = "progress.evaluate"
	updateUnitName   = "progress.update"
	awardUnitName    = "progress.award"

	systemAwarder = "system"
)

// Tracker owns the achievement and milestone state machines
type Tracker struct {
	uow       *service.UnitOfWork
	ledger    service.Ledger
	store     service.ProgressStore
	catalog   service.Catalog
	publisher notify.Publisher
	now       func() time.Time
}

// NewTracker creates a tracker. publisher may be nil to drop notifications.
func NewTracker(
	uow *service.UnitOfWork,
	ledger service.Ledger,
	store service.ProgressStore,
	catalog service.Catalog,
	publisher notify.Publisher,
) *Tracker {
	return &Tracker{
		uow:       uow,
		ledger:    ledger,
		store:     store,
		catalog:   catalog,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Result lists what one evaluation changed
type Result struct {
	Unlocked   []state.UserAchievement
	Milestones []state.UserMilestone
	Tier       *notify.TierChanged
	events     []notify.Event
}

// Changed reports whether anything was completed, reached or promoted
func (r *Result) Changed() bool {
	return len(r.Unlocked) > 0 || len(r.Milestones) > 0 || r.Tier != nil
}

// Evaluate re-measures every active achievement and milestone for the user.
// With allowComplete false achievements only move to in_progress; milestones
// and tiers are always applied.
func (t *Tracker) Evaluate(ctx context.Context, userID string, settings state.Settings, allowComplete bool) (*Result, error) {
	achievements, err := t.catalog.Achievements(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load achievements: %w", err)
	}
	milestones, err := t.catalog.Milestones(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load milestones: %w", err)
	}

	var result *Result
	err = t.uow.Do(ctx, evaluateUnitName, func(tx *service.Tx) error {
		result = &Result{}
		return t.evaluateTx(tx, userID, achievements, milestones, settings, allowComplete, result)
	})
	if err != nil {
		logrus.Errorf("progress evaluation for user %s failed: %v", userID, err)
		return nil, err
	}

	t.publish(ctx, settings, result)
	return result, nil
}

func (t *Tracker) evaluateTx(
	tx *service.Tx,
	userID string,
	achievements []state.Achievement,
	milestones []state.Milestone,
	settings state.Settings,
	allowComplete bool,
	result *Result,
) error {
	now := t.now()

	stats, err := t.store.ActivityTx(tx, userID)
	if err != nil {
		return err
	}
	lifetime, err := t.ledger.LifetimeEarnedTx(tx, userID)
	if err != nil {
		return err
	}
	balance, err := t.ledger.BalanceTx(tx, userID)
	if err != nil {
		return err
	}

	// a bonus can satisfy a points requirement or cross the next milestone
	for {
		changed := false

		for i := range achievements {
			a := &achievements[i]
			ua, err := t.store.UserAchievementTx(tx, userID, a.ID)
			if err != nil {
				return err
			}
			if ua.IsCompleted() {
				continue
			}

			before := *ua
			progress := state.ProgressFor(a.RequirementType, stats, lifetime, settings)
			completed, err := ua.Advance(a, progress, now, allowComplete)
			if err != nil {
				return err
			}

			if completed {
				row, err := t.appendBonus(tx, userID, a.PointValue, state.SourceAchievementEarned, a.ID,
					fmt.Sprintf("Achievement unlocked: %s", a.Name),
					state.AchievementMetadata{
						AchievementID:    a.ID,
						Name:             a.Name,
						RequirementType:  a.RequirementType,
						RequirementValue: a.RequirementValue,
					}, systemAwarder, now)
				if err != nil {
					return err
				}
				if row != nil {
					balance = row.Balance
					lifetime += row.Points
				}
				changed = true
				result.Unlocked = append(result.Unlocked, *ua)
				result.events = append(result.events, &notify.AchievementUnlocked{
					User:          userID,
					Achievement:   *a,
					PointsAwarded: ua.PointsAwarded,
					TransactionID: rowID(row),
					At:            now,
				})
				ua.NotificationSent = settings.Features.Notifications
				achievementID := a.ID
				tx.AfterCommit(func() {
					metrics.AchievementsUnlocked.WithLabelValues(achievementID).Inc()
				})
			}

			if completed || ua.Status != before.Status || ua.Progress != before.Progress {
				if err := t.store.PutUserAchievementTx(tx, ua); err != nil {
					return err
				}
			}
		}

		for i := range milestones {
			m := &milestones[i]
			if balance < m.TargetPoints {
				break
			}
			_, reached, err := t.store.UserMilestoneTx(tx, userID, m.ID)
			if err != nil {
				return err
			}
			if reached {
				continue
			}

			row, err := t.appendBonus(tx, userID, m.BonusPoints, state.SourceMilestoneReached, m.ID,
				fmt.Sprintf("Milestone reached: %s", m.Name),
				state.MilestoneMetadata{MilestoneID: m.ID, Name: m.Name, TargetPoints: m.TargetPoints}, systemAwarder, now)
			if err != nil {
				return err
			}

			um := &state.UserMilestone{
				UserID:      userID,
				MilestoneID: m.ID,
				ReachedAt:   now,
			}
			reachedAt := balance
			if row != nil {
				um.BonusPointsAwarded = row.Points
				um.TransactionID = row.ID
				balance = row.Balance
				lifetime += row.Points
			}
			if err := t.store.PutUserMilestoneTx(tx, um); err != nil {
				return err
			}

			changed = true
			result.Milestones = append(result.Milestones, *um)
			result.events = append(result.events, &notify.MilestoneReached{
				User:          userID,
				Milestone:     *m,
				Balance:       reachedAt,
				TransactionID: um.TransactionID,
				At:            now,
			})
			milestoneID := m.ID
			tx.AfterCommit(func() {
				metrics.MilestonesReached.WithLabelValues(milestoneID).Inc()
			})
		}

		if !changed {
			break
		}
	}

	tier := settings.TierFor(lifetime)
	if tier != stats.Tier {
		initial := stats.Tier == "" && tier == settings.TierFor(0)
		if !initial {
			change := &notify.TierChanged{
				User:           userID,
				From:           stats.Tier,
				To:             tier,
				LifetimePoints: lifetime,
				At:             now,
			}
			result.Tier = change
			result.events = append(result.events, change)
			tx.AfterCommit(func() {
				metrics.TierChanges.WithLabelValues(string(tier)).Inc()
				logrus.Infof("user %s moved from tier %q to %q", userID, change.From, change.To)
			})
		}
		stats.Tier = tier
		stats.UpdatedAt = now
		if err := t.store.PutActivityTx(tx, stats); err != nil {
			return err
		}
	}

	return nil
}

// appendBonus writes a bonus row; a zero bonus records nothing and returns nil
func (t *Tracker) appendBonus(
	tx *service.Tx,
	userID string,
	points int64,
	source state.Source,
	sourceID, description string,
	metadata interface{},
	awardedBy string,
	now time.Time,
) (*state.PointTransaction, error) {
	if points == 0 {
		return nil, nil
	}

	row, err := t.ledger.AppendTx(tx, state.LedgerEntry{
		UserID:      userID,
		Points:      points,
		Type:        state.TransactionBonus,
		Source:      source,
		SourceID:    sourceID,
		Description: description,
		Metadata:    metadata,
		AwardedBy:   awardedBy,
	}, now)
	if errors.Is(err, state.ErrDuplicateSource) {
		// the bonus row exists while the state record does not; never pay twice
		logrus.Warnf("bonus %s/%s for user %s was already paid", source, sourceID, userID)
		return nil, nil
	}
	return row, err
}

func rowID(row *state.PointTransaction) string {
	if row == nil {
		return ""
	}
	return row.ID
}

// UpdateProgress sets the progress of one achievement explicitly.
// Progress never decreases; a completed achievement is returned unchanged.
// The completion rule applies regardless of the auto-award toggle.
func (t *Tracker) UpdateProgress(ctx context.Context, userID, achievementID string, progress int64, settings state.Settings) (*state.UserAchievement, error) {
	if progress < 0 {
		return nil, fmt.Errorf("%w: progress %d is negative", state.ErrInvalidProgress, progress)
	}

	return t.advance(ctx, updateUnitName, userID, achievementID, systemAwarder, settings, nil,
		func(ua *state.UserAchievement, _ *state.Achievement) (int64, error) {
			if progress < ua.Progress {
				return 0, fmt.Errorf("%w: progress %d is below current %d", state.ErrInvalidProgress, progress, ua.Progress)
			}
			return progress, nil
		})
}

// AwardAchievement completes an achievement for a user by hand, paying its point value
func (t *Tracker) AwardAchievement(ctx context.Context, userID, achievementID, awardedBy string, settings state.Settings) (*state.UserAchievement, error) {
	if userID == "" || awardedBy == "" {
		return nil, fmt.Errorf("%w: user id and awarder are required", state.ErrInvalidEntry)
	}

	completed := fmt.Errorf("%w: user %s already holds %s", state.ErrAchievementCompleted, userID, achievementID)
	return t.advance(ctx, awardUnitName, userID, achievementID, awardedBy, settings, completed,
		func(ua *state.UserAchievement, a *state.Achievement) (int64, error) {
			return max(ua.Progress, a.RequirementValue), nil
		})
}

// advance moves one achievement to the progress chosen by target in a single unit.
// A completed achievement returns completedErr, or itself unchanged when that is nil.
func (t *Tracker) advance(
	ctx context.Context,
	unitName, userID, achievementID, awardedBy string,
	settings state.Settings,
	completedErr error,
	target func(ua *state.UserAchievement, a *state.Achievement) (int64, error),
) (*state.UserAchievement, error) {
	a, err := t.catalog.Achievement(ctx, achievementID)
	if err != nil {
		return nil, err
	}
	if !a.IsActive {
		return nil, fmt.Errorf("%w: achievement %s is inactive", state.ErrInvalidTransition, achievementID)
	}

	var ua *state.UserAchievement
	result := &Result{}
	err = t.uow.Do(ctx, unitName, func(tx *service.Tx) error {
		result = &Result{}
		now := t.now()

		var err error
		ua, err = t.store.UserAchievementTx(tx, userID, achievementID)
		if err != nil {
			return err
		}
		if ua.IsCompleted() {
			return completedErr
		}

		progress, err := target(ua, a)
		if err != nil {
			return err
		}
		completed, err := ua.Advance(a, progress, now, true)
		if err != nil {
			return err
		}
		if completed {
			row, err := t.appendBonus(tx, userID, a.PointValue, state.SourceAchievementEarned, a.ID,
				fmt.Sprintf("Achievement unlocked: %s", a.Name),
				state.AchievementMetadata{
					AchievementID:    a.ID,
					Name:             a.Name,
					RequirementType:  a.RequirementType,
					RequirementValue: a.RequirementValue,
				}, awardedBy, now)
			if err != nil {
				return err
			}
			ua.NotificationSent = settings.Features.Notifications
			result.Unlocked = append(result.Unlocked, *ua)
			result.events = append(result.events, &notify.AchievementUnlocked{
				User:          userID,
				Achievement:   *a,
				PointsAwarded: ua.PointsAwarded,
				TransactionID: rowID(row),
				At:            now,
			})
			tx.AfterCommit(func() {
				metrics.AchievementsUnlocked.WithLabelValues(a.ID).Inc()
			})
		}
		return t.store.PutUserAchievementTx(tx, ua)
	})
	if err != nil {
		return nil, err
	}

	t.publish(ctx, settings, result)

	if len(result.Unlocked) > 0 {
		// the bonus may cross a milestone or a tier
		if _, err := t.Evaluate(ctx, userID, settings, settings.Features.AutoAward); err != nil {
			logrus.Errorf("follow-up evaluation for user %s failed: %v", userID, err)
		}
	}

	return ua, nil
}

func (t *Tracker) publish(ctx context.Context, settings state.Settings, result *Result) {
	if t.publisher == nil || !settings.Features.Notifications || len(result.events) == 0 {
		return
	}
	t.publisher.Publish(ctx, result.events...)
}

// AchievementView joins a definition with the user's state
type AchievementView struct {
	Achievement state.Achievement     `json:"achievement"`
	State       state.UserAchievement `json:"state"`
}

// Achievements lists every active achievement with the user's state, not_started when untouched
func (t *Tracker) Achievements(ctx context.Context, userID string) ([]AchievementView, error) {
	definitions, err := t.catalog.Achievements(ctx, true)
	if err != nil {
		return nil, err
	}
	states, err := t.store.UserAchievements(ctx, userID)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]state.UserAchievement, len(states))
	for _, s := range states {
		byID[s.AchievementID] = s
	}

	views := make([]AchievementView, 0, len(definitions))
	for _, a := range definitions {
		s, ok := byID[a.ID]
		if !ok {
			s = state.UserAchievement{UserID: userID, AchievementID: a.ID, Status: state.AchievementNotStarted}
		}
		views = append(views, AchievementView{Achievement: a, State: s})
	}
	return views, nil
}

// Milestones lists the milestones the user reached
func (t *Tracker) Milestones(ctx context.Context, userID string) ([]state.UserMilestone, error) {
	return t.store.UserMilestones(ctx, userID)
}
