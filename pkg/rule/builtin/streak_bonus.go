package builtin

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-fitness-gamification/pkg/rule"
	"github.com/AccelByte/extend-fitness-gamification/pkg/signal"
	signalBuiltin "github.com/AccelByte/extend-fitness-gamification/pkg/signal/builtin"
	"github.com/AccelByte/extend-fitness-gamification/pkg/state"
)

const (
	// StreakBonusRuleID is the identifier for the streak bonus rule
	StreakBonusRuleID = "streak_bonus"

	// DefaultStreakEveryDays is the default streak length that pays a bonus
	DefaultStreakEveryDays = 7
)

// StreakBonusRule pays PointsPerStreak whenever the user's daily streak
// reaches a multiple of every_days.
type StreakBonusRule struct {
	config    rule.RuleConfig
	everyDays int64
}

// NewStreakBonusRule creates a new streak bonus rule.
func NewStreakBonusRule(config rule.RuleConfig) (*StreakBonusRule, error) {
	everyDays := config.GetInt("every_days", DefaultStreakEveryDays)
	if everyDays < 1 {
		return nil, fmt.Errorf("every_days must be positive, got %d", everyDays)
	}

	logrus.Infof("creating streak bonus rule with every_days=%d", everyDays)

	return &StreakBonusRule{
		config:    config,
		everyDays: int64(everyDays),
	}, nil
}

// ID returns the rule identifier.
func (r *StreakBonusRule) ID() string {
	return r.config.ID
}

// Name returns the rule name.
func (r *StreakBonusRule) Name() string {
	return "Streak Bonus"
}

// SignalTypes returns the signal types this rule handles.
func (r *StreakBonusRule) SignalTypes() []string {
	return []string{signalBuiltin.TypeSessionCompleted}
}

// Config returns the rule configuration.
func (r *StreakBonusRule) Config() rule.RuleConfig {
	return r.config
}

// Evaluate checks the streak recorded by the session that produced the signal.
func (r *StreakBonusRule) Evaluate(ctx context.Context, sig signal.Signal) (bool, *rule.Trigger, error) {
	playerCtx := sig.Context()
	if playerCtx == nil || playerCtx.Activity == nil {
		return false, nil, fmt.Errorf("signal for user %s has no activity context", sig.UserID())
	}

	stats := playerCtx.Activity
	if stats.StreakDays == 0 || stats.StreakDays%r.everyDays != 0 || stats.LastActivityDate == nil {
		return false, nil, nil
	}

	points, err := rule.ComputePoints(state.SourceStreakBonus, playerCtx.Settings)
	if err != nil {
		return false, nil, err
	}
	if points == 0 {
		return false, nil, nil
	}

	day := state.DayOf(*stats.LastActivityDate).Format("2006-01-02")
	trigger := rule.NewTrigger(r.ID(), sig.UserID(), fmt.Sprintf("%d day streak", stats.StreakDays), r.config.Priority).
		WithAward(state.SourceStreakBonus, fmt.Sprintf("streak:%d:%s", stats.StreakDays, day), points).
		WithMetadata("streak_days", stats.StreakDays).
		WithMetadata("every_days", r.everyDays)

	logrus.Infof("streak bonus rule triggered for user %s: streak=%d", sig.UserID(), stats.StreakDays)
	return true, trigger, nil
}
