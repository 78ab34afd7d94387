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
	// LongSessionRuleID is the identifier for the long session rule
	LongSessionRuleID = "long_session"

	// DefaultLongSessionMinutes is the default session length that qualifies
	DefaultLongSessionMinutes = 60

	// DefaultLongSessionPoints is the default one-time bonus
	DefaultLongSessionPoints = 100
)

// LongSessionRule pays a one-time bonus for the user's first session of at
// least min_minutes. The fixed source id makes every later match a replay.
type LongSessionRule struct {
	config     rule.RuleConfig
	minMinutes int64
	points     int64
}

// NewLongSessionRule creates a new long session rule.
func NewLongSessionRule(config rule.RuleConfig) (*LongSessionRule, error) {
	minMinutes := config.GetInt("min_minutes", DefaultLongSessionMinutes)
	points := config.GetInt("points", DefaultLongSessionPoints)
	if minMinutes < 1 || points < 0 {
		return nil, fmt.Errorf("invalid long session parameters: min_minutes=%d points=%d", minMinutes, points)
	}

	logrus.Infof("creating long session rule with min_minutes=%d, points=%d", minMinutes, points)

	return &LongSessionRule{
		config:     config,
		minMinutes: int64(minMinutes),
		points:     int64(points),
	}, nil
}

// ID returns the rule identifier.
func (r *LongSessionRule) ID() string {
	return r.config.ID
}

// Name returns the rule name.
func (r *LongSessionRule) Name() string {
	return "Long Session"
}

// SignalTypes returns the signal types this rule handles.
func (r *LongSessionRule) SignalTypes() []string {
	return []string{signalBuiltin.TypeSessionCompleted}
}

// Config returns the rule configuration.
func (r *LongSessionRule) Config() rule.RuleConfig {
	return r.config
}

// Evaluate checks the session duration.
func (r *LongSessionRule) Evaluate(ctx context.Context, sig signal.Signal) (bool, *rule.Trigger, error) {
	session, ok := sig.(*signalBuiltin.SessionSignal)
	if !ok {
		return false, nil, fmt.Errorf("expected SessionSignal, got %T", sig)
	}

	if session.DurationMinutes < r.minMinutes || r.points == 0 {
		return false, nil, nil
	}

	trigger := rule.NewTrigger(r.ID(), sig.UserID(),
		fmt.Sprintf("First session of %d minutes or more", r.minMinutes), r.config.Priority).
		WithAward(state.SourceLongSession, r.ID(), r.points).
		WithMetadata("session_id", session.SessionID).
		WithMetadata("duration_minutes", session.DurationMinutes)

	return true, trigger, nil
}
