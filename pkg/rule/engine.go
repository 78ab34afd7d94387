package rule

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-fitness-gamification/pkg/metrics"
	"github.com/AccelByte/extend-fitness-gamification/pkg/signal"
)

// Engine turns activity into ledger rows and evaluates signals against the
// registered bonus rules.
type Engine struct {
	registry *Registry
	deps     *Dependencies
	now      func() time.Time
}

// NewEngine creates a new engine. deps may be nil for rule evaluation only.
func NewEngine(registry *Registry, deps *Dependencies) *Engine {
	if deps == nil {
		deps = NewDependencies()
	}
	now := deps.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Engine{
		registry: registry,
		deps:     deps,
		now:      now,
	}
}

// Evaluate evaluates a signal against all matching rules.
// Returns a list of triggers for rules that matched.
func (e *Engine) Evaluate(ctx context.Context, sig signal.Signal) ([]*Trigger, error) {
	if sig == nil {
		return nil, nil
	}

	// Get rules that handle this signal type
	rules := e.registry.GetBySignalType(sig.Type())
	if len(rules) == 0 {
		logrus.Debugf("no rules found for signal type '%s'", sig.Type())
		return nil, nil
	}

	logrus.Debugf("evaluating signal type '%s' against %d rules", sig.Type(), len(rules))

	var triggers []*Trigger

	for _, rule := range rules {
		matched, trigger, err := rule.Evaluate(ctx, sig)
		if err != nil {
			logrus.Errorf("rule %s evaluation failed: %v", rule.ID(), err)
			// Continue evaluating other rules even if one fails
			continue
		}

		if matched && trigger != nil {
			logrus.Infof("rule %s triggered for user %s: %s", rule.ID(), sig.UserID(), trigger.Reason)
			metrics.RuleTriggers.WithLabelValues(rule.ID()).Inc()
			triggers = append(triggers, trigger)
		}
	}

	// Higher priority first, rule id breaks ties so award order is stable
	sort.SliceStable(triggers, func(i, j int) bool {
		if triggers[i].Priority != triggers[j].Priority {
			return triggers[i].Priority > triggers[j].Priority
		}
		return triggers[i].RuleID < triggers[j].RuleID
	})

	return triggers, nil
}

// EvaluateMultiple evaluates multiple signals in sequence.
// This is useful for batch processing.
func (e *Engine) EvaluateMultiple(ctx context.Context, signals []signal.Signal) ([]*Trigger, error) {
	var allTriggers []*Trigger

	for _, sig := range signals {
		triggers, err := e.Evaluate(ctx, sig)
		if err != nil {
			return allTriggers, err
		}
		allTriggers = append(allTriggers, triggers...)
	}

	return allTriggers, nil
}

// GetRegistry returns the rule registry used by this engine.
func (e *Engine) GetRegistry() *Registry {
	return e.registry
}
