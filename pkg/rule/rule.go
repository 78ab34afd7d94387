package rule

import (
	"context"
	"time"

	"github.com/AccelByte/extend-fitness-gamification/pkg/signal"
	"github.com/AccelByte/extend-fitness-gamification/pkg/state"
)

// Rule evaluates signals and emits bonus triggers when conditions are met.
// Rules are registered in a Registry and evaluated by the Engine.
type Rule interface {
	// ID returns unique rule identifier.
	ID() string

	// Name returns human-readable rule name.
	Name() string

	// SignalTypes returns which signal types this rule handles.
	// An empty slice means the rule handles all signal types.
	SignalTypes() []string

	// Evaluate checks if the signal matches rule conditions.
	// Returns true and trigger data if rule matches, false otherwise.
	// Returns error only for unexpected failures, not rule mismatches.
	Evaluate(ctx context.Context, sig signal.Signal) (bool, *Trigger, error)

	// Config returns the rule's configuration.
	Config() RuleConfig
}

// Trigger represents a rule match that should award bonus points.
// Source and SourceID identify the bonus in the ledger, so a replayed
// trigger never pays twice.
type Trigger struct {
	RuleID    string                 // ID of the rule that triggered
	UserID    string                 // User who triggered the rule
	Timestamp time.Time              // When the trigger occurred
	Reason    string                 // Human-readable reason for the trigger
	Source    state.Source           // Ledger source of the bonus
	SourceID  string                 // Idempotency key of the bonus
	Points    int64                  // Bonus amount, already multiplied
	Metadata  map[string]interface{} // Rule-specific data
	Priority  int                    // Priority for award ordering (higher = first)
}

// NewTrigger creates a new trigger with the given parameters.
func NewTrigger(ruleID, userID, reason string, priority int) *Trigger {
	return &Trigger{
		RuleID:    ruleID,
		UserID:    userID,
		Timestamp: time.Now(),
		Reason:    reason,
		Metadata:  make(map[string]interface{}),
		Priority:  priority,
	}
}

// WithAward sets the bonus the trigger pays and returns it for chaining.
func (t *Trigger) WithAward(source state.Source, sourceID string, points int64) *Trigger {
	t.Source = source
	t.SourceID = sourceID
	t.Points = points
	return t
}

// WithMetadata adds metadata to the trigger and returns it for chaining.
func (t *Trigger) WithMetadata(key string, value interface{}) *Trigger {
	t.Metadata[key] = value
	return t
}
