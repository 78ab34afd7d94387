package signal

import (
	"time"

	"github.com/AccelByte/extend-fitness-gamification/pkg/state"
)

// Signal represents a normalized activity event with player context.
// Signals are produced by the Processor from raw events and are consumed
// by the rule engine, which turns their awards into ledger rows.
type Signal interface {
	// Type returns the signal type identifier (e.g., "session_completed", "purchase_completed").
	Type() string

	// UserID returns the user identifier.
	UserID() string

	// Timestamp returns when the activity happened.
	Timestamp() time.Time

	// Metadata returns additional signal-specific data.
	// This allows rules to access signal-specific information without type assertions.
	Metadata() map[string]interface{}

	// Context returns the user's balance, activity and settings snapshot.
	Context() *PlayerContext

	// Awards returns the point sources the activity earns.
	Awards() []Award
}

// Award is one ledger row a signal asks for. Units multiplies the source's base value.
type Award struct {
	Source      state.Source
	SourceID    string
	Units       int64
	Description string
	Metadata    interface{}
}

// PlayerContext wraps the user's progress with the settings snapshot of the operation.
// This provides rules with all the context they need to make decisions.
type PlayerContext struct {
	UserID         string
	Activity       *state.ActivityStats
	Balance        int64
	LifetimePoints int64
	Tier           state.Tier
	Settings       state.Settings
}

// BaseSignal implements the Signal interface and is embedded by concrete signals.
type BaseSignal struct {
	signalType string
	userID     string
	timestamp  time.Time
	metadata   map[string]interface{}
	context    *PlayerContext
}

// NewBaseSignal creates a base signal. A nil metadata map is replaced by an empty one.
func NewBaseSignal(signalType, userID string, timestamp time.Time, metadata map[string]interface{}, context *PlayerContext) BaseSignal {
	if metadata == nil {
		metadata = make(map[string]interface{})
	}
	return BaseSignal{
		signalType: signalType,
		userID:     userID,
		timestamp:  timestamp,
		metadata:   metadata,
		context:    context,
	}
}

// Type implements Signal interface.
func (s *BaseSignal) Type() string {
	return s.signalType
}

// UserID implements Signal interface.
func (s *BaseSignal) UserID() string {
	return s.userID
}

// Timestamp implements Signal interface.
func (s *BaseSignal) Timestamp() time.Time {
	return s.timestamp
}

// Metadata implements Signal interface.
func (s *BaseSignal) Metadata() map[string]interface{} {
	return s.metadata
}

// Context implements Signal interface.
func (s *BaseSignal) Context() *PlayerContext {
	return s.context
}

// Awards implements Signal interface. The base signal earns nothing.
func (s *BaseSignal) Awards() []Award {
	return nil
}

// SetContext replaces the player context, used after the awards of the signal committed.
func (s *BaseSignal) SetContext(context *PlayerContext) {
	s.context = context
}
