package notify

import (
	"time"

	"github.com/AccelByte/extend-fitness-gamification/pkg/state"
)

// Event kinds published after a progress unit commits.
const (
	KindAchievementUnlocked = "achievement_unlocked"
	KindMilestoneReached    = "milestone_reached"
	KindTierChanged         = "tier_changed"
)

// Event is a committed progress change that sinks deliver to the outside world.
type Event interface {
	// Kind returns one of the Kind constants.
	Kind() string

	// UserID returns the user the event is about.
	UserID() string

	// OccurredAt returns the commit time of the change.
	OccurredAt() time.Time
}

// AchievementUnlocked is emitted once when an achievement completes.
type AchievementUnlocked struct {
	User          string            `json:"userId"`
	Achievement   state.Achievement `json:"achievement"`
	PointsAwarded int64             `json:"pointsAwarded"`
	TransactionID string            `json:"transactionId,omitempty"`
	At            time.Time         `json:"occurredAt"`
}

func (e *AchievementUnlocked) Kind() string          { return KindAchievementUnlocked }
func (e *AchievementUnlocked) UserID() string        { return e.User }
func (e *AchievementUnlocked) OccurredAt() time.Time { return e.At }

// MilestoneReached is emitted once when a balance crosses a milestone target.
type MilestoneReached struct {
	User          string          `json:"userId"`
	Milestone     state.Milestone `json:"milestone"`
	Balance       int64           `json:"balance"`
	TransactionID string          `json:"transactionId,omitempty"`
	At            time.Time       `json:"occurredAt"`
}

func (e *MilestoneReached) Kind() string          { return KindMilestoneReached }
func (e *MilestoneReached) UserID() string        { return e.User }
func (e *MilestoneReached) OccurredAt() time.Time { return e.At }

// TierChanged is emitted when lifetime points move a user into another tier.
type TierChanged struct {
	User           string     `json:"userId"`
	From           state.Tier `json:"from"`
	To             state.Tier `json:"to"`
	LifetimePoints int64      `json:"lifetimePoints"`
	At             time.Time  `json:"occurredAt"`
}

func (e *TierChanged) Kind() string          { return KindTierChanged }
func (e *TierChanged) UserID() string        { return e.User }
func (e *TierChanged) OccurredAt() time.Time { return e.At }
