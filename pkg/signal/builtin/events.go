package builtin

import (
	"time"

	"github.com/shopspring/decimal"
)

// Raw activity events accepted by the built-in event processors.

// SessionCompletedEvent is reported when a user finishes a workout session.
type SessionCompletedEvent struct {
	UserID             string    `json:"userId"`
	SessionID          string    `json:"sessionId"`
	DurationMinutes    int64     `json:"durationMinutes"`
	ExercisesCompleted int64     `json:"exercisesCompleted"`
	CompletedAt        time.Time `json:"completedAt"`
}

// PurchaseCompletedEvent is reported when a user buys a package.
// OrderID identifies the purchase; PackageID is used when it is empty.
type PurchaseCompletedEvent struct {
	UserID      string          `json:"userId"`
	PackageID   string          `json:"packageId"`
	OrderID     string          `json:"orderId"`
	Amount      decimal.Decimal `json:"amount"`
	PurchasedAt time.Time       `json:"purchasedAt"`
}

// ReferralConfirmedEvent is reported when a referred user signs up.
type ReferralConfirmedEvent struct {
	UserID         string    `json:"userId"`
	ReferredUserID string    `json:"referredUserId"`
	ConfirmedAt    time.Time `json:"confirmedAt"`
}

// ReviewSubmittedEvent is reported when a user reviews a trainer or program.
type ReviewSubmittedEvent struct {
	UserID      string    `json:"userId"`
	ReviewID    string    `json:"reviewId"`
	Rating      int64     `json:"rating"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// LevelUpEvent is reported when a user reaches a new fitness level.
type LevelUpEvent struct {
	UserID    string    `json:"userId"`
	Level     int64     `json:"level"`
	ReachedAt time.Time `json:"reachedAt"`
}

func eventTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}
