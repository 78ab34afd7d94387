package builtin

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AccelByte/extend-fitness-gamification/pkg/signal"
	"github.com/AccelByte/extend-fitness-gamification/pkg/state"
)

// Signal type constants for built-in signals
const (
	TypeSessionCompleted  = "session_completed"
	TypePurchaseCompleted = "purchase_completed"
	TypeReferralConfirmed = "referral_confirmed"
	TypeReviewSubmitted   = "review_submitted"
	TypeLevelUp           = "level_up"
)

// SessionSignal represents a completed workout session.
type SessionSignal struct {
	signal.BaseSignal
	SessionID          string
	DurationMinutes    int64
	ExercisesCompleted int64
}

// NewSessionSignal creates a new session signal.
func NewSessionSignal(userID, sessionID string, timestamp time.Time, duration, exercises int64, context *signal.PlayerContext) *SessionSignal {
	metadata := map[string]interface{}{
		"session_id":          sessionID,
		"duration_minutes":    duration,
		"exercises_completed": exercises,
	}
	return &SessionSignal{
		BaseSignal:         signal.NewBaseSignal(TypeSessionCompleted, userID, timestamp, metadata, context),
		SessionID:          sessionID,
		DurationMinutes:    duration,
		ExercisesCompleted: exercises,
	}
}

// Awards earns one workout completion and one exercise row covering all exercises of the session.
func (s *SessionSignal) Awards() []signal.Award {
	awards := []signal.Award{{
		Source:      state.SourceWorkoutCompletion,
		SourceID:    s.SessionID,
		Units:       1,
		Description: "Workout completed",
		Metadata: state.WorkoutMetadata{
			SessionID:          s.SessionID,
			DurationMinutes:    s.DurationMinutes,
			ExercisesCompleted: s.ExercisesCompleted,
		},
	}}
	if s.ExercisesCompleted > 0 {
		awards = append(awards, signal.Award{
			Source:      state.SourceExerciseCompletion,
			SourceID:    s.SessionID,
			Units:       s.ExercisesCompleted,
			Description: fmt.Sprintf("%d exercises completed", s.ExercisesCompleted),
			Metadata:    state.ExerciseMetadata{SessionID: s.SessionID, Count: s.ExercisesCompleted},
		})
	}
	return awards
}

// PurchaseSignal represents a completed package purchase.
type PurchaseSignal struct {
	signal.BaseSignal
	PackageID string
	OrderID   string
	Amount    decimal.Decimal
}

// NewPurchaseSignal creates a new purchase signal.
func NewPurchaseSignal(userID, packageID, orderID string, amount decimal.Decimal, timestamp time.Time, context *signal.PlayerContext) *PurchaseSignal {
	metadata := map[string]interface{}{
		"package_id": packageID,
		"order_id":   orderID,
		"amount":     amount.String(),
	}
	return &PurchaseSignal{
		BaseSignal: signal.NewBaseSignal(TypePurchaseCompleted, userID, timestamp, metadata, context),
		PackageID:  packageID,
		OrderID:    orderID,
		Amount:     amount,
	}
}

// Awards earns the purchase base value once per order.
func (s *PurchaseSignal) Awards() []signal.Award {
	sourceID := s.OrderID
	if sourceID == "" {
		sourceID = s.PackageID
	}
	return []signal.Award{{
		Source:      state.SourcePurchase,
		SourceID:    sourceID,
		Units:       1,
		Description: fmt.Sprintf("Purchased package %s", s.PackageID),
		Metadata:    state.PurchaseMetadata{PackageID: s.PackageID, OrderID: s.OrderID, Amount: s.Amount},
	}}
}

// ReferralSignal represents a confirmed referral.
type ReferralSignal struct {
	signal.BaseSignal
	ReferredUserID string
}

// NewReferralSignal creates a new referral signal.
func NewReferralSignal(userID, referredUserID string, timestamp time.Time, context *signal.PlayerContext) *ReferralSignal {
	metadata := map[string]interface{}{
		"referred_user_id": referredUserID,
	}
	return &ReferralSignal{
		BaseSignal:     signal.NewBaseSignal(TypeReferralConfirmed, userID, timestamp, metadata, context),
		ReferredUserID: referredUserID,
	}
}

// Awards earns the referral base value once per referred user.
func (s *ReferralSignal) Awards() []signal.Award {
	return []signal.Award{{
		Source:      state.SourceReferral,
		SourceID:    s.ReferredUserID,
		Units:       1,
		Description: "Referral confirmed",
		Metadata:    state.ReferralMetadata{ReferredUserID: s.ReferredUserID},
	}}
}

// ReviewSignal represents a submitted review.
type ReviewSignal struct {
	signal.BaseSignal
	ReviewID string
	Rating   int64
}

// NewReviewSignal creates a new review signal.
func NewReviewSignal(userID, reviewID string, rating int64, timestamp time.Time, context *signal.PlayerContext) *ReviewSignal {
	metadata := map[string]interface{}{
		"review_id": reviewID,
		"rating":    rating,
	}
	return &ReviewSignal{
		BaseSignal: signal.NewBaseSignal(TypeReviewSubmitted, userID, timestamp, metadata, context),
		ReviewID:   reviewID,
		Rating:     rating,
	}
}

// Awards earns the review base value once per review.
func (s *ReviewSignal) Awards() []signal.Award {
	return []signal.Award{{
		Source:      state.SourceReview,
		SourceID:    s.ReviewID,
		Units:       1,
		Description: "Review submitted",
		Metadata:    state.ReviewMetadata{ReviewID: s.ReviewID},
	}}
}

// LevelUpSignal represents a user reaching a fitness level.
type LevelUpSignal struct {
	signal.BaseSignal
	Level int64
}

// NewLevelUpSignal creates a new level up signal.
func NewLevelUpSignal(userID string, level int64, timestamp time.Time, context *signal.PlayerContext) *LevelUpSignal {
	metadata := map[string]interface{}{
		"level": level,
	}
	return &LevelUpSignal{
		BaseSignal: signal.NewBaseSignal(TypeLevelUp, userID, timestamp, metadata, context),
		Level:      level,
	}
}

// Awards earns the level base value once per level.
func (s *LevelUpSignal) Awards() []signal.Award {
	return []signal.Award{{
		Source:      state.SourceLevelUp,
		SourceID:    fmt.Sprintf("level:%d", s.Level),
		Units:       1,
		Description: fmt.Sprintf("Reached level %d", s.Level),
	}}
}
