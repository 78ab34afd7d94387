package builtin

import (
	"context"
	"fmt"

	"github.com/AccelByte/extend-fitness-gamification/pkg/signal"
	"github.com/AccelByte/extend-fitness-gamification/pkg/state"
)

// RegisterEventProcessors registers all built-in event processors.
func RegisterEventProcessors(registry *signal.EventProcessorRegistry) {
	registry.Register(&SessionEventProcessor{})
	registry.Register(&PurchaseEventProcessor{})
	registry.Register(&ReferralEventProcessor{})
	registry.Register(&ReviewEventProcessor{})
	registry.Register(&LevelUpEventProcessor{})
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", state.ErrInvalidEntry, fmt.Sprintf(format, args...))
}

func loadContext(ctx context.Context, loader signal.PlayerContextLoader, userID string) (*signal.PlayerContext, error) {
	playerCtx, err := loader.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load player context for user %s: %w", userID, err)
	}
	return playerCtx, nil
}

// SessionEventProcessor processes completed workout sessions.
type SessionEventProcessor struct{}

func (p *SessionEventProcessor) EventType() string {
	return TypeSessionCompleted
}

func (p *SessionEventProcessor) Process(ctx context.Context, event interface{}, loader signal.PlayerContextLoader) (signal.Signal, error) {
	e, ok := event.(*SessionCompletedEvent)
	if !ok || e == nil {
		return nil, invalid("expected *SessionCompletedEvent, got %T", event)
	}
	if e.UserID == "" {
		return nil, invalid("user ID is empty in session event")
	}
	if e.SessionID == "" {
		return nil, invalid("session ID is empty in session event")
	}
	if e.DurationMinutes < 0 || e.ExercisesCompleted < 0 {
		return nil, invalid("session %s has negative duration or exercise count", e.SessionID)
	}

	playerCtx, err := loadContext(ctx, loader, e.UserID)
	if err != nil {
		return nil, err
	}
	return NewSessionSignal(e.UserID, e.SessionID, eventTime(e.CompletedAt), e.DurationMinutes, e.ExercisesCompleted, playerCtx), nil
}

// PurchaseEventProcessor processes completed package purchases.
type PurchaseEventProcessor struct{}

func (p *PurchaseEventProcessor) EventType() string {
	return TypePurchaseCompleted
}

func (p *PurchaseEventProcessor) Process(ctx context.Context, event interface{}, loader signal.PlayerContextLoader) (signal.Signal, error) {
	e, ok := event.(*PurchaseCompletedEvent)
	if !ok || e == nil {
		return nil, invalid("expected *PurchaseCompletedEvent, got %T", event)
	}
	if e.UserID == "" {
		return nil, invalid("user ID is empty in purchase event")
	}
	if e.PackageID == "" {
		return nil, invalid("package ID is empty in purchase event")
	}
	if e.Amount.IsNegative() {
		return nil, invalid("purchase amount %s is negative", e.Amount)
	}

	playerCtx, err := loadContext(ctx, loader, e.UserID)
	if err != nil {
		return nil, err
	}
	return NewPurchaseSignal(e.UserID, e.PackageID, e.OrderID, e.Amount, eventTime(e.PurchasedAt), playerCtx), nil
}

// ReferralEventProcessor processes confirmed referrals.
type ReferralEventProcessor struct{}

func (p *ReferralEventProcessor) EventType() string {
	return TypeReferralConfirmed
}

func (p *ReferralEventProcessor) Process(ctx context.Context, event interface{}, loader signal.PlayerContextLoader) (signal.Signal, error) {
	e, ok := event.(*ReferralConfirmedEvent)
	if !ok || e == nil {
		return nil, invalid("expected *ReferralConfirmedEvent, got %T", event)
	}
	if e.UserID == "" || e.ReferredUserID == "" {
		return nil, invalid("referral event needs both user IDs")
	}
	if e.UserID == e.ReferredUserID {
		return nil, invalid("user %s cannot refer themselves", e.UserID)
	}

	playerCtx, err := loadContext(ctx, loader, e.UserID)
	if err != nil {
		return nil, err
	}
	return NewReferralSignal(e.UserID, e.ReferredUserID, eventTime(e.ConfirmedAt), playerCtx), nil
}

// ReviewEventProcessor processes submitted reviews.
type ReviewEventProcessor struct{}

func (p *ReviewEventProcessor) EventType() string {
	return TypeReviewSubmitted
}

func (p *ReviewEventProcessor) Process(ctx context.Context, event interface{}, loader signal.PlayerContextLoader) (signal.Signal, error) {
	e, ok := event.(*ReviewSubmittedEvent)
	if !ok || e == nil {
		return nil, invalid("expected *ReviewSubmittedEvent, got %T", event)
	}
	if e.UserID == "" {
		return nil, invalid("user ID is empty in review event")
	}
	if e.ReviewID == "" {
		return nil, invalid("review ID is empty in review event")
	}
	if e.Rating < 1 || e.Rating > 5 {
		return nil, invalid("rating %d is outside 1..5", e.Rating)
	}

	playerCtx, err := loadContext(ctx, loader, e.UserID)
	if err != nil {
		return nil, err
	}
	return NewReviewSignal(e.UserID, e.ReviewID, e.Rating, eventTime(e.SubmittedAt), playerCtx), nil
}

// LevelUpEventProcessor processes level ups.
type LevelUpEventProcessor struct{}

func (p *LevelUpEventProcessor) EventType() string {
	return TypeLevelUp
}

func (p *LevelUpEventProcessor) Process(ctx context.Context, event interface{}, loader signal.PlayerContextLoader) (signal.Signal, error) {
	e, ok := event.(*LevelUpEvent)
	if !ok || e == nil {
		return nil, invalid("expected *LevelUpEvent, got %T", event)
	}
	if e.UserID == "" {
		return nil, invalid("user ID is empty in level up event")
	}
	if e.Level < 1 {
		return nil, invalid("level %d must be positive", e.Level)
	}

	playerCtx, err := loadContext(ctx, loader, e.UserID)
	if err != nil {
		return nil, err
	}
	return NewLevelUpSignal(e.UserID, e.Level, eventTime(e.ReachedAt), playerCtx), nil
}
