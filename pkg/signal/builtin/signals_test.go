package builtin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AccelByte/extend-fitness-gamification/pkg/signal"
	"github.com/AccelByte/extend-fitness-gamification/pkg/state"
)

type testLoader struct{}

func (l *testLoader) Load(ctx context.Context, userID string) (*signal.PlayerContext, error) {
	return signal.BuildPlayerContext(userID, nil, 0, 0, state.DefaultSettings()), nil
}

func newTestProcessor() *signal.Processor {
	processor := signal.NewProcessor(&testLoader{})
	RegisterEventProcessors(processor.GetEventProcessorRegistry())
	return processor
}

func TestRegisterEventProcessors(t *testing.T) {
	registry := signal.NewEventProcessorRegistry()
	RegisterEventProcessors(registry)

	want := []string{TypeLevelUp, TypePurchaseCompleted, TypeReferralConfirmed, TypeReviewSubmitted, TypeSessionCompleted}
	got := registry.EventTypes()
	if len(got) != len(want) {
		t.Fatalf("Expected %d processors, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected %s at %d, got %s", want[i], i, got[i])
		}
	}
}

func TestSessionSignal_Awards(t *testing.T) {
	completed := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
	sig, err := newTestProcessor().Process(context.Background(), TypeSessionCompleted, &SessionCompletedEvent{
		UserID:             "user123",
		SessionID:          "session-1",
		DurationMinutes:    45,
		ExercisesCompleted: 6,
		CompletedAt:        completed,
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if sig.Type() != TypeSessionCompleted {
		t.Errorf("Expected type '%s', got '%s'", TypeSessionCompleted, sig.Type())
	}
	if !sig.Timestamp().Equal(completed) {
		t.Errorf("Expected timestamp %v, got %v", completed, sig.Timestamp())
	}

	awards := sig.Awards()
	if len(awards) != 2 {
		t.Fatalf("Expected workout and exercise awards, got %d", len(awards))
	}
	if awards[0].Source != state.SourceWorkoutCompletion || awards[0].SourceID != "session-1" || awards[0].Units != 1 {
		t.Errorf("Unexpected workout award %+v", awards[0])
	}
	if awards[1].Source != state.SourceExerciseCompletion || awards[1].SourceID != "session-1" || awards[1].Units != 6 {
		t.Errorf("Unexpected exercise award %+v", awards[1])
	}
}

func TestSessionSignal_NoExercises(t *testing.T) {
	sig := NewSessionSignal("user123", "session-2", time.Now(), 20, 0, nil)

	if len(sig.Awards()) != 1 {
		t.Errorf("Expected only the workout award, got %d", len(sig.Awards()))
	}
	if sig.Metadata()["duration_minutes"] != int64(20) {
		t.Errorf("Expected duration metadata")
	}
}

func TestPurchaseSignal_SourceID(t *testing.T) {
	tests := []struct {
		name    string
		orderID string
		want    string
	}{
		{"order id wins", "order-9", "order-9"},
		{"falls back to package", "", "pkg-gold"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := NewPurchaseSignal("user123", "pkg-gold", tt.orderID, decimal.RequireFromString("49.90"), time.Now(), nil)
			awards := sig.Awards()
			if len(awards) != 1 || awards[0].SourceID != tt.want {
				t.Errorf("Expected source id %s, got %+v", tt.want, awards)
			}
			meta, ok := awards[0].Metadata.(state.PurchaseMetadata)
			if !ok || !meta.Amount.Equal(decimal.RequireFromString("49.9")) {
				t.Errorf("Unexpected purchase metadata %+v", awards[0].Metadata)
			}
		})
	}
}

func TestEventProcessors_Validation(t *testing.T) {
	processor := newTestProcessor()

	tests := []struct {
		name      string
		eventType string
		event     interface{}
	}{
		{"session without user", TypeSessionCompleted, &SessionCompletedEvent{SessionID: "s"}},
		{"session without id", TypeSessionCompleted, &SessionCompletedEvent{UserID: "u"}},
		{"negative exercises", TypeSessionCompleted, &SessionCompletedEvent{UserID: "u", SessionID: "s", ExercisesCompleted: -1}},
		{"wrong payload type", TypeSessionCompleted, &ReviewSubmittedEvent{UserID: "u"}},
		{"purchase without package", TypePurchaseCompleted, &PurchaseCompletedEvent{UserID: "u"}},
		{"negative purchase", TypePurchaseCompleted, &PurchaseCompletedEvent{UserID: "u", PackageID: "p", Amount: decimal.NewFromInt(-1)}},
		{"self referral", TypeReferralConfirmed, &ReferralConfirmedEvent{UserID: "u", ReferredUserID: "u"}},
		{"review rating", TypeReviewSubmitted, &ReviewSubmittedEvent{UserID: "u", ReviewID: "r", Rating: 6}},
		{"level zero", TypeLevelUp, &LevelUpEvent{UserID: "u"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := processor.Process(context.Background(), tt.eventType, tt.event)
			if !errors.Is(err, state.ErrInvalidEntry) {
				t.Errorf("Expected ErrInvalidEntry, got %v", err)
			}
			if state.KindOf(err) != state.KindValidation {
				t.Errorf("Expected validation kind, got %s", state.KindOf(err))
			}
		})
	}
}

func TestEventProcessors_Awards(t *testing.T) {
	processor := newTestProcessor()

	tests := []struct {
		name      string
		eventType string
		event     interface{}
		source    state.Source
		sourceID  string
	}{
		{"referral", TypeReferralConfirmed, &ReferralConfirmedEvent{UserID: "u", ReferredUserID: "friend"}, state.SourceReferral, "friend"},
		{"review", TypeReviewSubmitted, &ReviewSubmittedEvent{UserID: "u", ReviewID: "rev-1", Rating: 5}, state.SourceReview, "rev-1"},
		{"level up", TypeLevelUp, &LevelUpEvent{UserID: "u", Level: 3}, state.SourceLevelUp, "level:3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := processor.Process(context.Background(), tt.eventType, tt.event)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			awards := sig.Awards()
			if len(awards) != 1 {
				t.Fatalf("Expected one award, got %d", len(awards))
			}
			if awards[0].Source != tt.source || awards[0].SourceID != tt.sourceID {
				t.Errorf("Expected %s/%s, got %s/%s", tt.source, tt.sourceID, awards[0].Source, awards[0].SourceID)
			}
			if sig.Timestamp().IsZero() {
				t.Error("Expected a timestamp for events without one")
			}
		})
	}
}
