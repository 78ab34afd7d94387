package builtin

import (
	"context"
	"testing"
	"time"

	"github.com/AccelByte/extend-fitness-gamification/pkg/rule"
	"github.com/AccelByte/extend-fitness-gamification/pkg/signal"
	signalBuiltin "github.com/AccelByte/extend-fitness-gamification/pkg/signal/builtin"
	"github.com/AccelByte/extend-fitness-gamification/pkg/state"
)

func sessionSignal(streak int64, duration int64, settings state.Settings) *signalBuiltin.SessionSignal {
	last := time.Date(2026, 5, 7, 19, 30, 0, 0, time.UTC)
	stats := &state.ActivityStats{
		UserID:           "user123",
		TotalSessions:    streak,
		StreakDays:       streak,
		LastActivityDate: &last,
	}
	playerCtx := signal.BuildPlayerContext("user123", stats, 0, 0, settings)
	return signalBuiltin.NewSessionSignal("user123", "session-1", last, duration, 0, playerCtx)
}

func TestStreakBonusRule_Evaluate(t *testing.T) {
	tests := []struct {
		name          string
		everyDays     int
		streak        int64
		multiplier    float64
		expectTrigger bool
		expectPoints  int64
		expectID      string
	}{
		{
			name:          "streak reaches every_days",
			everyDays:     7,
			streak:        7,
			multiplier:    1.0,
			expectTrigger: true,
			expectPoints:  20,
			expectID:      "streak:7:2026-05-07",
		},
		{
			name:          "multiple of every_days with multiplier",
			everyDays:     7,
			streak:        14,
			multiplier:    1.5,
			expectTrigger: true,
			expectPoints:  30,
			expectID:      "streak:14:2026-05-07",
		},
		{
			name:          "between multiples",
			everyDays:     7,
			streak:        8,
			multiplier:    1.0,
			expectTrigger: false,
		},
		{
			name:          "no streak",
			everyDays:     7,
			streak:        0,
			multiplier:    1.0,
			expectTrigger: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewStreakBonusRule(rule.RuleConfig{
				ID:         "weekly-streak",
				Type:       StreakBonusRuleID,
				Enabled:    true,
				Parameters: map[string]interface{}{"every_days": tt.everyDays},
			})
			if err != nil {
				t.Fatalf("Failed to create rule: %v", err)
			}

			settings := state.DefaultSettings()
			settings.PointsMultiplier = tt.multiplier

			matched, trigger, err := r.Evaluate(context.Background(), sessionSignal(tt.streak, 30, settings))
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if matched != tt.expectTrigger {
				t.Fatalf("Expected matched=%v, got %v", tt.expectTrigger, matched)
			}
			if !tt.expectTrigger {
				return
			}
			if trigger.Source != state.SourceStreakBonus {
				t.Errorf("Expected source %s, got %s", state.SourceStreakBonus, trigger.Source)
			}
			if trigger.Points != tt.expectPoints {
				t.Errorf("Expected %d points, got %d", tt.expectPoints, trigger.Points)
			}
			if trigger.SourceID != tt.expectID {
				t.Errorf("Expected source id %s, got %s", tt.expectID, trigger.SourceID)
			}
			if trigger.Metadata["streak_days"] != tt.streak {
				t.Errorf("Expected streak_days metadata %d, got %v", tt.streak, trigger.Metadata["streak_days"])
			}
		})
	}
}

func TestStreakBonusRule_MissingContext(t *testing.T) {
	r, err := NewStreakBonusRule(rule.RuleConfig{ID: "streak", Enabled: true})
	if err != nil {
		t.Fatalf("Failed to create rule: %v", err)
	}

	sig := signalBuiltin.NewSessionSignal("user123", "s", time.Now(), 10, 0, nil)
	if _, _, err := r.Evaluate(context.Background(), sig); err == nil {
		t.Error("Expected error for a signal without context")
	}
}

func TestLongSessionRule_Evaluate(t *testing.T) {
	tests := []struct {
		name          string
		duration      int64
		expectTrigger bool
	}{
		{"exactly the minimum", 60, true},
		{"longer", 95, true},
		{"shorter", 59, false},
	}

	r, err := NewLongSessionRule(rule.RuleConfig{
		ID:         "marathon",
		Type:       LongSessionRuleID,
		Enabled:    true,
		Priority:   5,
		Parameters: map[string]interface{}{"min_minutes": 60, "points": 75},
	})
	if err != nil {
		t.Fatalf("Failed to create rule: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matched, trigger, err := r.Evaluate(context.Background(), sessionSignal(1, tt.duration, state.DefaultSettings()))
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if matched != tt.expectTrigger {
				t.Fatalf("Expected matched=%v, got %v", tt.expectTrigger, matched)
			}
			if matched {
				if trigger.Points != 75 || trigger.SourceID != "marathon" || trigger.Source != state.SourceLongSession {
					t.Errorf("Unexpected trigger %+v", trigger)
				}
				if trigger.Priority != 5 {
					t.Errorf("Expected priority 5, got %d", trigger.Priority)
				}
			}
		})
	}
}

func TestLongSessionRule_WrongSignal(t *testing.T) {
	r, err := NewLongSessionRule(rule.RuleConfig{ID: "marathon", Enabled: true})
	if err != nil {
		t.Fatalf("Failed to create rule: %v", err)
	}

	sig := signalBuiltin.NewReviewSignal("user123", "rev", 5, time.Now(), nil)
	if _, _, err := r.Evaluate(context.Background(), sig); err == nil {
		t.Error("Expected error for a non-session signal")
	}
}

func TestNewLongSessionRule_InvalidParameters(t *testing.T) {
	_, err := NewLongSessionRule(rule.RuleConfig{
		ID:         "bad",
		Parameters: map[string]interface{}{"min_minutes": 0},
	})
	if err == nil {
		t.Error("Expected error for min_minutes=0")
	}
}
