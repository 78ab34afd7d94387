package signal

import (
	"testing"
	"time"

	"github.com/AccelByte/extend-fitness-gamification/pkg/state"
)

func TestBaseSignal(t *testing.T) {
	timestamp := time.Now()
	metadata := map[string]interface{}{
		"test_key": "test_value",
	}
	playerCtx := &PlayerContext{
		UserID:   "user123",
		Activity: &state.ActivityStats{UserID: "user123"},
		Settings: state.DefaultSettings(),
	}

	signal := NewBaseSignal("test_type", "user123", timestamp, metadata, playerCtx)

	if signal.Type() != "test_type" {
		t.Errorf("Expected type 'test_type', got '%s'", signal.Type())
	}

	if signal.UserID() != "user123" {
		t.Errorf("Expected userID 'user123', got '%s'", signal.UserID())
	}

	if !signal.Timestamp().Equal(timestamp) {
		t.Errorf("Expected timestamp %v, got %v", timestamp, signal.Timestamp())
	}

	if signal.Metadata()["test_key"] != "test_value" {
		t.Errorf("Expected metadata test_key='test_value', got '%v'", signal.Metadata()["test_key"])
	}

	if signal.Context() != playerCtx {
		t.Errorf("Expected context to match")
	}

	if len(signal.Awards()) != 0 {
		t.Errorf("Expected no awards on a base signal, got %d", len(signal.Awards()))
	}
}

func TestBaseSignal_NilMetadata(t *testing.T) {
	signal := NewBaseSignal("test", "user1", time.Now(), nil, nil)

	if signal.Metadata() == nil {
		t.Error("Expected non-nil metadata map")
	}
}

func TestBaseSignal_SetContext(t *testing.T) {
	signal := NewBaseSignal("test", "user1", time.Now(), nil, &PlayerContext{Balance: 10})
	signal.SetContext(&PlayerContext{Balance: 60})

	if signal.Context().Balance != 60 {
		t.Errorf("Expected refreshed balance 60, got %d", signal.Context().Balance)
	}
}

func TestBuildPlayerContext(t *testing.T) {
	settings := state.DefaultSettings()

	tests := []struct {
		name     string
		lifetime int64
		want     state.Tier
	}{
		{"new user", 0, state.TierBronze},
		{"silver boundary", 1000, state.TierSilver},
		{"gold", 7500, state.TierGold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := BuildPlayerContext("user1", nil, 5, tt.lifetime, settings)
			if ctx.Tier != tt.want {
				t.Errorf("Expected tier %s, got %s", tt.want, ctx.Tier)
			}
			if ctx.Activity == nil || ctx.Activity.UserID != "user1" {
				t.Error("Expected zero activity for the user")
			}
			if ctx.Balance != 5 {
				t.Errorf("Expected balance 5, got %d", ctx.Balance)
			}
		})
	}
}
