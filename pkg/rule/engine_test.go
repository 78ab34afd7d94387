package rule

import (
	"context"
	"testing"
	"time"

	"github.com/AccelByte/extend-fitness-gamification/pkg/signal"
	"github.com/AccelByte/extend-fitness-gamification/pkg/state"
)

// testRule is a configurable rule for testing
type testRule struct {
	id          string
	name        string
	signalTypes []string
	config      RuleConfig
	shouldMatch bool
	shouldError bool
}

func (r *testRule) ID() string            { return r.id }
func (r *testRule) Name() string          { return r.name }
func (r *testRule) SignalTypes() []string { return r.signalTypes }
func (r *testRule) Config() RuleConfig    { return r.config }

func (r *testRule) Evaluate(ctx context.Context, sig signal.Signal) (bool, *Trigger, error) {
	if r.shouldError {
		return false, nil, &testError{msg: "test error"}
	}

	if !r.shouldMatch {
		return false, nil, nil
	}

	trigger := NewTrigger(r.id, sig.UserID(), "test trigger", r.config.Priority).
		WithAward(state.SourceStreakBonus, r.id, 10).
		WithMetadata("test", true)

	return true, trigger, nil
}

type testError struct {
	msg string
}

func (e *testError) Error() string {
	return e.msg
}

func newTestRule(id string, priority int, match bool, signalTypes ...string) *testRule {
	return &testRule{
		id:          id,
		name:        id,
		signalTypes: signalTypes,
		config:      RuleConfig{ID: id, Enabled: true, Priority: priority},
		shouldMatch: match,
	}
}

func newTestSignal(signalType string) signal.Signal {
	playerCtx := signal.BuildPlayerContext("test-user", nil, 0, 0, state.DefaultSettings())
	sig := signal.NewBaseSignal(signalType, "test-user", time.Now(), nil, playerCtx)
	return &sig
}

func TestNewEngine(t *testing.T) {
	registry := NewRegistry()
	engine := NewEngine(registry, nil)

	if engine == nil {
		t.Fatal("Expected non-nil engine")
	}

	if engine.GetRegistry() != registry {
		t.Error("Expected engine to use provided registry")
	}
}

func TestEngine_Evaluate_NoRules(t *testing.T) {
	engine := NewEngine(NewRegistry(), nil)

	triggers, err := engine.Evaluate(context.Background(), newTestSignal("session_completed"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(triggers) != 0 {
		t.Errorf("Expected no triggers, got %d", len(triggers))
	}
}

func TestEngine_Evaluate_NilSignal(t *testing.T) {
	engine := NewEngine(NewRegistry(), nil)

	triggers, err := engine.Evaluate(context.Background(), nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if triggers != nil {
		t.Error("Expected nil triggers for nil signal")
	}
}

func TestEngine_Evaluate_OrdersByPriority(t *testing.T) {
	registry := NewRegistry()
	for _, r := range []*testRule{
		newTestRule("low", 1, true),
		newTestRule("high", 10, true),
		newTestRule("mid-b", 5, true),
		newTestRule("mid-a", 5, true),
	} {
		if err := registry.Register(r); err != nil {
			t.Fatalf("Failed to register rule: %v", err)
		}
	}

	triggers, err := NewEngine(registry, nil).Evaluate(context.Background(), newTestSignal("session_completed"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := []string{"high", "mid-a", "mid-b", "low"}
	if len(triggers) != len(want) {
		t.Fatalf("Expected %d triggers, got %d", len(want), len(triggers))
	}
	for i, id := range want {
		if triggers[i].RuleID != id {
			t.Errorf("Expected %s at position %d, got %s", id, i, triggers[i].RuleID)
		}
	}
	if triggers[0].Points != 10 || triggers[0].Source != state.SourceStreakBonus {
		t.Errorf("Expected award on trigger, got %+v", triggers[0])
	}
}

func TestEngine_Evaluate_MixedResults(t *testing.T) {
	registry := NewRegistry()
	failing := newTestRule("failing", 1, true)
	failing.shouldError = true

	for _, r := range []*testRule{
		newTestRule("match", 1, true),
		newTestRule("miss", 1, false),
		newTestRule("other-type", 1, true, "purchase_completed"),
		failing,
	} {
		if err := registry.Register(r); err != nil {
			t.Fatalf("Failed to register rule: %v", err)
		}
	}

	triggers, err := NewEngine(registry, nil).Evaluate(context.Background(), newTestSignal("session_completed"))
	if err != nil {
		t.Fatalf("Rule errors should not fail evaluation, got %v", err)
	}
	if len(triggers) != 1 || triggers[0].RuleID != "match" {
		t.Errorf("Expected only the matching rule, got %v", triggers)
	}
}

func TestEngine_EvaluateMultiple(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(newTestRule("sessions", 1, true, "session_completed")); err != nil {
		t.Fatalf("Failed to register rule: %v", err)
	}

	signals := []signal.Signal{
		newTestSignal("session_completed"),
		newTestSignal("review_submitted"),
		newTestSignal("session_completed"),
	}

	triggers, err := NewEngine(registry, nil).EvaluateMultiple(context.Background(), signals)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(triggers) != 2 {
		t.Errorf("Expected 2 triggers, got %d", len(triggers))
	}
}
