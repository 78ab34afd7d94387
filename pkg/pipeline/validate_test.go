package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/AccelByte/extend-fitness-gamification/pkg/notify"
	notifyMock "github.com/AccelByte/extend-fitness-gamification/pkg/notify/mock"
	"github.com/AccelByte/extend-fitness-gamification/pkg/rule"
	"github.com/AccelByte/extend-fitness-gamification/pkg/signal"
)

// mockRule for testing
type mockRule struct {
	id string
}

func (m *mockRule) ID() string            { return m.id }
func (m *mockRule) Name() string          { return "Mock Rule" }
func (m *mockRule) SignalTypes() []string { return nil }
func (m *mockRule) Evaluate(ctx context.Context, sig signal.Signal) (bool, *rule.Trigger, error) {
	return false, nil, nil
}
func (m *mockRule) Config() rule.RuleConfig {
	return rule.RuleConfig{ID: m.id, Type: "mock", Enabled: true}
}

func newRegistries(t *testing.T, ruleIDs []string, sinkIDs []string) (*rule.Registry, *notify.Registry) {
	t.Helper()

	ruleRegistry := rule.NewRegistry()
	for _, id := range ruleIDs {
		if err := ruleRegistry.Register(&mockRule{id: id}); err != nil {
			t.Fatalf("failed to register rule %s: %v", id, err)
		}
	}

	sinkRegistry := notify.NewRegistry()
	for _, id := range sinkIDs {
		if err := sinkRegistry.Register(notifyMock.NewSink(id)); err != nil {
			t.Fatalf("failed to register sink %s: %v", id, err)
		}
	}

	return ruleRegistry, sinkRegistry
}

func TestValidateWiring_AllRegistered(t *testing.T) {
	ruleRegistry, sinkRegistry := newRegistries(t, []string{"streak_bonus", "long_session"}, []string{"event-log"})

	config := &Config{
		Rules: []RuleConfig{
			{ID: "streak_bonus", Type: "streak_bonus", Enabled: true},
			{ID: "long_session", Type: "long_session", Enabled: true},
		},
		Sinks: []SinkConfig{
			{ID: "event-log", Type: "log", Enabled: true, Events: []string{notify.KindAchievementUnlocked, notify.KindTierChanged}},
		},
	}

	if err := ValidateWiring(ruleRegistry, sinkRegistry, config); err != nil {
		t.Errorf("expected no error, got: %v", err)
	}
}

func TestValidateWiring_MissingRule(t *testing.T) {
	ruleRegistry, sinkRegistry := newRegistries(t, []string{"streak_bonus"}, nil)

	config := &Config{
		Rules: []RuleConfig{
			{ID: "streak_bonus", Type: "streak_bonus", Enabled: true},
			{ID: "missing-rule", Type: "missing_type", Enabled: true},
		},
	}

	err := ValidateWiring(ruleRegistry, sinkRegistry, config)
	if err == nil {
		t.Fatal("expected error for missing rule, got nil")
	}
	if !strings.Contains(err.Error(), "missing-rule") {
		t.Errorf("expected error to mention 'missing-rule', got: %v", err)
	}
	if !strings.Contains(err.Error(), "not registered") {
		t.Errorf("expected error to mention 'not registered', got: %v", err)
	}
}

func TestValidateWiring_MissingSink(t *testing.T) {
	ruleRegistry, sinkRegistry := newRegistries(t, nil, []string{"event-log"})

	config := &Config{
		Sinks: []SinkConfig{
			{ID: "event-log", Type: "log", Enabled: true},
			{ID: "missing-sink", Type: "redis_stream", Enabled: true},
		},
	}

	err := ValidateWiring(ruleRegistry, sinkRegistry, config)
	if err == nil {
		t.Fatal("expected error for missing sink, got nil")
	}
	if !strings.Contains(err.Error(), "missing-sink") {
		t.Errorf("expected error to mention 'missing-sink', got: %v", err)
	}
}

func TestValidateWiring_DisabledEntriesSkipped(t *testing.T) {
	ruleRegistry, sinkRegistry := newRegistries(t, nil, nil)

	config := &Config{
		Rules: []RuleConfig{{ID: "off-rule", Type: "streak_bonus", Enabled: false}},
		Sinks: []SinkConfig{{ID: "off-sink", Type: "log", Enabled: false}},
	}

	if err := ValidateWiring(ruleRegistry, sinkRegistry, config); err != nil {
		t.Errorf("expected disabled entries to be skipped, got: %v", err)
	}
}

func TestValidateWiring_UnknownEventKind(t *testing.T) {
	ruleRegistry, sinkRegistry := newRegistries(t, nil, []string{"event-log"})

	config := &Config{
		Sinks: []SinkConfig{{ID: "event-log", Type: "log", Enabled: true, Events: []string{"level_up"}}},
	}

	err := ValidateWiring(ruleRegistry, sinkRegistry, config)
	if err == nil || !strings.Contains(err.Error(), "unknown event kind 'level_up'") {
		t.Errorf("expected unknown event kind error, got: %v", err)
	}
}

func TestValidateWiring_MultipleErrors(t *testing.T) {
	ruleRegistry, sinkRegistry := newRegistries(t, nil, nil)

	config := &Config{
		Rules: []RuleConfig{{ID: "missing-rule", Type: "streak_bonus", Enabled: true}},
		Sinks: []SinkConfig{{ID: "missing-sink", Type: "log", Enabled: true}},
	}

	err := ValidateWiring(ruleRegistry, sinkRegistry, config)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "missing-rule") || !strings.Contains(err.Error(), "missing-sink") {
		t.Errorf("expected both errors to be reported, got: %v", err)
	}
}
