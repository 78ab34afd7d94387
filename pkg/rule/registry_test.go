package rule

import (
	"testing"
)

func TestNewRegistry(t *testing.T) {
	registry := NewRegistry()

	if registry == nil {
		t.Fatal("Expected non-nil registry")
	}
	if registry.Count() != 0 {
		t.Errorf("Expected empty registry, got %d rules", registry.Count())
	}
}

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register(newTestRule("rule1", 1, true)); err != nil {
		t.Fatalf("Failed to register rule: %v", err)
	}
	if err := registry.Register(newTestRule("rule1", 1, true)); err == nil {
		t.Error("Expected error when registering duplicate rule")
	}
	if registry.Count() != 1 {
		t.Errorf("Expected 1 rule, got %d", registry.Count())
	}
}

func TestRegistry_GetAndUnregister(t *testing.T) {
	registry := NewRegistry()
	r := newTestRule("rule1", 1, true)
	if err := registry.Register(r); err != nil {
		t.Fatalf("Failed to register rule: %v", err)
	}

	if registry.Get("rule1") != r {
		t.Error("Expected to get the registered rule")
	}
	if registry.Get("missing") != nil {
		t.Error("Expected nil for missing rule")
	}

	if err := registry.Unregister("rule1"); err != nil {
		t.Fatalf("Failed to unregister rule: %v", err)
	}
	if err := registry.Unregister("rule1"); err == nil {
		t.Error("Expected error when unregistering missing rule")
	}
}

func TestRegistry_GetBySignalType(t *testing.T) {
	registry := NewRegistry()

	disabled := newTestRule("disabled", 1, true)
	disabled.config.Enabled = false

	for _, r := range []*testRule{
		newTestRule("sessions", 1, true, "session_completed"),
		newTestRule("all", 1, true),
		newTestRule("purchases", 1, true, "purchase_completed"),
		disabled,
	} {
		if err := registry.Register(r); err != nil {
			t.Fatalf("Failed to register rule: %v", err)
		}
	}

	tests := []struct {
		signalType string
		want       []string
	}{
		{"session_completed", []string{"all", "sessions"}},
		{"purchase_completed", []string{"all", "purchases"}},
		{"review_submitted", []string{"all"}},
	}

	for _, tt := range tests {
		t.Run(tt.signalType, func(t *testing.T) {
			rules := registry.GetBySignalType(tt.signalType)
			if len(rules) != len(tt.want) {
				t.Fatalf("Expected %d rules, got %d", len(tt.want), len(rules))
			}
			for i, id := range tt.want {
				if rules[i].ID() != id {
					t.Errorf("Expected %s at %d, got %s", id, i, rules[i].ID())
				}
			}
		})
	}
}

func TestRegistry_GetAll(t *testing.T) {
	registry := NewRegistry()
	for _, id := range []string{"b", "a", "c"} {
		if err := registry.Register(newTestRule(id, 1, true)); err != nil {
			t.Fatalf("Failed to register rule: %v", err)
		}
	}

	all := registry.GetAll()
	if len(all) != 3 || all[0].ID() != "a" || all[2].ID() != "c" {
		t.Errorf("Expected rules sorted by id, got %v", all)
	}
}

func TestRuleConfig_ParameterHelpers(t *testing.T) {
	config := RuleConfig{
		Parameters: map[string]interface{}{
			"int_value":   42,
			"float_int":   7.0,
			"float_value": 3.14,
			"string":      "test",
			"bool":        true,
		},
	}

	if val := config.GetInt("int_value", 0); val != 42 {
		t.Errorf("Expected 42, got %d", val)
	}
	if val := config.GetInt("float_int", 0); val != 7 {
		t.Errorf("Expected JSON number to decode as 7, got %d", val)
	}
	if val := config.GetInt("missing", 99); val != 99 {
		t.Errorf("Expected default 99, got %d", val)
	}
	if val := config.GetFloat("float_value", 0); val != 3.14 {
		t.Errorf("Expected 3.14, got %f", val)
	}
	if val := config.GetFloat("int_value", 0); val != 42 {
		t.Errorf("Expected 42.0, got %f", val)
	}
	if val := config.GetString("string", ""); val != "test" {
		t.Errorf("Expected 'test', got '%s'", val)
	}
	if val := config.GetBool("bool", false); !val {
		t.Error("Expected true")
	}
	if val := config.GetBool("missing", false); val {
		t.Error("Expected default false")
	}
}
