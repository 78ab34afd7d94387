package pipeline

import (
	"fmt"
	"strings"

	"github.com/AccelByte/extend-fitness-gamification/pkg/notify"
	"github.com/AccelByte/extend-fitness-gamification/pkg/rule"
)

var knownEventKinds = map[string]bool{
	notify.KindAchievementUnlocked: true,
	notify.KindMilestoneReached:    true,
	notify.KindTierChanged:         true,
}

// ValidateWiring validates that the pipeline is correctly wired.
// It checks that:
// - All enabled rules in config have registered instances
// - All enabled sinks in config have registered instances
// - Every event kind a sink subscribes to is one the tracker emits
//
// This catches common mistakes like forgetting to register a rule or sink
// type factory, or a typo in an event kind.
func ValidateWiring(ruleRegistry *rule.Registry, sinkRegistry *notify.Registry, config *Config) error {
	var errors []string

	for _, rc := range config.Rules {
		if !rc.Enabled {
			continue
		}

		if ruleRegistry.Get(rc.ID) == nil {
			errors = append(errors, fmt.Sprintf("rule '%s' (type=%s) is enabled in config but not registered", rc.ID, rc.Type))
		}
	}

	for _, sc := range config.Sinks {
		for _, kind := range sc.Events {
			if !knownEventKinds[kind] {
				errors = append(errors, fmt.Sprintf("sink '%s' subscribes to unknown event kind '%s'", sc.ID, kind))
			}
		}

		if !sc.Enabled {
			continue
		}

		if sinkRegistry.Get(sc.ID) == nil {
			errors = append(errors, fmt.Sprintf("sink '%s' (type=%s) is enabled in config but not registered", sc.ID, sc.Type))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("pipeline wiring validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}
