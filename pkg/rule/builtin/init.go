package builtin

import (
	"github.com/AccelByte/extend-fitness-gamification/pkg/rule"
)

// RegisterBuiltinRules registers all built-in rule types with the factory.
func RegisterBuiltinRules() {
	rule.RegisterRuleType(StreakBonusRuleID, func(config rule.RuleConfig) (rule.Rule, error) {
		return NewStreakBonusRule(config)
	})

	rule.RegisterRuleType(LongSessionRuleID, func(config rule.RuleConfig) (rule.Rule, error) {
		return NewLongSessionRule(config)
	})
}
