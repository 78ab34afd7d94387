// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bootstrap

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-fitness-gamification/pkg/pipeline"
	"github.com/AccelByte/extend-fitness-gamification/pkg/rule"
	ruleBuiltin "github.com/AccelByte/extend-fitness-gamification/pkg/rule/builtin"
)

// InitRuleEngine creates the rule engine with the bonus rules from the gamification config.
//
// ============================================================
// DEVELOPER: Register custom rule types here.
// ============================================================
// Bonus rules evaluate signals after the base points committed
// and award extra points (streak bonus, long session bonus).
//
// Steps to add a new rule:
// 1. Create your rule in pkg/rule/builtin/ (see examples)
// 2. Implement the Rule interface
// 3. Register the rule type in pkg/rule/builtin/init.go
// 4. Add rule configuration to config/gamification.yaml
// ============================================================
func InitRuleEngine(config *pipeline.Config, deps *rule.Dependencies) (*rule.Engine, *rule.Registry, error) {
	ruleBuiltin.RegisterBuiltinRules()

	ruleConfigs := convertRuleConfigs(config.Rules)

	registry := rule.NewRegistry()
	if err := rule.RegisterRules(registry, ruleConfigs); err != nil {
		return nil, nil, fmt.Errorf("failed to register rules: %w", err)
	}

	logrus.Infof("registered %d rules", registry.Count())

	engine := rule.NewEngine(registry, deps)
	logrus.Infof("initialized rule engine")

	return engine, registry, nil
}

func convertRuleConfigs(configs []pipeline.RuleConfig) []rule.RuleConfig {
	result := make([]rule.RuleConfig, len(configs))
	for i, rc := range configs {
		result[i] = rule.RuleConfig{
			ID:         rc.ID,
			Name:       rc.Name,
			Type:       rc.Type,
			Enabled:    rc.Enabled,
			Priority:   rc.Priority,
			Parameters: rc.Parameters,
		}
	}
	return result
}
