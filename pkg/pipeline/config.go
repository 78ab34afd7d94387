package pipeline

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/AccelByte/extend-fitness-gamification/pkg/state"
)

// Config represents the complete gamification configuration: the default
// settings, the catalog seeded at startup, bonus rules and notification sinks.
type Config struct {
	Settings     *state.Settings     `yaml:"settings,omitempty"`
	Achievements []state.Achievement `yaml:"achievements"`
	Milestones   []state.Milestone   `yaml:"milestones"`
	Rewards      []state.Reward      `yaml:"rewards"`
	Rules        []RuleConfig        `yaml:"rules"`
	Sinks        []SinkConfig        `yaml:"sinks"`
}

// RuleConfig represents a bonus rule configuration entry.
type RuleConfig struct {
	ID         string                 `yaml:"id"`
	Name       string                 `yaml:"name,omitempty"`
	Type       string                 `yaml:"type"`
	Enabled    bool                   `yaml:"enabled"`
	Priority   int                    `yaml:"priority,omitempty"`
	Parameters map[string]interface{} `yaml:"parameters,omitempty"`
}

// SinkConfig represents a notification sink configuration entry.
type SinkConfig struct {
	ID         string                 `yaml:"id"`
	Type       string                 `yaml:"type"`
	Enabled    bool                   `yaml:"enabled"`
	Events     []string               `yaml:"events,omitempty"` // Event kinds delivered to the sink, empty means all
	Retry      *RetryConfig           `yaml:"retry,omitempty"`
	Parameters map[string]interface{} `yaml:"parameters,omitempty"`
}

// RetryConfig represents the delivery retry policy of a sink.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	Delay       time.Duration `yaml:"delay"`
	Backoff     string        `yaml:"backoff"`
}

// LoadConfig loads the configuration from a YAML file.
// Supports environment variable expansion in the form ${VAR_NAME} or ${VAR_NAME:default}.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig expands, parses and validates a YAML document.
func ParseConfig(data []byte) (*Config, error) {
	expanded := expandEnvVars(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expanded), &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// EffectiveSettings returns the configured settings, or the defaults when the
// document has no settings block.
func (c *Config) EffectiveSettings() state.Settings {
	if c.Settings == nil {
		return state.DefaultSettings()
	}
	return c.Settings.Clone()
}

// Validate validates the configuration for common errors.
func (c *Config) Validate() error {
	if c.Settings != nil {
		if err := c.Settings.Validate(); err != nil {
			return err
		}
	}

	if err := uniqueIDs("rule", len(c.Rules), func(i int) (string, string) { return c.Rules[i].ID, c.Rules[i].Type }); err != nil {
		return err
	}
	if err := uniqueIDs("sink", len(c.Sinks), func(i int) (string, string) { return c.Sinks[i].ID, c.Sinks[i].Type }); err != nil {
		return err
	}

	achievementIDs := make(map[string]bool)
	for _, a := range c.Achievements {
		if a.ID == "" {
			return fmt.Errorf("achievement with empty ID found")
		}
		if achievementIDs[a.ID] {
			return fmt.Errorf("duplicate achievement ID: %s", a.ID)
		}
		achievementIDs[a.ID] = true

		if !a.RequirementType.Valid() {
			return fmt.Errorf("achievement %s has unknown requirement type %q", a.ID, a.RequirementType)
		}
		if a.RequirementValue <= 0 {
			return fmt.Errorf("achievement %s needs a positive requirement value", a.ID)
		}
		if a.PointValue < 0 {
			return fmt.Errorf("achievement %s has negative point value", a.ID)
		}
	}

	milestoneIDs := make(map[string]bool)
	for _, m := range c.Milestones {
		if m.ID == "" {
			return fmt.Errorf("milestone with empty ID found")
		}
		if milestoneIDs[m.ID] {
			return fmt.Errorf("duplicate milestone ID: %s", m.ID)
		}
		milestoneIDs[m.ID] = true

		if m.TargetPoints <= 0 {
			return fmt.Errorf("milestone %s needs a positive target", m.ID)
		}
		if m.BonusPoints < 0 {
			return fmt.Errorf("milestone %s has negative bonus", m.ID)
		}
	}

	rewardIDs := make(map[string]bool)
	for _, r := range c.Rewards {
		if r.ID == "" {
			return fmt.Errorf("reward with empty ID found")
		}
		if rewardIDs[r.ID] {
			return fmt.Errorf("duplicate reward ID: %s", r.ID)
		}
		rewardIDs[r.ID] = true

		if r.PointCost < 0 || r.Stock < 0 {
			return fmt.Errorf("reward %s has negative cost or stock", r.ID)
		}
	}

	return nil
}

func uniqueIDs(kind string, n int, at func(i int) (string, string)) error {
	seen := make(map[string]bool)
	for i := 0; i < n; i++ {
		id, typ := at(i)
		if id == "" {
			return fmt.Errorf("%s with empty ID found", kind)
		}
		if seen[id] {
			return fmt.Errorf("duplicate %s ID: %s", kind, id)
		}
		seen[id] = true

		if typ == "" {
			return fmt.Errorf("%s %s has empty type", kind, id)
		}
	}
	return nil
}

// expandEnvVars expands environment variables in the format ${VAR} or ${VAR:default}.
func expandEnvVars(s string) string {
	return os.Expand(s, func(key string) string {
		parts := strings.SplitN(key, ":", 2)
		varName := parts[0]
		defaultValue := ""
		if len(parts) == 2 {
			defaultValue = parts[1]
		}

		value := os.Getenv(varName)
		if value == "" {
			return defaultValue
		}
		return value
	})
}
