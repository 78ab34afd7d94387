package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-fitness-gamification/pkg/state"
)

const (
	catalogKeyPrefix      = "gamification:catalog:"
	achievementIndexKey   = catalogKeyPrefix + "achievements"
	milestoneIndexKey     = catalogKeyPrefix + "milestones"
	achievementItemPrefix = catalogKeyPrefix + "achievement:"
	milestoneItemPrefix   = catalogKeyPrefix + "milestone:"
)

// RedisCatalogStore holds achievement and milestone definitions.
// Definitions are write-once; the only later change is deactivation.
type RedisCatalogStore struct {
	client *redis.Client
}

func NewRedisCatalogStore(client *redis.Client) *RedisCatalogStore {
	return &RedisCatalogStore{client: client}
}

func makeAchievementKey(id string) string {
	return achievementItemPrefix + id
}

func makeMilestoneKey(id string) string {
	return milestoneItemPrefix + id
}

// PublishAchievement stores a new definition. It returns false when the id is already taken.
func (c *RedisCatalogStore) PublishAchievement(ctx context.Context, a state.Achievement) (bool, error) {
	if a.ID == "" || a.RequirementValue <= 0 || a.PointValue < 0 {
		return false, fmt.Errorf("%w: achievement %q needs an id, a positive requirement and a non-negative point value",
			state.ErrInvalidEntry, a.ID)
	}
	return c.publish(ctx, makeAchievementKey(a.ID), achievementIndexKey, a.ID, a)
}

// PublishMilestone stores a new definition. It returns false when the id is already taken.
func (c *RedisCatalogStore) PublishMilestone(ctx context.Context, m state.Milestone) (bool, error) {
	if m.ID == "" || m.TargetPoints <= 0 || m.BonusPoints < 0 {
		return false, fmt.Errorf("%w: milestone %q needs an id, a positive target and a non-negative bonus",
			state.ErrInvalidEntry, m.ID)
	}
	return c.publish(ctx, makeMilestoneKey(m.ID), milestoneIndexKey, m.ID, m)
}

func (c *RedisCatalogStore) publish(ctx context.Context, key, indexKey, id string, v interface{}) (bool, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return false, fmt.Errorf("failed to marshal %s: %w", id, err)
	}

	created, err := c.client.SetNX(ctx, key, data, 0).Result()
	if err != nil {
		return false, fmt.Errorf("failed to publish %s: %w", id, err)
	}
	if !created {
		return false, nil
	}
	if err := c.client.SAdd(ctx, indexKey, id).Err(); err != nil {
		return false, fmt.Errorf("failed to index %s: %w", id, err)
	}
	return true, nil
}

// Seed publishes every definition that does not exist yet
func (c *RedisCatalogStore) Seed(ctx context.Context, achievements []state.Achievement, milestones []state.Milestone) error {
	var added int
	for _, a := range achievements {
		ok, err := c.PublishAchievement(ctx, a)
		if err != nil {
			return err
		}
		if ok {
			added++
		}
	}
	for _, m := range milestones {
		ok, err := c.PublishMilestone(ctx, m)
		if err != nil {
			return err
		}
		if ok {
			added++
		}
	}
	logrus.Infof("catalog seeded: %d new definitions", added)
	return nil
}

// DeactivateAchievement marks a definition inactive
func (c *RedisCatalogStore) DeactivateAchievement(ctx context.Context, id string) error {
	a, err := c.Achievement(ctx, id)
	if err != nil {
		return err
	}
	a.IsActive = false
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal achievement: %w", err)
	}
	if err := c.client.Set(ctx, makeAchievementKey(id), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to deactivate achievement %s: %w", id, err)
	}
	return nil
}

// Achievement returns one definition
func (c *RedisCatalogStore) Achievement(ctx context.Context, id string) (*state.Achievement, error) {
	data, err := c.client.Get(ctx, makeAchievementKey(id)).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("%w: %s", state.ErrAchievementNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get achievement %s: %w", id, err)
	}

	var a state.Achievement
	if err := json.Unmarshal([]byte(data), &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal achievement %s: %w", id, err)
	}
	return &a, nil
}

// Achievements returns every definition ordered by id
func (c *RedisCatalogStore) Achievements(ctx context.Context, activeOnly bool) ([]state.Achievement, error) {
	var out []state.Achievement
	err := c.loadAll(ctx, achievementIndexKey, achievementItemPrefix, func(data string) error {
		var a state.Achievement
		if err := json.Unmarshal([]byte(data), &a); err != nil {
			return err
		}
		if !activeOnly || a.IsActive {
			out = append(out, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Milestones returns every definition ordered by target points
func (c *RedisCatalogStore) Milestones(ctx context.Context, activeOnly bool) ([]state.Milestone, error) {
	var out []state.Milestone
	err := c.loadAll(ctx, milestoneIndexKey, milestoneItemPrefix, func(data string) error {
		var m state.Milestone
		if err := json.Unmarshal([]byte(data), &m); err != nil {
			return err
		}
		if !activeOnly || m.IsActive {
			out = append(out, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TargetPoints == out[j].TargetPoints {
			return out[i].ID < out[j].ID
		}
		return out[i].TargetPoints < out[j].TargetPoints
	})
	return out, nil
}

func (c *RedisCatalogStore) loadAll(ctx context.Context, indexKey, prefix string, decode func(string) error) error {
	ids, err := c.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", indexKey, err)
	}
	if len(ids) == 0 {
		return nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = prefix + id
	}
	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", indexKey, err)
	}

	for i, v := range values {
		data, ok := v.(string)
		if !ok {
			logrus.Warnf("catalog index %s references missing %s", indexKey, ids[i])
			continue
		}
		if err := decode(data); err != nil {
			return fmt.Errorf("failed to unmarshal %s: %w", ids[i], err)
		}
	}
	return nil
}
