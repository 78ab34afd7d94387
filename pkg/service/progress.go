package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/go-redis/redis/v8"

	"github.com/AccelByte/extend-fitness-gamification/pkg/state"
)

const progressKeyPrefix = "gamification:progress:"

// RedisProgressStore keeps per-user activity counters, achievement states
// and reached milestones. Writes go through a unit of work so they commit
// together with the ledger rows they cause.
type RedisProgressStore struct {
	client *redis.Client
}

func NewRedisProgressStore(client *redis.Client) *RedisProgressStore {
	return &RedisProgressStore{client: client}
}

func makeActivityKey(userID string) string {
	return fmt.Sprintf("%s%s:activity", progressKeyPrefix, userID)
}

func makeUserAchievementKey(userID, achievementID string) string {
	return fmt.Sprintf("%s%s:achievement:%s", progressKeyPrefix, userID, achievementID)
}

func makeUserAchievementIndexKey(userID string) string {
	return fmt.Sprintf("%s%s:achievements", progressKeyPrefix, userID)
}

func makeUserMilestoneKey(userID, milestoneID string) string {
	return fmt.Sprintf("%s%s:milestone:%s", progressKeyPrefix, userID, milestoneID)
}

func makeUserMilestoneIndexKey(userID string) string {
	return fmt.Sprintf("%s%s:milestones", progressKeyPrefix, userID)
}

func makeActivitySourceKey(userID string, source state.Source, sourceID string) string {
	return fmt.Sprintf("%s%s:seen:%s:%s", progressKeyPrefix, userID, source, sourceID)
}

// ActivityTx reads the user's activity counters, a zero record when absent
func (p *RedisProgressStore) ActivityTx(tx *Tx, userID string) (*state.ActivityStats, error) {
	stats := &state.ActivityStats{UserID: userID}
	if _, err := tx.GetJSON(makeActivityKey(userID), stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// PutActivityTx buffers the activity counters
func (p *RedisProgressStore) PutActivityTx(tx *Tx, stats *state.ActivityStats) error {
	return tx.SetJSON(makeActivityKey(stats.UserID), stats)
}

// MarkActivityTx records that an activity event was counted.
// It returns true when the event was counted before; events without a source id are never deduplicated.
func (p *RedisProgressStore) MarkActivityTx(tx *Tx, userID string, source state.Source, sourceID string) (bool, error) {
	if sourceID == "" {
		return false, nil
	}
	key := makeActivitySourceKey(userID, source, sourceID)
	_, seen, err := tx.Get(key)
	if err != nil {
		return false, err
	}
	if !seen {
		tx.Set(key, "1")
	}
	return seen, nil
}

// UserAchievementTx reads one achievement state, not_started when absent
func (p *RedisProgressStore) UserAchievementTx(tx *Tx, userID, achievementID string) (*state.UserAchievement, error) {
	ua := &state.UserAchievement{
		UserID:        userID,
		AchievementID: achievementID,
		Status:        state.AchievementNotStarted,
	}
	if _, err := tx.GetJSON(makeUserAchievementKey(userID, achievementID), ua); err != nil {
		return nil, err
	}
	return ua, nil
}

// PutUserAchievementTx buffers one achievement state
func (p *RedisProgressStore) PutUserAchievementTx(tx *Tx, ua *state.UserAchievement) error {
	if err := tx.SetJSON(makeUserAchievementKey(ua.UserID, ua.AchievementID), ua); err != nil {
		return err
	}
	indexKey := makeUserAchievementIndexKey(ua.UserID)
	tx.Queue(func(pipe redis.Pipeliner) {
		pipe.SAdd(tx.Context(), indexKey, ua.AchievementID)
	})
	return nil
}

// UserMilestoneTx reports whether the milestone was already reached
func (p *RedisProgressStore) UserMilestoneTx(tx *Tx, userID, milestoneID string) (*state.UserMilestone, bool, error) {
	var um state.UserMilestone
	found, err := tx.GetJSON(makeUserMilestoneKey(userID, milestoneID), &um)
	if err != nil || !found {
		return nil, false, err
	}
	return &um, true, nil
}

// PutUserMilestoneTx buffers a reached milestone
func (p *RedisProgressStore) PutUserMilestoneTx(tx *Tx, um *state.UserMilestone) error {
	if err := tx.SetJSON(makeUserMilestoneKey(um.UserID, um.MilestoneID), um); err != nil {
		return err
	}
	indexKey := makeUserMilestoneIndexKey(um.UserID)
	tx.Queue(func(pipe redis.Pipeliner) {
		pipe.SAdd(tx.Context(), indexKey, um.MilestoneID)
	})
	return nil
}

// Activity reads the user's activity counters outside a unit of work
func (p *RedisProgressStore) Activity(ctx context.Context, userID string) (*state.ActivityStats, error) {
	stats := &state.ActivityStats{UserID: userID}
	data, err := p.client.Get(ctx, makeActivityKey(userID)).Result()
	if err == redis.Nil {
		return stats, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	if err := json.Unmarshal([]byte(data), stats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal activity: %w", err)
	}
	return stats, nil
}

// UserAchievements returns every achievement state the user has, ordered by id
func (p *RedisProgressStore) UserAchievements(ctx context.Context, userID string) ([]state.UserAchievement, error) {
	var out []state.UserAchievement
	err := p.loadIndexed(ctx, makeUserAchievementIndexKey(userID), func(id string) string {
		return makeUserAchievementKey(userID, id)
	}, func(data string) error {
		var ua state.UserAchievement
		if err := json.Unmarshal([]byte(data), &ua); err != nil {
			return err
		}
		out = append(out, ua)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AchievementID < out[j].AchievementID })
	return out, nil
}

// UserMilestones returns the milestones the user reached, oldest first
func (p *RedisProgressStore) UserMilestones(ctx context.Context, userID string) ([]state.UserMilestone, error) {
	var out []state.UserMilestone
	err := p.loadIndexed(ctx, makeUserMilestoneIndexKey(userID), func(id string) string {
		return makeUserMilestoneKey(userID, id)
	}, func(data string) error {
		var um state.UserMilestone
		if err := json.Unmarshal([]byte(data), &um); err != nil {
			return err
		}
		out = append(out, um)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReachedAt.Before(out[j].ReachedAt) })
	return out, nil
}

func (p *RedisProgressStore) loadIndexed(ctx context.Context, indexKey string, keyOf func(string) string, decode func(string) error) error {
	ids, err := p.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", indexKey, err)
	}
	if len(ids) == 0 {
		return nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = keyOf(id)
	}
	values, err := p.client.MGet(ctx, keys...).Result()
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", indexKey, err)
	}
	for i, v := range values {
		data, ok := v.(string)
		if !ok {
			continue
		}
		if err := decode(data); err != nil {
			return fmt.Errorf("failed to unmarshal %s: %w", keys[i], err)
		}
	}
	return nil
}
