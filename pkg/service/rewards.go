package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-fitness-gamification/pkg/state"
)

const (
	rewardKeyPrefix     = "gamification:reward:"
	rewardIndexKey      = "gamification:rewards"
	userRewardKeyPrefix = "gamification:user_reward:"
	userRewardsPrefix   = "gamification:user_rewards:"
	pendingExpiryKey    = "gamification:user_rewards:pending_expiry"
)

// RedisRewardStore holds the reward catalog and the redemptions made against it
type RedisRewardStore struct {
	client *redis.Client
}

func NewRedisRewardStore(client *redis.Client) *RedisRewardStore {
	return &RedisRewardStore{client: client}
}

func makeRewardKey(id string) string {
	return rewardKeyPrefix + id
}

func makeUserRewardKey(id string) string {
	return userRewardKeyPrefix + id
}

func makeUserRewardsKey(userID string) string {
	return userRewardsPrefix + userID
}

// RewardTx reads and watches a reward
func (r *RedisRewardStore) RewardTx(tx *Tx, rewardID string) (*state.Reward, error) {
	var reward state.Reward
	found, err := tx.GetJSON(makeRewardKey(rewardID), &reward)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", state.ErrRewardNotFound, rewardID)
	}
	return &reward, nil
}

// PutRewardTx buffers a reward write
func (r *RedisRewardStore) PutRewardTx(tx *Tx, reward *state.Reward) error {
	return tx.SetJSON(makeRewardKey(reward.ID), reward)
}

// AddRewardTx buffers a new reward and its index entry. The key stays watched,
// so a concurrent create of the same id aborts the unit.
func (r *RedisRewardStore) AddRewardTx(tx *Tx, reward *state.Reward) error {
	var existing state.Reward
	found, err := tx.GetJSON(makeRewardKey(reward.ID), &existing)
	if err != nil {
		return err
	}
	if found {
		return fmt.Errorf("%w: reward %s", state.ErrAlreadyExists, reward.ID)
	}
	if err := tx.SetJSON(makeRewardKey(reward.ID), reward); err != nil {
		return err
	}
	tx.Queue(func(pipe redis.Pipeliner) {
		pipe.SAdd(tx.Context(), rewardIndexKey, reward.ID)
	})
	return nil
}

// UserRewardTx reads and watches a redemption
func (r *RedisRewardStore) UserRewardTx(tx *Tx, id string) (*state.UserReward, error) {
	var ur state.UserReward
	found, err := tx.GetJSON(makeUserRewardKey(id), &ur)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", state.ErrUserRewardNotFound, id)
	}
	return &ur, nil
}

// PutUserRewardTx buffers a redemption write and keeps the indexes in step with its status
func (r *RedisRewardStore) PutUserRewardTx(tx *Tx, ur *state.UserReward, created bool) error {
	if err := tx.SetJSON(makeUserRewardKey(ur.ID), ur); err != nil {
		return err
	}

	tx.Queue(func(pipe redis.Pipeliner) {
		ctx := tx.Context()
		if created {
			pipe.RPush(ctx, makeUserRewardsKey(ur.UserID), ur.ID)
		}
		switch {
		case ur.Status == state.RedemptionPending && ur.ExpiresAt != nil:
			pipe.ZAdd(ctx, pendingExpiryKey, &redis.Z{Score: float64(ur.ExpiresAt.UnixMilli()), Member: ur.ID})
		case ur.Status.IsTerminal():
			pipe.ZRem(ctx, pendingExpiryKey, ur.ID)
		}
	})
	return nil
}

// SeedRewards creates the rewards that do not exist yet. Existing rewards keep
// their stock and redemption count.
func (r *RedisRewardStore) SeedRewards(ctx context.Context, rewards []state.Reward) error {
	added := 0
	for _, reward := range rewards {
		if err := reward.Validate(); err != nil {
			return err
		}
		data, err := json.Marshal(reward)
		if err != nil {
			return fmt.Errorf("failed to marshal reward %s: %w", reward.ID, err)
		}
		created, err := r.client.SetNX(ctx, makeRewardKey(reward.ID), data, 0).Result()
		if err != nil {
			return fmt.Errorf("failed to seed reward %s: %w", reward.ID, err)
		}
		if created {
			added++
			if err := r.client.SAdd(ctx, rewardIndexKey, reward.ID).Err(); err != nil {
				return fmt.Errorf("failed to index reward %s: %w", reward.ID, err)
			}
		}
	}
	logrus.Infof("reward catalog seeded: %d new rewards", added)
	return nil
}

// Reward returns one catalog entry
func (r *RedisRewardStore) Reward(ctx context.Context, rewardID string) (*state.Reward, error) {
	data, err := r.client.Get(ctx, makeRewardKey(rewardID)).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("%w: %s", state.ErrRewardNotFound, rewardID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reward %s: %w", rewardID, err)
	}
	var reward state.Reward
	if err := json.Unmarshal([]byte(data), &reward); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reward %s: %w", rewardID, err)
	}
	return &reward, nil
}

// Rewards lists the catalog ordered by cost. With availableAt set only
// rewards that can be redeemed at that time are returned.
func (r *RedisRewardStore) Rewards(ctx context.Context, availableAt *time.Time) ([]state.Reward, error) {
	ids, err := r.client.SMembers(ctx, rewardIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list rewards: %w", err)
	}

	out := make([]state.Reward, 0, len(ids))
	for _, id := range ids {
		reward, err := r.Reward(ctx, id)
		if err != nil {
			return nil, err
		}
		if availableAt != nil && !reward.AvailableAt(*availableAt) {
			continue
		}
		out = append(out, *reward)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PointCost == out[j].PointCost {
			return out[i].ID < out[j].ID
		}
		return out[i].PointCost < out[j].PointCost
	})
	return out, nil
}

// UserReward returns one redemption
func (r *RedisRewardStore) UserReward(ctx context.Context, id string) (*state.UserReward, error) {
	data, err := r.client.Get(ctx, makeUserRewardKey(id)).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("%w: %s", state.ErrUserRewardNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get redemption %s: %w", id, err)
	}
	var ur state.UserReward
	if err := json.Unmarshal([]byte(data), &ur); err != nil {
		return nil, fmt.Errorf("failed to unmarshal redemption %s: %w", id, err)
	}
	return &ur, nil
}

// UserRewards returns the user's redemptions in the order they were made
func (r *RedisRewardStore) UserRewards(ctx context.Context, userID string) ([]state.UserReward, error) {
	ids, err := r.client.LRange(ctx, makeUserRewardsKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list redemptions: %w", err)
	}

	out := make([]state.UserReward, 0, len(ids))
	for _, id := range ids {
		ur, err := r.UserReward(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *ur)
	}
	return out, nil
}

// DuePending returns ids of pending redemptions whose expiry is at or before now
func (r *RedisRewardStore) DuePending(ctx context.Context, now time.Time) ([]string, error) {
	ids, err := r.client.ZRangeByScore(ctx, pendingExpiryKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list due redemptions: %w", err)
	}
	return ids, nil
}
