package service

import (
	"context"
	"iter"
	"time"

	"github.com/AccelByte/extend-fitness-gamification/pkg/state"
)

// Storage interfaces consumed by the rule engine, progress tracker and
// redemption manager. The Redis implementations live in this package;
// the interfaces keep the consumers testable against other stores.

// Ledger is the append-only point ledger
type Ledger interface {
	Append(ctx context.Context, entry state.LedgerEntry) (*state.PointTransaction, error)
	AppendTx(tx *Tx, entry state.LedgerEntry, now time.Time) (*state.PointTransaction, error)
	BalanceTx(tx *Tx, userID string) (int64, error)
	LifetimeEarnedTx(tx *Tx, userID string) (int64, error)
	CurrentBalance(ctx context.Context, userID string) (int64, error)
	LifetimeEarned(ctx context.Context, userID string) (int64, error)
	History(ctx context.Context, userID string, filter HistoryFilter) iter.Seq2[state.PointTransaction, error]
}

// ProgressStore keeps activity counters and per-user achievement and milestone state
type ProgressStore interface {
	ActivityTx(tx *Tx, userID string) (*state.ActivityStats, error)
	PutActivityTx(tx *Tx, stats *state.ActivityStats) error
	MarkActivityTx(tx *Tx, userID string, source state.Source, sourceID string) (bool, error)
	UserAchievementTx(tx *Tx, userID, achievementID string) (*state.UserAchievement, error)
	PutUserAchievementTx(tx *Tx, ua *state.UserAchievement) error
	UserMilestoneTx(tx *Tx, userID, milestoneID string) (*state.UserMilestone, bool, error)
	PutUserMilestoneTx(tx *Tx, um *state.UserMilestone) error
	Activity(ctx context.Context, userID string) (*state.ActivityStats, error)
	UserAchievements(ctx context.Context, userID string) ([]state.UserAchievement, error)
	UserMilestones(ctx context.Context, userID string) ([]state.UserMilestone, error)
}

// Catalog holds achievement and milestone definitions
type Catalog interface {
	Achievement(ctx context.Context, id string) (*state.Achievement, error)
	Achievements(ctx context.Context, activeOnly bool) ([]state.Achievement, error)
	Milestones(ctx context.Context, activeOnly bool) ([]state.Milestone, error)
}

// RewardStore holds rewards and redemptions
type RewardStore interface {
	RewardTx(tx *Tx, rewardID string) (*state.Reward, error)
	PutRewardTx(tx *Tx, reward *state.Reward) error
	AddRewardTx(tx *Tx, reward *state.Reward) error
	UserRewardTx(tx *Tx, id string) (*state.UserReward, error)
	PutUserRewardTx(tx *Tx, ur *state.UserReward, created bool) error
	Reward(ctx context.Context, rewardID string) (*state.Reward, error)
	Rewards(ctx context.Context, availableAt *time.Time) ([]state.Reward, error)
	UserReward(ctx context.Context, id string) (*state.UserReward, error)
	UserRewards(ctx context.Context, userID string) ([]state.UserReward, error)
	DuePending(ctx context.Context, now time.Time) ([]string, error)
}

// SettingsStore hands out settings snapshots
type SettingsStore interface {
	Get(ctx context.Context) (state.Settings, error)
	Put(ctx context.Context, settings state.Settings) error
}
