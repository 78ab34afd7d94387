package rule_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AccelByte/extend-fitness-gamification/pkg/progress"
	"github.com/AccelByte/extend-fitness-gamification/pkg/rule"
	"github.com/AccelByte/extend-fitness-gamification/pkg/service"
	"github.com/AccelByte/extend-fitness-gamification/pkg/service/servicetest"
	"github.com/AccelByte/extend-fitness-gamification/pkg/state"
)

func setupEngine(t *testing.T, achievements []state.Achievement) (*rule.Engine, *service.Stores) {
	t.Helper()

	stores, _ := servicetest.NewStores(t)
	require.NoError(t, stores.Catalog.Seed(context.Background(), achievements, nil))

	tracker := progress.NewTracker(stores.UnitOfWork, stores.Ledger, stores.Progress, stores.Catalog, nil)
	deps := rule.NewDependencies().WithStores(stores).WithTracker(tracker)
	return rule.NewEngine(rule.NewRegistry(), deps), stores
}

func TestOnEvent_BalanceIsRunningSum(t *testing.T) {
	engine, stores := setupEngine(t, nil)
	ctx := context.Background()
	settings := state.DefaultSettings()

	events := []struct {
		source state.Source
		id     string
		points int64
	}{
		{state.SourceWorkoutCompletion, "s1", 50},
		{state.SourceReview, "r1", 15},
		{state.SourceReferral, "friend", 200},
		{state.SourcePurchase, "order-1", 25},
	}

	var sum int64
	for _, e := range events {
		row, err := engine.OnEvent(ctx, "user-1", e.source, e.id, settings)
		require.NoError(t, err)
		sum += e.points
		assert.Equal(t, e.points, row.Points)
		assert.Equal(t, sum, row.Balance)
		assert.Equal(t, state.TransactionEarn, row.Type)
	}

	balance, err := stores.Ledger.CurrentBalance(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, sum, balance)
	require.NoError(t, stores.Ledger.Verify(ctx, "user-1"))

	stats, err := stores.Progress.Activity(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalSessions)
	assert.Equal(t, int64(1), stats.TotalReviews)
	assert.Equal(t, int64(1), stats.TotalReferrals)
	assert.Equal(t, int64(1), stats.TotalPurchases)
}

func TestOnEvent_ReplayedSessionDoesNotDoubleAward(t *testing.T) {
	engine, stores := setupEngine(t, nil)
	ctx := context.Background()
	settings := state.DefaultSettings()

	first, err := engine.OnEvent(ctx, "user-1", state.SourceWorkoutCompletion, "session-1", settings)
	require.NoError(t, err)

	replay, err := engine.OnEvent(ctx, "user-1", state.SourceWorkoutCompletion, "session-1", settings)
	require.ErrorIs(t, err, state.ErrDuplicateSource)
	require.NotNil(t, replay)
	assert.Equal(t, first.ID, replay.ID)

	balance, err := stores.Ledger.CurrentBalance(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(50), balance)

	stats, err := stores.Progress.Activity(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalSessions)
}

func TestEarn_ZeroPointSourceStillCountsOnce(t *testing.T) {
	engine, stores := setupEngine(t, nil)
	ctx := context.Background()
	settings := state.DefaultSettings()
	settings.PointsPerReview = 0

	req := rule.EarnRequest{UserID: "user-1", Source: state.SourceReview, SourceID: "rev-1"}
	result, err := engine.Earn(ctx, req, settings)
	require.NoError(t, err)
	assert.Nil(t, result.Transaction)

	_, err = engine.Earn(ctx, req, settings)
	require.ErrorIs(t, err, state.ErrDuplicateSource)

	stats, err := stores.Progress.Activity(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalReviews)

	balance, err := stores.Ledger.CurrentBalance(ctx, "user-1")
	require.NoError(t, err)
	assert.Zero(t, balance)
}

func TestEarn_ExerciseUnits(t *testing.T) {
	engine, stores := setupEngine(t, nil)

	result, err := engine.Earn(context.Background(), rule.EarnRequest{
		UserID: "user-1", Source: state.SourceExerciseCompletion, SourceID: "session-1", Units: 6,
	}, state.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, int64(60), result.Transaction.Points)

	stats, err := stores.Progress.Activity(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(6), stats.TotalExercises)
}

func TestEarn_Streak(t *testing.T) {
	engine, stores := setupEngine(t, nil)
	ctx := context.Background()
	settings := state.DefaultSettings()

	day := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	var last rule.EarnResult
	for i := 0; i < 3; i++ {
		result, err := engine.Earn(ctx, rule.EarnRequest{
			UserID:   "user-1",
			Source:   state.SourceWorkoutCompletion,
			SourceID: day.Format("s-20060102"),
			At:       day,
		}, settings)
		require.NoError(t, err)
		last = *result
		day = day.AddDate(0, 0, 1)
	}
	assert.Equal(t, state.StreakExtended, last.Streak)

	stats, err := stores.Progress.Activity(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.StreakDays)
}

func TestEarn_Disabled(t *testing.T) {
	engine, stores := setupEngine(t, nil)
	settings := state.DefaultSettings()
	settings.Enabled = false

	_, err := engine.OnEvent(context.Background(), "user-1", state.SourceWorkoutCompletion, "s1", settings)
	require.ErrorIs(t, err, state.ErrDisabled)

	balance, err := stores.Ledger.CurrentBalance(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Zero(t, balance)
}

func TestOnEvent_UnknownSourceWritesNothing(t *testing.T) {
	engine, stores := setupEngine(t, nil)

	_, err := engine.OnEvent(context.Background(), "user-1", state.SourceAdminAdjustment, "x", state.DefaultSettings())
	require.ErrorIs(t, err, state.ErrUnknownSource)

	stats, err := stores.Progress.Activity(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Zero(t, stats.TotalSessions)
}

func TestOnEvent_TriggersProgressEvaluation(t *testing.T) {
	first := state.Achievement{
		ID: "first-session", Name: "First Session", RequirementType: state.RequirementSessionCount,
		RequirementValue: 1, PointValue: 20, IsActive: true,
	}
	engine, stores := setupEngine(t, []state.Achievement{first})
	ctx := context.Background()
	settings := state.DefaultSettings()

	result, err := engine.Earn(ctx, rule.EarnRequest{UserID: "user-1", Source: state.SourceWorkoutCompletion, SourceID: "s1"}, settings)
	require.NoError(t, err)
	require.NotNil(t, result.Progress)
	assert.Len(t, result.Progress.Unlocked, 1)

	balance, err := stores.Ledger.CurrentBalance(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(70), balance)

	// auto award off only records progress
	settings.Features.AutoAward = false
	engine2, stores2 := setupEngine(t, []state.Achievement{first})
	_, err = engine2.OnEvent(ctx, "user-2", state.SourceWorkoutCompletion, "s1", settings)
	require.NoError(t, err)
	balance, err = stores2.Ledger.CurrentBalance(ctx, "user-2")
	require.NoError(t, err)
	assert.Equal(t, int64(50), balance)
}

func TestAward_IsIdempotent(t *testing.T) {
	engine, stores := setupEngine(t, nil)
	ctx := context.Background()
	settings := state.DefaultSettings()

	trigger := rule.NewTrigger("weekly-streak", "user-1", "7 day streak", 1).
		WithAward(state.SourceStreakBonus, "streak:7:2026-05-07", 20).
		WithMetadata("streak_days", int64(7))

	row, err := engine.Award(ctx, trigger, settings)
	require.NoError(t, err)
	assert.Equal(t, state.TransactionBonus, row.Type)
	assert.Equal(t, "weekly-streak", row.AwardedBy)

	var meta state.BonusRuleMetadata
	require.NoError(t, row.DecodeMetadata(&meta))
	assert.Equal(t, int64(7), meta.StreakDays)

	_, err = engine.Award(ctx, trigger, settings)
	require.ErrorIs(t, err, state.ErrDuplicateSource)

	balance, err := stores.Ledger.CurrentBalance(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(20), balance)
}

func TestAdjust(t *testing.T) {
	engine, stores := setupEngine(t, nil)
	ctx := context.Background()
	settings := state.DefaultSettings()

	row, err := engine.Adjust(ctx, "user-1", 30, "goodwill", "admin-1", settings)
	require.NoError(t, err)
	assert.Equal(t, state.TransactionAdjustment, row.Type)
	assert.Equal(t, state.SourceAdminAdjustment, row.Source)

	_, err = engine.Adjust(ctx, "user-1", -31, "correction", "admin-1", settings)
	require.ErrorIs(t, err, state.ErrInsufficientPoints)

	_, err = engine.Adjust(ctx, "user-1", 0, "noop", "admin-1", settings)
	require.ErrorIs(t, err, state.ErrInvalidDelta)

	_, err = engine.Adjust(ctx, "user-1", -30, "correction", "admin-1", settings)
	require.NoError(t, err)

	balance, err := stores.Ledger.CurrentBalance(ctx, "user-1")
	require.NoError(t, err)
	assert.Zero(t, balance)

	// adjustments do not count toward lifetime points
	lifetime, err := stores.Ledger.LifetimeEarned(ctx, "user-1")
	require.NoError(t, err)
	assert.Zero(t, lifetime)
}
