package pipeline_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/AccelByte/extend-fitness-gamification/pkg/pipeline"
	"github.com/AccelByte/extend-fitness-gamification/pkg/rule"
	ruleBuiltin "github.com/AccelByte/extend-fitness-gamification/pkg/rule/builtin"
	"github.com/AccelByte/extend-fitness-gamification/pkg/service"
	"github.com/AccelByte/extend-fitness-gamification/pkg/service/servicetest"
	"github.com/AccelByte/extend-fitness-gamification/pkg/signal"
	signalBuiltin "github.com/AccelByte/extend-fitness-gamification/pkg/signal/builtin"
	"github.com/AccelByte/extend-fitness-gamification/pkg/state"
)

var day1 = time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)

// setupManager wires the pipeline the way the application does, with both
// built-in rules configured to fire easily.
func setupManager(t *testing.T, refresh bool) (*pipeline.Manager, *service.Stores) {
	t.Helper()

	stores, _ := servicetest.NewStores(t)
	loader := signal.NewStoreContextLoader(stores.Ledger, stores.Progress, stores.Settings)

	processor := signal.NewProcessor(loader)
	signalBuiltin.RegisterEventProcessors(processor.GetEventProcessorRegistry())

	registry := rule.NewRegistry()
	longSession, err := ruleBuiltin.NewLongSessionRule(rule.RuleConfig{
		ID: ruleBuiltin.LongSessionRuleID, Type: ruleBuiltin.LongSessionRuleID, Enabled: true,
		Parameters: map[string]interface{}{"min_minutes": 60, "points": 100},
	})
	if err != nil {
		t.Fatalf("failed to create long session rule: %v", err)
	}
	streak, err := ruleBuiltin.NewStreakBonusRule(rule.RuleConfig{
		ID: ruleBuiltin.StreakBonusRuleID, Type: ruleBuiltin.StreakBonusRuleID, Enabled: true,
		Parameters: map[string]interface{}{"every_days": 1},
	})
	if err != nil {
		t.Fatalf("failed to create streak rule: %v", err)
	}
	for _, r := range []rule.Rule{longSession, streak} {
		if err := registry.Register(r); err != nil {
			t.Fatalf("failed to register rule: %v", err)
		}
	}

	engine := rule.NewEngine(registry, rule.NewDependencies().WithStores(stores))

	var refresher pipeline.ContextRefresher
	if refresh {
		refresher = loader
	}
	return pipeline.NewManager(processor, engine, refresher, nil), stores
}

func balance(t *testing.T, stores *service.Stores, userID string) int64 {
	t.Helper()
	b, err := stores.Ledger.CurrentBalance(context.Background(), userID)
	if err != nil {
		t.Fatalf("failed to get balance: %v", err)
	}
	return b
}

func session(id string, at time.Time, minutes, exercises int64) *signalBuiltin.SessionCompletedEvent {
	return &signalBuiltin.SessionCompletedEvent{
		UserID:             "user-1",
		SessionID:          id,
		DurationMinutes:    minutes,
		ExercisesCompleted: exercises,
		CompletedAt:        at,
	}
}

func TestNewManager(t *testing.T) {
	processor := signal.NewProcessor(nil)
	engine := rule.NewEngine(rule.NewRegistry(), nil)

	if manager := pipeline.NewManager(processor, engine, nil, nil); manager == nil {
		t.Fatal("expected manager to be created")
	}
}

func TestProcessEvent_SessionWithBonuses(t *testing.T) {
	ctx := context.Background()
	manager, stores := setupManager(t, true)

	outcome, err := manager.ProcessEvent(ctx, signalBuiltin.TypeSessionCompleted, session("s-1", day1, 90, 6))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	// workout 50 + 6 exercises 60 + long session 100 + streak 20
	if got := balance(t, stores, "user-1"); got != 230 {
		t.Errorf("expected balance 230, got %d", got)
	}
	if outcome.Points() != 230 {
		t.Errorf("expected outcome points 230, got %d", outcome.Points())
	}
	if len(outcome.Earned) != 2 {
		t.Errorf("expected 2 earn results, got %d", len(outcome.Earned))
	}
	if len(outcome.Bonuses) != 2 {
		t.Fatalf("expected 2 bonuses, got %d", len(outcome.Bonuses))
	}
	for _, bonus := range outcome.Bonuses {
		if bonus.Type != state.TransactionBonus {
			t.Errorf("expected bonus transaction, got %s", bonus.Type)
		}
	}
	if outcome.Replayed {
		t.Error("first delivery must not be a replay")
	}
}

func TestProcessEvent_ReplayDoesNotDoubleAward(t *testing.T) {
	ctx := context.Background()
	manager, stores := setupManager(t, true)

	if _, err := manager.ProcessEvent(ctx, signalBuiltin.TypeSessionCompleted, session("s-1", day1, 90, 6)); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	outcome, err := manager.ProcessEvent(ctx, signalBuiltin.TypeSessionCompleted, session("s-1", day1, 90, 6))
	if err != nil {
		t.Fatalf("expected replay to be acknowledged, got: %v", err)
	}
	if !outcome.Replayed {
		t.Error("expected outcome to be marked as replayed")
	}
	if len(outcome.Bonuses) != 0 {
		t.Errorf("expected no new bonuses on replay, got %d", len(outcome.Bonuses))
	}
	if outcome.Points() != 0 {
		t.Errorf("expected a replay to add no points, got %d", outcome.Points())
	}
	if got := balance(t, stores, "user-1"); got != 230 {
		t.Errorf("expected balance to stay 230, got %d", got)
	}

	stats, err := stores.Progress.Activity(ctx, "user-1")
	if err != nil {
		t.Fatalf("failed to get activity: %v", err)
	}
	if stats.TotalSessions != 1 || stats.TotalExercises != 6 {
		t.Errorf("expected replay to leave counters at 1 session and 6 exercises, got %+v", stats)
	}
	if err := stores.Ledger.Verify(ctx, "user-1"); err != nil {
		t.Errorf("ledger inconsistent: %v", err)
	}
}

func TestProcessEvent_NextDay(t *testing.T) {
	ctx := context.Background()
	manager, stores := setupManager(t, true)

	if _, err := manager.ProcessEvent(ctx, signalBuiltin.TypeSessionCompleted, session("s-1", day1, 90, 6)); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	outcome, err := manager.ProcessEvent(ctx, signalBuiltin.TypeSessionCompleted, session("s-2", day1.Add(24*time.Hour), 90, 0))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	// long session is a one-time bonus, the two day streak pays again
	if len(outcome.Bonuses) != 1 || outcome.Bonuses[0].Source != state.SourceStreakBonus {
		t.Fatalf("expected only the streak bonus, got %+v", outcome.Bonuses)
	}
	if got := balance(t, stores, "user-1"); got != 300 {
		t.Errorf("expected balance 300, got %d", got)
	}
}

func TestProcessEvent_WithoutRefreshRulesSeePriorContext(t *testing.T) {
	ctx := context.Background()
	manager, stores := setupManager(t, false)

	outcome, err := manager.ProcessEvent(ctx, signalBuiltin.TypeSessionCompleted, session("s-1", day1, 30, 0))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	// The context loaded before the session has no streak yet
	if len(outcome.Bonuses) != 0 {
		t.Errorf("expected no bonuses, got %d", len(outcome.Bonuses))
	}
	if got := balance(t, stores, "user-1"); got != 50 {
		t.Errorf("expected balance 50, got %d", got)
	}
}

func TestProcessEvent_Purchase(t *testing.T) {
	ctx := context.Background()
	manager, stores := setupManager(t, true)

	event := &signalBuiltin.PurchaseCompletedEvent{
		UserID:    "user-1",
		PackageID: "monthly",
		OrderID:   "order-1",
		Amount:    decimal.RequireFromString("29.99"),
	}
	if _, err := manager.ProcessEvent(ctx, signalBuiltin.TypePurchaseCompleted, event); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if _, err := manager.ProcessEvent(ctx, signalBuiltin.TypePurchaseCompleted, event); err != nil {
		t.Fatalf("expected replay to be acknowledged, got: %v", err)
	}

	if got := balance(t, stores, "user-1"); got != 25 {
		t.Errorf("expected balance 25, got %d", got)
	}
}

func TestProcessEvent_UnknownEventType(t *testing.T) {
	manager, _ := setupManager(t, true)

	_, err := manager.ProcessEvent(context.Background(), "yoga_class", session("s-1", day1, 10, 0))
	if !errors.Is(err, state.ErrInvalidEntry) {
		t.Fatalf("expected ErrInvalidEntry, got: %v", err)
	}
	if state.KindOf(err) != state.KindValidation {
		t.Errorf("expected validation kind, got %s", state.KindOf(err))
	}
}

func TestProcessEvent_Disabled(t *testing.T) {
	ctx := context.Background()
	manager, stores := setupManager(t, true)

	settings := state.DefaultSettings()
	settings.Enabled = false
	if err := stores.Settings.Put(ctx, settings); err != nil {
		t.Fatalf("failed to store settings: %v", err)
	}

	_, err := manager.ProcessEvent(ctx, signalBuiltin.TypeSessionCompleted, session("s-1", day1, 90, 6))
	if !errors.Is(err, state.ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got: %v", err)
	}
	if got := balance(t, stores, "user-1"); got != 0 {
		t.Errorf("expected no points while disabled, got %d", got)
	}
}

func TestProcessEvent_MultiplierSnapshot(t *testing.T) {
	ctx := context.Background()
	manager, stores := setupManager(t, false)

	settings := state.DefaultSettings()
	settings.PointsMultiplier = 2
	if err := stores.Settings.Put(ctx, settings); err != nil {
		t.Fatalf("failed to store settings: %v", err)
	}

	if _, err := manager.ProcessEvent(ctx, signalBuiltin.TypeSessionCompleted, session("s-1", day1, 30, 1)); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	// (50 + 10) x 2
	if got := balance(t, stores, "user-1"); got != 120 {
		t.Errorf("expected balance 120, got %d", got)
	}
}
