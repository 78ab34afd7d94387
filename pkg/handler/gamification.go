package handler

import (
	"context"
	"iter"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/AccelByte/extend-fitness-gamification/pkg/common"
	pb "github.com/AccelByte/extend-fitness-gamification/pkg/pb/gamification/v1"
	"github.com/AccelByte/extend-fitness-gamification/pkg/pipeline"
	"github.com/AccelByte/extend-fitness-gamification/pkg/progress"
	"github.com/AccelByte/extend-fitness-gamification/pkg/redemption"
	"github.com/AccelByte/extend-fitness-gamification/pkg/rule"
	"github.com/AccelByte/extend-fitness-gamification/pkg/service"
	signalBuiltin "github.com/AccelByte/extend-fitness-gamification/pkg/signal/builtin"
	"github.com/AccelByte/extend-fitness-gamification/pkg/state"
)

// LedgerReader is the read side of the ledger used by the query methods
type LedgerReader interface {
	CurrentBalance(ctx context.Context, userID string) (int64, error)
	LifetimeEarned(ctx context.Context, userID string) (int64, error)
	History(ctx context.Context, userID string, filter service.HistoryFilter) iter.Seq2[state.PointTransaction, error]
	Leaderboard(ctx context.Context, limit int64) ([]service.LeaderboardEntry, error)
}

// CatalogAdmin publishes and retires achievement and milestone definitions
type CatalogAdmin interface {
	PublishAchievement(ctx context.Context, a state.Achievement) (bool, error)
	PublishMilestone(ctx context.Context, m state.Milestone) (bool, error)
	DeactivateAchievement(ctx context.Context, id string) error
}

// Dependencies holds everything the Gamification service calls into
type Dependencies struct {
	Pipeline    *pipeline.Manager
	Engine      *rule.Engine
	Tracker     *progress.Tracker
	Redemptions *redemption.Manager
	Ledger      LedgerReader
	Settings    service.SettingsStore
	Catalog     CatalogAdmin
}

// Gamification serves activity ingestion, ledger queries and redemptions
type Gamification struct {
	pb.UnimplementedGamificationServer

	deps Dependencies
	now  func() time.Time
}

// NewGamification creates the gRPC service
func NewGamification(deps Dependencies) *Gamification {
	return &Gamification{
		deps: deps,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

type eventResponse struct {
	SignalType   string                    `json:"signalType"`
	UserID       string                    `json:"userId"`
	Points       int64                     `json:"points"`
	Replayed     bool                      `json:"replayed"`
	Balance      int64                     `json:"balance"`
	Transactions []*state.PointTransaction `json:"transactions"`
	Bonuses      []*state.PointTransaction `json:"bonuses"`
}

// record runs one activity event through the pipeline
func (g *Gamification) record(ctx context.Context, name, eventType string, in *structpb.Struct, event interface{}) (*structpb.Struct, error) {
	scope := common.GetScopeFromContext(ctx, name)
	defer scope.Finish()

	if err := decode(in, event); err != nil {
		scope.TraceError(err)
		return nil, toStatus(err)
	}

	outcome, err := g.deps.Pipeline.ProcessEvent(scope.Ctx, eventType, event)
	if err != nil {
		// A failed bonus leaves the base award committed; a retry completes it
		scope.Log.Warnf("%s rejected: %v", eventType, err)
		scope.TraceError(err)
		return nil, toStatus(err)
	}

	userID := outcome.Signal.UserID()
	scope.TraceTag("user_id", userID)

	resp := eventResponse{
		SignalType:   outcome.Signal.Type(),
		UserID:       userID,
		Points:       outcome.Points(),
		Replayed:     outcome.Replayed,
		Transactions: []*state.PointTransaction{},
		Bonuses:      outcome.Bonuses,
	}
	for _, earned := range outcome.Earned {
		if earned != nil && earned.Transaction != nil {
			resp.Transactions = append(resp.Transactions, earned.Transaction)
		}
	}
	if resp.Bonuses == nil {
		resp.Bonuses = []*state.PointTransaction{}
	}

	if resp.Balance, err = g.deps.Ledger.CurrentBalance(scope.Ctx, userID); err != nil {
		scope.TraceError(err)
		return nil, toStatus(err)
	}

	scope.Log.Infof("recorded %s for user %s: %d points (replayed=%v)", eventType, userID, resp.Points, resp.Replayed)
	return toStruct(resp)
}

func (g *Gamification) RecordSession(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return g.record(ctx, "Gamification.RecordSession", signalBuiltin.TypeSessionCompleted, in, &signalBuiltin.SessionCompletedEvent{})
}

func (g *Gamification) RecordPurchase(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return g.record(ctx, "Gamification.RecordPurchase", signalBuiltin.TypePurchaseCompleted, in, &signalBuiltin.PurchaseCompletedEvent{})
}

func (g *Gamification) RecordReferral(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return g.record(ctx, "Gamification.RecordReferral", signalBuiltin.TypeReferralConfirmed, in, &signalBuiltin.ReferralConfirmedEvent{})
}

func (g *Gamification) RecordReview(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return g.record(ctx, "Gamification.RecordReview", signalBuiltin.TypeReviewSubmitted, in, &signalBuiltin.ReviewSubmittedEvent{})
}

func (g *Gamification) RecordLevelUp(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return g.record(ctx, "Gamification.RecordLevelUp", signalBuiltin.TypeLevelUp, in, &signalBuiltin.LevelUpEvent{})
}

// GetBalance returns the balance, lifetime points and tier of a user
func (g *Gamification) GetBalance(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	scope := common.GetScopeFromContext(ctx, "Gamification.GetBalance")
	defer scope.Finish()

	req := newRequest(in)
	if err := req.Require("userId"); err != nil {
		return nil, toStatus(err)
	}
	userID := req.String("userId")

	balance, err := g.deps.Ledger.CurrentBalance(scope.Ctx, userID)
	if err != nil {
		scope.TraceError(err)
		return nil, toStatus(err)
	}
	lifetime, err := g.deps.Ledger.LifetimeEarned(scope.Ctx, userID)
	if err != nil {
		scope.TraceError(err)
		return nil, toStatus(err)
	}
	settings, err := g.deps.Settings.Get(scope.Ctx)
	if err != nil {
		scope.TraceError(err)
		return nil, toStatus(err)
	}

	return toStruct(map[string]interface{}{
		"userId":         userID,
		"balance":        balance,
		"lifetimePoints": lifetime,
		"tier":           settings.TierFor(lifetime),
	})
}

// GetHistory returns the user's transactions in ascending order
func (g *Gamification) GetHistory(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	scope := common.GetScopeFromContext(ctx, "Gamification.GetHistory")
	defer scope.Finish()

	req := newRequest(in)
	if err := req.Require("userId"); err != nil {
		return nil, toStatus(err)
	}
	filter, err := historyFilter(req)
	if err != nil {
		return nil, toStatus(err)
	}

	rows := []state.PointTransaction{}
	for row, err := range g.deps.Ledger.History(scope.Ctx, req.String("userId"), filter) {
		if err != nil {
			scope.TraceError(err)
			return nil, toStatus(err)
		}
		rows = append(rows, row)
	}

	return toStruct(map[string]interface{}{
		"userId":       req.String("userId"),
		"transactions": rows,
	})
}

func historyFilter(req request) (service.HistoryFilter, error) {
	var filter service.HistoryFilter

	limit, err := req.Int("limit")
	if err != nil {
		return filter, err
	}
	switch {
	case limit <= 0:
		filter.Limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		filter.Limit = MaxHistoryLimit
	default:
		filter.Limit = int(limit)
	}

	if t := req.String("type"); t != "" {
		filter.Types = []state.TransactionType{state.TransactionType(t)}
	}
	if s := req.String("source"); s != "" {
		filter.Sources = []state.Source{state.Source(s)}
	}
	if filter.Since, err = req.Time("since"); err != nil {
		return filter, err
	}
	if filter.Until, err = req.Time("until"); err != nil {
		return filter, err
	}
	return filter, nil
}

// GetAchievements lists every active achievement with the user's progress
func (g *Gamification) GetAchievements(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	scope := common.GetScopeFromContext(ctx, "Gamification.GetAchievements")
	defer scope.Finish()

	req := newRequest(in)
	if err := req.Require("userId"); err != nil {
		return nil, toStatus(err)
	}

	views, err := g.deps.Tracker.Achievements(scope.Ctx, req.String("userId"))
	if err != nil {
		scope.TraceError(err)
		return nil, toStatus(err)
	}
	if views == nil {
		views = []progress.AchievementView{}
	}
	return toStruct(map[string]interface{}{"achievements": views})
}

// GetMilestones lists the milestones a user reached
func (g *Gamification) GetMilestones(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	scope := common.GetScopeFromContext(ctx, "Gamification.GetMilestones")
	defer scope.Finish()

	req := newRequest(in)
	if err := req.Require("userId"); err != nil {
		return nil, toStatus(err)
	}

	milestones, err := g.deps.Tracker.Milestones(scope.Ctx, req.String("userId"))
	if err != nil {
		scope.TraceError(err)
		return nil, toStatus(err)
	}
	if milestones == nil {
		milestones = []state.UserMilestone{}
	}
	return toStruct(map[string]interface{}{"milestones": milestones})
}

// GetLeaderboard returns the top balances when the leaderboard feature is on
func (g *Gamification) GetLeaderboard(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	scope := common.GetScopeFromContext(ctx, "Gamification.GetLeaderboard")
	defer scope.Finish()

	settings, err := g.deps.Settings.Get(scope.Ctx)
	if err != nil {
		scope.TraceError(err)
		return nil, toStatus(err)
	}
	if !settings.Features.Leaderboard {
		return nil, status.Error(codes.FailedPrecondition, "leaderboard is disabled")
	}

	limit, err := newRequest(in).Int("limit")
	if err != nil {
		return nil, toStatus(err)
	}
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		limit = MaxLeaderboardLimit
	}

	entries, err := g.deps.Ledger.Leaderboard(scope.Ctx, limit)
	if err != nil {
		scope.TraceError(err)
		return nil, toStatus(err)
	}
	if entries == nil {
		entries = []service.LeaderboardEntry{}
	}
	return toStruct(map[string]interface{}{"entries": entries})
}

// UpdateProgress sets the progress of one achievement for a user
func (g *Gamification) UpdateProgress(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	scope := common.GetScopeFromContext(ctx, "Gamification.UpdateProgress")
	defer scope.Finish()

	req := newRequest(in)
	if err := req.Require("userId", "achievementId"); err != nil {
		return nil, toStatus(err)
	}
	value, err := req.Int("progress")
	if err != nil {
		return nil, toStatus(err)
	}
	settings, err := g.deps.Settings.Get(scope.Ctx)
	if err != nil {
		scope.TraceError(err)
		return nil, toStatus(err)
	}

	ua, err := g.deps.Tracker.UpdateProgress(scope.Ctx, req.String("userId"), req.String("achievementId"), value, settings)
	if err != nil {
		scope.Log.Warnf("progress update for user %s rejected: %v", req.String("userId"), err)
		scope.TraceError(err)
		return nil, toStatus(err)
	}
	return toStruct(map[string]interface{}{"achievement": ua})
}

// Redeem spends points on a reward
func (g *Gamification) Redeem(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	scope := common.GetScopeFromContext(ctx, "Gamification.Redeem")
	defer scope.Finish()

	req := newRequest(in)
	if err := req.Require("userId", "rewardId"); err != nil {
		return nil, toStatus(err)
	}
	userID := req.String("userId")

	ur, err := g.deps.Redemptions.Redeem(scope.Ctx, userID, req.String("rewardId"))
	if err != nil {
		scope.Log.Warnf("redemption of %s by user %s rejected: %v", req.String("rewardId"), userID, err)
		scope.TraceError(err)
		return nil, toStatus(err)
	}

	balance, err := g.deps.Ledger.CurrentBalance(scope.Ctx, userID)
	if err != nil {
		scope.TraceError(err)
		return nil, toStatus(err)
	}

	scope.Log.Infof("user %s redeemed %s for %d points", userID, ur.RewardID, ur.PointsCost)
	return toStruct(map[string]interface{}{
		"redemption": ur,
		"balance":    balance,
	})
}

// Fulfill marks a pending redemption as delivered
func (g *Gamification) Fulfill(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	scope := common.GetScopeFromContext(ctx, "Gamification.Fulfill")
	defer scope.Finish()

	req := newRequest(in)
	if err := req.Require("userRewardId", "fulfilledBy"); err != nil {
		return nil, toStatus(err)
	}

	var details *state.FulfillmentDetails
	if req.String("code") != "" || req.String("reference") != "" || req.String("note") != "" {
		details = &state.FulfillmentDetails{
			Code:      req.String("code"),
			Reference: req.String("reference"),
			Note:      req.String("note"),
		}
	}

	ur, err := g.deps.Redemptions.Fulfill(scope.Ctx, req.String("userRewardId"), req.String("fulfilledBy"), details)
	if err != nil {
		scope.TraceError(err)
		return nil, toStatus(err)
	}
	return toStruct(map[string]interface{}{"redemption": ur})
}

// Cancel closes a pending redemption and refunds it
func (g *Gamification) Cancel(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	scope := common.GetScopeFromContext(ctx, "Gamification.Cancel")
	defer scope.Finish()

	req := newRequest(in)
	if err := req.Require("userRewardId"); err != nil {
		return nil, toStatus(err)
	}

	ur, err := g.deps.Redemptions.Cancel(scope.Ctx, req.String("userRewardId"))
	if err != nil {
		scope.TraceError(err)
		return nil, toStatus(err)
	}
	return toStruct(map[string]interface{}{"redemption": ur})
}

// ListRewards lists the reward catalog, optionally only what can be redeemed now
func (g *Gamification) ListRewards(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	scope := common.GetScopeFromContext(ctx, "Gamification.ListRewards")
	defer scope.Finish()

	var availableAt *time.Time
	if newRequest(in).Bool("availableOnly") {
		now := g.now()
		availableAt = &now
	}

	rewards, err := g.deps.Redemptions.Rewards(scope.Ctx, availableAt)
	if err != nil {
		scope.TraceError(err)
		return nil, toStatus(err)
	}
	if rewards == nil {
		rewards = []state.Reward{}
	}
	return toStruct(map[string]interface{}{"rewards": rewards})
}

// ListRedemptions lists a user's redemptions
func (g *Gamification) ListRedemptions(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	scope := common.GetScopeFromContext(ctx, "Gamification.ListRedemptions")
	defer scope.Finish()

	req := newRequest(in)
	if err := req.Require("userId"); err != nil {
		return nil, toStatus(err)
	}

	redemptions, err := g.deps.Redemptions.ListForUser(scope.Ctx, req.String("userId"))
	if err != nil {
		scope.TraceError(err)
		return nil, toStatus(err)
	}
	if redemptions == nil {
		redemptions = []state.UserReward{}
	}
	return toStruct(map[string]interface{}{"redemptions": redemptions})
}

// AdjustPoints appends an admin adjustment
func (g *Gamification) AdjustPoints(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	scope := common.GetScopeFromContext(ctx, "Gamification.AdjustPoints")
	defer scope.Finish()

	req := newRequest(in)
	if err := req.Require("userId", "description", "awardedBy"); err != nil {
		return nil, toStatus(err)
	}
	points, err := req.Int("points")
	if err != nil {
		return nil, toStatus(err)
	}
	settings, err := g.deps.Settings.Get(scope.Ctx)
	if err != nil {
		scope.TraceError(err)
		return nil, toStatus(err)
	}

	row, err := g.deps.Engine.Adjust(scope.Ctx, req.String("userId"), points, req.String("description"), req.String("awardedBy"), settings)
	if err != nil {
		scope.TraceError(err)
		return nil, toStatus(err)
	}

	scope.Log.Infof("%s adjusted user %s by %d points", row.AwardedBy, row.UserID, row.Points)
	return toStruct(map[string]interface{}{"transaction": row})
}

// GetSettings returns the current settings
func (g *Gamification) GetSettings(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	scope := common.GetScopeFromContext(ctx, "Gamification.GetSettings")
	defer scope.Finish()

	settings, err := g.deps.Settings.Get(scope.Ctx)
	if err != nil {
		scope.TraceError(err)
		return nil, toStatus(err)
	}
	return toStruct(settings)
}

// UpdateSettings merges the given fields over the current settings and stores the result.
// Operations already running keep the snapshot they started with.
func (g *Gamification) UpdateSettings(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	scope := common.GetScopeFromContext(ctx, "Gamification.UpdateSettings")
	defer scope.Finish()

	settings, err := g.deps.Settings.Get(scope.Ctx)
	if err != nil {
		scope.TraceError(err)
		return nil, toStatus(err)
	}
	if err := decode(in, &settings); err != nil {
		return nil, toStatus(err)
	}
	if err := g.deps.Settings.Put(scope.Ctx, settings); err != nil {
		scope.TraceError(err)
		return nil, toStatus(err)
	}
	return toStruct(settings)
}
