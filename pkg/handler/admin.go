package handler

import (
	"context"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/AccelByte/extend-fitness-gamification/pkg/common"
	"github.com/AccelByte/extend-fitness-gamification/pkg/redemption"
	"github.com/AccelByte/extend-fitness-gamification/pkg/state"
)

// CreateReward adds a reward to the catalog. New rewards are active unless isActive is false.
func (g *Gamification) CreateReward(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	scope := common.GetScopeFromContext(ctx, "Gamification.CreateReward")
	defer scope.Finish()

	req := newRequest(in)
	if err := req.Require("id", "name"); err != nil {
		return nil, toStatus(err)
	}
	var reward state.Reward
	if err := decode(in, &reward); err != nil {
		return nil, toStatus(err)
	}
	if !req.Has("isActive") {
		reward.IsActive = true
	}

	created, err := g.deps.Redemptions.CreateReward(scope.Ctx, reward)
	if err != nil {
		scope.TraceError(err)
		return nil, toStatus(err)
	}
	return toStruct(map[string]interface{}{"reward": created})
}

// UpdateReward changes the price, stock, availability or expiry of a reward
func (g *Gamification) UpdateReward(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	scope := common.GetScopeFromContext(ctx, "Gamification.UpdateReward")
	defer scope.Finish()

	req := newRequest(in)
	if err := req.Require("rewardId"); err != nil {
		return nil, toStatus(err)
	}
	update, err := rewardUpdate(req)
	if err != nil {
		return nil, toStatus(err)
	}

	reward, err := g.deps.Redemptions.UpdateReward(scope.Ctx, req.String("rewardId"), update)
	if err != nil {
		scope.TraceError(err)
		return nil, toStatus(err)
	}

	scope.Log.Infof("reward %s now costs %d with stock %d", reward.ID, reward.PointCost, reward.Stock)
	return toStruct(map[string]interface{}{"reward": reward})
}

func rewardUpdate(req request) (redemption.RewardUpdate, error) {
	var update redemption.RewardUpdate

	if req.Has("name") {
		name := req.String("name")
		update.Name = &name
	}
	if req.Has("description") {
		description := req.String("description")
		update.Description = &description
	}
	if req.Has("pointCost") {
		cost, err := req.Int("pointCost")
		if err != nil {
			return update, err
		}
		update.PointCost = &cost
	}
	if req.Has("stock") {
		stock, err := req.Int("stock")
		if err != nil {
			return update, err
		}
		update.Stock = &stock
	}
	if req.Has("isActive") {
		active := req.Bool("isActive")
		update.IsActive = &active
	}
	if req.Has("tier") {
		tier := state.Tier(req.String("tier"))
		update.Tier = &tier
	}
	if req.Has("expiresAt") {
		expiresAt, err := req.Time("expiresAt")
		if err != nil {
			return update, err
		}
		if !expiresAt.IsZero() {
			update.ExpiresAt = &expiresAt
		}
	}
	update.ClearExpiry = req.Bool("clearExpiry")
	if update.ClearExpiry && update.ExpiresAt != nil {
		return update, fmt.Errorf("%w: expiresAt and clearExpiry are exclusive", state.ErrInvalidEntry)
	}
	return update, nil
}

// PublishAchievement adds an achievement definition. Existing ids are never overwritten.
func (g *Gamification) PublishAchievement(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	scope := common.GetScopeFromContext(ctx, "Gamification.PublishAchievement")
	defer scope.Finish()

	req := newRequest(in)
	if err := req.Require("id", "name", "requirementType"); err != nil {
		return nil, toStatus(err)
	}
	var a state.Achievement
	if err := decode(in, &a); err != nil {
		return nil, toStatus(err)
	}
	if !req.Has("isActive") {
		a.IsActive = true
	}

	created, err := g.deps.Catalog.PublishAchievement(scope.Ctx, a)
	if err != nil {
		scope.TraceError(err)
		return nil, toStatus(err)
	}
	if !created {
		return nil, toStatus(fmt.Errorf("%w: achievement %s", state.ErrAlreadyExists, a.ID))
	}

	scope.Log.Infof("achievement %s published", a.ID)
	return toStruct(map[string]interface{}{"achievement": a})
}

// DeactivateAchievement stops an achievement from being evaluated. Earned completions stay.
func (g *Gamification) DeactivateAchievement(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	scope := common.GetScopeFromContext(ctx, "Gamification.DeactivateAchievement")
	defer scope.Finish()

	req := newRequest(in)
	if err := req.Require("achievementId"); err != nil {
		return nil, toStatus(err)
	}

	if err := g.deps.Catalog.DeactivateAchievement(scope.Ctx, req.String("achievementId")); err != nil {
		scope.TraceError(err)
		return nil, toStatus(err)
	}
	return toStruct(map[string]interface{}{
		"achievementId": req.String("achievementId"),
		"isActive":      false,
	})
}

// PublishMilestone adds a milestone definition. Existing ids are never overwritten.
func (g *Gamification) PublishMilestone(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	scope := common.GetScopeFromContext(ctx, "Gamification.PublishMilestone")
	defer scope.Finish()

	req := newRequest(in)
	if err := req.Require("id", "name"); err != nil {
		return nil, toStatus(err)
	}
	var m state.Milestone
	if err := decode(in, &m); err != nil {
		return nil, toStatus(err)
	}
	if !req.Has("isActive") {
		m.IsActive = true
	}

	created, err := g.deps.Catalog.PublishMilestone(scope.Ctx, m)
	if err != nil {
		scope.TraceError(err)
		return nil, toStatus(err)
	}
	if !created {
		return nil, toStatus(fmt.Errorf("%w: milestone %s", state.ErrAlreadyExists, m.ID))
	}

	scope.Log.Infof("milestone %s published", m.ID)
	return toStruct(map[string]interface{}{"milestone": m})
}

// AwardAchievement completes an achievement for a user by hand and pays its points
func (g *Gamification) AwardAchievement(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	scope := common.GetScopeFromContext(ctx, "Gamification.AwardAchievement")
	defer scope.Finish()

	req := newRequest(in)
	if err := req.Require("userId", "achievementId", "awardedBy"); err != nil {
		return nil, toStatus(err)
	}
	settings, err := g.deps.Settings.Get(scope.Ctx)
	if err != nil {
		scope.TraceError(err)
		return nil, toStatus(err)
	}

	ua, err := g.deps.Tracker.AwardAchievement(scope.Ctx, req.String("userId"), req.String("achievementId"), req.String("awardedBy"), settings)
	if err != nil {
		scope.Log.Warnf("award of %s to user %s rejected: %v", req.String("achievementId"), req.String("userId"), err)
		scope.TraceError(err)
		return nil, toStatus(err)
	}

	scope.Log.Infof("%s awarded %s to user %s", req.String("awardedBy"), ua.AchievementID, ua.UserID)
	return toStruct(map[string]interface{}{"achievement": ua})
}
