package rule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-fitness-gamification/pkg/progress"
	"github.com/AccelByte/extend-fitness-gamification/pkg/service"
	"github.com/AccelByte/extend-fitness-gamification/pkg/state"
)

const (
	earnUnitName   = "rule.earn"
	adjustUnitName = "rule.adjust"
)

// EarnRequest describes one activity that earns points.
// Units multiplies the source's base value; zero means one.
type EarnRequest struct {
	UserID      string
	Source      state.Source
	SourceID    string
	Units       int64
	At          time.Time
	Description string
	Metadata    interface{}
}

// EarnResult is the outcome of a committed earn.
// Transaction is nil when the computed amount was zero.
type EarnResult struct {
	Transaction *state.PointTransaction
	Streak      state.StreakChange
	Progress    *progress.Result
}

var errNoLedger = errors.New("rule engine has no ledger configured")

// OnEvent earns the points of one event and records the activity.
// A replayed (source, sourceId) returns the original transaction with state.ErrDuplicateSource.
func (e *Engine) OnEvent(ctx context.Context, userID string, source state.Source, sourceID string, settings state.Settings) (*state.PointTransaction, error) {
	result, err := e.Earn(ctx, EarnRequest{UserID: userID, Source: source, SourceID: sourceID}, settings)
	if result == nil {
		return nil, err
	}
	return result.Transaction, err
}

// Earn appends an earn transaction and applies the activity to the user's
// counters in one unit of work, then re-evaluates progress.
func (e *Engine) Earn(ctx context.Context, req EarnRequest, settings state.Settings) (*EarnResult, error) {
	if e.deps.Ledger == nil {
		return nil, errNoLedger
	}
	if !settings.Enabled {
		return nil, state.ErrDisabled
	}
	if req.UserID == "" {
		return nil, fmt.Errorf("%w: user id is required", state.ErrInvalidEntry)
	}
	units := req.Units
	if units == 0 {
		units = 1
	}
	amount, err := ComputePointsN(req.Source, units, settings)
	if err != nil {
		return nil, err
	}
	at := req.At
	if at.IsZero() {
		at = e.now()
	}
	description := req.Description
	if description == "" {
		description = string(req.Source)
	}

	result := &EarnResult{}
	err = e.deps.UnitOfWork.Do(ctx, earnUnitName, func(tx *service.Tx) error {
		result.Transaction = nil
		result.Streak = state.StreakUnchanged

		if amount != 0 {
			row, err := e.deps.Ledger.AppendTx(tx, state.LedgerEntry{
				UserID:      req.UserID,
				Points:      amount,
				Type:        state.TransactionEarn,
				Source:      req.Source,
				SourceID:    req.SourceID,
				Description: description,
				Metadata:    req.Metadata,
			}, e.now())
			result.Transaction = row
			if err != nil {
				return err
			}
		}

		seen, err := e.deps.Progress.MarkActivityTx(tx, req.UserID, req.Source, req.SourceID)
		if err != nil {
			return err
		}
		if seen {
			if result.Transaction == nil {
				return fmt.Errorf("%w: %s/%s", state.ErrDuplicateSource, req.Source, req.SourceID)
			}
			return nil
		}

		stats, err := e.deps.Progress.ActivityTx(tx, req.UserID)
		if err != nil {
			return err
		}
		result.Streak = state.ApplyActivity(stats, req.Source, units, at, settings.StreakGrace)
		return e.deps.Progress.PutActivityTx(tx, stats)
	})
	if err != nil {
		if errors.Is(err, state.ErrDuplicateSource) {
			return result, err
		}
		logrus.Errorf("failed to earn %s for user %s: %v", req.Source, req.UserID, err)
		return nil, err
	}

	result.Progress = e.evaluate(ctx, req.UserID, settings)
	return result, nil
}

// Award appends a bonus transaction for a rule trigger and re-evaluates progress.
// A trigger without points is ignored.
func (e *Engine) Award(ctx context.Context, trigger *Trigger, settings state.Settings) (*state.PointTransaction, error) {
	if e.deps.Ledger == nil {
		return nil, errNoLedger
	}
	if !settings.Enabled {
		return nil, state.ErrDisabled
	}
	if trigger == nil || trigger.Points == 0 {
		return nil, nil
	}
	if trigger.Points < 0 {
		return nil, fmt.Errorf("%w: rule %s awards %d points", state.ErrInvalidEntry, trigger.RuleID, trigger.Points)
	}

	metadata := state.BonusRuleMetadata{RuleID: trigger.RuleID, Reason: trigger.Reason}
	if days, ok := trigger.Metadata["streak_days"].(int64); ok {
		metadata.StreakDays = days
	}

	row, err := e.deps.Ledger.Append(ctx, state.LedgerEntry{
		UserID:      trigger.UserID,
		Points:      trigger.Points,
		Type:        state.TransactionBonus,
		Source:      trigger.Source,
		SourceID:    trigger.SourceID,
		Description: trigger.Reason,
		Metadata:    metadata,
		AwardedBy:   trigger.RuleID,
	})
	if err != nil {
		return row, err
	}

	e.evaluate(ctx, trigger.UserID, settings)
	return row, nil
}

// Adjust appends an admin adjustment. A negative adjustment may not take the
// balance below zero.
func (e *Engine) Adjust(ctx context.Context, userID string, points int64, description, awardedBy string, settings state.Settings) (*state.PointTransaction, error) {
	if e.deps.Ledger == nil {
		return nil, errNoLedger
	}
	if description == "" {
		return nil, fmt.Errorf("%w: an adjustment needs a description", state.ErrInvalidEntry)
	}

	var row *state.PointTransaction
	err := e.deps.UnitOfWork.Do(ctx, adjustUnitName, func(tx *service.Tx) error {
		balance, err := e.deps.Ledger.BalanceTx(tx, userID)
		if err != nil {
			return err
		}
		if balance+points < 0 {
			return fmt.Errorf("%w: balance %d cannot absorb %d", state.ErrInsufficientPoints, balance, points)
		}
		row, err = e.deps.Ledger.AppendTx(tx, state.LedgerEntry{
			UserID:      userID,
			Points:      points,
			Type:        state.TransactionAdjustment,
			Source:      state.SourceAdminAdjustment,
			Description: description,
			Metadata:    state.AdjustmentMetadata{Reason: description},
			AwardedBy:   awardedBy,
		}, e.now())
		return err
	})
	if err != nil {
		return nil, err
	}

	logrus.Infof("adjusted user %s by %+d (%s) by %s", userID, points, description, awardedBy)
	if settings.Enabled {
		e.evaluate(ctx, userID, settings)
	}
	return row, nil
}

// evaluate runs the progress tracker after a commit. Its failure never undoes the commit.
func (e *Engine) evaluate(ctx context.Context, userID string, settings state.Settings) *progress.Result {
	if e.deps.Tracker == nil {
		return nil
	}
	result, err := e.deps.Tracker.Evaluate(ctx, userID, settings, settings.Features.AutoAward)
	if err != nil {
		logrus.Errorf("progress evaluation after award for user %s failed: %v", userID, err)
		return nil
	}
	return result
}
