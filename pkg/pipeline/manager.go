package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/AccelByte/extend-fitness-gamification/pkg/metrics"
	"github.com/AccelByte/extend-fitness-gamification/pkg/rule"
	"github.com/AccelByte/extend-fitness-gamification/pkg/signal"
	"github.com/AccelByte/extend-fitness-gamification/pkg/state"
)

const (
	outcomeProcessed = "processed"
	outcomeReplayed  = "replayed"
)

// ContextRefresher reloads a player's context after the awards of an event
// committed, so bonus rules see the updated streak and counters.
type ContextRefresher interface {
	LoadWithSettings(ctx context.Context, userID string, settings state.Settings) (*signal.PlayerContext, error)
}

type contextSetter interface {
	SetContext(context *signal.PlayerContext)
}

// Manager orchestrates the complete gamification pipeline:
// Event → Signal → Earn → Rules → Bonus awards
type Manager struct {
	processor *signal.Processor
	engine    *rule.Engine
	refresher ContextRefresher
	logger    *slog.Logger
}

// Outcome summarizes one processed event.
type Outcome struct {
	Signal signal.Signal
	// Earned holds one result per award of the signal, replays included.
	Earned []*rule.EarnResult
	// Replayed is true when every award of the event had already been recorded.
	Replayed bool
	Bonuses  []*state.PointTransaction
}

// Points returns the points the event added to the ledger, bonuses included.
func (o *Outcome) Points() int64 {
	var total int64
	for _, earned := range o.Earned {
		if earned != nil && earned.Transaction != nil && !o.Replayed {
			total += earned.Transaction.Points
		}
	}
	for _, bonus := range o.Bonuses {
		total += bonus.Points
	}
	return total
}

// NewManager creates a new pipeline manager with all required components.
// refresher may be nil, in which case rules see the context loaded before the awards.
func NewManager(processor *signal.Processor, engine *rule.Engine, refresher ContextRefresher, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		processor: processor,
		engine:    engine,
		refresher: refresher,
		logger:    logger,
	}
}

// ProcessEvent runs a raw event through the pipeline. A replayed event is not
// an error: its awards are acknowledged without writing new rows.
func (m *Manager) ProcessEvent(ctx context.Context, eventType string, event interface{}) (*Outcome, error) {
	outcome, err := m.process(ctx, eventType, event)

	result := outcomeProcessed
	switch {
	case err != nil:
		result = state.CodeOf(err)
	case outcome.Replayed:
		result = outcomeReplayed
	}
	metrics.EventsProcessed.WithLabelValues(eventType, result).Inc()

	return outcome, err
}

func (m *Manager) process(ctx context.Context, eventType string, event interface{}) (*Outcome, error) {
	sig, err := m.processor.Process(ctx, eventType, event)
	if err != nil {
		m.logger.Error("failed to process event to signal",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("signal processing failed: %w", err)
	}

	m.logger.Info("event converted to signal",
		slog.String("signal_type", sig.Type()),
		slog.String("user_id", sig.UserID()))

	// One settings snapshot for the whole event
	settings := state.DefaultSettings()
	if playerCtx := sig.Context(); playerCtx != nil {
		settings = playerCtx.Settings
	}
	if !settings.Enabled {
		return nil, state.ErrDisabled
	}

	outcome := &Outcome{Signal: sig}
	replays := 0
	for _, award := range sig.Awards() {
		earned, err := m.engine.Earn(ctx, rule.EarnRequest{
			UserID:      sig.UserID(),
			Source:      award.Source,
			SourceID:    award.SourceID,
			Units:       award.Units,
			At:          sig.Timestamp(),
			Description: award.Description,
			Metadata:    award.Metadata,
		}, settings)
		if errors.Is(err, state.ErrDuplicateSource) {
			m.logger.Info("award already recorded",
				slog.String("user_id", sig.UserID()),
				slog.String("source", string(award.Source)),
				slog.String("source_id", award.SourceID))
			replays++
			outcome.Earned = append(outcome.Earned, earned)
			continue
		}
		if err != nil {
			m.logger.Error("failed to earn award",
				slog.String("user_id", sig.UserID()),
				slog.String("source", string(award.Source)),
				slog.String("error", err.Error()))
			return outcome, fmt.Errorf("earn %s failed: %w", award.Source, err)
		}
		outcome.Earned = append(outcome.Earned, earned)
	}
	outcome.Replayed = replays > 0 && replays == len(outcome.Earned)

	if m.refresher != nil {
		if setter, ok := sig.(contextSetter); ok {
			playerCtx, err := m.refresher.LoadWithSettings(ctx, sig.UserID(), settings)
			if err != nil {
				return outcome, fmt.Errorf("failed to refresh player context: %w", err)
			}
			setter.SetContext(playerCtx)
		}
	}

	// Rules run on replays too; their awards are idempotent, so a retried event
	// completes bonuses that a failed attempt left out.
	bonuses, err := m.evaluateAndAward(ctx, sig, settings)
	outcome.Bonuses = bonuses
	return outcome, err
}

// evaluateAndAward evaluates rules for a signal and awards the triggered bonuses.
func (m *Manager) evaluateAndAward(ctx context.Context, sig signal.Signal, settings state.Settings) ([]*state.PointTransaction, error) {
	triggers, err := m.engine.Evaluate(ctx, sig)
	if err != nil {
		m.logger.Error("rule evaluation failed",
			slog.String("signal_type", sig.Type()),
			slog.String("user_id", sig.UserID()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("rule evaluation failed: %w", err)
	}

	if len(triggers) == 0 {
		m.logger.Debug("no rules triggered for signal",
			slog.String("signal_type", sig.Type()),
			slog.String("user_id", sig.UserID()))
		return nil, nil
	}

	m.logger.Info("rules triggered",
		slog.Int("trigger_count", len(triggers)),
		slog.String("signal_type", sig.Type()),
		slog.String("user_id", sig.UserID()))

	var bonuses []*state.PointTransaction
	var errs []error
	for _, trigger := range triggers {
		row, err := m.engine.Award(ctx, trigger, settings)
		if errors.Is(err, state.ErrDuplicateSource) {
			m.logger.Debug("bonus already awarded",
				slog.String("rule_id", trigger.RuleID),
				slog.String("source_id", trigger.SourceID))
			continue
		}
		if err != nil {
			m.logger.Error("bonus award failed",
				slog.String("rule_id", trigger.RuleID),
				slog.String("user_id", trigger.UserID),
				slog.String("error", err.Error()))
			errs = append(errs, fmt.Errorf("rule %s: %w", trigger.RuleID, err))
			continue
		}
		if row != nil {
			bonuses = append(bonuses, row)
		}
	}

	return bonuses, errors.Join(errs...)
}
