package signal

import (
	"context"
	"fmt"

	"github.com/AccelByte/extend-fitness-gamification/pkg/service"
	"github.com/AccelByte/extend-fitness-gamification/pkg/state"
)

// BuildPlayerContext creates a PlayerContext from the user's stored progress.
// The tier is derived from lifetime points with the given settings.
func BuildPlayerContext(userID string, stats *state.ActivityStats, balance, lifetime int64, settings state.Settings) *PlayerContext {
	if stats == nil {
		stats = &state.ActivityStats{UserID: userID}
	}
	return &PlayerContext{
		UserID:         userID,
		Activity:       stats,
		Balance:        balance,
		LifetimePoints: lifetime,
		Tier:           settings.TierFor(lifetime),
		Settings:       settings,
	}
}

// StoreContextLoader loads player context from the ledger and progress stores.
type StoreContextLoader struct {
	ledger   service.Ledger
	progress service.ProgressStore
	settings service.SettingsStore
}

// NewStoreContextLoader creates a loader on top of the given stores.
func NewStoreContextLoader(ledger service.Ledger, progress service.ProgressStore, settings service.SettingsStore) *StoreContextLoader {
	return &StoreContextLoader{
		ledger:   ledger,
		progress: progress,
		settings: settings,
	}
}

// Load implements PlayerContextLoader. Every call takes a fresh settings snapshot.
func (l *StoreContextLoader) Load(ctx context.Context, userID string) (*PlayerContext, error) {
	settings, err := l.settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return l.LoadWithSettings(ctx, userID, settings)
}

// LoadWithSettings loads player context under an existing settings snapshot.
func (l *StoreContextLoader) LoadWithSettings(ctx context.Context, userID string, settings state.Settings) (*PlayerContext, error) {
	stats, err := l.progress.Activity(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	balance, err := l.ledger.CurrentBalance(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	lifetime, err := l.ledger.LifetimeEarned(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lifetime points: %w", err)
	}
	return BuildPlayerContext(userID, stats, balance, lifetime, settings), nil
}
