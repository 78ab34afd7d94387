package mock

import (
	"context"
	"sync"

	"github.com/AccelByte/extend-fitness-gamification/pkg/service"
	"github.com/AccelByte/extend-fitness-gamification/pkg/state"
)

var _ service.SettingsStore = (*SettingsStore)(nil)

// SettingsStore is a mock implementation of service.SettingsStore for testing
type SettingsStore struct {
	// Function fields for custom behavior
	GetFunc func(ctx context.Context) (state.Settings, error)
	PutFunc func(ctx context.Context, settings state.Settings) error

	// Simple fields for common scenarios
	Settings state.Settings
	Error    error

	// Call tracking
	mu       sync.Mutex
	GetCalls int
	PutCalls []state.Settings
}

// NewSettingsStore creates a mock settings store holding the default settings
func NewSettingsStore() *SettingsStore {
	return &SettingsStore{
		Settings: state.DefaultSettings(),
	}
}

// WithSettings sets the settings to return
func (m *SettingsStore) WithSettings(settings state.Settings) *SettingsStore {
	m.Settings = settings
	return m
}

// WithError makes every call fail with err
func (m *SettingsStore) WithError(err error) *SettingsStore {
	m.Error = err
	return m
}

// Get returns the mocked settings
func (m *SettingsStore) Get(ctx context.Context) (state.Settings, error) {
	m.mu.Lock()
	m.GetCalls++
	m.mu.Unlock()

	if m.GetFunc != nil {
		return m.GetFunc(ctx)
	}
	if m.Error != nil {
		return state.Settings{}, m.Error
	}
	return m.Settings.Clone(), nil
}

// Put validates and records the settings, then returns them from Get
func (m *SettingsStore) Put(ctx context.Context, settings state.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PutCalls = append(m.PutCalls, settings)

	if m.PutFunc != nil {
		return m.PutFunc(ctx, settings)
	}
	if m.Error != nil {
		return m.Error
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	m.Settings = settings.Clone()
	return nil
}
