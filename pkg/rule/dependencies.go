package rule

import (
	"time"

	"github.com/AccelByte/extend-fitness-gamification/pkg/progress"
	"github.com/AccelByte/extend-fitness-gamification/pkg/service"
)

// Dependencies holds the stores and collaborators the engine writes through.
// The engine only evaluates rules when Ledger is nil.
type Dependencies struct {
	UnitOfWork *service.UnitOfWork
	Ledger     service.Ledger
	Progress   service.ProgressStore
	Tracker    *progress.Tracker
	Now        func() time.Time
}

// NewDependencies creates an empty dependencies container
func NewDependencies() *Dependencies {
	return &Dependencies{}
}

// WithStores sets the unit of work, ledger and progress store from one store bundle
func (d *Dependencies) WithStores(stores *service.Stores) *Dependencies {
	d.UnitOfWork = stores.UnitOfWork
	d.Ledger = stores.Ledger
	d.Progress = stores.Progress
	return d
}

// WithTracker sets the progress tracker re-evaluated after every committed award
func (d *Dependencies) WithTracker(tracker *progress.Tracker) *Dependencies {
	d.Tracker = tracker
	return d
}

// WithClock overrides the clock, used by tests
func (d *Dependencies) WithClock(now func() time.Time) *Dependencies {
	d.Now = now
	return d
}
