package rule

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/AccelByte/extend-fitness-gamification/pkg/state"
)

// BaseValue returns the configured points for one unit of a source
func BaseValue(source state.Source, settings state.Settings) (int64, error) {
	switch source {
	case state.SourceWorkoutCompletion:
		return settings.PointsPerWorkout, nil
	case state.SourceExerciseCompletion:
		return settings.PointsPerExercise, nil
	case state.SourceStreakBonus:
		return settings.PointsPerStreak, nil
	case state.SourceLevelUp:
		return settings.PointsPerLevel, nil
	case state.SourceReview:
		return settings.PointsPerReview, nil
	case state.SourceReferral:
		return settings.PointsPerReferral, nil
	case state.SourcePurchase:
		return settings.PointsPerPurchase, nil
	}
	return 0, fmt.Errorf("%w: %q", state.ErrUnknownSource, source)
}

// ComputePoints returns the points one event of the source earns
func ComputePoints(source state.Source, settings state.Settings) (int64, error) {
	return ComputePointsN(source, 1, settings)
}

// ComputePointsN returns base x units x multiplier, rounded half-up
func ComputePointsN(source state.Source, units int64, settings state.Settings) (int64, error) {
	if units < 0 {
		return 0, fmt.Errorf("%w: negative units %d", state.ErrInvalidEntry, units)
	}
	base, err := BaseValue(source, settings)
	if err != nil {
		return 0, err
	}
	return Multiply(base*units, settings.PointsMultiplier), nil
}

// Multiply applies a multiplier to a non-negative amount, rounding half-up
func Multiply(points int64, multiplier float64) int64 {
	return decimal.NewFromInt(points).
		Mul(decimal.NewFromFloat(multiplier)).
		Add(decimal.NewFromFloat(0.5)).
		Floor().
		IntPart()
}
