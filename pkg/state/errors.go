// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package state

import "errors"

// Kind is the failure taxonomy surfaced to callers
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindContention
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindContention:
		return "contention"
	case KindNotFound:
		return "not_found"
	default:
		return "internal"
	}
}

// Error is a classified domain error. Sentinels below are compared with errors.Is.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

var (
	// ErrInvalidDelta indicates a ledger append with a zero point delta.
	ErrInvalidDelta = newError(KindValidation, "invalid_delta", "points delta must be non-zero")

	// ErrInvalidEntry indicates a malformed ledger entry.
	ErrInvalidEntry = newError(KindValidation, "invalid_entry", "invalid ledger entry")

	// ErrUnknownSource indicates a source without a configured base value.
	ErrUnknownSource = newError(KindValidation, "unknown_source", "unknown point source")

	// ErrInvalidSettings indicates settings that failed validation.
	ErrInvalidSettings = newError(KindValidation, "invalid_settings", "invalid gamification settings")

	// ErrInvalidProgress indicates a negative or decreasing progress update.
	ErrInvalidProgress = newError(KindValidation, "invalid_progress", "invalid achievement progress")

	// ErrInsufficientPoints indicates the balance does not cover a reward's cost.
	ErrInsufficientPoints = newError(KindConflict, "insufficient_points", "insufficient points")

	// ErrOutOfStock indicates a reward with no remaining stock.
	ErrOutOfStock = newError(KindConflict, "out_of_stock", "reward is out of stock")

	// ErrRewardUnavailable indicates an inactive or expired reward.
	ErrRewardUnavailable = newError(KindConflict, "reward_unavailable", "reward is not available")

	// ErrInvalidTransition indicates a state change not allowed by the state machine.
	ErrInvalidTransition = newError(KindConflict, "invalid_transition", "invalid state transition")

	// ErrDuplicateSource indicates a replayed (user, source, sourceId) award.
	ErrDuplicateSource = newError(KindConflict, "duplicate_source", "source event already recorded")

	// ErrAlreadyExists indicates a catalog definition or reward id that is already taken.
	ErrAlreadyExists = newError(KindConflict, "already_exists", "already exists")

	// ErrAchievementCompleted indicates a manual award of an achievement the user already holds.
	ErrAchievementCompleted = newError(KindConflict, "achievement_completed", "achievement already completed")

	// ErrDisabled indicates that gamification is switched off in the settings.
	ErrDisabled = newError(KindConflict, "gamification_disabled", "gamification is disabled")

	// ErrContention indicates that the atomic unit could not commit within the retry cap.
	ErrContention = newError(KindContention, "contention", "too much contention, retry the operation")

	// ErrUserNotFound indicates an unknown user.
	ErrUserNotFound = newError(KindNotFound, "user_not_found", "user not found")

	// ErrRewardNotFound indicates an unknown reward id.
	ErrRewardNotFound = newError(KindNotFound, "reward_not_found", "reward not found")

	// ErrUserRewardNotFound indicates an unknown redemption id.
	ErrUserRewardNotFound = newError(KindNotFound, "user_reward_not_found", "redemption not found")

	// ErrAchievementNotFound indicates an unknown achievement id.
	ErrAchievementNotFound = newError(KindNotFound, "achievement_not_found", "achievement not found")

	// ErrLedgerInconsistent indicates a stored balance that disagrees with the ledger rows.
	ErrLedgerInconsistent = newError(KindInternal, "ledger_inconsistent", "ledger balance is inconsistent")
)

// KindOf returns the taxonomy kind of err, KindInternal for unclassified errors
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf returns the machine readable code of err
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "internal"
}
