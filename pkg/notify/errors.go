package notify

import "errors"

var (
	// ErrSinkNotFound indicates that a requested sink doesn't exist in the registry.
	ErrSinkNotFound = errors.New("sink not found in registry")

	// ErrInvalidConfig indicates that a sink's configuration is invalid.
	ErrInvalidConfig = errors.New("invalid sink configuration")

	// ErrMaxRetriesExceeded indicates that a delivery failed after all retry attempts.
	ErrMaxRetriesExceeded = errors.New("maximum retry attempts exceeded")
)
