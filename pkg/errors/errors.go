// Package errors provides common, reusable error values and helpers.
package errors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrParticipantNotFound  = errors.New("participant not found")
	ErrEquivalentRequired   = errors.New("a specific equivalent is required")
	ErrSnapshotNotLoaded    = errors.New("snapshot not loaded")
	ErrSnapshotSource       = errors.New("snapshot source failed")
	ErrUnsupportedFixture   = errors.New("unsupported fixture format")
	ErrPreferenceNotFound   = errors.New("preference not found")
	ErrInvalidFilter        = errors.New("invalid filter configuration")
	ErrDatasetUnavailable   = errors.New("dataset unavailable")
	ErrCycleSourceFailed    = errors.New("clearing cycle source failed")
	ErrMissingConfiguration = errors.New("missing required configuration")
)

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
