package house

import "errors"

// Domain errors for the house package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, house.ErrInvariantViolation) {
//	    // policy evaluator bug, state was not committed
//	}
var (
	// ErrInvalidTime is returned when a time-of-day is not HHMM in 0000-2359.
	ErrInvalidTime = errors.New("house: invalid time of day")

	// ErrInvalidValue is returned when an update field has the wrong type or range.
	ErrInvalidValue = errors.New("house: invalid field value")

	// ErrInvalidPasscode is returned when a passcode is not 4-8 digits.
	ErrInvalidPasscode = errors.New("house: malformed passcode")

	// ErrInvariantViolation is returned when a cycle would commit an
	// inconsistent state. It always indicates a bug in the evaluator.
	ErrInvariantViolation = errors.New("house: invariant violation")

	// ErrInvalidName is returned when a house identifier is empty or too long.
	ErrInvalidName = errors.New("house: invalid name")
)
