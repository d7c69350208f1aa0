// internal/rcwl9620/errors.go
package rcwl9620

import "errors"

var (
	// ErrPeriodic is returned when an operation conflicts with periodic mode.
	ErrPeriodic = errors.New("rcwl9620: periodic measurement in progress")
	// ErrNotPeriodic is returned when stopping a unit that is not periodic.
	ErrNotPeriodic = errors.New("rcwl9620: periodic measurement not running")
	// ErrIntervalTooShort is returned for intervals below the minimum.
	ErrIntervalTooShort = errors.New("rcwl9620: interval below minimum")
	// ErrBindingMismatch is returned by Begin when the binding does not match the variant.
	ErrBindingMismatch = errors.New("rcwl9620: binding does not match device")
	// ErrUnsupportedBinding is returned by Begin for an empty or unknown binding.
	ErrUnsupportedBinding = errors.New("rcwl9620: unsupported binding")
	// ErrNotBegun is returned when measuring before a successful Begin.
	ErrNotBegun = errors.New("rcwl9620: unit not begun")
	// ErrDrainFailed is returned when stopping could not retrieve the pending reading.
	ErrDrainFailed = errors.New("rcwl9620: pending measurement could not be drained")
	// ErrTimeout is returned when a bus read did not succeed on its first attempt.
	ErrTimeout = errors.New("rcwl9620: measurement timed out")
	// ErrPulseTimeout is returned when no echo pulse is observed.
	ErrPulseTimeout = errors.New("rcwl9620: no echo pulse")
	// ErrInvalidConfig is returned by Begin for an unusable configuration.
	ErrInvalidConfig = errors.New("rcwl9620: invalid config")
)
