// internal/status/errcode.go
package status

import (
	"errors"

	"github.com/tamzrod/ultrasonic-unit/internal/rcwl9620"
)

// Error codes published in SlotLastErrorCode.
const (
	ErrorNone        uint16 = 0
	ErrorGeneric     uint16 = 1
	ErrorTimeout     uint16 = 2
	ErrorNoEcho      uint16 = 3
	ErrorDrain       uint16 = 4
	ErrorSuspended   uint16 = 5
	ErrorBinding     uint16 = 6
	ErrorBadInterval uint16 = 7
)

// ErrSuspended marks a poll cycle in which periodic measurement was dropped.
var ErrSuspended = errors.New("periodic measurement suspended")

// ErrorCode maps an error to its published code.
// Errors exposing Code() uint16 pass their code through.
func ErrorCode(err error) uint16 {
	if err == nil {
		return ErrorNone
	}

	type coder interface{ Code() uint16 }
	var c coder
	if errors.As(err, &c) {
		return c.Code()
	}

	switch {
	case errors.Is(err, ErrSuspended):
		return ErrorSuspended
	case errors.Is(err, rcwl9620.ErrTimeout):
		return ErrorTimeout
	case errors.Is(err, rcwl9620.ErrPulseTimeout):
		return ErrorNoEcho
	case errors.Is(err, rcwl9620.ErrDrainFailed):
		return ErrorDrain
	case errors.Is(err, rcwl9620.ErrBindingMismatch), errors.Is(err, rcwl9620.ErrUnsupportedBinding):
		return ErrorBinding
	case errors.Is(err, rcwl9620.ErrIntervalTooShort):
		return ErrorBadInterval
	}
	return ErrorGeneric
}
