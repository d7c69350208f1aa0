// cmd/ultrasonic/health.go
package main

import (
	"errors"

	"github.com/tamzrod/ultrasonic-unit/internal/poller"
	"github.com/tamzrod/ultrasonic-unit/internal/status"
)

// unitHealth is the runner-owned status state of one unit.
// It turns poll results and 1Hz ticks into snapshots.
type unitHealth struct {
	snap status.Snapshot
}

func newUnitHealth() *unitHealth {
	// Default snapshot state on start.
	return &unitHealth{snap: status.Snapshot{Health: status.HealthUnknown}}
}

// observe folds one poll result into the snapshot.
// It reports whether anything changed.
func (h *unitHealth) observe(res poller.PollResult) bool {
	next := h.snap

	next.Mode = res.Mode
	next.Suspensions = res.Suspensions

	switch {
	case res.Err == nil && res.Stale:
		next.Health = status.HealthStale
		next.LastErrorCode = status.ErrorTimeout

	case res.Err == nil:
		// Recovery / OK
		next.Health = status.HealthOK
		next.LastErrorCode = status.ErrorNone
		// Reset seconds-in-error on recovery.
		next.SecondsInError = 0

	case errors.Is(res.Err, status.ErrSuspended):
		next.Health = status.HealthDisabled
		next.LastErrorCode = status.ErrorSuspended

	default:
		next.Health = status.HealthError
		next.LastErrorCode = status.ErrorCode(res.Err)
	}

	// NOTE: seconds_in_error increments on the 1Hz ticker only.

	changed := next != h.snap
	h.snap = next
	return changed
}

// tick advances seconds_in_error while not OK. It saturates at 65535.
func (h *unitHealth) tick() bool {
	if h.snap.Health == status.HealthOK || h.snap.SecondsInError == 0xFFFF {
		return false
	}
	h.snap.SecondsInError++
	return true
}
