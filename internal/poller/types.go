// internal/poller/types.go
package poller

import (
	"time"

	"github.com/tamzrod/ultrasonic-unit/internal/rcwl9620"
)

// Sample is one measurement drained from the unit's history.
type Sample struct {
	Data     rcwl9620.Data
	Distance float64 // millimeters, clamped
	Seq      uint16  // per-unit sequence, wraps
}

// PollResult is a snapshot produced by one poll cycle.
type PollResult struct {
	UnitID string
	At     time.Time

	// Samples holds every measurement collected since the previous cycle,
	// oldest first. Empty when the interval has not elapsed.
	Samples []Sample

	Mode        uint16 // status.Mode*
	Suspensions uint16 // saturating
	Stale       bool   // periodic, but no sample for staleAfter intervals

	Err error // non-nil means the poll cycle failed
}

// Latest returns the newest sample of the cycle.
func (r PollResult) Latest() (Sample, bool) {
	if len(r.Samples) == 0 {
		return Sample{}, false
	}
	return r.Samples[len(r.Samples)-1], true
}
