// internal/rcwl9620/bus_transport.go
package rcwl9620

import (
	"fmt"
	"time"

	"github.com/tamzrod/ultrasonic-unit/internal/timeutil"
)

// DefaultAddress is the sensor's fixed I²C address.
const DefaultAddress uint16 = 0x57

// CommandMeasureDistance starts a measurement when written as a register address.
const CommandMeasureDistance uint8 = 0x01

const (
	busReadAttempts = 4
	busReadBackoff  = time.Millisecond
)

// busTransport talks to the sensor through command/result register transactions.
type busTransport struct {
	bus     Bus
	clock   timeutil.Clock
	pending bool // a request is outstanding; cleared by a successful read
}

func newBusTransport(b Bus, clock timeutil.Clock) *busTransport {
	return &busTransport{bus: b, clock: clock}
}

// Request writes the measure command unless a request is already outstanding.
func (t *busTransport) Request() error {
	if t.pending {
		return nil
	}
	if err := t.bus.WriteRegister(CommandMeasureDistance, nil); err != nil {
		return fmt.Errorf("rcwl9620: request measurement: %w", err)
	}
	t.pending = true
	return nil
}

// Read attempts the result transaction up to busReadAttempts times.
func (t *busTransport) Read(d *Data) (bool, error) {
	timedOut := false
	var lastErr error

	for attempt := 0; attempt < busReadAttempts; attempt++ {
		if attempt > 0 {
			t.clock.Sleep(busReadBackoff)
		}

		d.Raw = [3]byte{}
		if err := t.bus.Read(d.Raw[:]); err != nil {
			timedOut = true
			lastErr = err
			continue
		}

		t.pending = false
		return timedOut, nil
	}

	return true, fmt.Errorf("%w: %d attempts: %v", ErrTimeout, busReadAttempts, lastErr)
}
