// internal/rcwl9620/pulse_transport.go
package rcwl9620

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"

	"github.com/tamzrod/ultrasonic-unit/internal/timeutil"
)

// speedOfSound is in meters per second, which is also micrometers per microsecond.
const speedOfSound = 343

const (
	pulseTimeout = 50 * time.Millisecond
	triggerSetup = 2 * time.Microsecond
	triggerWidth = 10 * time.Microsecond
)

// pulseTransport measures distance from the echo pulse width.
// Request and read are fused: every Read fires a new trigger pulse.
type pulseTransport struct {
	trigger gpio.PinOut
	echo    gpio.PinIn
	clock   timeutil.Clock
}

func newPulseTransport(trigger gpio.PinOut, echo gpio.PinIn, clock timeutil.Clock) (*pulseTransport, error) {
	if err := trigger.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("rcwl9620: trigger pin %s: %w", trigger, err)
	}
	if err := echo.In(gpio.PullDown, gpio.BothEdges); err != nil {
		return nil, fmt.Errorf("rcwl9620: echo pin %s: %w", echo, err)
	}
	return &pulseTransport{trigger: trigger, echo: echo, clock: clock}, nil
}

func (t *pulseTransport) Request() error { return nil }

func (t *pulseTransport) Read(d *Data) (bool, error) {
	if err := t.fire(); err != nil {
		return false, err
	}

	width, err := t.pulseIn(pulseTimeout)
	if err != nil {
		return false, err
	}

	*d = DataFromMicrometers(PulseToMicrometers(width))
	return false, nil
}

// fire drives the trigger low, high for triggerWidth, then low again.
func (t *pulseTransport) fire() error {
	if err := t.trigger.Out(gpio.Low); err != nil {
		return fmt.Errorf("rcwl9620: trigger: %w", err)
	}
	t.clock.Sleep(triggerSetup)
	if err := t.trigger.Out(gpio.High); err != nil {
		return fmt.Errorf("rcwl9620: trigger: %w", err)
	}
	t.clock.Sleep(triggerWidth)
	if err := t.trigger.Out(gpio.Low); err != nil {
		return fmt.Errorf("rcwl9620: trigger: %w", err)
	}
	return nil
}

// pulseIn measures the width of the next high pulse on the echo pin.
// The timeout covers both waiting for the pulse and the pulse itself.
func (t *pulseTransport) pulseIn(timeout time.Duration) (time.Duration, error) {
	deadline := t.clock.Now().Add(timeout)

	if !t.waitLevel(gpio.High, deadline) {
		return 0, ErrPulseTimeout
	}
	start := t.clock.Now()

	if !t.waitLevel(gpio.Low, deadline) {
		return 0, ErrPulseTimeout
	}
	return t.clock.Since(start), nil
}

func (t *pulseTransport) waitLevel(l gpio.Level, deadline time.Time) bool {
	for t.echo.Read() != l {
		left := t.clock.Until(deadline)
		if left <= 0 {
			return false
		}
		if !t.echo.WaitForEdge(left) {
			return false
		}
	}
	return true
}

// PulseToMicrometers converts a round-trip echo width to a one-way distance.
func PulseToMicrometers(width time.Duration) uint32 {
	if width <= 0 {
		return 0
	}
	um := width.Nanoseconds() * speedOfSound / 2000
	if um > maxRaw {
		return maxRaw
	}
	return uint32(um)
}
