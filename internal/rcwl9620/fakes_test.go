// internal/rcwl9620/fakes_test.go
package rcwl9620

import (
	"errors"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"

	"github.com/tamzrod/ultrasonic-unit/internal/timeutil"
)

var errBus = errors.New("bus nack")

var epoch = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// ---- fake register bus ----

type fakeBus struct {
	writes   []uint8
	writeErr error

	reads     int
	failReads int      // number of upcoming reads that fail
	seq       []uint32 // values returned in order, then value
	value     uint32
}

func (f *fakeBus) WriteRegister(reg uint8, data []byte) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes = append(f.writes, reg)
	return nil
}

func (f *fakeBus) Read(p []byte) error {
	f.reads++
	if f.failReads > 0 {
		f.failReads--
		return errBus
	}
	v := f.value
	if len(f.seq) > 0 {
		v = f.seq[0]
		f.seq = f.seq[1:]
	}
	d := DataFromMicrometers(v)
	copy(p, d.Raw[:])
	return nil
}

// ---- fake trigger/echo pins ----

// fakeEcho produces one high pulse per trigger, delay after the trigger
// falls and width long. A zero width never raises the pin.
type fakeEcho struct {
	*gpiotest.Pin
	clock *timeutil.MockClock

	delay time.Duration
	width time.Duration

	level    gpio.Level
	seenHigh bool
}

func (f *fakeEcho) In(gpio.Pull, gpio.Edge) error { return nil }
func (f *fakeEcho) Read() gpio.Level              { return f.level }

func (f *fakeEcho) WaitForEdge(timeout time.Duration) bool {
	var next time.Duration
	switch {
	case f.width == 0:
		f.clock.Advance(timeout)
		return false
	case f.level == gpio.Low && !f.seenHigh:
		next = f.delay
	case f.level == gpio.High:
		next = f.width
	default:
		f.clock.Advance(timeout)
		return false
	}
	if next > timeout {
		f.clock.Advance(timeout)
		return false
	}
	f.clock.Advance(next)
	f.level = !f.level
	if f.level == gpio.High {
		f.seenHigh = true
	}
	return true
}

func (f *fakeEcho) arm() {
	f.level = gpio.Low
	f.seenHigh = false
}

type fakeTrigger struct {
	*gpiotest.Pin
	echo   *fakeEcho
	last   gpio.Level
	pulses int
}

func (f *fakeTrigger) Out(l gpio.Level) error {
	if f.last == gpio.High && l == gpio.Low {
		f.pulses++
		f.echo.arm()
	}
	f.last = l
	return nil
}

func newFakePins(clock *timeutil.MockClock, width time.Duration) (*fakeTrigger, *fakeEcho) {
	echo := &fakeEcho{
		Pin:   &gpiotest.Pin{N: "ECHO", Num: 27},
		clock: clock,
		delay: 200 * time.Microsecond,
		width: width,
	}
	trig := &fakeTrigger{Pin: &gpiotest.Pin{N: "TRIG", Num: 17}, echo: echo}
	return trig, echo
}
