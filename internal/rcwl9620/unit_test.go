// internal/rcwl9620/unit_test.go
package rcwl9620

import (
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/ultrasonic-unit/internal/monitoring"
	"github.com/tamzrod/ultrasonic-unit/internal/timeutil"
)

func captureLogs(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	prev := monitoring.Logf
	monitoring.SetLogger(func(format string, v ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})
	t.Cleanup(func() { monitoring.Logf = prev })
	return &lines
}

func newBusUnit(t *testing.T, bus *fakeBus, cfg Config) (*Unit, *timeutil.MockClock) {
	t.Helper()
	clock := timeutil.NewMockClock(epoch)
	u := NewUltraSonicI2C(BusBinding(bus), WithClock(clock), WithConfig(cfg))
	return u, clock
}

func idleConfig(size int) Config {
	return Config{StartPeriodic: false, Interval: 150 * time.Millisecond, StoredSize: size}
}

// ---- begin ----

func TestBegin_StartsPeriodicByDefault(t *testing.T) {
	bus := &fakeBus{value: 100_000}
	u := New(BusBinding(bus), WithClock(timeutil.NewMockClock(epoch)))

	require.NoError(t, u.Begin())
	assert.True(t, u.InPeriodic())
	assert.Equal(t, BusMinimumInterval, u.Interval())
	assert.Equal(t, []uint8{CommandMeasureDistance}, bus.writes)
}

func TestBegin_BindingMismatch(t *testing.T) {
	logs := captureLogs(t)
	clock := timeutil.NewMockClock(epoch)
	trig, echo := newFakePins(clock, time.Millisecond)

	io := NewUltraSonicIO(BusBinding(&fakeBus{}), WithClock(clock))
	err := io.Begin()
	require.ErrorIs(t, err, ErrBindingMismatch)
	assert.False(t, io.InPeriodic())

	i2c := NewUltraSonicI2C(PulseBinding(trig, echo), WithClock(clock))
	require.ErrorIs(t, i2c.Begin(), ErrBindingMismatch)

	_, err = i2c.MeasureSingleshot()
	require.ErrorIs(t, err, ErrNotBegun)
	require.ErrorIs(t, i2c.StartPeriodicMeasurement(time.Second), ErrNotBegun)

	require.Len(t, *logs, 2)
	assert.True(t, strings.Contains((*logs)[0], "UnitUltraSonicIO"))
}

func TestBegin_Unbound(t *testing.T) {
	captureLogs(t)
	u := New(Binding{})
	require.ErrorIs(t, u.Begin(), ErrUnsupportedBinding)
}

func TestBegin_InvalidStoredSize(t *testing.T) {
	u, _ := newBusUnit(t, &fakeBus{}, idleConfig(0))
	require.ErrorIs(t, u.Begin(), ErrInvalidConfig)
}

func TestBegin_ReallocatesHistoryOnlyWhenSizeChanges(t *testing.T) {
	bus := &fakeBus{value: 300_000}
	u, _ := newBusUnit(t, bus, idleConfig(4))

	assert.Equal(t, 1, u.Capacity())
	require.NoError(t, u.Begin())
	assert.Equal(t, 4, u.Capacity())

	u.history.Push(DataFromMicrometers(300_000))
	require.NoError(t, u.Begin())
	assert.Equal(t, 1, u.Available(), "same capacity keeps the buffer")

	u.SetConfig(idleConfig(2))
	require.NoError(t, u.Begin())
	assert.Equal(t, 2, u.Capacity())
	assert.True(t, u.Empty())
}

func TestBegin_ClearStale(t *testing.T) {
	bus := &fakeBus{value: 300_000}
	cfg := idleConfig(1)
	cfg.ClearStale = true
	u, _ := newBusUnit(t, bus, cfg)

	require.NoError(t, u.Begin())
	assert.Equal(t, 1, bus.reads)
	assert.True(t, u.Empty(), "stale reading is discarded")
}

// ---- periodic ----

func TestStartPeriodic_Twice(t *testing.T) {
	u, _ := newBusUnit(t, &fakeBus{}, idleConfig(1))
	require.NoError(t, u.Begin())

	require.NoError(t, u.StartPeriodicMeasurement(200*time.Millisecond))
	require.ErrorIs(t, u.StartPeriodicMeasurement(200*time.Millisecond), ErrPeriodic)
	assert.True(t, u.InPeriodic())
	assert.Equal(t, 200*time.Millisecond, u.Interval())
}

func TestStartPeriodic_BelowMinimum(t *testing.T) {
	bus := &fakeBus{}
	u, _ := newBusUnit(t, bus, idleConfig(1))
	require.NoError(t, u.Begin())

	err := u.StartPeriodicMeasurement(120 * time.Millisecond)
	require.ErrorIs(t, err, ErrIntervalTooShort)
	assert.False(t, u.InPeriodic())
	assert.Empty(t, bus.writes)
}

func TestStartPeriodic_RequestFailure(t *testing.T) {
	bus := &fakeBus{writeErr: errBus}
	u, _ := newBusUnit(t, bus, idleConfig(1))
	require.NoError(t, u.Begin())

	require.ErrorIs(t, u.StartPeriodicMeasurement(150*time.Millisecond), errBus)
	assert.False(t, u.InPeriodic())
}

func TestMinimumInterval_PerVariant(t *testing.T) {
	clock := timeutil.NewMockClock(epoch)
	trig, echo := newFakePins(clock, time.Millisecond)

	assert.Equal(t, BusMinimumInterval, New(BusBinding(&fakeBus{})).MinimumInterval())
	assert.Equal(t, PulseMinimumInterval, New(PulseBinding(trig, echo)).MinimumInterval())
	assert.Equal(t, BusMinimumInterval, NewUltraSonicI2C(BusBinding(&fakeBus{})).MinimumInterval())
	assert.Equal(t, PulseMinimumInterval, NewUltraSonicIO(PulseBinding(trig, echo)).MinimumInterval())
}

func TestUpdate_IntervalGating(t *testing.T) {
	bus := &fakeBus{value: 250_000}
	u, clock := newBusUnit(t, bus, idleConfig(4))
	require.NoError(t, u.Begin())
	require.NoError(t, u.StartPeriodicMeasurement(150*time.Millisecond))

	clock.Advance(100 * time.Millisecond)
	u.Update(false)
	assert.False(t, u.Updated())
	assert.Equal(t, 0, bus.reads)

	u.Update(true)
	assert.True(t, u.Updated())
	assert.Equal(t, 1, u.Available())
	assert.Equal(t, clock.Now(), u.UpdatedAt())

	// updated flag only lives for one cycle
	u.Update(false)
	assert.False(t, u.Updated())
}

func TestUpdate_IdleIsNoop(t *testing.T) {
	bus := &fakeBus{value: 250_000}
	u, clock := newBusUnit(t, bus, idleConfig(4))
	require.NoError(t, u.Begin())

	clock.Advance(time.Second)
	u.Update(true)
	assert.False(t, u.Updated())
	assert.Equal(t, 0, bus.reads)
}

func TestUpdate_ReadFailureRetriedNextTick(t *testing.T) {
	bus := &fakeBus{value: 250_000}
	u, clock := newBusUnit(t, bus, idleConfig(4))
	require.NoError(t, u.Begin())
	require.NoError(t, u.StartPeriodicMeasurement(150*time.Millisecond))

	bus.failReads = busReadAttempts
	clock.Advance(150 * time.Millisecond)
	u.Update(false)
	assert.False(t, u.Updated())
	assert.True(t, u.InPeriodic())
	assert.Len(t, bus.writes, 1)

	u.Update(false)
	assert.True(t, u.Updated())
	assert.Len(t, bus.writes, 2)
}

func TestUpdate_TimedOutReadNotStored(t *testing.T) {
	bus := &fakeBus{value: 250_000}
	u, clock := newBusUnit(t, bus, idleConfig(4))
	require.NoError(t, u.Begin())
	require.NoError(t, u.StartPeriodicMeasurement(150*time.Millisecond))

	bus.failReads = 1
	clock.Advance(150 * time.Millisecond)
	at := clock.Now()
	u.Update(false)

	assert.False(t, u.Updated())
	assert.True(t, u.Empty())
	assert.True(t, u.InPeriodic())
	assert.Equal(t, at, u.UpdatedAt())
	assert.Len(t, bus.writes, 2, "pipeline re-armed")
}

func TestUpdate_RearmFailureSuspends(t *testing.T) {
	logs := captureLogs(t)
	bus := &fakeBus{value: 250_000}
	u, clock := newBusUnit(t, bus, idleConfig(4))
	require.NoError(t, u.Begin())
	require.NoError(t, u.StartPeriodicMeasurement(150*time.Millisecond))

	bus.writeErr = errBus
	clock.Advance(150 * time.Millisecond)
	require.NotPanics(t, func() { u.Update(false) })

	assert.False(t, u.InPeriodic())
	assert.Equal(t, 1, u.Available(), "sample read before the failed re-arm is kept")
	require.Len(t, *logs, 1)
	assert.Contains(t, (*logs)[0], "suspended")

	// no automatic retry
	clock.Advance(time.Second)
	u.Update(false)
	assert.False(t, u.InPeriodic())

	// explicit restart
	require.Error(t, u.ResumePeriodicMeasurement())
	bus.writeErr = nil
	require.NoError(t, u.ResumePeriodicMeasurement())
	assert.True(t, u.InPeriodic())
	assert.Equal(t, 150*time.Millisecond, u.Interval())
}

// ---- stop ----

func TestStop_NotPeriodic(t *testing.T) {
	u, _ := newBusUnit(t, &fakeBus{}, idleConfig(1))
	require.ErrorIs(t, u.StopPeriodicMeasurement(), ErrNotPeriodic)
	require.NoError(t, u.Begin())
	require.ErrorIs(t, u.StopPeriodicMeasurement(), ErrNotPeriodic)
}

func TestStop_WaitsForInFlightRequest(t *testing.T) {
	bus := &fakeBus{value: 250_000}
	u, clock := newBusUnit(t, bus, idleConfig(1))
	require.NoError(t, u.Begin())
	require.NoError(t, u.StartPeriodicMeasurement(200*time.Millisecond))

	clock.Advance(50 * time.Millisecond)
	clock.ResetSleeps()
	require.NoError(t, u.StopPeriodicMeasurement())

	assert.False(t, u.InPeriodic())
	assert.Equal(t, []time.Duration{150 * time.Millisecond}, clock.Sleeps())
	assert.Equal(t, 1, bus.reads)
}

func TestStop_OverdueRequestDoesNotWait(t *testing.T) {
	bus := &fakeBus{value: 250_000}
	u, clock := newBusUnit(t, bus, idleConfig(1))
	require.NoError(t, u.Begin())
	require.NoError(t, u.StartPeriodicMeasurement(150*time.Millisecond))

	clock.Advance(time.Second)
	clock.ResetSleeps()
	require.NoError(t, u.StopPeriodicMeasurement())
	assert.Empty(t, clock.Sleeps())
}

func TestStop_DrainRetries(t *testing.T) {
	captureLogs(t)
	bus := &fakeBus{value: 250_000}
	u, _ := newBusUnit(t, bus, idleConfig(1))
	require.NoError(t, u.Begin())
	require.NoError(t, u.StartPeriodicMeasurement(150*time.Millisecond))

	// first two drain reads exhaust their attempts, third succeeds
	bus.failReads = 2 * busReadAttempts
	require.NoError(t, u.StopPeriodicMeasurement())
	assert.False(t, u.InPeriodic())

	require.NoError(t, u.StartPeriodicMeasurement(150*time.Millisecond))
	bus.failReads = 1000
	require.ErrorIs(t, u.StopPeriodicMeasurement(), ErrDrainFailed)
	assert.True(t, u.InPeriodic())
	assert.Equal(t, 2*busReadAttempts+1+(stopDrainRetries+1)*busReadAttempts, bus.reads)
}

// ---- single shot ----

func TestSingleshot_ExclusiveWithPeriodic(t *testing.T) {
	bus := &fakeBus{value: 812_000}
	u, clock := newBusUnit(t, bus, DefaultConfig())
	require.NoError(t, u.Begin())
	require.True(t, u.InPeriodic())

	_, err := u.MeasureSingleshot()
	require.ErrorIs(t, err, ErrPeriodic)

	require.NoError(t, u.StopPeriodicMeasurement())
	clock.ResetSleeps()

	d, err := u.MeasureSingleshot()
	require.NoError(t, err)
	assert.False(t, math.IsNaN(d.Distance()))
	assert.Equal(t, 812.0, d.Distance())
	assert.Equal(t, []time.Duration{singleshotSettle}, clock.Sleeps())
	assert.True(t, u.Empty(), "single shot bypasses history")
}

func TestSingleshot_Failures(t *testing.T) {
	bus := &fakeBus{value: 812_000}
	u, _ := newBusUnit(t, bus, idleConfig(1))
	require.NoError(t, u.Begin())

	bus.writeErr = errBus
	_, err := u.MeasureSingleshot()
	require.ErrorIs(t, err, errBus)

	bus.writeErr = nil
	bus.failReads = 1
	_, err = u.MeasureSingleshot()
	require.ErrorIs(t, err, ErrTimeout)

	bus.failReads = busReadAttempts
	_, err = u.MeasureSingleshot()
	require.ErrorIs(t, err, ErrTimeout)
}

// ---- end to end ----

func TestPeriodic_EndToEnd(t *testing.T) {
	const stored = 8
	bus := &fakeBus{}
	for i := uint32(0); i < stored; i++ {
		bus.seq = append(bus.seq, 100_000+i*10_000)
	}

	u, clock := newBusUnit(t, bus, Config{StoredSize: stored, Interval: 150 * time.Millisecond})
	require.NoError(t, u.Begin())
	require.False(t, u.InPeriodic())
	assert.True(t, math.IsNaN(u.Distance()))

	require.NoError(t, u.StartPeriodicMeasurement(150*time.Millisecond))

	start := clock.Now()
	for u.Available() < stored {
		clock.Advance(10 * time.Millisecond)
		u.Update(false)
		require.Less(t, clock.Since(start), 2*stored*150*time.Millisecond)
	}
	assert.GreaterOrEqual(t, clock.Since(start), stored*150*time.Millisecond)

	assert.Equal(t, stored, u.Available())
	assert.True(t, u.Full())
	assert.False(t, u.Empty())
	assert.Equal(t, 100.0, u.Distance())
	oldest, ok := u.Oldest()
	require.True(t, ok)
	assert.Equal(t, uint32(100_000), oldest.RawDistance())

	for i := 0; i < stored/2; i++ {
		u.Discard()
	}
	assert.Equal(t, stored/2, u.Available())
	assert.False(t, u.Full())
	assert.Equal(t, 140.0, u.Distance())

	require.NoError(t, u.StopPeriodicMeasurement())
	assert.False(t, u.InPeriodic())

	u.Flush()
	assert.Equal(t, 0, u.Available())
	assert.True(t, u.Empty())
	assert.True(t, math.IsNaN(u.Distance()))
}

func TestPeriodic_PulseUnit(t *testing.T) {
	clock := timeutil.NewMockClock(epoch)
	trig, echo := newFakePins(clock, 2*time.Millisecond)
	u := NewUltraSonicIO(PulseBinding(trig, echo), WithClock(clock),
		WithConfig(Config{StartPeriodic: true, Interval: 50 * time.Millisecond, StoredSize: 3}))

	require.NoError(t, u.Begin())
	require.True(t, u.InPeriodic())
	require.ErrorIs(t, u.StartPeriodicMeasurement(50*time.Millisecond), ErrPeriodic)

	for i := 0; i < 4; i++ {
		clock.Advance(50 * time.Millisecond)
		u.Update(false)
		require.True(t, u.Updated())
	}
	assert.True(t, u.Full())
	assert.Equal(t, 343.0, u.Distance())
	assert.Equal(t, 4, trig.pulses)

	require.NoError(t, u.StopPeriodicMeasurement())
	d, err := u.MeasureSingleshot()
	require.NoError(t, err)
	assert.Equal(t, 343.0, d.Distance())

	require.NoError(t, u.StartPeriodicMeasurement(PulseMinimumInterval))
	require.NoError(t, u.StopPeriodicMeasurement())
	require.ErrorIs(t, u.StartPeriodicMeasurement(40*time.Millisecond), ErrIntervalTooShort)
}
