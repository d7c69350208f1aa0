// internal/rcwl9620/unit.go
package rcwl9620

import (
	"fmt"
	"math"
	"time"

	"github.com/tamzrod/ultrasonic-unit/internal/monitoring"
	"github.com/tamzrod/ultrasonic-unit/internal/timeutil"
)

const (
	singleshotSettle  = 100 * time.Millisecond
	stopDrainRetries  = 8
	stopDrainInterval = time.Millisecond
)

// Config is read by Begin.
type Config struct {
	// StartPeriodic starts periodic measurement at the end of Begin.
	StartPeriodic bool
	// Interval is the periodic interval used when StartPeriodic is set.
	Interval time.Duration
	// StoredSize is the history capacity (>= 1).
	StoredSize int
	// ClearStale performs one discarded read during Begin to consume a
	// request left outstanding by a previous session.
	ClearStale bool
}

// DefaultConfig matches the sensor's power-on expectations.
func DefaultConfig() Config {
	return Config{
		StartPeriodic: true,
		Interval:      BusMinimumInterval,
		StoredSize:    1,
	}
}

// Option customizes a Unit at construction.
type Option func(*Unit)

// WithClock replaces the real clock, mainly for tests.
func WithClock(c timeutil.Clock) Option {
	return func(u *Unit) { u.clock = c }
}

// WithConfig sets the initial config.
func WithConfig(cfg Config) Option {
	return func(u *Unit) { u.cfg = cfg }
}

// Unit is the measurement state machine shared by every variant.
// It is Idle until StartPeriodicMeasurement succeeds, then Periodic until
// stopped or until re-arming a request fails.
type Unit struct {
	variant Variant
	binding Binding
	clock   timeutil.Clock
	cfg     Config

	history   *History
	transport Transport

	periodic bool
	interval time.Duration
	latest   time.Time
	updated  bool
}

// NewVariant builds a unit for v reachable through b.
func NewVariant(v Variant, b Binding, opts ...Option) *Unit {
	u := &Unit{
		variant: v,
		binding: b,
		clock:   timeutil.RealClock{},
		cfg:     DefaultConfig(),
		history: NewHistory(1),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *Unit) Name() string       { return u.variant.Name }
func (u *Unit) Variant() Variant   { return u.variant }
func (u *Unit) Config() Config     { return u.cfg }
func (u *Unit) SetConfig(c Config) { u.cfg = c }

// MinimumInterval is the shortest periodic interval the unit accepts.
func (u *Unit) MinimumInterval() time.Duration {
	return u.variant.MinimumIntervalFor(u.binding.Kind())
}

// Begin validates the binding, (re)builds the history and the transport,
// and starts periodic measurement when configured to.
func (u *Unit) Begin() error {
	if u.variant.Requires != BindingAny && u.binding.Kind() != u.variant.Requires {
		monitoring.Logf("%s: not a %s connection (got %s)", u.variant.Name, u.variant.Requires, u.binding.Kind())
		return fmt.Errorf("%w: %s requires %s binding, got %s",
			ErrBindingMismatch, u.variant.Name, u.variant.Requires, u.binding.Kind())
	}

	if u.cfg.StoredSize < 1 {
		return fmt.Errorf("%w: stored size %d", ErrInvalidConfig, u.cfg.StoredSize)
	}
	if u.history.Capacity() != u.cfg.StoredSize {
		u.history = NewHistory(u.cfg.StoredSize)
	}

	t, err := u.binding.newTransport(u.clock)
	if err != nil {
		monitoring.Logf("%s: transport setup failed: %v", u.variant.Name, err)
		return err
	}
	u.transport = t
	u.periodic = false
	u.updated = false

	if u.cfg.ClearStale {
		var discard Data
		_, _ = u.transport.Read(&discard)
	}

	if u.cfg.StartPeriodic {
		return u.StartPeriodicMeasurement(u.cfg.Interval)
	}
	return nil
}

// Update samples the sensor when the interval has elapsed (or force is set).
// It never blocks beyond the transport's own bounded retries.
func (u *Unit) Update(force bool) {
	u.updated = false
	if !u.periodic {
		return
	}

	at := u.clock.Now()
	if !force && at.Sub(u.latest) < u.interval {
		return
	}

	var d Data
	timedOut, err := u.transport.Read(&d)
	if err != nil {
		return
	}

	u.latest = at
	if !timedOut {
		u.history.Push(d)
		u.updated = true
	}

	if err := u.transport.Request(); err != nil {
		u.periodic = false
		monitoring.Logf("%s: periodic measurements have been suspended: %v", u.variant.Name, err)
	}
}

// StartPeriodicMeasurement issues the first request and enters periodic mode.
func (u *Unit) StartPeriodicMeasurement(interval time.Duration) error {
	if u.periodic {
		return ErrPeriodic
	}
	if u.transport == nil {
		return ErrNotBegun
	}
	if floor := u.MinimumInterval(); interval < floor {
		return fmt.Errorf("%w: %v < %v", ErrIntervalTooShort, interval, floor)
	}

	if err := u.transport.Request(); err != nil {
		return err
	}

	u.periodic = true
	u.interval = interval
	u.latest = u.clock.Now()
	return nil
}

// ResumePeriodicMeasurement restarts periodic mode with the last used
// interval, or the configured one if periodic mode never ran.
func (u *Unit) ResumePeriodicMeasurement() error {
	interval := u.interval
	if interval == 0 {
		interval = u.cfg.Interval
	}
	return u.StartPeriodicMeasurement(interval)
}

// StopPeriodicMeasurement waits for the in-flight request to complete and
// drains its result so the next session starts clean.
func (u *Unit) StopPeriodicMeasurement() error {
	if !u.periodic {
		return ErrNotPeriodic
	}

	wait := u.interval - u.clock.Since(u.latest)
	if wait > u.interval {
		wait = u.interval
	}
	if wait > 0 {
		u.clock.Sleep(wait)
	}

	var discard Data
	for retry := 0; retry <= stopDrainRetries; retry++ {
		if _, err := u.transport.Read(&discard); err == nil {
			u.periodic = false
			return nil
		}
		u.clock.Sleep(stopDrainInterval)
	}

	monitoring.Logf("%s: failed to drain pending measurement", u.variant.Name)
	return ErrDrainFailed
}

// MeasureSingleshot takes one blocking measurement. It bypasses the history
// and is refused while periodic measurement runs.
func (u *Unit) MeasureSingleshot() (Data, error) {
	if u.periodic {
		return Data{}, ErrPeriodic
	}
	if u.transport == nil {
		return Data{}, ErrNotBegun
	}

	if err := u.transport.Request(); err != nil {
		return Data{}, err
	}
	u.clock.Sleep(singleshotSettle)

	var d Data
	timedOut, err := u.transport.Read(&d)
	if err != nil {
		return Data{}, err
	}
	if timedOut {
		return d, ErrTimeout
	}
	return d, nil
}

// ---- periodic state ----

func (u *Unit) InPeriodic() bool { return u.periodic }

// Updated reports whether the last Update pushed a new sample.
func (u *Unit) Updated() bool { return u.updated }

// UpdatedAt is the time of the last sample (or of the periodic start).
func (u *Unit) UpdatedAt() time.Time { return u.latest }

// Interval is the current periodic interval.
func (u *Unit) Interval() time.Duration { return u.interval }

// ---- history ----

// Distance returns the oldest buffered distance in millimeters, NaN if none.
func (u *Unit) Distance() float64 {
	d, ok := u.history.Oldest()
	if !ok {
		return math.NaN()
	}
	return d.Distance()
}

func (u *Unit) Oldest() (Data, bool) { return u.history.Oldest() }
func (u *Unit) Available() int       { return u.history.Available() }
func (u *Unit) Empty() bool          { return u.history.Empty() }
func (u *Unit) Full() bool           { return u.history.Full() }
func (u *Unit) Capacity() int        { return u.history.Capacity() }
func (u *Unit) Discard()             { u.history.Discard() }
func (u *Unit) Flush()               { u.history.Flush() }
