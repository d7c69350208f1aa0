// internal/poller/poller.go
package poller

import (
	"errors"
	"time"

	"github.com/tamzrod/ultrasonic-unit/internal/monitoring"
	"github.com/tamzrod/ultrasonic-unit/internal/rcwl9620"
	"github.com/tamzrod/ultrasonic-unit/internal/status"
	"github.com/tamzrod/ultrasonic-unit/internal/timeutil"
)

// staleAfter is the number of measurement intervals without a sample after
// which a periodic unit is reported stale.
const staleAfter = 3

// Device abstracts the sensor operations needed by the poller.
// *rcwl9620.Unit satisfies it.
type Device interface {
	Update(force bool)
	Updated() bool
	InPeriodic() bool
	Interval() time.Duration
	Oldest() (rcwl9620.Data, bool)
	Discard()
	ResumePeriodicMeasurement() error
	StopPeriodicMeasurement() error
}

// Config is the minimal runtime config the poller needs.
type Config struct {
	UnitID   string
	Interval time.Duration

	// RestartAfter re-arms a suspended unit once this much time has passed
	// since the suspension. Zero leaves the unit suspended.
	RestartAfter time.Duration
}

// Poller is a dumb, clock-driven host for one unit.
type Poller struct {
	cfg   Config
	dev   Device
	clock timeutil.Clock

	wasPeriodic bool
	suspended   bool
	suspendedAt time.Time
	suspensions uint16

	lastSample time.Time
	seq        uint16
}

// New creates a poller with immutable config.
func New(cfg Config, dev Device, clock timeutil.Clock) (*Poller, error) {
	if cfg.UnitID == "" {
		return nil, errors.New("poller: unit id required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if dev == nil {
		return nil, errors.New("poller: device required")
	}
	if clock == nil {
		clock = timeutil.RealClock{}
	}

	now := clock.Now()
	return &Poller{
		cfg:         cfg,
		dev:         dev,
		clock:       clock,
		wasPeriodic: dev.InPeriodic(),
		lastSample:  now,
	}, nil
}

// PollOnce performs exactly one poll cycle.
func (p *Poller) PollOnce() PollResult {
	at := p.clock.Now()
	res := PollResult{
		UnitID: p.cfg.UnitID,
		At:     at,
	}

	// ---- explicit restart ----

	if p.suspended && p.cfg.RestartAfter > 0 && at.Sub(p.suspendedAt) >= p.cfg.RestartAfter {
		if err := p.dev.ResumePeriodicMeasurement(); err != nil {
			// keep the unit suspended, try again after another delay
			p.suspendedAt = at
			res.Err = err
		} else {
			monitoring.Logf("poller: unit %s: periodic measurement resumed", p.cfg.UnitID)
			p.suspended = false
			p.wasPeriodic = true
			p.lastSample = at
		}
	}

	// ---- sample ----

	p.dev.Update(false)

	if p.dev.Updated() {
		for {
			d, ok := p.dev.Oldest()
			if !ok {
				break
			}
			p.dev.Discard()
			p.seq++
			res.Samples = append(res.Samples, Sample{
				Data:     d,
				Distance: d.Distance(),
				Seq:      p.seq,
			})
		}
		p.lastSample = at
	}

	// ---- mode tracking ----

	periodic := p.dev.InPeriodic()
	if p.wasPeriodic && !periodic {
		p.suspended = true
		p.suspendedAt = at
		if p.suspensions < 0xFFFF {
			p.suspensions++
		}
		res.Err = status.ErrSuspended
	}
	p.wasPeriodic = periodic

	switch {
	case periodic:
		res.Mode = status.ModePeriodic
		if iv := p.dev.Interval(); iv > 0 && at.Sub(p.lastSample) > staleAfter*iv {
			res.Stale = true
		}
	case p.suspended:
		res.Mode = status.ModeSuspended
		if res.Err == nil {
			res.Err = status.ErrSuspended
		}
	default:
		res.Mode = status.ModeIdle
	}
	res.Suspensions = p.suspensions

	return res
}

// Stop ends periodic measurement and drains the in-flight request so the
// next session starts clean. It is a no-op for an idle unit.
func (p *Poller) Stop() error {
	if !p.dev.InPeriodic() {
		return nil
	}
	if err := p.dev.StopPeriodicMeasurement(); err != nil {
		monitoring.Logf("poller: unit %s: stop: %v", p.cfg.UnitID, err)
		return err
	}
	p.wasPeriodic = false
	return nil
}
