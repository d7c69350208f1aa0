// internal/poller/builder.go
package poller

import (
	"fmt"
	"time"

	cfg "github.com/tamzrod/ultrasonic-unit/internal/config"

	"github.com/tamzrod/ultrasonic-unit/internal/bus/gateway"
	"github.com/tamzrod/ultrasonic-unit/internal/bus/i2cbus"
	"github.com/tamzrod/ultrasonic-unit/internal/pins"
	"github.com/tamzrod/ultrasonic-unit/internal/rcwl9620"
	"github.com/tamzrod/ultrasonic-unit/internal/timeutil"
)

// Build opens the unit's transport, begins the sensor and wraps it in a Poller.
// The returned closer releases the transport.
// Fail fast: any error at startup is returned, nothing is retried.
func Build(u cfg.UnitConfig) (*Poller, func() error, error) {
	b, closer, err := bind(u.Transport)
	if err != nil {
		return nil, nil, fmt.Errorf("unit %s: %w", u.ID, err)
	}

	unit := rcwl9620.NewVariant(u.Variant(), b, rcwl9620.WithConfig(UnitSettings(u)))
	if err := unit.Begin(); err != nil {
		_ = closer()
		return nil, nil, fmt.Errorf("unit %s: begin: %w", u.ID, err)
	}

	p, err := New(
		Config{
			UnitID:       u.ID,
			Interval:     time.Duration(u.Poll.IntervalMs) * time.Millisecond,
			RestartAfter: time.Duration(u.Poll.RestartAfterMs) * time.Millisecond,
		},
		unit,
		timeutil.RealClock{},
	)
	if err != nil {
		_ = closer()
		return nil, nil, err
	}

	return p, closer, nil
}

// UnitSettings derives the driver config from a normalized unit config.
func UnitSettings(u cfg.UnitConfig) rcwl9620.Config {
	c := rcwl9620.DefaultConfig()
	if u.Measurement.StartPeriodic != nil {
		c.StartPeriodic = *u.Measurement.StartPeriodic
	}
	if u.Measurement.IntervalMs > 0 {
		c.Interval = time.Duration(u.Measurement.IntervalMs) * time.Millisecond
	} else {
		c.Interval = u.MinimumInterval()
	}
	if u.Measurement.StoredSize > 0 {
		c.StoredSize = u.Measurement.StoredSize
	}
	c.ClearStale = u.Measurement.ClearStale
	return c
}

// bind opens the transport named by t. ONE attempt per call.
func bind(t cfg.TransportConfig) (rcwl9620.Binding, func() error, error) {
	switch t.Type {
	case cfg.TransportI2C:
		bus, closer, err := i2cbus.Open(t.Bus, t.Address)
		if err != nil {
			return rcwl9620.Binding{}, nil, err
		}
		return rcwl9620.BusBinding(bus), closer, nil

	case cfg.TransportGPIO:
		if err := pins.Init(); err != nil {
			return rcwl9620.Binding{}, nil, err
		}
		pair, err := pins.Lookup(t.Trigger, t.Echo)
		if err != nil {
			return rcwl9620.Binding{}, nil, err
		}
		return rcwl9620.PulseBinding(pair.Trigger, pair.Echo), pair.Halt, nil

	case cfg.TransportGateway:
		g, err := gateway.Dial(gateway.Config{
			Mode:            t.Mode,
			Endpoint:        t.Endpoint,
			UnitID:          t.UnitID,
			BaudRate:        t.BaudRate,
			Timeout:         time.Duration(t.TimeoutMs) * time.Millisecond,
			CommandRegister: t.CommandRegister,
			ResultRegister:  t.ResultRegister,
		})
		if err != nil {
			return rcwl9620.Binding{}, nil, err
		}
		return rcwl9620.BusBinding(g), g.Close, nil
	}

	return rcwl9620.Binding{}, nil, fmt.Errorf("poller: unsupported transport %q", t.Type)
}
