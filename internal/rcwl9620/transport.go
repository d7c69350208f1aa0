// internal/rcwl9620/transport.go
package rcwl9620

import (
	"periph.io/x/conn/v3/gpio"

	"github.com/tamzrod/ultrasonic-unit/internal/timeutil"
)

// Transport issues measurement requests and retrieves their results.
// Exactly one Transport is built per Begin and held until the next Begin.
type Transport interface {
	// Request asks the sensor to start a measurement.
	Request() error
	// Read retrieves a measurement into d. timedOut reports that the result
	// was obtained only after at least one failed attempt.
	Read(d *Data) (timedOut bool, err error)
}

// Bus is the register bus primitive consumed by the bus transport.
type Bus interface {
	// WriteRegister writes data to register reg. An empty data writes the
	// register address alone.
	WriteRegister(reg uint8, data []byte) error
	// Read reads len(p) bytes from the device.
	Read(p []byte) error
}

// BindingKind tags the physical interface of a Binding.
type BindingKind int

const (
	// BindingAny is only meaningful as a variant requirement: any kind is accepted.
	BindingAny BindingKind = iota
	BindingBus
	BindingPulse
)

func (k BindingKind) String() string {
	switch k {
	case BindingAny:
		return "any"
	case BindingBus:
		return "bus"
	case BindingPulse:
		return "pulse"
	default:
		return "unknown"
	}
}

// Binding is the physical interface a unit is reachable through.
// The zero Binding is unbound and fails Begin.
type Binding struct {
	kind    BindingKind
	bus     Bus
	trigger gpio.PinOut
	echo    gpio.PinIn
}

// BusBinding binds a unit to a register bus.
func BusBinding(b Bus) Binding {
	return Binding{kind: BindingBus, bus: b}
}

// PulseBinding binds a unit to a trigger/echo pin pair.
func PulseBinding(trigger gpio.PinOut, echo gpio.PinIn) Binding {
	return Binding{kind: BindingPulse, trigger: trigger, echo: echo}
}

// Kind reports the binding kind. An unbound Binding reports BindingAny.
func (b Binding) Kind() BindingKind { return b.kind }

func (b Binding) newTransport(clock timeutil.Clock) (Transport, error) {
	switch b.kind {
	case BindingBus:
		if b.bus == nil {
			return nil, ErrUnsupportedBinding
		}
		return newBusTransport(b.bus, clock), nil
	case BindingPulse:
		if b.trigger == nil || b.echo == nil {
			return nil, ErrUnsupportedBinding
		}
		return newPulseTransport(b.trigger, b.echo, clock)
	default:
		return nil, ErrUnsupportedBinding
	}
}
