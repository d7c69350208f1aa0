// internal/rcwl9620/variant.go
package rcwl9620

import "time"

// Minimum intervals per transport: the time the sensor needs to finish a round trip.
const (
	BusMinimumInterval   = 150 * time.Millisecond
	PulseMinimumInterval = 50 * time.Millisecond
)

// Variant is the identity of a device built on the RCWL-9620.
// It fixes which binding is legal and the minimum measurement interval.
type Variant struct {
	Name string
	// Requires is the binding kind Begin insists on. BindingAny accepts both.
	Requires BindingKind
	// MinimumInterval overrides the transport default when non-zero.
	MinimumInterval time.Duration
}

var (
	// UnitRCWL9620 is the bare sensor unit; either binding is accepted.
	UnitRCWL9620 = Variant{Name: "UnitRCWL9620", Requires: BindingAny}
	// UnitUltraSonicI2C is the I²C UltraSonic unit.
	UnitUltraSonicI2C = Variant{Name: "UnitUltraSonicI2C", Requires: BindingBus, MinimumInterval: BusMinimumInterval}
	// UnitUltraSonicIO is the trigger/echo UltraSonic unit.
	UnitUltraSonicIO = Variant{Name: "UnitUltraSonicIO", Requires: BindingPulse, MinimumInterval: PulseMinimumInterval}
)

// MinimumIntervalFor resolves the floor for a unit bound through kind.
func (v Variant) MinimumIntervalFor(kind BindingKind) time.Duration {
	if v.MinimumInterval > 0 {
		return v.MinimumInterval
	}
	if kind == BindingPulse {
		return PulseMinimumInterval
	}
	return BusMinimumInterval
}

// New returns a bare RCWL9620 unit.
func New(b Binding, opts ...Option) *Unit {
	return NewVariant(UnitRCWL9620, b, opts...)
}

// NewUltraSonicI2C returns a unit that must be bound to a register bus.
func NewUltraSonicI2C(b Binding, opts ...Option) *Unit {
	return NewVariant(UnitUltraSonicI2C, b, opts...)
}

// NewUltraSonicIO returns a unit that must be bound to a trigger/echo pin pair.
func NewUltraSonicIO(b Binding, opts ...Option) *Unit {
	return NewVariant(UnitUltraSonicIO, b, opts...)
}

// VariantByName looks up a known variant.
func VariantByName(name string) (Variant, bool) {
	for _, v := range []Variant{UnitRCWL9620, UnitUltraSonicI2C, UnitUltraSonicIO} {
		if v.Name == name {
			return v, true
		}
	}
	return Variant{}, false
}
