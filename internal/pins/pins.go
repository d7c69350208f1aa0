// internal/pins/pins.go

// Package pins resolves the trigger/echo pin pair of a pulse-connected sensor.
package pins

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Pair is a trigger output and an echo input.
type Pair struct {
	Trigger gpio.PinIO
	Echo    gpio.PinIO
}

// Init loads the host drivers so that gpioreg knows the board's pins.
func Init() error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("pins: host init: %w", err)
	}
	return nil
}

// Lookup resolves both pins by name, in the format expected by gpioreg
// (for a Raspberry Pi, "GPIO17" or the BCM number as a string).
func Lookup(trigger, echo string) (Pair, error) {
	if trigger == echo {
		return Pair{}, fmt.Errorf("pins: trigger and echo must differ (%s)", trigger)
	}

	var p Pair
	p.Trigger = gpioreg.ByName(trigger)
	if p.Trigger == nil {
		return Pair{}, fmt.Errorf("pins: no GPIO trigger pin named: %s", trigger)
	}
	p.Echo = gpioreg.ByName(echo)
	if p.Echo == nil {
		return Pair{}, fmt.Errorf("pins: no GPIO echo pin named: %s", echo)
	}
	return p, nil
}

// Halt stops both pins.
func (p Pair) Halt() error {
	errT := p.Trigger.Halt()
	errE := p.Echo.Halt()
	if errT != nil {
		return errT
	}
	return errE
}
