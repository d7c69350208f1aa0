// internal/bus/i2cbus/i2cbus.go

// Package i2cbus adapts a periph.io I²C device to the register bus the
// sensor transport consumes.
package i2cbus

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// Bus addresses one device on an I²C bus.
type Bus struct {
	dev *i2c.Dev
}

// New binds addr on an already opened bus.
func New(b i2c.Bus, addr uint16) *Bus {
	return &Bus{dev: &i2c.Dev{Bus: b, Addr: addr}}
}

// Open initializes the host drivers and opens the named bus.
// An empty name selects the first available bus.
// The returned closer releases the bus.
func Open(name string, addr uint16) (*Bus, func() error, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, fmt.Errorf("i2cbus: host init: %w", err)
	}

	bc, err := i2creg.Open(name)
	if err != nil {
		return nil, nil, fmt.Errorf("i2cbus: open %q: %w", name, err)
	}

	return New(bc, addr), bc.Close, nil
}

// WriteRegister writes the register address followed by data in one transaction.
func (b *Bus) WriteRegister(reg uint8, data []byte) error {
	w := make([]byte, 0, 1+len(data))
	w = append(w, reg)
	w = append(w, data...)
	if err := b.dev.Tx(w, nil); err != nil {
		return fmt.Errorf("i2cbus: write reg 0x%02x: %w", reg, err)
	}
	return nil
}

// Read reads len(p) bytes without addressing a register first.
func (b *Bus) Read(p []byte) error {
	if err := b.dev.Tx(nil, p); err != nil {
		return fmt.Errorf("i2cbus: read %d bytes: %w", len(p), err)
	}
	return nil
}

func (b *Bus) String() string {
	return b.dev.String()
}
