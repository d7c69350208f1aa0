// internal/bus/gateway/gateway.go

// Package gateway reaches a sensor through a Modbus register gateway.
// The gateway exposes one holding register that accepts commands and a
// register block that mirrors the sensor's raw result bytes.
package gateway

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/goburrow/modbus"
)

// Transport modes.
const (
	ModeTCP = "tcp"
	ModeRTU = "rtu"
)

// registerClient is the subset of modbus.Client the gateway needs.
type registerClient interface {
	WriteSingleRegister(address, value uint16) ([]byte, error)
	ReadHoldingRegisters(address, quantity uint16) ([]byte, error)
}

// Config is minimal transport config.
type Config struct {
	Mode     string // tcp (default) or rtu
	Endpoint string // host:port, or serial device for rtu
	UnitID   uint8
	BaudRate int
	Timeout  time.Duration

	CommandRegister uint16
	ResultRegister  uint16
}

// Gateway implements the sensor register bus over Modbus.
// It serializes requests so one handler can be shared.
type Gateway struct {
	mu     sync.Mutex
	closer io.Closer
	client registerClient

	commandReg uint16
	resultReg  uint16
}

// Dial connects to the gateway.
func Dial(cfg Config) (*Gateway, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("gateway: endpoint required")
	}

	switch cfg.Mode {
	case "", ModeTCP:
		h := modbus.NewTCPClientHandler(cfg.Endpoint)
		h.Timeout = cfg.Timeout
		h.SlaveId = cfg.UnitID
		if err := h.Connect(); err != nil {
			return nil, fmt.Errorf("gateway: connect %s: %w", cfg.Endpoint, err)
		}
		return newGateway(modbus.NewClient(h), h, cfg), nil

	case ModeRTU:
		h := modbus.NewRTUClientHandler(cfg.Endpoint)
		h.BaudRate = cfg.BaudRate
		h.DataBits = 8
		h.Parity = "N"
		h.StopBits = 1
		h.Timeout = cfg.Timeout
		h.SlaveId = cfg.UnitID
		if err := h.Connect(); err != nil {
			return nil, fmt.Errorf("gateway: open %s: %w", cfg.Endpoint, err)
		}
		return newGateway(modbus.NewClient(h), h, cfg), nil

	default:
		return nil, fmt.Errorf("gateway: unsupported mode %q", cfg.Mode)
	}
}

func newGateway(c registerClient, closer io.Closer, cfg Config) *Gateway {
	return &Gateway{
		closer:     closer,
		client:     c,
		commandReg: cfg.CommandRegister,
		resultReg:  cfg.ResultRegister,
	}
}

// Close releases the underlying handler.
func (g *Gateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closer == nil {
		return nil
	}
	return g.closer.Close()
}

// WriteRegister forwards a sensor register write as one command register
// value: the sensor register in the high byte, the optional payload byte low.
func (g *Gateway) WriteRegister(reg uint8, data []byte) error {
	if len(data) > 1 {
		return fmt.Errorf("gateway: payload of %d bytes does not fit a command", len(data))
	}

	value := uint16(reg) << 8
	if len(data) == 1 {
		value |= uint16(data[0])
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, err := g.client.WriteSingleRegister(g.commandReg, value); err != nil {
		return fmt.Errorf("gateway: command 0x%04x: %w", value, err)
	}
	return nil
}

// Read fills p from the result block. Bytes are right-aligned in the
// registers, so an odd length skips the first (padding) byte.
func (g *Gateway) Read(p []byte) error {
	qty := uint16((len(p) + 1) / 2)
	if qty == 0 {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	res, err := g.client.ReadHoldingRegisters(g.resultReg, qty)
	if err != nil {
		return fmt.Errorf("gateway: read result: %w", err)
	}
	if len(res) < int(qty)*2 {
		return fmt.Errorf("gateway: short result: got=%d want=%d", len(res), qty*2)
	}

	copy(p, res[int(qty)*2-len(p):int(qty)*2])
	return nil
}
