// internal/writer/types.go
package writer

import "github.com/tamzrod/ultrasonic-unit/internal/poller"

// TargetEndpoint is one Modbus endpoint receiving the reading block.
type TargetEndpoint struct {
	Endpoint string
	UnitID   uint8
	Address  uint16 // first register of the reading block
}

// StatusPlan locates the unit's device status block.
type StatusPlan struct {
	Endpoint   string
	UnitID     uint8
	BaseSlot   uint16
	DeviceName string
}

// Plan is the fully-built write plan for one unit.
type Plan struct {
	UnitID  string
	Targets []TargetEndpoint
	Status  *StatusPlan // nil = status disabled
}

// Writer writes poll snapshots into targets.
type Writer interface {
	Write(res poller.PollResult) error
}

// RegisterClient is the exact contract the writers use.
// IMPORTANT: There must be NO other version of this interface anywhere.
type RegisterClient interface {
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
}
