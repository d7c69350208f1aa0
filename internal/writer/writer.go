// internal/writer/writer.go
package writer

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/tamzrod/ultrasonic-unit/internal/poller"
	"github.com/tamzrod/ultrasonic-unit/internal/status"
)

type modbusWriter struct {
	plan    Plan
	clients map[string]RegisterClient
}

// New returns a Writer delivering the newest sample of each poll result.
func New(plan Plan, clients map[string]RegisterClient) Writer {
	return &modbusWriter{
		plan:    plan,
		clients: clients,
	}
}

// Write pushes the reading block to every target.
// Cycles without a sample write nothing; the previous reading stays in place.
func (w *modbusWriter) Write(res poller.PollResult) error {
	sample, ok := res.Latest()
	if !ok {
		return nil
	}

	regs := EncodeReading(sample)

	var errs []string
	for _, tgt := range w.plan.Targets {
		cli := w.clients[tgt.Endpoint]
		if cli == nil {
			errs = append(errs, fmt.Sprintf(
				"writer: missing client for endpoint %s",
				tgt.Endpoint,
			))
			continue
		}

		if err := cli.WriteRegisters(tgt.UnitID, tgt.Address, regs); err != nil {
			errs = append(errs, fmt.Sprintf(
				"writer: ep=%s unit=%d addr=%d err=%v",
				tgt.Endpoint, tgt.UnitID, tgt.Address, err,
			))
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, " | "))
	}
	return nil
}

// EncodeReading lays a sample out as a reading block.
func EncodeReading(s poller.Sample) []uint16 {
	regs := make([]uint16, status.ReadingSlots)

	raw := s.Data.RawDistance()
	regs[status.ReadingSlotDistance] = uint16(math.Round(s.Distance))
	regs[status.ReadingSlotRawHigh] = uint16(raw >> 16)
	regs[status.ReadingSlotRawLow] = uint16(raw)
	regs[status.ReadingSlotSequence] = s.Seq

	return regs
}
