// internal/config/validate.go
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/tamzrod/ultrasonic-unit/internal/rcwl9620"
	"github.com/tamzrod/ultrasonic-unit/internal/status"
)

// Validate checks configuration correctness.
// It performs declarative validation only. Zero values mean "default".
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil")
	}
	if len(cfg.Ultrasonic.Units) == 0 {
		return errors.New("config: at least one unit required")
	}

	ids := make(map[string]struct{})

	for _, u := range cfg.Ultrasonic.Units {
		if u.ID == "" {
			return errors.New("unit id required")
		}
		if _, dup := ids[u.ID]; dup {
			return fmt.Errorf("unit %q: duplicate id", u.ID)
		}
		ids[u.ID] = struct{}{}

		if err := validateTransport(u); err != nil {
			return err
		}
		if err := validateMeasurement(u); err != nil {
			return err
		}

		// device_name sanity (ASCII only)
		for i := 0; i < len(u.DeviceName); i++ {
			if u.DeviceName[i] > 0x7F {
				return fmt.Errorf(
					"unit %q: device_name must contain ASCII characters only",
					u.ID,
				)
			}
		}
	}

	if err := validateStatus(cfg); err != nil {
		return err
	}
	if err := validateMQTT(cfg.Ultrasonic.MQTT); err != nil {
		return err
	}
	return validateTargets(cfg)
}

func validateMQTT(m MQTTConfig) error {
	if m.Broker == "" {
		return nil
	}
	if m.QoS < 0 || m.QoS > 2 {
		return fmt.Errorf("mqtt: qos %d out of range 0-2", m.QoS)
	}
	if m.TimeoutMs < 0 {
		return errors.New("mqtt: timeout_ms must be >= 0")
	}
	return nil
}

func validateTransport(u UnitConfig) error {
	t := u.Transport

	switch u.Device {
	case "", DeviceRCWL9620:
	case DeviceUltraSonicI2C:
		if t.Type == TransportGPIO {
			return fmt.Errorf("unit %q: device %s needs a bus transport, got %s", u.ID, u.Device, t.Type)
		}
	case DeviceUltraSonicIO:
		if t.Type != TransportGPIO {
			return fmt.Errorf("unit %q: device %s needs a gpio transport, got %q", u.ID, u.Device, t.Type)
		}
	default:
		return fmt.Errorf("unit %q: unknown device %q", u.ID, u.Device)
	}

	switch t.Type {
	case TransportI2C:
		if t.Address > 0x7F {
			return fmt.Errorf("unit %q: i2c address 0x%x out of range", u.ID, t.Address)
		}

	case TransportGPIO:
		if t.Trigger == "" || t.Echo == "" {
			return fmt.Errorf("unit %q: gpio transport requires trigger and echo", u.ID)
		}
		if t.Trigger == t.Echo {
			return fmt.Errorf("unit %q: trigger and echo must differ", u.ID)
		}

	case TransportGateway:
		if t.Endpoint == "" {
			return fmt.Errorf("unit %q: gateway transport requires endpoint", u.ID)
		}
		switch t.Mode {
		case "", "tcp":
		case "rtu":
			if t.BaudRate <= 0 {
				return fmt.Errorf("unit %q: rtu gateway requires baud_rate", u.ID)
			}
		default:
			return fmt.Errorf("unit %q: unknown gateway mode %q", u.ID, t.Mode)
		}
		// both zero selects the default pair
		if t.CommandRegister == t.ResultRegister && t.CommandRegister != 0 {
			return fmt.Errorf("unit %q: command_register and result_register collide", u.ID)
		}

	default:
		return fmt.Errorf("unit %q: unknown transport type %q", u.ID, t.Type)
	}

	if t.TimeoutMs < 0 {
		return fmt.Errorf("unit %q: timeout_ms must be >= 0", u.ID)
	}
	return nil
}

func validateMeasurement(u UnitConfig) error {
	m := u.Measurement

	if m.IntervalMs < 0 {
		return fmt.Errorf("unit %q: interval_ms must be >= 0", u.ID)
	}
	if m.IntervalMs > 0 {
		floor := u.MinimumInterval()
		if time.Duration(m.IntervalMs)*time.Millisecond < floor {
			return fmt.Errorf(
				"unit %q: interval_ms %d below minimum %v for %s",
				u.ID, m.IntervalMs, floor, u.Variant().Name,
			)
		}
	}
	if m.StoredSize < 0 {
		return fmt.Errorf("unit %q: stored_size must be >= 1", u.ID)
	}
	if u.Poll.IntervalMs < 0 || u.Poll.RestartAfterMs < 0 {
		return fmt.Errorf("unit %q: poll intervals must be >= 0", u.ID)
	}
	return nil
}

func validateStatus(cfg *Config) error {
	owner := make(map[uint16]string)

	for _, u := range cfg.Ultrasonic.Units {
		// status is opt-in
		if u.StatusSlot == nil {
			continue
		}
		if cfg.Ultrasonic.StatusMemory.Endpoint == "" {
			return fmt.Errorf("unit %q: status_slot is set but status_memory.endpoint is empty", u.ID)
		}

		slot := *u.StatusSlot
		if (uint32(slot)+1)*status.SlotsPerDevice > 0x10000 {
			return fmt.Errorf("unit %q: status_slot %d out of range", u.ID, slot)
		}
		if prev, exists := owner[slot]; exists {
			return fmt.Errorf(
				"status_slot collision: slot=%d used by units %q and %q",
				slot, prev, u.ID,
			)
		}
		owner[slot] = u.ID
	}
	return nil
}

func validateTargets(cfg *Config) error {
	type span struct {
		start uint32
		end   uint32
		unit  string
	}

	// key = endpoint | unit_id
	spans := make(map[string][]span)

	for _, u := range cfg.Ultrasonic.Units {
		for _, t := range u.Targets {
			if t.Endpoint == "" {
				return fmt.Errorf("unit %q: target endpoint required", u.ID)
			}

			start := uint32(t.Address)
			end := start + status.ReadingSlots - 1
			if end > 0xFFFF {
				return fmt.Errorf("unit %q: target address %d overflows register space", u.ID, t.Address)
			}

			key := fmt.Sprintf("%s|%d", t.Endpoint, t.UnitID)

			for _, s := range spans[key] {
				// overlap check (inclusive)
				if !(end < s.start || start > s.end) {
					return fmt.Errorf(
						"target overlap: endpoint=%s unit_id=%d range=%d-%d overlaps with unit=%s range=%d-%d",
						t.Endpoint, t.UnitID, start, end, s.unit, s.start, s.end,
					)
				}
			}

			spans[key] = append(spans[key], span{start: start, end: end, unit: u.ID})
		}
	}
	return nil
}

// Variant maps the configured device to its driver identity.
func (u UnitConfig) Variant() rcwl9620.Variant {
	switch u.Device {
	case DeviceUltraSonicI2C:
		return rcwl9620.UnitUltraSonicI2C
	case DeviceUltraSonicIO:
		return rcwl9620.UnitUltraSonicIO
	default:
		return rcwl9620.UnitRCWL9620
	}
}

// BindingKind is the binding the configured transport produces.
func (u UnitConfig) BindingKind() rcwl9620.BindingKind {
	if u.Transport.Type == TransportGPIO {
		return rcwl9620.BindingPulse
	}
	return rcwl9620.BindingBus
}

// MinimumInterval is the shortest measurement interval the unit accepts.
func (u UnitConfig) MinimumInterval() time.Duration {
	return u.Variant().MinimumIntervalFor(u.BindingKind())
}
