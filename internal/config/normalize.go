// internal/config/normalize.go
package config

import "github.com/tamzrod/ultrasonic-unit/internal/rcwl9620"

const (
	defaultClientID    = "ultrasonic-unit"
	defaultTopicPrefix = "ultrasonic"

	defaultTimeoutMs  = 500
	minPollIntervalMs = 10
	pollDivisor       = 3
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Ultrasonic.StatusMemory.TimeoutMs == 0 {
		cfg.Ultrasonic.StatusMemory.TimeoutMs = defaultTimeoutMs
	}

	if m := &cfg.Ultrasonic.MQTT; m.Broker != "" {
		if m.ClientID == "" {
			m.ClientID = defaultClientID
		}
		if m.TopicPrefix == "" {
			m.TopicPrefix = defaultTopicPrefix
		}
		if m.TimeoutMs == 0 {
			m.TimeoutMs = defaultTimeoutMs
		}
	}

	for ui := range cfg.Ultrasonic.Units {
		u := &cfg.Ultrasonic.Units[ui]

		if u.Device == "" {
			u.Device = DeviceRCWL9620
		}

		// ---- transport ----

		switch u.Transport.Type {
		case TransportI2C:
			if u.Transport.Address == 0 {
				u.Transport.Address = rcwl9620.DefaultAddress
			}
		case TransportGateway:
			if u.Transport.Mode == "" {
				u.Transport.Mode = "tcp"
			}
			if u.Transport.CommandRegister == 0 && u.Transport.ResultRegister == 0 {
				u.Transport.ResultRegister = 1
			}
			if u.Transport.TimeoutMs == 0 {
				u.Transport.TimeoutMs = defaultTimeoutMs
			}
		}

		// ---- measurement ----

		if u.Measurement.StartPeriodic == nil {
			on := true
			u.Measurement.StartPeriodic = &on
		}
		if u.Measurement.IntervalMs == 0 {
			u.Measurement.IntervalMs = int(u.MinimumInterval().Milliseconds())
		}
		if u.Measurement.StoredSize == 0 {
			u.Measurement.StoredSize = 1
		}

		// ---- poll ----

		// Poll faster than the measurement interval so samples are not delayed
		// by a whole tick.
		if u.Poll.IntervalMs == 0 {
			u.Poll.IntervalMs = u.Measurement.IntervalMs / pollDivisor
			if u.Poll.IntervalMs < minPollIntervalMs {
				u.Poll.IntervalMs = minPollIntervalMs
			}
		}

		for ti := range u.Targets {
			if u.Targets[ti].TimeoutMs == 0 {
				u.Targets[ti].TimeoutMs = defaultTimeoutMs
			}
		}

		// Normalize device_name:
		// - ASCII already validated
		// - Truncate to max 16 characters
		if len(u.DeviceName) > 16 {
			u.DeviceName = u.DeviceName[:16]
		}
	}
}
