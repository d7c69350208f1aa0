// internal/writer/builder.go
package writer

import (
	"errors"
	"time"

	cfg "github.com/tamzrod/ultrasonic-unit/internal/config"
	wmodbus "github.com/tamzrod/ultrasonic-unit/internal/writer/modbus"
)

// BuildPlan converts one unit config into a Writer Plan.
// Assumes config has already passed validation.
func BuildPlan(u cfg.UnitConfig, sm cfg.StatusMemoryConfig) (Plan, error) {
	if u.ID == "" {
		return Plan{}, errors.New("writer: unit.id required")
	}

	plan := Plan{UnitID: u.ID}

	for _, t := range u.Targets {
		plan.Targets = append(plan.Targets, TargetEndpoint{
			Endpoint: t.Endpoint,
			UnitID:   t.UnitID,
			Address:  t.Address,
		})
	}

	// status is opt-in
	if u.StatusSlot != nil {
		if sm.Endpoint == "" {
			return Plan{}, errors.New("writer: status_slot set without status_memory.endpoint")
		}
		plan.Status = &StatusPlan{
			Endpoint:   sm.Endpoint,
			UnitID:     sm.UnitID,
			BaseSlot:   *u.StatusSlot,
			DeviceName: u.DeviceName,
		}
	}

	return plan, nil
}

// BuildEndpointClients creates one TCP client per unique endpoint the plan
// writes to, status memory included.
func BuildEndpointClients(u cfg.UnitConfig, sm cfg.StatusMemoryConfig) (map[string]RegisterClient, func() error, error) {
	timeouts := map[string]time.Duration{}
	for _, t := range u.Targets {
		timeouts[t.Endpoint] = time.Duration(t.TimeoutMs) * time.Millisecond
	}
	if u.StatusSlot != nil && sm.Endpoint != "" {
		if _, ok := timeouts[sm.Endpoint]; !ok {
			timeouts[sm.Endpoint] = time.Duration(sm.TimeoutMs) * time.Millisecond
		}
	}

	return dialAll(timeouts, func(c wmodbus.Config) (endpointConn, error) {
		return wmodbus.NewEndpointClient(c)
	})
}

type endpointConn interface {
	RegisterClient
	Close() error
}

func dialAll(timeouts map[string]time.Duration, dial func(wmodbus.Config) (endpointConn, error)) (map[string]RegisterClient, func() error, error) {
	clients := make(map[string]RegisterClient)
	var closers []func() error

	for endpoint, timeout := range timeouts {
		c, err := dial(wmodbus.Config{
			Endpoint: endpoint,
			Timeout:  timeout,
		})
		if err != nil {
			for _, fn := range closers {
				_ = fn()
			}
			return nil, nil, err
		}
		clients[endpoint] = c
		closers = append(closers, c.Close)
	}

	closeAll := func() error {
		var last error
		for _, fn := range closers {
			if err := fn(); err != nil {
				last = err
			}
		}
		return last
	}

	return clients, closeAll, nil
}
