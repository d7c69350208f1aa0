// cmd/ultrasonic/main.go
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/tamzrod/ultrasonic-unit/internal/config"
	"github.com/tamzrod/ultrasonic-unit/internal/monitoring"
	"github.com/tamzrod/ultrasonic-unit/internal/poller"
	"github.com/tamzrod/ultrasonic-unit/internal/writer"
	wmqtt "github.com/tamzrod/ultrasonic-unit/internal/writer/mqtt"
)

func main() {
	quiet := flag.Bool("quiet", false, "suppress driver and poller logs")
	flag.Usage = func() {
		log.Printf("usage: %s [-quiet] <config.yaml>", os.Args[0])
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	if *quiet {
		monitoring.SetLogger(nil)
	}

	cfgPath := flag.Arg(0)

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}
	config.Normalize(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		wg      sync.WaitGroup
		closers []func() error
	)

	// --------------------
	// Build per-unit pipelines
	// --------------------

	sm := cfg.Ultrasonic.StatusMemory

	// ---- shared MQTT session (optional) ----
	var pub *wmqtt.Publisher
	if mc := cfg.Ultrasonic.MQTT; mc.Broker != "" {
		pub, err = wmqtt.Dial(wmqtt.Config{
			Broker:   mc.Broker,
			ClientID: mc.ClientID,
			QoS:      byte(mc.QoS),
			Retain:   mc.Retain,
			Timeout:  time.Duration(mc.TimeoutMs) * time.Millisecond,
		})
		if err != nil {
			log.Fatalf("mqtt connect failed: %v", err)
		}
	}

	for _, unit := range cfg.Ultrasonic.Units {

		// ---- poller ----
		p, closePoller, err := poller.Build(unit)
		if err != nil {
			log.Fatalf("poller build failed (unit=%s): %v", unit.ID, err)
		}
		closers = append(closers, closePoller)

		// ---- writer plan ----
		plan, err := writer.BuildPlan(unit, sm)
		if err != nil {
			log.Fatalf("writer plan failed (unit=%s): %v", unit.ID, err)
		}

		// ---- writer clients (DATA + STATUS) ----
		clients, closeWriters, err := writer.BuildEndpointClients(unit, sm)
		if err != nil {
			log.Fatalf("writer clients failed (unit=%s): %v", unit.ID, err)
		}
		closers = append(closers, closeWriters)

		dataWriter := writer.Writers{writer.New(plan, clients)}
		if pub != nil {
			dataWriter = append(dataWriter, writer.NewMQTT(unit.ID, cfg.Ultrasonic.MQTT.TopicPrefix, pub))
		}

		// Status writer (optional per unit)
		statusWriter, statusEnabled := writer.NewDeviceStatusWriter(plan, clients)

		// ---- channel between poller and writer ----
		out := make(chan poller.PollResult)

		// Orchestrator (runner-owned state + 1Hz seconds ticker)
		wg.Add(1)
		go func(unitID string) {
			defer wg.Done()

			h := newUnitHealth()
			publish := func(when string) {
				if !statusEnabled {
					return
				}
				if err := statusWriter.WriteStatus(h.snap); err != nil {
					log.Printf("status write failed %s(unit=%s): %v", when, unitID, err)
				}
			}

			secTicker := time.NewTicker(time.Second)
			defer secTicker.Stop()

			// Full block write on start (identity re-assert) if enabled.
			publish("on start ")

			for {
				select {
				case <-ctx.Done():
					return

				case res := <-out:
					// --- data delivery ---
					if err := dataWriter.Write(res); err != nil {
						log.Printf("writer error (unit=%s): %v", unitID, err)
					}

					// --- status update (device-level truth) ---
					if h.observe(res) {
						publish("")
					}

				case <-secTicker.C:
					// Tick 1 Hz while not OK.
					if h.tick() {
						publish("on tick ")
					}
				}
			}
		}(unit.ID)

		// poller producer
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Run(ctx, out)
		}()

		log.Printf("unit %s: %s via %s, polling every %dms", unit.ID, unit.Device, unit.Transport.Type, unit.Poll.IntervalMs)
	}

	// --------------------
	// Block until signalled
	// --------------------
	<-ctx.Done()
	log.Printf("shutting down")

	wg.Wait()
	for _, fn := range closers {
		if err := fn(); err != nil {
			log.Printf("close failed: %v", err)
		}
	}
	if pub != nil {
		_ = pub.Close()
	}
}
