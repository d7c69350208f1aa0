// internal/writer/mqtt_writer.go
package writer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tamzrod/ultrasonic-unit/internal/poller"
)

// MessagePublisher is what the MQTT writer needs from a broker session.
type MessagePublisher interface {
	Publish(topic string, payload []byte) error
}

// Reading is the JSON document published per sample.
type Reading struct {
	Unit       string    `json:"unit"`
	DistanceMM float64   `json:"distance_mm"`
	RawUM      uint32    `json:"raw_um"`
	Seq        uint16    `json:"seq"`
	Timestamp  time.Time `json:"timestamp"`
}

type mqttWriter struct {
	unitID string
	topic  string
	pub    MessagePublisher
}

// NewMQTT returns a Writer publishing every sample to <prefix>/<unit id>.
func NewMQTT(unitID, prefix string, pub MessagePublisher) Writer {
	return &mqttWriter{
		unitID: unitID,
		topic:  strings.TrimSuffix(prefix, "/") + "/" + unitID,
		pub:    pub,
	}
}

// Write publishes all samples of the cycle, oldest first.
func (w *mqttWriter) Write(res poller.PollResult) error {
	var errs []string

	for _, s := range res.Samples {
		payload, err := json.Marshal(Reading{
			Unit:       w.unitID,
			DistanceMM: s.Distance,
			RawUM:      s.Data.RawDistance(),
			Seq:        s.Seq,
			Timestamp:  res.At,
		})
		if err != nil {
			return fmt.Errorf("writer mqtt: encode: %w", err)
		}
		if err := w.pub.Publish(w.topic, payload); err != nil {
			errs = append(errs, fmt.Sprintf("seq=%d err=%v", s.Seq, err))
		}
	}

	if len(errs) > 0 {
		return errors.New("writer mqtt: " + strings.Join(errs, " | "))
	}
	return nil
}

// Writers fans one poll result out to several writers.
type Writers []Writer

func (ws Writers) Write(res poller.PollResult) error {
	var errs []string
	for _, w := range ws {
		if err := w.Write(res); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, " | "))
	}
	return nil
}
