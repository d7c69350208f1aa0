// internal/writer/mqtt/publisher.go
package mqtt

import (
	"errors"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// Config is minimal broker config.
type Config struct {
	Broker   string // tcp://host:1883
	ClientID string
	QoS      byte
	Retain   bool
	Timeout  time.Duration
}

// Publisher is one broker session shared by every unit.
type Publisher struct {
	client  paho.Client
	qos     byte
	retain  bool
	timeout time.Duration
}

// Dial connects to the broker. The client reconnects on its own afterwards.
func Dial(cfg Config) (*Publisher, error) {
	if cfg.Broker == "" {
		return nil, errors.New("writer mqtt: broker required")
	}

	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetConnectTimeout(cfg.Timeout).
		SetAutoReconnect(true)

	c := paho.NewClient(opts)
	tok := c.Connect()
	if !tok.WaitTimeout(cfg.Timeout) {
		return nil, fmt.Errorf("writer mqtt: connect %s: timeout", cfg.Broker)
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("writer mqtt: connect %s: %w", cfg.Broker, err)
	}

	return &Publisher{
		client:  c,
		qos:     cfg.QoS,
		retain:  cfg.Retain,
		timeout: cfg.Timeout,
	}, nil
}

// Publish sends payload and waits for the broker acknowledgement (QoS > 0)
// or the local write (QoS 0), bounded by the configured timeout.
func (p *Publisher) Publish(topic string, payload []byte) error {
	tok := p.client.Publish(topic, p.qos, p.retain, payload)
	if !tok.WaitTimeout(p.timeout) {
		return fmt.Errorf("writer mqtt: publish %s: timeout", topic)
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("writer mqtt: publish %s: %w", topic, err)
	}
	return nil
}

// Close disconnects, allowing in-flight work 250ms to finish.
func (p *Publisher) Close() error {
	p.client.Disconnect(250)
	return nil
}
