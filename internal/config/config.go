// internal/config/config.go
package config

type Config struct {
	Ultrasonic UltrasonicConfig `yaml:"ultrasonic"`
}

type UltrasonicConfig struct {
	Units        []UnitConfig       `yaml:"units"`
	StatusMemory StatusMemoryConfig `yaml:"status_memory"`
	MQTT         MQTTConfig         `yaml:"mqtt"`
}

// ---- UNIT ----

type UnitConfig struct {
	ID          string            `yaml:"id"`
	Device      string            `yaml:"device"`
	Transport   TransportConfig   `yaml:"transport"`
	Measurement MeasurementConfig `yaml:"measurement"`
	Poll        PollConfig        `yaml:"poll"`
	Targets     []TargetConfig    `yaml:"targets"`

	// Device status block (optional, opt-in)
	StatusSlot *uint16 `yaml:"status_slot"`
	DeviceName string  `yaml:"device_name"`
}

// Device identities.
const (
	DeviceRCWL9620      = "rcwl9620"
	DeviceUltraSonicI2C = "ultrasonic_i2c"
	DeviceUltraSonicIO  = "ultrasonic_io"
)

// ---- TRANSPORT ----

// Transport types.
const (
	TransportI2C     = "i2c"
	TransportGPIO    = "gpio"
	TransportGateway = "gateway"
)

type TransportConfig struct {
	Type string `yaml:"type"`

	// i2c
	Bus     string `yaml:"bus"`
	Address uint16 `yaml:"address"`

	// gpio
	Trigger string `yaml:"trigger"`
	Echo    string `yaml:"echo"`

	// gateway
	Endpoint        string `yaml:"endpoint"`
	Mode            string `yaml:"mode"`
	BaudRate        int    `yaml:"baud_rate"`
	UnitID          uint8  `yaml:"unit_id"`
	CommandRegister uint16 `yaml:"command_register"`
	ResultRegister  uint16 `yaml:"result_register"`
	TimeoutMs       int    `yaml:"timeout_ms"`
}

// ---- MEASUREMENT ----

type MeasurementConfig struct {
	StartPeriodic *bool `yaml:"start_periodic"` // default true
	IntervalMs    int   `yaml:"interval_ms"`
	StoredSize    int   `yaml:"stored_size"`
	ClearStale    bool  `yaml:"clear_stale"`
}

// ---- POLL ----

type PollConfig struct {
	IntervalMs int `yaml:"interval_ms"`
	// RestartAfterMs re-arms a suspended unit after this delay. 0 = never.
	RestartAfterMs int `yaml:"restart_after_ms"`
}

// ---- TARGET ----

// TargetConfig is one Modbus endpoint receiving the unit's readings.
type TargetConfig struct {
	Endpoint  string `yaml:"endpoint"`
	UnitID    uint8  `yaml:"unit_id"`
	Address   uint16 `yaml:"address"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// ---- STATUS MEMORY ----

type StatusMemoryConfig struct {
	Endpoint  string `yaml:"endpoint"`
	UnitID    uint8  `yaml:"unit_id"`
	TimeoutMs int    `yaml:"timeout_ms"`
}

// ---- MQTT ----

// MQTTConfig enables publishing every sample to a broker. Empty broker = off.
type MQTTConfig struct {
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client_id"`
	TopicPrefix string `yaml:"topic_prefix"`
	QoS         int    `yaml:"qos"`
	Retain      bool   `yaml:"retain"`
	TimeoutMs   int    `yaml:"timeout_ms"`
}
