// internal/rcwl9620/doc.go

// Package rcwl9620 drives the RCWL-9620 ultrasonic time-of-flight distance
// sensor and the M5 UltraSonic units built on it.
//
// The sensor is reachable through one of two transports: a register bus
// (I²C, or a Modbus gateway exposing the same command/result pair) or a
// trigger/echo pulse pin pair. Both transports produce the same 3-byte raw
// encoding (distance in micrometers, big-endian), so the measurement state
// machine in Unit is transport-agnostic.
//
// Unit is not safe for concurrent use. The caller drives periodic sampling by
// calling Update from a single goroutine.
package rcwl9620
