// internal/bus/gateway/gateway_test.go
package gateway

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/ultrasonic-unit/internal/rcwl9620"
	"github.com/tamzrod/ultrasonic-unit/internal/timeutil"
)

type fakeClient struct {
	writes []writeCall
	reads  []readCall

	writeErr error
	readErr  error
	result   []byte
}

type writeCall struct {
	addr  uint16
	value uint16
}

type readCall struct {
	addr uint16
	qty  uint16
}

func (f *fakeClient) WriteSingleRegister(address, value uint16) ([]byte, error) {
	if f.writeErr != nil {
		return nil, f.writeErr
	}
	f.writes = append(f.writes, writeCall{addr: address, value: value})
	return []byte{byte(value >> 8), byte(value)}, nil
}

func (f *fakeClient) ReadHoldingRegisters(address, quantity uint16) ([]byte, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	f.reads = append(f.reads, readCall{addr: address, qty: quantity})
	return f.result, nil
}

func testGateway(c *fakeClient) *Gateway {
	return newGateway(c, nil, Config{CommandRegister: 10, ResultRegister: 20})
}

func TestWriteRegister_CommandEncoding(t *testing.T) {
	c := &fakeClient{}
	g := testGateway(c)

	require.NoError(t, g.WriteRegister(rcwl9620.CommandMeasureDistance, nil))
	require.NoError(t, g.WriteRegister(0x02, []byte{0x7F}))

	assert.Equal(t, []writeCall{{addr: 10, value: 0x0100}, {addr: 10, value: 0x027F}}, c.writes)

	err := g.WriteRegister(0x02, []byte{1, 2})
	require.Error(t, err)
	assert.Len(t, c.writes, 2)
}

func TestRead_RightAligned(t *testing.T) {
	c := &fakeClient{result: []byte{0x00, 0x03, 0xD0, 0x90}}
	g := testGateway(c)

	p := make([]byte, 3)
	require.NoError(t, g.Read(p))
	assert.Equal(t, []byte{0x03, 0xD0, 0x90}, p)
	assert.Equal(t, []readCall{{addr: 20, qty: 2}}, c.reads)
}

func TestRead_ShortResult(t *testing.T) {
	c := &fakeClient{result: []byte{0x03}}
	g := testGateway(c)

	err := g.Read(make([]byte, 3))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "short result")
}

func TestRead_ErrorWrapped(t *testing.T) {
	boom := errors.New("exception 2")
	g := testGateway(&fakeClient{readErr: boom})

	err := g.Read(make([]byte, 3))
	require.ErrorIs(t, err, boom)
}

func TestDial_Validation(t *testing.T) {
	_, err := Dial(Config{})
	require.Error(t, err)

	_, err = Dial(Config{Endpoint: "x", Mode: "udp"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported mode")
}

func TestClose_NilCloser(t *testing.T) {
	assert.NoError(t, testGateway(&fakeClient{}).Close())
}

func TestGateway_DrivesRCWL9620(t *testing.T) {
	// 0x03D090 = 250000um
	c := &fakeClient{result: []byte{0x00, 0x03, 0xD0, 0x90}}
	clock := timeutil.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	u := rcwl9620.New(rcwl9620.BusBinding(testGateway(c)), rcwl9620.WithClock(clock))

	require.NoError(t, u.Begin())
	clock.Advance(150 * time.Millisecond)
	u.Update(false)

	require.True(t, u.Updated())
	assert.Equal(t, 250.0, u.Distance())
	assert.Len(t, c.writes, 2)
}
