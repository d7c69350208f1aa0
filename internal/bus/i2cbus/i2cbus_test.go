// internal/bus/i2cbus/i2cbus_test.go
package i2cbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c/i2ctest"

	"github.com/tamzrod/ultrasonic-unit/internal/rcwl9620"
	"github.com/tamzrod/ultrasonic-unit/internal/timeutil"
)

const addr = rcwl9620.DefaultAddress

func TestBus_Transactions(t *testing.T) {
	pb := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: addr, W: []byte{0x01}},
			{Addr: addr, W: []byte{0x10, 0xAA}},
			{Addr: addr, R: []byte{0x01, 0x02, 0x03}},
		},
		DontPanic: true,
	}
	b := New(pb, addr)

	require.NoError(t, b.WriteRegister(0x01, nil))
	require.NoError(t, b.WriteRegister(0x10, []byte{0xAA}))

	p := make([]byte, 3)
	require.NoError(t, b.Read(p))
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, p)

	require.NoError(t, pb.Close())
}

func TestBus_ErrorWrapped(t *testing.T) {
	pb := &i2ctest.Playback{DontPanic: true}
	b := New(pb, addr)

	err := b.WriteRegister(0x01, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "i2cbus: write reg 0x01")
}

// A full periodic session against recorded sensor traffic.
func TestBus_DrivesUltraSonicI2C(t *testing.T) {
	measure := i2ctest.IO{Addr: addr, W: []byte{rcwl9620.CommandMeasureDistance}}
	result := func(um uint32) i2ctest.IO {
		d := rcwl9620.DataFromMicrometers(um)
		return i2ctest.IO{Addr: addr, R: d.Raw[:]}
	}

	pb := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			measure,           // start
			result(250_000),   // update 1
			measure,           // re-arm
			result(260_000),   // update 2
			measure,           // re-arm
			result(270_000),   // stop drain
			measure,           // single shot request
			result(1_500_000), // single shot read
		},
		DontPanic: true,
	}

	clock := timeutil.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	u := rcwl9620.NewUltraSonicI2C(rcwl9620.BusBinding(New(pb, addr)),
		rcwl9620.WithClock(clock),
		rcwl9620.WithConfig(rcwl9620.Config{StartPeriodic: true, Interval: 150 * time.Millisecond, StoredSize: 4}))

	require.NoError(t, u.Begin())
	for i := 0; i < 2; i++ {
		clock.Advance(150 * time.Millisecond)
		u.Update(false)
		require.True(t, u.Updated())
	}
	require.Equal(t, 2, u.Available())
	assert.Equal(t, 250.0, u.Distance())

	require.NoError(t, u.StopPeriodicMeasurement())

	d, err := u.MeasureSingleshot()
	require.NoError(t, err)
	assert.Equal(t, 1500.0, d.Distance())

	require.NoError(t, pb.Close())
}
