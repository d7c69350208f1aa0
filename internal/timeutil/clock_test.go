// internal/timeutil/clock_test.go
package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRealClock_Since(t *testing.T) {
	clock := RealClock{}
	past := time.Now().Add(-time.Second)

	assert.GreaterOrEqual(t, clock.Since(past), time.Second)
}

func TestRealClock_Until(t *testing.T) {
	clock := RealClock{}
	future := time.Now().Add(time.Hour)

	assert.GreaterOrEqual(t, clock.Until(future), 59*time.Minute)
}

func TestMockClock_SleepAdvances(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)

	clock.Sleep(100 * time.Millisecond)
	clock.Sleep(time.Millisecond)
	clock.Sleep(-time.Second) // ignored for time, still recorded

	assert.Equal(t, start.Add(101*time.Millisecond), clock.Now())
	assert.Equal(t, []time.Duration{100 * time.Millisecond, time.Millisecond, -time.Second}, clock.Sleeps())

	clock.ResetSleeps()
	assert.Empty(t, clock.Sleeps())
}

func TestMockClock_AdvanceAndSet(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)

	clock.Advance(time.Second)
	assert.Equal(t, time.Second, clock.Since(start))
	assert.Equal(t, -time.Second, clock.Until(start))

	clock.Set(start)
	assert.Equal(t, start, clock.Now())
}
