package rhachis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTime_Advance(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var tm Time
	tm.start(t0)

	tm.advance(t0.Add(10 * time.Millisecond))
	tm.advance(t0.Add(30 * time.Millisecond))

	assert.Equal(t, 20*time.Millisecond, tm.Delta)
	assert.Equal(t, 30*time.Millisecond, tm.Elapsed)
	assert.Equal(t, uint64(2), tm.Frame)
	assert.InDelta(t, 0.02, tm.DeltaSeconds(), 1e-6)
}

func TestTime_ClockRegression(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var tm Time
	tm.start(t0)
	tm.advance(t0.Add(time.Second))

	tm.advance(t0)
	assert.Equal(t, time.Duration(0), tm.Delta)
	assert.Equal(t, time.Second, tm.Elapsed)

	// Time resumes from the latest reading, not the regressed one.
	tm.advance(t0.Add(time.Second + 5*time.Millisecond))
	assert.Equal(t, 5*time.Millisecond, tm.Delta)
	assert.Equal(t, time.Second+5*time.Millisecond, tm.Elapsed)
}

func TestTime_MaxDelta(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tm := Time{MaxDelta: 100 * time.Millisecond}
	tm.start(t0)

	tm.advance(t0.Add(5 * time.Second))
	assert.Equal(t, 100*time.Millisecond, tm.Delta)
	assert.Equal(t, 100*time.Millisecond, tm.Elapsed)
}

func TestTime_AdvanceWithoutStart(t *testing.T) {
	var tm Time
	tm.advance(time.Now())
	assert.Equal(t, time.Duration(0), tm.Delta)
	assert.Equal(t, uint64(1), tm.Frame)
}
