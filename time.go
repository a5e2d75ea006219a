package rhachis

import "time"

// Clock is the time source of the frame loop.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Time is advanced once per frame, before Update.
type Time struct {
	// Delta is the time since the previous frame. Never negative.
	Delta time.Duration
	// Elapsed is the sum of all deltas. Never decreases.
	Elapsed time.Duration
	Frame   uint64
	// MaxDelta caps Delta after a stall; zero means no cap.
	MaxDelta time.Duration

	last    time.Time
	started bool
}

// DeltaSeconds is Delta as float seconds, convenient for movement math.
func (t *Time) DeltaSeconds() float32 { return float32(t.Delta.Seconds()) }

func (t *Time) start(now time.Time) {
	t.last = now
	t.started = true
}

// advance moves to now. A clock that went backwards yields a zero delta and
// the previous reading is kept.
func (t *Time) advance(now time.Time) {
	if !t.started {
		t.start(now)
	}
	delta := now.Sub(t.last)
	if delta < 0 {
		delta = 0
	} else {
		t.last = now
	}
	if t.MaxDelta > 0 && delta > t.MaxDelta {
		delta = t.MaxDelta
	}
	t.Delta = delta
	t.Elapsed += delta
	t.Frame++
}
