package rhachis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProfiler_Scopes(t *testing.T) {
	clock := newFakeClock()
	p := NewProfiler(clock)

	p.BeginScope(ScopeUpdate)
	clock.Advance(3 * time.Millisecond)
	p.EndScope(ScopeUpdate)

	p.BeginScope(ScopeRender)
	clock.Advance(5 * time.Millisecond)
	p.EndScope(ScopeRender)

	assert.Equal(t, 3*time.Millisecond, p.Scope(ScopeUpdate))
	assert.Equal(t, 5*time.Millisecond, p.Scope(ScopeRender))

	// Ending a scope that was never begun keeps the last value.
	p.EndScope(ScopeRender)
	assert.Equal(t, 5*time.Millisecond, p.Scope(ScopeRender))

	out := p.String()
	assert.Contains(t, out, "update")
	assert.Contains(t, out, "3.00 ms")
	assert.Less(t, indexOf(out, "update"), indexOf(out, "render"))
}

func TestProfiler_Counts(t *testing.T) {
	p := NewProfiler(nil)
	p.Add(CountDraws, 3)
	p.Add(CountDraws, 4)
	p.SetCount(CountFrames, 10)

	assert.Equal(t, 7, p.Count(CountDraws))
	assert.Equal(t, 10, p.Count(CountFrames))
	assert.Zero(t, p.Count(CountSkipped))
	assert.Contains(t, p.String(), "draws")
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
