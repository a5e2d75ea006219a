package rhachis

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Profiler keeps per-scope timings of the last frame plus running counters.
type Profiler struct {
	clock      Clock
	scopes     map[string]time.Duration
	startTimes map[string]time.Time
	counts     map[string]int
	order      []string
}

func NewProfiler(clock Clock) *Profiler {
	if clock == nil {
		clock = systemClock{}
	}
	return &Profiler{
		clock:      clock,
		scopes:     map[string]time.Duration{},
		startTimes: map[string]time.Time{},
		counts:     map[string]int{},
	}
}

func (p *Profiler) BeginScope(name string) {
	p.startTimes[name] = p.clock.Now()
	if _, ok := p.scopes[name]; !ok {
		p.order = append(p.order, name)
		p.scopes[name] = 0
	}
}

func (p *Profiler) EndScope(name string) {
	if start, ok := p.startTimes[name]; ok {
		p.scopes[name] = p.clock.Now().Sub(start)
		delete(p.startTimes, name)
	}
}

// Scope is the duration recorded by the last EndScope for name.
func (p *Profiler) Scope(name string) time.Duration { return p.scopes[name] }

func (p *Profiler) Add(name string, n int) { p.counts[name] += n }

func (p *Profiler) SetCount(name string, n int) { p.counts[name] = n }

func (p *Profiler) Count(name string) int { return p.counts[name] }

func (p *Profiler) String() string {
	var sb strings.Builder

	sb.WriteString("Timings (CPU):\n")
	for _, name := range p.order {
		ms := float64(p.scopes[name].Microseconds()) / 1000.0
		fmt.Fprintf(&sb, "  %-15s: %.2f ms\n", name, ms)
	}

	sb.WriteString("\nStats:\n")
	keys := make([]string, 0, len(p.counts))
	for k := range p.counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, "  %-15s: %d\n", k, p.counts[k])
	}
	return sb.String()
}

// Counter and scope names recorded by the frame loop.
const (
	ScopeUpdate   = "update"
	ScopeRender   = "render"
	CountFrames   = "frames"
	CountSkipped  = "skipped"
	CountDraws    = "draws"
	CountResizes  = "resizes"
	CountRendered = "rendered"
)
