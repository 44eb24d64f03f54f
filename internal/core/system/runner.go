package system

import (
	"slices"
	"time"
)

// PhaseTiming is the wall time one phase took the last time it ran.
type PhaseTiming struct {
	Phase   Phase
	Systems int
	Elapsed time.Duration
}

// Runner executes systems in phase order each frame. Systems sharing a phase
// run in registration order.
type Runner struct {
	systems []System
	sorted  bool
	timings []PhaseTiming // one per phase with systems, in phase order
	now     func() time.Time
}

func NewRunner() *Runner {
	return &Runner{
		systems: make([]System, 0, 16),
		now:     time.Now,
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

// Tick runs every system once.
func (r *Runner) Tick(dt time.Duration) {
	r.run(dt, nil)
}

// TickPhases runs only the systems whose phase is listed, still in phase
// order. A paused engine keeps input, editor and drawing alive this way.
func (r *Runner) TickPhases(dt time.Duration, phases ...Phase) {
	if len(phases) == 0 {
		return
	}
	r.run(dt, phases)
}

func (r *Runner) run(dt time.Duration, only []Phase) {
	r.ensureSorted()
	next := 0
	for i := range r.timings {
		t := &r.timings[i]
		group := r.systems[next : next+t.Systems]
		next += t.Systems
		if only != nil && !slices.Contains(only, t.Phase) {
			continue
		}
		start := r.now()
		for _, s := range group {
			s.Update(dt)
		}
		t.Elapsed = r.now().Sub(start)
	}
}

// Timings reports the last measured duration of every phase that has
// systems. A phase skipped by TickPhases keeps its previous value.
func (r *Runner) Timings() []PhaseTiming {
	r.ensureSorted()
	return slices.Clone(r.timings)
}

func (r *Runner) Len() int { return len(r.systems) }

func (r *Runner) ensureSorted() {
	if r.sorted {
		return
	}
	slices.SortStableFunc(r.systems, func(a, b System) int { return int(a.Phase() - b.Phase()) })
	r.timings = r.timings[:0]
	for _, s := range r.systems {
		if n := len(r.timings); n > 0 && r.timings[n-1].Phase == s.Phase() {
			r.timings[n-1].Systems++
			continue
		}
		r.timings = append(r.timings, PhaseTiming{Phase: s.Phase(), Systems: 1})
	}
	r.sorted = true
}
