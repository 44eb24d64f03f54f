package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	name  string
	phase Phase
	log   *[]string
}

func (r recorder) Phase() Phase { return r.phase }
func (r recorder) Update(time.Duration) {
	*r.log = append(*r.log, r.name)
}

func TestRunnerOrdersByPhase(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recorder{"render", PhaseRender, &log})
	r.Register(recorder{"input", PhaseInput, &log})
	r.Register(recorder{"update-a", PhaseUpdate, &log})
	r.Register(recorder{"update-b", PhaseUpdate, &log})
	r.Register(recorder{"cleanup", PhaseCleanup, &log})

	r.Tick(16 * time.Millisecond)
	assert.Equal(t, []string{"input", "update-a", "update-b", "render", "cleanup"}, log)

	log = log[:0]
	r.TickPhases(0, PhaseRender)
	assert.Equal(t, []string{"render"}, log)
	assert.Equal(t, 5, r.Len())
}

func TestTickPhasesKeepsPhaseOrder(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recorder{"cleanup", PhaseCleanup, &log})
	r.Register(recorder{"steer", PhaseSteering, &log})
	r.Register(recorder{"input", PhaseInput, &log})
	r.Register(recorder{"render", PhaseRender, &log})

	r.TickPhases(0, PhaseCleanup, PhaseRender, PhaseInput)
	assert.Equal(t, []string{"input", "render", "cleanup"}, log)

	log = log[:0]
	r.TickPhases(0)
	assert.Empty(t, log, "no phases runs nothing")
}

func TestRunnerTimings(t *testing.T) {
	var log []string
	r := NewRunner()
	clock := time.Unix(0, 0)
	r.now = func() time.Time {
		clock = clock.Add(time.Millisecond)
		return clock
	}
	r.Register(recorder{"update-a", PhaseUpdate, &log})
	r.Register(recorder{"input", PhaseInput, &log})
	r.Register(recorder{"update-b", PhaseUpdate, &log})

	timings := r.Timings()
	assert.Equal(t, []PhaseTiming{
		{Phase: PhaseInput, Systems: 1},
		{Phase: PhaseUpdate, Systems: 2},
	}, timings, "nothing measured before the first tick")

	r.Tick(0)
	timings = r.Timings()
	assert.Equal(t, time.Millisecond, timings[0].Elapsed)
	assert.Equal(t, time.Millisecond, timings[1].Elapsed)

	r.now = func() time.Time {
		clock = clock.Add(5 * time.Millisecond)
		return clock
	}
	r.TickPhases(0, PhaseInput)
	timings = r.Timings()
	assert.Equal(t, 5*time.Millisecond, timings[0].Elapsed)
	assert.Equal(t, time.Millisecond, timings[1].Elapsed, "skipped phase keeps its last value")

	timings[0].Elapsed = 0
	assert.Equal(t, 5*time.Millisecond, r.Timings()[0].Elapsed, "callers get a copy")

	r.Register(recorder{"render", PhaseRender, &log})
	assert.Len(t, r.Timings(), 3)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "collision", PhaseCollision.String())
	assert.Equal(t, "unknown", Phase(42).String())
}
