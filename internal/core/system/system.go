package system

import "time"

// Phase defines execution ordering within a single frame.
type Phase int

const (
	PhaseInput     Phase = iota // 0: pump window events, move the debug camera
	PhaseEditor                 // 1: apply editor actions
	PhaseSteering               // 2: homing / swarming / projectile behaviours
	PhaseUpdate                 // 3: per-component Update dispatch
	PhaseCollision              // 4: pairwise collision tests
	PhaseScene                  // 5: world matrices + render list
	PhaseRender                 // 6: draw and present
	PhaseCleanup                // 7: destroy queued entities, deliver events
)

var phaseNames = [...]string{"input", "editor", "steering", "update", "collision", "scene", "render", "cleanup"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// System is the interface every engine system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
