package system

import (
	"math/rand/v2"
	"time"

	"github.com/emberforge/ember/internal/core/ecs"
	coresys "github.com/emberforge/ember/internal/core/system"
	"github.com/emberforge/ember/internal/physics"
	"github.com/emberforge/ember/internal/scene"
)

// SteeringSystem drives every body that carries a Steering component toward
// its target entity. Bodies whose target no longer exists stop steering and
// keep their velocity. Phase 2 (Steering).
type SteeringSystem struct {
	scene *scene.Scene
	rng   *rand.Rand
}

// NewSteeringSystem seeds the swarm jitter with seed; 0 picks a time-based seed.
func NewSteeringSystem(s *scene.Scene, seed uint64) *SteeringSystem {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &SteeringSystem{scene: s, rng: rand.New(rand.NewPCG(seed, seed>>1|1))}
}

func (s *SteeringSystem) Phase() coresys.Phase { return coresys.PhaseSteering }

func (s *SteeringSystem) Update(dt time.Duration) {
	sec := float32(dt.Seconds())
	ecs.Each2(s.scene.Components(), func(_ ecs.EntityID, rb *physics.RigidBody, st *physics.Steering) {
		if st.Mode == physics.SteerNone {
			return
		}
		target, ok := s.scene.Entity(st.Target)
		if !ok {
			return
		}
		pos := target.Transform.Position
		switch st.Mode {
		case physics.SteerHoming:
			rb.HomingAt(pos, st.Speed)
		case physics.SteerShoot:
			rb.ShootAt(pos, st.Speed)
		case physics.SteerSwarm:
			rb.SwarmAt(pos, st.Swarm, sec, s.rng)
		}
	})
}
