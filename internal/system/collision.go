package system

import (
	"time"

	"github.com/emberforge/ember/internal/core/ecs"
	"github.com/emberforge/ember/internal/core/event"
	coresys "github.com/emberforge/ember/internal/core/system"
	"github.com/emberforge/ember/internal/physics"
)

type bodyRef struct {
	id   ecs.EntityID
	body *physics.RigidBody
}

// CollisionSystem tests every pair of rigid bodies, spheres first, and emits
// one event.Collision per overlapping pair. With boxTest set, a sphere hit
// only counts when the oriented boxes overlap too. Phase 4 (Collision).
type CollisionSystem struct {
	components *ecs.Manager
	bus        *event.Bus
	boxTest    bool
	bodies     []bodyRef
}

func NewCollisionSystem(m *ecs.Manager, bus *event.Bus, boxTest bool) *CollisionSystem {
	return &CollisionSystem{components: m, bus: bus, boxTest: boxTest}
}

func (s *CollisionSystem) Phase() coresys.Phase { return coresys.PhaseCollision }

func (s *CollisionSystem) Update(_ time.Duration) {
	s.bodies = s.bodies[:0]
	ecs.Each(s.components, func(id ecs.EntityID, rb *physics.RigidBody) {
		s.bodies = append(s.bodies, bodyRef{id: id, body: rb})
	})
	for i := 0; i < len(s.bodies); i++ {
		a := s.bodies[i]
		for j := i + 1; j < len(s.bodies); j++ {
			b := s.bodies[j]
			if !a.body.SphereCollision(b.body) {
				continue
			}
			if s.boxTest && !a.body.BoxCollision(b.body) {
				continue
			}
			event.Emit(s.bus, event.Collision{A: a.id, B: b.id, Box: s.boxTest})
		}
	}
}
