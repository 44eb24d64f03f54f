package system

import (
	"time"

	"github.com/emberforge/ember/internal/core/ecs"
	coresys "github.com/emberforge/ember/internal/core/system"
)

// ComponentUpdateSystem dispatches Update to every component that has one:
// rigid bodies integrate, scripts run. Phase 3 (Update).
type ComponentUpdateSystem struct {
	components *ecs.Manager
}

func NewComponentUpdateSystem(m *ecs.Manager) *ComponentUpdateSystem {
	return &ComponentUpdateSystem{components: m}
}

func (s *ComponentUpdateSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *ComponentUpdateSystem) Update(dt time.Duration) {
	s.components.UpdateAll(float32(dt.Seconds()))
}
