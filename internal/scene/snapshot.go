package scene

import (
	"github.com/emberforge/ember/internal/core/ecs"
	"github.com/emberforge/ember/internal/data"
	"github.com/emberforge/ember/internal/physics"
)

// Snapshot describes the live scene as a scene file, suitable for saving
// and for building again. Entities queued for destruction are left out.
func (s *Scene) Snapshot() *data.SceneFile {
	m := s.Components()
	sf := &data.SceneFile{
		Name:     s.name,
		Camera:   s.camera,
		Skybox:   s.skybox,
		Entities: make([]data.EntityDef, 0, len(s.entities)),
	}
	for _, e := range s.entities {
		if s.world.Pending(e.id) {
			continue
		}
		def := data.EntityDef{
			GUID:     e.GUID.String(),
			Name:     e.Name,
			Mesh:     e.Assets.Mesh,
			Shader:   e.Assets.Shader,
			Texture:  e.Assets.Texture,
			Color:    e.Assets.Color,
			Position: [3]float32(e.Transform.Position),
			Rotation: [3]float32(e.Transform.Rotation),
			Scale:    [3]float32(e.Transform.Scale),
			Script:   e.Assets.Script,
		}
		if rb, err := ecs.Get[physics.RigidBody](m, e.id); err == nil {
			box := rb.Box()
			def.Body = &data.BodyDef{
				Velocity: [3]float32(rb.Velocity()),
				Box:      &data.BoxDef{Center: [3]float32(box.Center), Extents: [3]float32(box.Extents)},
			}
			if st, err := ecs.Get[physics.Steering](m, e.id); err == nil && st.Mode != physics.SteerNone {
				def.Body.Steering = st.Mode.String()
				def.Body.Speed = st.Speed
				def.Body.MinTurnMs = st.Swarm.MinTurnMs
				def.Body.MaxTurnMs = st.Swarm.MaxTurnMs
				def.Body.MaxOffAngle = st.Swarm.MaxOffAngle
				if t, ok := s.byID[st.Target]; ok && !s.world.Pending(t.id) {
					def.Body.Target = t.Name
				}
			}
		}
		sf.Entities = append(sf.Entities, def)
	}
	return sf
}
