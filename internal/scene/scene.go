package scene

import (
	"slices"

	"github.com/emberforge/ember/internal/component"
	"github.com/emberforge/ember/internal/core/ecs"
	"github.com/emberforge/ember/internal/core/event"
	"github.com/emberforge/ember/internal/data"
	"github.com/emberforge/ember/internal/render"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Scene owns the entity list. Entities are destroyed at the end of the
// frame in which DestroyEntity was called; until then they stay visible.
type Scene struct {
	name     string
	world    *ecs.World
	bus      *event.Bus
	entities []*Entity
	byID     map[ecs.EntityID]*Entity

	camera data.CameraDef
	skybox *data.SkyboxDef

	log *zap.Logger
}

func New(name string, world *ecs.World, bus *event.Bus, log *zap.Logger) *Scene {
	s := &Scene{
		name:  name,
		world: world,
		bus:   bus,
		byID:  make(map[ecs.EntityID]*Entity, 64),
		log:   log,
	}
	world.OnDestroy(s.forget)
	return s
}

func (s *Scene) Name() string                { return s.name }
func (s *Scene) World() *ecs.World           { return s.world }
func (s *Scene) Components() *ecs.Manager    { return s.world.Components() }
func (s *Scene) Len() int                    { return len(s.entities) }
func (s *Scene) Camera() data.CameraDef      { return s.camera }
func (s *Scene) SetCamera(c data.CameraDef)  { s.camera = c }
func (s *Scene) Skybox() *data.SkyboxDef     { return s.skybox }
func (s *Scene) SetSkybox(d *data.SkyboxDef) { s.skybox = d }

// CreateEntity adds a named entity with an identity transform.
func (s *Scene) CreateEntity(name string) *Entity {
	e := &Entity{
		id:        s.world.CreateEntity(),
		GUID:      uuid.New(),
		Name:      name,
		Transform: component.NewTransform(),
	}
	s.entities = append(s.entities, e)
	s.byID[e.id] = e
	s.log.Debug("entity created", zap.String("name", name), zap.Uint64("id", uint64(e.id)))
	return e
}

// DestroyEntity queues id for removal. It reports false for unknown or
// already queued entities.
func (s *Scene) DestroyEntity(id ecs.EntityID) bool {
	if _, ok := s.byID[id]; !ok || s.world.Pending(id) {
		return false
	}
	s.world.MarkForDestruction(id)
	return true
}

func (s *Scene) forget(id ecs.EntityID) {
	e, ok := s.byID[id]
	if !ok {
		return
	}
	delete(s.byID, id)
	if i := slices.Index(s.entities, e); i >= 0 {
		s.entities = slices.Delete(s.entities, i, i+1)
	}
	if s.bus != nil {
		event.Emit(s.bus, event.EntityDestroyed{EntityID: id, Name: e.Name})
	}
	s.log.Debug("entity destroyed", zap.String("name", e.Name))
}

func (s *Scene) Entity(id ecs.EntityID) (*Entity, bool) {
	e, ok := s.byID[id]
	return e, ok
}

// FindByName returns the first entity called name.
func (s *Scene) FindByName(name string) (*Entity, bool) {
	for _, e := range s.entities {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// AllEntities returns the entities in creation order. The slice is shared;
// callers must not modify it.
func (s *Scene) AllEntities() []*Entity { return s.entities }

// Index returns the position of id in creation order, or -1.
func (s *Scene) Index(id ecs.EntityID) int {
	for i, e := range s.entities {
		if e.id == id {
			return i
		}
	}
	return -1
}

// UpdateScene refreshes every cached world matrix.
func (s *Scene) UpdateScene() {
	for _, e := range s.entities {
		e.Transform.UpdateWorld()
	}
}

// Populate rebuilds g from the drawable entities in creation order.
func (s *Scene) Populate(g *render.SceneGraph) {
	g.Clear()
	for _, e := range s.entities {
		if e.Renderable() {
			g.CreateRenderable(e.Mesh, e.Material, e.Transform.World())
		}
	}
}
