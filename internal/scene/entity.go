// Package scene keeps the entities of one level: their names, transforms
// and render references, on top of the ecs world that stores components.
package scene

import (
	"github.com/emberforge/ember/internal/component"
	"github.com/emberforge/ember/internal/core/ecs"
	"github.com/emberforge/ember/internal/render"
	"github.com/google/uuid"
)

// AssetRefs records where an entity's resources came from so the scene can
// be written back out.
type AssetRefs struct {
	Mesh    string
	Shader  string
	Texture string
	Script  string
	Color   [4]float32
}

// Entity is the aggregate the scene hands out. Mesh and Material are shared
// with the rendering system's caches and may be nil.
type Entity struct {
	id        ecs.EntityID
	GUID      uuid.UUID
	Name      string
	Transform component.Transform
	Mesh      *render.Mesh
	Material  *render.Material
	Assets    AssetRefs
}

func (e *Entity) ID() ecs.EntityID { return e.id }

// Renderable reports whether the entity has everything needed to draw.
func (e *Entity) Renderable() bool { return e.Mesh != nil && e.Material != nil }
