package render

import "github.com/go-gl/mathgl/mgl32"

// Renderable is one draw: a mesh, the material to draw it with and the
// world matrix for this frame. It does not own the mesh or material.
type Renderable struct {
	Mesh     *Mesh
	Material *Material
	World    mgl32.Mat4
}

// SceneGraph is the flat, ordered draw list for one frame. It is rebuilt
// from the scene every frame rather than diffed.
type SceneGraph struct {
	items []Renderable
}

func NewSceneGraph() *SceneGraph {
	return &SceneGraph{items: make([]Renderable, 0, 64)}
}

// CreateRenderable appends a draw and returns it for further tweaks. The
// pointer is valid until the next CreateRenderable or Clear.
func (g *SceneGraph) CreateRenderable(mesh *Mesh, mat *Material, world mgl32.Mat4) *Renderable {
	g.items = append(g.items, Renderable{Mesh: mesh, Material: mat, World: world})
	return &g.items[len(g.items)-1]
}

func (g *SceneGraph) Clear() { g.items = g.items[:0] }

func (g *SceneGraph) Len() int { return len(g.items) }

// Renderables returns the draw list in insertion order.
func (g *SceneGraph) Renderables() []Renderable { return g.items }

// Camera supplies the view for a frame.
type Camera interface {
	View() mgl32.Mat4
	Projection() mgl32.Mat4
	Position() mgl32.Vec3
}
