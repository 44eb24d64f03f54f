package component

import (
	"github.com/emberforge/ember/internal/gmath"
	"github.com/go-gl/mathgl/mgl32"
)

// Transform is an entity's position, Euler rotation (radians) and scale.
// The world matrix is cached and only recomputed by UpdateWorld.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3

	world mgl32.Mat4
}

func NewTransform() Transform {
	return Transform{Scale: mgl32.Vec3{1, 1, 1}, world: mgl32.Ident4()}
}

// UpdateWorld rebuilds the cached world matrix: scale, then rotate, then translate.
func (t *Transform) UpdateWorld() {
	s := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())
	r := gmath.MatFromEuler(t.Rotation)
	tr := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	t.world = tr.Mul4(r).Mul4(s)
}

// World returns the matrix computed by the last UpdateWorld.
func (t *Transform) World() mgl32.Mat4 { return t.world }

func (t *Transform) Orientation() mgl32.Quat {
	return gmath.QuatFromEuler(t.Rotation)
}

func (t *Transform) Move(d mgl32.Vec3)   { t.Position = t.Position.Add(d) }
func (t *Transform) Rotate(d mgl32.Vec3) { t.Rotation = t.Rotation.Add(d) }

// field names exposed to scripts
var transformFields = map[string]struct {
	vec  int // 0 position, 1 rotation, 2 scale
	axis int
}{
	"x": {0, 0}, "y": {0, 1}, "z": {0, 2},
	"rot_x": {1, 0}, "rot_y": {1, 1}, "rot_z": {1, 2},
	"scale_x": {2, 0}, "scale_y": {2, 1}, "scale_z": {2, 2},
}

func (t *Transform) vec(i int) *mgl32.Vec3 {
	switch i {
	case 1:
		return &t.Rotation
	case 2:
		return &t.Scale
	}
	return &t.Position
}

// Field reads a named float field such as "x" or "rot_y".
func (t *Transform) Field(name string) (float32, bool) {
	f, ok := transformFields[name]
	if !ok {
		return 0, false
	}
	return t.vec(f.vec)[f.axis], true
}

// SetField writes a named float field. Unknown names are rejected.
func (t *Transform) SetField(name string, v float32) bool {
	f, ok := transformFields[name]
	if !ok {
		return false
	}
	t.vec(f.vec)[f.axis] = v
	return true
}
