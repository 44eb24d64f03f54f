package component

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestWorldMatrixIsCached(t *testing.T) {
	tr := NewTransform()
	tr.Position = mgl32.Vec3{1, 2, 3}
	assert.Equal(t, mgl32.Ident4(), tr.World(), "not refreshed until UpdateWorld")

	tr.UpdateWorld()
	p := tr.World().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.Equal(t, mgl32.Vec4{1, 2, 3, 1}, p)
}

func TestWorldMatrixScalesBeforeTranslate(t *testing.T) {
	tr := NewTransform()
	tr.Position = mgl32.Vec3{10, 0, 0}
	tr.Scale = mgl32.Vec3{2, 2, 2}
	tr.UpdateWorld()
	p := tr.World().Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	assert.InDelta(t, 12, p.X(), 1e-5)
}

func TestNamedFields(t *testing.T) {
	tr := NewTransform()
	assert.True(t, tr.SetField("y", 4))
	assert.True(t, tr.SetField("rot_z", 0.5))
	assert.False(t, tr.SetField("w", 1))

	v, ok := tr.Field("y")
	assert.True(t, ok)
	assert.Equal(t, float32(4), v)
	v, _ = tr.Field("scale_x")
	assert.Equal(t, float32(1), v)
	assert.Equal(t, float32(0.5), tr.Rotation.Z())

	_, ok = tr.Field("nope")
	assert.False(t, ok)
}
