package physics

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/emberforge/ember/internal/component"
	"github.com/emberforge/ember/internal/gmath"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitBody(at mgl32.Vec3) (*component.Transform, *RigidBody) {
	tr := component.NewTransform()
	tr.Position = at
	b := NewRigidBody(&tr, gmath.AABB{Extents: mgl32.Vec3{1, 1, 1}})
	return &tr, &b
}

func TestUpdateIntegratesVelocity(t *testing.T) {
	tr, b := unitBody(mgl32.Vec3{})
	b.SetVelocity(mgl32.Vec3{1, 0, 0})
	b.Update(0.5)
	assert.Equal(t, mgl32.Vec3{0.5, 0, 0}, tr.Position)
}

func TestFaceTo(t *testing.T) {
	tr, b := unitBody(mgl32.Vec3{})
	b.FaceTo(mgl32.Vec3{0, 0, 10})
	assert.InDelta(t, 0, tr.Rotation.Len(), 1e-5)

	b.FaceTo(mgl32.Vec3{10, 0, 0})
	assert.InDelta(t, math.Pi/2, tr.Rotation.Y(), 1e-5)

	// directly above: fallback axis keeps the result finite
	b.FaceTo(mgl32.Vec3{0, 10, 0})
	for i := 0; i < 3; i++ {
		assert.False(t, math.IsNaN(float64(tr.Rotation[i])))
	}
	fwd := tr.Orientation().Rotate(gmath.Forward)
	assert.InDelta(t, 1, fwd.Y(), 1e-3)

	before := tr.Rotation
	b.FaceTo(tr.Position)
	assert.Equal(t, before, tr.Rotation)
}

func TestHomingAt(t *testing.T) {
	_, b := unitBody(mgl32.Vec3{})
	b.HomingAt(mgl32.Vec3{10, 0, 0}, 3)
	v := b.Velocity()
	assert.InDelta(t, 3, v.X(), 1e-4)
	assert.InDelta(t, 0, v.Z(), 1e-4)
}

func TestShootAtFiresOnce(t *testing.T) {
	_, b := unitBody(mgl32.Vec3{})
	b.ShootAt(mgl32.Vec3{0, 0, 5}, 2)
	require.True(t, b.Launched())
	first := b.Velocity()

	b.ShootAt(mgl32.Vec3{5, 0, 0}, 2)
	assert.Equal(t, first, b.Velocity())

	// each body tracks its own launch
	_, other := unitBody(mgl32.Vec3{})
	assert.False(t, other.Launched())

	b.Rearm()
	b.ShootAt(mgl32.Vec3{5, 0, 0}, 2)
	assert.InDelta(t, 2, b.Velocity().X(), 1e-4)
}

func TestSwarmCompletesTurn(t *testing.T) {
	_, b := unitBody(mgl32.Vec3{})
	rng := rand.New(rand.NewPCG(1, 2))
	p := SwarmParams{Speed: 1, MinTurnMs: 100, MaxTurnMs: 100, MaxOffAngle: 0}

	b.SwarmAt(mgl32.Vec3{10, 0, 0}, p, 0.05, rng)
	on, progress := b.Swarming()
	require.True(t, on)
	assert.InDelta(t, 0.5, progress, 1e-5)

	b.SwarmAt(mgl32.Vec3{10, 0, 0}, p, 0.05, rng)
	on, _ = b.Swarming()
	assert.False(t, on, "turn finished at t=1")
	assert.InDelta(t, math.Pi/2, b.Transform().Rotation.Y(), 1e-3)
	assert.InDelta(t, 1, b.Velocity().X(), 1e-3)
}

func TestCollisionPredicatesDoNotMutate(t *testing.T) {
	trA, a := unitBody(mgl32.Vec3{})
	_, c := unitBody(mgl32.Vec3{})
	assert.True(t, a.BoxCollision(c))
	assert.True(t, a.SphereCollision(c))

	_, far := unitBody(mgl32.Vec3{10, 10, 10})
	assert.False(t, a.BoxCollision(far))
	assert.False(t, a.SphereCollision(far))

	// spheres overlap before the boxes do
	_, near := unitBody(mgl32.Vec3{3, 0, 0})
	assert.True(t, a.SphereCollision(near))
	assert.False(t, a.BoxCollision(near))

	assert.Equal(t, mgl32.Vec3{}, trA.Position)
	assert.Equal(t, mgl32.Vec3{}, a.Box().Center)
}

func TestParseSteerMode(t *testing.T) {
	m, err := ParseSteerMode("swarm")
	require.NoError(t, err)
	assert.Equal(t, SteerSwarm, m)
	assert.Equal(t, "swarm", m.String())
	_, err = ParseSteerMode("orbit")
	assert.Error(t, err)
}
