// Package physics implements kinematic rigid bodies: velocity integration,
// steering behaviours and collision predicates. There is no solver; bodies
// only move where their velocity takes them.
package physics

import (
	"math/rand/v2"

	"github.com/emberforge/ember/internal/component"
	"github.com/emberforge/ember/internal/gmath"
	"github.com/go-gl/mathgl/mgl32"
)

type swarmState int

const (
	swarmIdle swarmState = iota
	swarmSlerping
)

// SwarmParams tunes SwarmAt.
type SwarmParams struct {
	Speed       float32
	MinTurnMs   float32
	MaxTurnMs   float32
	MaxOffAngle float32 // degrees of random deviation per axis
}

// RigidBody moves a transform it does not own. The transform must outlive
// the body.
type RigidBody struct {
	transform *component.Transform
	velocity  mgl32.Vec3
	box       gmath.OBB
	sphere    gmath.Sphere

	launched bool

	swarm        swarmState
	slerpT       float32
	turnDuration float32 // seconds
	fromQuat     mgl32.Quat
	toQuat       mgl32.Quat
}

// NewRigidBody derives the body's oriented box and bounding sphere from box.
func NewRigidBody(t *component.Transform, box gmath.AABB) RigidBody {
	obb := gmath.OBBFromAABB(box)
	return RigidBody{
		transform: t,
		box:       obb,
		sphere:    gmath.SphereFromOBB(obb),
		fromQuat:  mgl32.QuatIdent(),
		toQuat:    mgl32.QuatIdent(),
	}
}

func (b *RigidBody) Transform() *component.Transform { return b.transform }
func (b *RigidBody) Velocity() mgl32.Vec3             { return b.velocity }
func (b *RigidBody) SetVelocity(v mgl32.Vec3)         { b.velocity = v }
func (b *RigidBody) Box() gmath.OBB                   { return b.box }
func (b *RigidBody) Launched() bool                   { return b.launched }

// Update advances the position by velocity * dt.
func (b *RigidBody) Update(dt float32) {
	if b.transform == nil {
		return
	}
	b.transform.Move(b.velocity.Mul(dt))
}

// FaceTo turns the body so its forward axis points at target. A target at
// the body's own position leaves the rotation unchanged.
func (b *RigidBody) FaceTo(target mgl32.Vec3) {
	m, ok := gmath.LookBasis(target.Sub(b.transform.Position))
	if !ok {
		return
	}
	b.transform.Rotation = gmath.EulerFromMatrix(m)
}

// forward returns the body's forward axis scaled by speed.
func (b *RigidBody) forward(speed float32) mgl32.Vec3 {
	return b.transform.Orientation().Rotate(gmath.Forward).Mul(speed)
}

// HomingAt faces the target and heads straight for it every call.
func (b *RigidBody) HomingAt(target mgl32.Vec3, speed float32) {
	b.FaceTo(target)
	b.velocity = b.forward(speed)
}

// ShootAt aims at target once and keeps that velocity afterwards.
func (b *RigidBody) ShootAt(target mgl32.Vec3, speed float32) {
	if b.launched {
		return
	}
	b.FaceTo(target)
	b.velocity = b.forward(speed)
	b.launched = true
}

// Rearm lets ShootAt fire again.
func (b *RigidBody) Rearm() { b.launched = false }

// SwarmAt steers toward target in randomised arcs. Each turn picks a
// duration in [MinTurnMs, MaxTurnMs) and an orientation offset of up to
// MaxOffAngle degrees from the direct heading, then interpolates to it.
func (b *RigidBody) SwarmAt(target mgl32.Vec3, p SwarmParams, dt float32, rng *rand.Rand) {
	if b.swarm == swarmIdle {
		b.beginTurn(target, p, rng)
	}

	b.slerpT += dt / b.turnDuration
	t := min(b.slerpT, 1)
	q := mgl32.QuatSlerp(b.fromQuat, b.toQuat, t)
	b.transform.Rotation = gmath.EulerFromQuat(q)

	if b.slerpT >= 1 {
		b.fromQuat = b.toQuat
		b.swarm = swarmIdle
	}
	b.velocity = b.forward(p.Speed)
}

func (b *RigidBody) beginTurn(target mgl32.Vec3, p SwarmParams, rng *rand.Rand) {
	b.slerpT = 0
	span := p.MaxTurnMs - p.MinTurnMs
	ms := p.MinTurnMs
	if span > 0 {
		ms += rng.Float32() * span
	}
	b.turnDuration = max(ms/1000, 1e-3)

	current := b.transform.Rotation
	b.fromQuat = gmath.QuatFromEuler(current)
	b.FaceTo(target)
	aim := b.transform.Rotation
	b.transform.Rotation = current

	off := gmath.Deg2Rad(p.MaxOffAngle)
	jitter := func() float32 { return (rng.Float32()*2 - 1) * off }
	aim = aim.Add(mgl32.Vec3{jitter(), jitter(), jitter()})
	b.toQuat = gmath.QuatFromEuler(aim)
	b.swarm = swarmSlerping
}

// Swarming reports whether a turn is in progress and how far along it is.
func (b *RigidBody) Swarming() (bool, float32) {
	return b.swarm == swarmSlerping, b.slerpT
}

// WorldSphere is the bounding sphere moved to the body's position.
func (b *RigidBody) WorldSphere() gmath.Sphere {
	return b.sphere.Translate(b.transform.Position)
}

// WorldBox is the oriented box placed at the body's position and rotation.
func (b *RigidBody) WorldBox() gmath.OBB {
	return b.box.Transform(b.transform.Orientation(), b.transform.Position)
}

// SphereCollision tests the bodies' bounding spheres. Neither body changes.
func (b *RigidBody) SphereCollision(o *RigidBody) bool {
	return b.WorldSphere().Intersects(o.WorldSphere())
}

// BoxCollision tests the bodies' oriented boxes. Neither body changes.
func (b *RigidBody) BoxCollision(o *RigidBody) bool {
	return b.WorldBox().Intersects(o.WorldBox())
}
