// Package camera holds the free-flying debug camera.
package camera

import (
	"math"

	"github.com/emberforge/ember/internal/config"
	"github.com/emberforge/ember/internal/data"
	"github.com/emberforge/ember/internal/gmath"
	"github.com/emberforge/ember/internal/platform"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// mouseScale converts dragged pixels into radians.
	mouseScale  = 1.0 / 1024
	keyLookRate = 1.5
	maxPitch    = math.Pi/2 - 0.01
)

// DebugCam is a yaw/pitch camera driven by input actions. The view matrix
// is rebuilt lazily after the position or angles change.
type DebugCam struct {
	pos        mgl32.Vec3
	rotX, rotY float32 // pitch, yaw

	fov, near, far float32
	moveSpeed      float32
	lookSpeed      float32

	dirty bool
	view  mgl32.Mat4
	proj  mgl32.Mat4
}

func New(cfg config.CameraConfig, aspect float32) *DebugCam {
	c := &DebugCam{
		pos:       mgl32.Vec3(cfg.Position),
		fov:       gmath.Deg2Rad(cfg.FovDegrees),
		near:      cfg.Near,
		far:       cfg.Far,
		moveSpeed: cfg.MoveSpeed,
		lookSpeed: cfg.LookSpeed,
		dirty:     true,
	}
	c.SetProjection(aspect)
	return c
}

// SetProjection rebuilds the projection for a new aspect ratio. View space
// looks down +Z, so the GL-style perspective is applied after a Z flip.
func (c *DebugCam) SetProjection(aspect float32) {
	if aspect <= 0 {
		aspect = 1
	}
	c.proj = mgl32.Perspective(c.fov, aspect, c.near, c.far).Mul4(mgl32.Scale3D(1, 1, -1))
}

func (c *DebugCam) Projection() mgl32.Mat4 { return c.proj }
func (c *DebugCam) Position() mgl32.Vec3   { return c.pos }

// Angles returns pitch and yaw in radians.
func (c *DebugCam) Angles() (float32, float32) { return c.rotX, c.rotY }

func (c *DebugCam) SetPosition(p mgl32.Vec3) {
	c.pos = p
	c.dirty = true
}

func (c *DebugCam) SetAngles(pitch, yaw float32) {
	c.rotX = mgl32.Clamp(pitch, -maxPitch, maxPitch)
	c.rotY = yaw
	c.dirty = true
}

// Pose returns the camera placement in scene-file form.
func (c *DebugCam) Pose() data.CameraDef {
	return data.CameraDef{Position: [3]float32(c.pos), Rotation: [2]float32{c.rotX, c.rotY}}
}

// SetPose places the camera as a scene file describes it.
func (c *DebugCam) SetPose(p data.CameraDef) {
	c.SetPosition(mgl32.Vec3(p.Position))
	c.SetAngles(p.Rotation[0], p.Rotation[1])
}

// Direction is the unit view direction.
func (c *DebugCam) Direction() mgl32.Vec3 {
	return gmath.MatFromEuler(mgl32.Vec3{c.rotX, c.rotY, 0}).Mul4x1(gmath.Forward.Vec4(0)).Vec3()
}

// Sideways is the unit right vector in the horizontal plane.
func (c *DebugCam) Sideways() mgl32.Vec3 {
	return gmath.MatFromEuler(mgl32.Vec3{0, c.rotY, 0}).Mul4x1(gmath.Right.Vec4(0)).Vec3()
}

func (c *DebugCam) View() mgl32.Mat4 {
	if c.dirty {
		c.view = lookTo(c.pos, c.Direction(), gmath.Up)
		c.dirty = false
	}
	return c.view
}

func (c *DebugCam) MoveAlongDirection(d float32) { c.SetPosition(c.pos.Add(c.Direction().Mul(d))) }
func (c *DebugCam) MoveSideways(d float32)       { c.SetPosition(c.pos.Add(c.Sideways().Mul(d))) }
func (c *DebugCam) MoveVertical(d float32)       { c.SetPosition(c.pos.Add(gmath.Up.Mul(d))) }

func (c *DebugCam) Rotate(dPitch, dYaw float32) {
	if dPitch == 0 && dYaw == 0 {
		return
	}
	c.SetAngles(c.rotX+dPitch, c.rotY+dYaw)
}

// Update applies one frame of held movement keys, arrow look keys and
// mouse drag.
func (c *DebugCam) Update(in *platform.Input, dt float32) {
	step := c.moveSpeed * dt
	axis := func(pos, neg platform.Action) float32 {
		var v float32
		if in.Held(pos) {
			v++
		}
		if in.Held(neg) {
			v--
		}
		return v
	}
	if f := axis(platform.ActionForward, platform.ActionBack); f != 0 {
		c.MoveAlongDirection(f * step)
	}
	if s := axis(platform.ActionRight, platform.ActionLeft); s != 0 {
		c.MoveSideways(s * step)
	}
	if v := axis(platform.ActionRise, platform.ActionSink); v != 0 {
		c.MoveVertical(v * step)
	}

	dx, dy := in.MouseDelta()
	look := keyLookRate * c.lookSpeed * dt
	dYaw := dx*mouseScale*c.lookSpeed + axis(platform.ActionLookRight, platform.ActionLookLeft)*look
	dPitch := dy*mouseScale*c.lookSpeed + axis(platform.ActionLookDown, platform.ActionLookUp)*look
	c.Rotate(dPitch, dYaw)
}

// lookTo builds a left-handed view matrix looking along dir.
func lookTo(eye, dir, up mgl32.Vec3) mgl32.Mat4 {
	z := dir.Normalize()
	x := up.Cross(z)
	if x.Len() < 1e-4 {
		x = gmath.Right
	}
	x = x.Normalize()
	y := z.Cross(x)
	return mgl32.Mat4{
		x[0], y[0], z[0], 0,
		x[1], y[1], z[1], 0,
		x[2], y[2], z[2], 0,
		-x.Dot(eye), -y.Dot(eye), -z.Dot(eye), 1,
	}
}
