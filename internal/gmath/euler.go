// Package gmath holds the small pieces of 3D math the engine needs on top of
// mathgl: Euler angle conversion and bounding volumes.
//
// Euler angles are (pitch, yaw, roll) about (X, Y, Z) in radians. The
// rotation they describe applies roll first, then pitch, then yaw:
// R = Ry(yaw) * Rx(pitch) * Rz(roll). Forward is +Z.
package gmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// GimbalThreshold is the |sin(pitch)| at and beyond which EulerFromMatrix
// treats the basis as singular and pins roll to zero.
const GimbalThreshold = 0.998

var (
	Up      = mgl32.Vec3{0, 1, 0}
	Right   = mgl32.Vec3{1, 0, 0}
	Forward = mgl32.Vec3{0, 0, 1}
)

// QuatFromEuler builds the orientation for the given Euler angles.
func QuatFromEuler(e mgl32.Vec3) mgl32.Quat {
	yaw := mgl32.QuatRotate(e.Y(), Up)
	pitch := mgl32.QuatRotate(e.X(), Right)
	roll := mgl32.QuatRotate(e.Z(), Forward)
	return yaw.Mul(pitch).Mul(roll).Normalize()
}

// MatFromEuler returns the 4x4 rotation matrix for e.
func MatFromEuler(e mgl32.Vec3) mgl32.Mat4 {
	return QuatFromEuler(e).Mat4()
}

// EulerFromMatrix decomposes a pure rotation. Near the pitch singularities
// (sin(pitch) >= GimbalThreshold or <= -GimbalThreshold) yaw absorbs the
// roll and roll is reported as zero.
func EulerFromMatrix(m mgl32.Mat3) mgl32.Vec3 {
	sinPitch := -m.At(1, 2)
	switch {
	case sinPitch >= GimbalThreshold:
		yaw := atan2(m.At(0, 1), m.At(0, 0))
		return mgl32.Vec3{math.Pi / 2, yaw, 0}
	case sinPitch <= -GimbalThreshold:
		yaw := atan2(-m.At(0, 1), m.At(0, 0))
		return mgl32.Vec3{-math.Pi / 2, yaw, 0}
	}
	pitch := float32(math.Asin(float64(sinPitch)))
	yaw := atan2(m.At(0, 2), m.At(2, 2))
	roll := atan2(m.At(1, 0), m.At(1, 1))
	return mgl32.Vec3{pitch, yaw, roll}
}

// EulerFromQuat converts an orientation back to Euler angles.
func EulerFromQuat(q mgl32.Quat) mgl32.Vec3 {
	return EulerFromMatrix(q.Normalize().Mat4().Mat3())
}

// LookBasis returns the rotation whose +Z axis points along dir. The world
// up vector is used to build the side axis unless dir is (nearly) parallel
// to it, in which case +X stands in. ok is false for a zero direction.
func LookBasis(dir mgl32.Vec3) (m mgl32.Mat3, ok bool) {
	if dir.Len() < 1e-6 {
		return mgl32.Ident3(), false
	}
	f := dir.Normalize()
	up := Up
	side := up.Cross(f)
	if side.Len() < 0.001 {
		up = Right
		side = up.Cross(f)
	}
	side = side.Normalize()
	up = f.Cross(side)
	return mgl32.Mat3FromCols(side, up, f), true
}

// Deg2Rad converts degrees to radians.
func Deg2Rad(deg float32) float32 { return mgl32.DegToRad(deg) }

func atan2(y, x float32) float32 {
	return float32(math.Atan2(float64(y), float64(x)))
}
