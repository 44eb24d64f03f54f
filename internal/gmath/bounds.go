package gmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// AABB is an axis-aligned box given by center and half extents.
type AABB struct {
	Center  mgl32.Vec3
	Extents mgl32.Vec3
}

// AABBFromPoints returns the tightest box around pts.
func AABBFromPoints(pts []mgl32.Vec3) AABB {
	if len(pts) == 0 {
		return AABB{}
	}
	lo, hi := pts[0], pts[0]
	for _, p := range pts[1:] {
		for i := 0; i < 3; i++ {
			lo[i] = min(lo[i], p[i])
			hi[i] = max(hi[i], p[i])
		}
	}
	return AABB{Center: lo.Add(hi).Mul(0.5), Extents: hi.Sub(lo).Mul(0.5)}
}

// OBB is an oriented box.
type OBB struct {
	Center      mgl32.Vec3
	Extents     mgl32.Vec3
	Orientation mgl32.Quat
}

func OBBFromAABB(b AABB) OBB {
	return OBB{Center: b.Center, Extents: b.Extents, Orientation: mgl32.QuatIdent()}
}

// Transform returns the box rotated by rot and moved by pos. The receiver is
// left untouched.
func (b OBB) Transform(rot mgl32.Quat, pos mgl32.Vec3) OBB {
	return OBB{
		Center:      rot.Rotate(b.Center).Add(pos),
		Extents:     b.Extents,
		Orientation: rot.Mul(b.Orientation).Normalize(),
	}
}

func (b OBB) axes() [3]mgl32.Vec3 {
	m := b.Orientation.Normalize().Mat4().Mat3()
	return [3]mgl32.Vec3{m.Col(0), m.Col(1), m.Col(2)}
}

// Intersects runs the separating axis test over the 15 candidate axes.
// Touching boxes count as intersecting.
func (b OBB) Intersects(o OBB) bool {
	const eps = 1e-6
	a := b.axes()
	c := o.axes()
	ea, eb := b.Extents, o.Extents

	var r, absR [3][3]float32
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = a[i].Dot(c[j])
			absR[i][j] = abs(r[i][j]) + eps
		}
	}
	d := o.Center.Sub(b.Center)
	t := mgl32.Vec3{d.Dot(a[0]), d.Dot(a[1]), d.Dot(a[2])}

	for i := 0; i < 3; i++ {
		ra := ea[i]
		rb := eb[0]*absR[i][0] + eb[1]*absR[i][1] + eb[2]*absR[i][2]
		if abs(t[i]) > ra+rb {
			return false
		}
	}
	for j := 0; j < 3; j++ {
		ra := ea[0]*absR[0][j] + ea[1]*absR[1][j] + ea[2]*absR[2][j]
		rb := eb[j]
		if abs(t[0]*r[0][j]+t[1]*r[1][j]+t[2]*r[2][j]) > ra+rb {
			return false
		}
	}
	// cross products a[i] x c[j]
	for i := 0; i < 3; i++ {
		i1, i2 := (i+1)%3, (i+2)%3
		for j := 0; j < 3; j++ {
			j1, j2 := (j+1)%3, (j+2)%3
			ra := ea[i1]*absR[i2][j] + ea[i2]*absR[i1][j]
			rb := eb[j1]*absR[i][j2] + eb[j2]*absR[i][j1]
			if abs(t[i2]*r[i1][j]-t[i1]*r[i2][j]) > ra+rb {
				return false
			}
		}
	}
	return true
}

// Sphere is a bounding sphere.
type Sphere struct {
	Center mgl32.Vec3
	Radius float32
}

// SphereFromOBB returns the sphere through the box corners.
func SphereFromOBB(b OBB) Sphere {
	return Sphere{Center: b.Center, Radius: b.Extents.Len()}
}

func (s Sphere) Translate(v mgl32.Vec3) Sphere {
	return Sphere{Center: s.Center.Add(v), Radius: s.Radius}
}

// Intersects reports overlap; touching spheres intersect.
func (s Sphere) Intersects(o Sphere) bool {
	d := s.Center.Sub(o.Center)
	rr := s.Radius + o.Radius
	return d.Dot(d) <= rr*rr
}

func abs(f float32) float32 { return float32(math.Abs(float64(f))) }
