package asset

import (
	"math"

	"github.com/emberforge/ember/internal/render"
	"github.com/go-gl/mathgl/mgl32"
)

// Cube is a unit cube centred on the origin with per-face normals.
func Cube() render.MeshData {
	faces := []struct{ n, u, v mgl32.Vec3 }{
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, -1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}, mgl32.Vec3{0, 1, 0}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
	}
	var md render.MeshData
	for _, f := range faces {
		base := uint32(len(md.Vertices))
		c := f.n.Mul(0.5)
		for _, k := range [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			p := c.Add(f.u.Mul(k[0] * 0.5)).Add(f.v.Mul(k[1] * 0.5))
			md.Vertices = append(md.Vertices, render.Vertex{
				Position: p,
				Normal:   f.n,
				UV:       mgl32.Vec2{(k[0] + 1) / 2, (1 - k[1]) / 2},
			})
		}
		md.Indices = append(md.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return md
}

// Quad is a unit square in the XY plane facing -Z.
func Quad() render.MeshData {
	n := mgl32.Vec3{0, 0, -1}
	return render.MeshData{
		Vertices: []render.Vertex{
			{Position: mgl32.Vec3{-0.5, -0.5, 0}, Normal: n, UV: mgl32.Vec2{0, 1}},
			{Position: mgl32.Vec3{0.5, -0.5, 0}, Normal: n, UV: mgl32.Vec2{1, 1}},
			{Position: mgl32.Vec3{0.5, 0.5, 0}, Normal: n, UV: mgl32.Vec2{1, 0}},
			{Position: mgl32.Vec3{-0.5, 0.5, 0}, Normal: n, UV: mgl32.Vec2{0, 0}},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}

// Sphere is a UV sphere of radius 0.5.
func Sphere(rings, segments int) render.MeshData {
	rings, segments = max(rings, 2), max(segments, 3)
	var md render.MeshData
	for r := 0; r <= rings; r++ {
		phi := math.Pi * float64(r) / float64(rings)
		for s := 0; s <= segments; s++ {
			theta := 2 * math.Pi * float64(s) / float64(segments)
			n := mgl32.Vec3{
				float32(math.Sin(phi) * math.Cos(theta)),
				float32(math.Cos(phi)),
				float32(math.Sin(phi) * math.Sin(theta)),
			}
			md.Vertices = append(md.Vertices, render.Vertex{
				Position: n.Mul(0.5),
				Normal:   n,
				UV:       mgl32.Vec2{float32(s) / float32(segments), float32(r) / float32(rings)},
			})
		}
	}
	stride := uint32(segments + 1)
	for r := uint32(0); r < uint32(rings); r++ {
		for s := uint32(0); s < uint32(segments); s++ {
			a := r*stride + s
			b := a + stride
			md.Indices = append(md.Indices, a, b, a+1, a+1, b, b+1)
		}
	}
	return md
}

// Checker is a two-tone checkerboard with one-texel squares.
func Checker(w, h int) render.Image {
	img := render.Image{Width: w, Height: h, Pix: make([]byte, w*h*4)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := byte(64)
			if (x+y)%2 == 0 {
				v = 255
			}
			i := (y*w + x) * 4
			img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = v, v, v, 255
		}
	}
	return img
}
