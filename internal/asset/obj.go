package asset

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/emberforge/ember/internal/render"
	"github.com/go-gl/mathgl/mgl32"
)

type objKey struct{ v, t, n int }

// ParseOBJ reads the position, texcoord, normal and face records of a
// Wavefront OBJ stream. Polygons are fan-triangulated and identical
// v/vt/vn triples share one vertex.
func ParseOBJ(r io.Reader) (render.MeshData, error) {
	var (
		pos  []mgl32.Vec3
		uvs  []mgl32.Vec2
		nrms []mgl32.Vec3
		md   render.MeshData
		seen = map[objKey]uint32{}
	)
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v", "vn":
			f, err := parseFloats(fields[1:], 3)
			if err != nil {
				return md, fmt.Errorf("line %d: %w", line, err)
			}
			if fields[0] == "v" {
				pos = append(pos, mgl32.Vec3{f[0], f[1], f[2]})
			} else {
				nrms = append(nrms, mgl32.Vec3{f[0], f[1], f[2]})
			}
		case "vt":
			f, err := parseFloats(fields[1:], 2)
			if err != nil {
				return md, fmt.Errorf("line %d: %w", line, err)
			}
			uvs = append(uvs, mgl32.Vec2{f[0], 1 - f[1]})
		case "f":
			if len(fields) < 4 {
				return md, fmt.Errorf("line %d: face needs at least 3 vertices", line)
			}
			poly := make([]uint32, 0, len(fields)-1)
			for _, ref := range fields[1:] {
				k, err := parseRef(ref, len(pos), len(uvs), len(nrms))
				if err != nil {
					return md, fmt.Errorf("line %d: %w", line, err)
				}
				idx, ok := seen[k]
				if !ok {
					v := render.Vertex{Position: pos[k.v]}
					if k.t >= 0 {
						v.UV = uvs[k.t]
					}
					if k.n >= 0 {
						v.Normal = nrms[k.n]
					}
					idx = uint32(len(md.Vertices))
					md.Vertices = append(md.Vertices, v)
					seen[k] = idx
				}
				poly = append(poly, idx)
			}
			for i := 1; i+1 < len(poly); i++ {
				md.Indices = append(md.Indices, poly[0], poly[i], poly[i+1])
			}
		}
	}
	if err := sc.Err(); err != nil {
		return md, err
	}
	if len(md.Indices) == 0 {
		return md, fmt.Errorf("no faces")
	}
	return md, nil
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("want %d values, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(f)
	}
	return out, nil
}

// parseRef resolves one "v/vt/vn" face reference to zero-based indices,
// -1 where a component is absent. Negative OBJ indices count from the end.
func parseRef(ref string, nv, nt, nn int) (objKey, error) {
	parts := strings.Split(ref, "/")
	k := objKey{-1, -1, -1}
	counts := [3]int{nv, nt, nn}
	out := [3]*int{&k.v, &k.t, &k.n}
	for i, p := range parts {
		if i > 2 {
			break
		}
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return k, fmt.Errorf("bad index %q", ref)
		}
		switch {
		case n > 0:
			n--
		case n < 0:
			n += counts[i]
		default:
			return k, fmt.Errorf("zero index in %q", ref)
		}
		if n < 0 || n >= counts[i] {
			return k, fmt.Errorf("index out of range in %q", ref)
		}
		*out[i] = n
	}
	if k.v < 0 {
		return k, fmt.Errorf("face reference %q has no position", ref)
	}
	return k, nil
}
