package soft

import (
	"encoding/binary"
	"math"

	"github.com/emberforge/ember/internal/render"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// light direction for the lambert and sky programs, pointing toward the light
var lightDir = mgl32.Vec3{0.4, 1, -0.6}.Normalize()

// Context is the soft pipeline state plus the rasterizer.
type Context struct {
	dev *Device

	rtv        *view
	dsv        *view
	viewport   render.Viewport
	layout     *inputLayout
	vb         *buffer
	stride     int
	vbOffset   int
	ib         *buffer
	ibOffset   int
	vs         *vertexShader
	ps         *pixelShader
	cbs        [2][2]*buffer
	srv        *view
	depthWrite bool

	// Drawn counts triangles that produced at least one pixel.
	Drawn int
}

func newContext(d *Device) *Context {
	return &Context{dev: d, depthWrite: true}
}

func asView(r render.Resource) *view {
	if v, ok := r.(*view); ok && !v.released {
		return v
	}
	return nil
}

func asBuffer(r render.Resource) *buffer {
	if b, ok := r.(*buffer); ok && !b.released {
		return b
	}
	return nil
}

func (c *Context) ClearRenderTarget(rtv render.RenderTargetView, rgba [4]float32) {
	v := asView(rtv)
	if v == nil {
		return
	}
	pix := v.tex.pix
	for i := 0; i < len(pix); i += 4 {
		copy(pix[i:i+4], rgba[:])
	}
}

func (c *Context) ClearDepthStencil(dsv render.DepthStencilView, depth float32) {
	v := asView(dsv)
	if v == nil {
		return
	}
	for i := range v.tex.depth {
		v.tex.depth[i] = depth
	}
}

func (c *Context) SetRenderTargets(rtv render.RenderTargetView, dsv render.DepthStencilView) {
	c.rtv, c.dsv = asView(rtv), asView(dsv)
}

func (c *Context) SetViewport(vp render.Viewport) { c.viewport = vp }
func (c *Context) SetTopology(render.Topology)    {}
func (c *Context) SetDepthWrite(enabled bool)     { c.depthWrite = enabled }

func (c *Context) SetInputLayout(l render.InputLayout) {
	c.layout, _ = l.(*inputLayout)
}

func (c *Context) SetVertexBuffer(buf render.Buffer, stride, offset int) {
	c.vb, c.stride, c.vbOffset = asBuffer(buf), stride, offset
}

func (c *Context) SetIndexBuffer(buf render.Buffer, offset int) {
	c.ib, c.ibOffset = asBuffer(buf), offset
}

func (c *Context) SetVertexShader(vs render.VertexShader) { c.vs, _ = vs.(*vertexShader) }
func (c *Context) SetPixelShader(ps render.PixelShader)   { c.ps, _ = ps.(*pixelShader) }

func (c *Context) SetConstantBuffer(stage render.Stage, slot int, buf render.Buffer) {
	if slot < 0 || slot > 1 || stage < 0 || stage > 1 {
		return
	}
	c.cbs[stage][slot] = asBuffer(buf)
}

func (c *Context) SetShaderResource(_ int, srv render.ShaderResourceView) {
	c.srv = asView(srv)
}

func (c *Context) UpdateBuffer(buf render.Buffer, data []byte) {
	if b := asBuffer(buf); b != nil {
		copy(b.data, data)
	}
}

func (c *Context) ClearState() {
	*c = Context{dev: c.dev, depthWrite: true}
}

func (c *Context) Release() {}

type clipVertex struct {
	pos    mgl32.Vec4 // clip space
	normal mgl32.Vec3 // world space
	uv     mgl32.Vec2
}

type screenVertex struct {
	x, y, z float32
	clipVertex
}

// DrawIndexed transforms and rasterizes indexCount/3 triangles.
func (c *Context) DrawIndexed(indexCount, startIndex, baseVertex int) {
	if c.rtv == nil || c.vb == nil || c.ib == nil || c.vs == nil || c.ps == nil || c.stride <= 0 {
		c.dev.log.Debug("draw skipped: incomplete pipeline")
		return
	}
	frameBuf, objBuf := c.cbs[render.StageVertex][render.SlotFrame], c.cbs[render.StageVertex][render.SlotObject]
	if frameBuf == nil || objBuf == nil {
		c.dev.log.Debug("draw skipped: constant buffers unbound")
		return
	}
	frame := render.DecodeFrameConstants(frameBuf.data)
	obj := render.DecodeObjectConstants(objBuf.data)
	mvp := frame.Projection.Mul4(frame.View).Mul4(obj.World)

	nVerts := (len(c.vb.data) - c.vbOffset) / c.stride
	idx := c.ib.data[c.ibOffset:]
	var tri [3]clipVertex
	for i := 0; i+2 < indexCount; i += 3 {
		ok := true
		for k := 0; k < 3; k++ {
			at := (startIndex + i + k) * 4
			if at+4 > len(idx) {
				return
			}
			vi := baseVertex + int(binary.LittleEndian.Uint32(idx[at:]))
			if vi < 0 || vi >= nVerts {
				ok = false
				break
			}
			v := render.DecodeVertex(c.vb.data[c.vbOffset+vi*c.stride:])
			tri[k] = clipVertex{
				pos:    mvp.Mul4x1(v.Position.Vec4(1)),
				normal: obj.World.Mul4x1(v.Normal.Vec4(0)).Vec3(),
				uv:     v.UV,
			}
		}
		if !ok {
			c.dev.log.Warn("vertex index out of range", zap.Int("triangle", i/3))
			continue
		}
		if c.rasterize(tri, obj.Color, frame) {
			c.Drawn++
		}
	}
}

func (c *Context) toScreen(v clipVertex) screenVertex {
	inv := 1 / v.pos.W()
	nx, ny, nz := v.pos.X()*inv, v.pos.Y()*inv, v.pos.Z()*inv
	vp := c.viewport
	return screenVertex{
		x:          vp.X + (nx+1)*0.5*vp.Width,
		y:          vp.Y + (1-ny)*0.5*vp.Height,
		z:          vp.MinDepth + (nz+1)*0.5*(vp.MaxDepth-vp.MinDepth),
		clipVertex: v,
	}
}

// rasterize fills one triangle. Triangles crossing the near plane are
// dropped whole.
func (c *Context) rasterize(tri [3]clipVertex, color mgl32.Vec4, frame render.FrameConstants) bool {
	const nearW = 1e-4
	for _, v := range tri {
		if v.pos.W() <= nearW {
			return false
		}
	}
	a, b, d := c.toScreen(tri[0]), c.toScreen(tri[1]), c.toScreen(tri[2])
	area := edge(a.x, a.y, b.x, b.y, d.x, d.y)
	if area == 0 {
		return false
	}

	target := c.rtv.tex
	w, h := target.desc.Width, target.desc.Height
	minX := max(0, int(math.Floor(float64(min(a.x, b.x, d.x)))))
	maxX := min(w-1, int(math.Ceil(float64(max(a.x, b.x, d.x)))))
	minY := max(0, int(math.Floor(float64(min(a.y, b.y, d.y)))))
	maxY := min(h-1, int(math.Ceil(float64(max(a.y, b.y, d.y)))))

	var depth []float32
	if c.dsv != nil && len(c.dsv.tex.depth) == w*h {
		depth = c.dsv.tex.depth
	}

	hit := false
	for y := minY; y <= maxY; y++ {
		py := float32(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float32(x) + 0.5
			w0 := edge(b.x, b.y, d.x, d.y, px, py) / area
			w1 := edge(d.x, d.y, a.x, a.y, px, py) / area
			w2 := 1 - w0 - w1
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			z := w0*a.z + w1*b.z + w2*d.z
			if z < 0 || z > 1 {
				continue
			}
			i := y*w + x
			if depth != nil {
				if z >= depth[i] {
					continue
				}
				if c.depthWrite {
					depth[i] = z
				}
			}
			n := a.normal.Mul(w0).Add(b.normal.Mul(w1)).Add(d.normal.Mul(w2))
			uv := a.uv.Mul(w0).Add(b.uv.Mul(w1)).Add(d.uv.Mul(w2))
			out := c.shade(n, uv, color)
			copy(target.pix[i*4:i*4+4], out[:])
			hit = true
		}
	}
	return hit
}

func (c *Context) shade(n mgl32.Vec3, uv mgl32.Vec2, color mgl32.Vec4) mgl32.Vec4 {
	base := color
	if c.srv != nil {
		base = mulColor(base, c.sample(uv))
	}
	switch c.ps.program {
	case "lambert":
		k := float32(0.25)
		if n.Len() > 0 {
			k += 0.75 * max(0, n.Normalize().Dot(lightDir))
		}
		return mgl32.Vec4{base[0] * k, base[1] * k, base[2] * k, base[3]}
	case "sky":
		k := float32(0.6)
		if n.Len() > 0 {
			k += 0.4 * n.Normalize().Y()
		}
		return mgl32.Vec4{base[0] * k, base[1] * k, base[2] * k, base[3]}
	}
	return base
}

// sample does nearest-neighbour lookup with wrapping.
func (c *Context) sample(uv mgl32.Vec2) mgl32.Vec4 {
	t := c.srv.tex
	w, h := t.desc.Width, t.desc.Height
	u := uv.X() - float32(math.Floor(float64(uv.X())))
	v := uv.Y() - float32(math.Floor(float64(uv.Y())))
	x := min(w-1, int(u*float32(w)))
	y := min(h-1, int(v*float32(h)))
	i := (y*w + x) * 4
	return mgl32.Vec4{t.pix[i], t.pix[i+1], t.pix[i+2], t.pix[i+3]}
}

func mulColor(a, b mgl32.Vec4) mgl32.Vec4 {
	return mgl32.Vec4{a[0] * b[0], a[1] * b[1], a[2] * b[2], a[3] * b[3]}
}

func edge(ax, ay, bx, by, px, py float32) float32 {
	return (px-ax)*(by-ay) - (py-ay)*(bx-ax)
}
