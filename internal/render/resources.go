package render

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/emberforge/ember/internal/gmath"
	"github.com/go-gl/mathgl/mgl32"
)

var ErrInvalidResource = errors.New("invalid render resource")

// Vertex is the engine's single vertex format.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
}

// VertexStride is the encoded size of a Vertex.
const VertexStride = 32

// VertexLayout matches the encoding done by EncodeVertices.
var VertexLayout = []InputElement{
	{Semantic: "POSITION", Offset: 0, Size: 3},
	{Semantic: "NORMAL", Offset: 12, Size: 3},
	{Semantic: "TEXCOORD", Offset: 24, Size: 2},
}

func EncodeVertices(vs []Vertex) []byte {
	b := make([]byte, 0, len(vs)*VertexStride)
	for _, v := range vs {
		b = putFloats(b, v.Position[:]...)
		b = putFloats(b, v.Normal[:]...)
		b = putFloats(b, v.UV[:]...)
	}
	return b
}

// DecodeVertex reads the vertex starting at b[0].
func DecodeVertex(b []byte) Vertex {
	f := getFloats(b, VertexStride/4)
	return Vertex{
		Position: mgl32.Vec3{f[0], f[1], f[2]},
		Normal:   mgl32.Vec3{f[3], f[4], f[5]},
		UV:       mgl32.Vec2{f[6], f[7]},
	}
}

func EncodeIndices(idx []uint32) []byte {
	b := make([]byte, 0, len(idx)*4)
	for _, i := range idx {
		b = binary.LittleEndian.AppendUint32(b, i)
	}
	return b
}

// MeshData is what a MeshLoader produces.
type MeshData struct {
	Vertices []Vertex
	Indices  []uint32
}

// Image is tightly packed RGBA8.
type Image struct {
	Width, Height int
	Pix           []byte
}

// ShaderSource holds the vertex and pixel programs of one shader file.
type ShaderSource struct {
	Name   string
	Vertex []byte
	Pixel  []byte
}

type MeshLoader interface {
	LoadMesh(path string) (MeshData, error)
}

type ShaderLoader interface {
	LoadShader(path string) (ShaderSource, error)
}

type TextureLoader interface {
	LoadTexture(path string) (Image, error)
}

// Loaders bundles the file readers the rendering system builds resources from.
type Loaders struct {
	Mesh    MeshLoader
	Shader  ShaderLoader
	Texture TextureLoader
}

// Mesh is an indexed triangle list resident on the device.
type Mesh struct {
	path       string
	vb         Buffer
	ib         Buffer
	indexCount int
	stride     int
	bounds     gmath.AABB
}

func newMesh(dev Device, path string, data MeshData) (*Mesh, error) {
	if len(data.Vertices) == 0 || len(data.Indices) == 0 || len(data.Indices)%3 != 0 {
		return nil, fmt.Errorf("mesh %s: %d vertices, %d indices: %w",
			path, len(data.Vertices), len(data.Indices), ErrInvalidResource)
	}
	for _, i := range data.Indices {
		if int(i) >= len(data.Vertices) {
			return nil, fmt.Errorf("mesh %s: index %d out of range: %w", path, i, ErrInvalidResource)
		}
	}
	vb, err := dev.CreateBuffer(BufferDesc{Size: len(data.Vertices) * VertexStride, Bind: BindVertexBuffer},
		EncodeVertices(data.Vertices))
	if err != nil {
		return nil, fmt.Errorf("mesh %s vertex buffer: %w", path, err)
	}
	ib, err := dev.CreateBuffer(BufferDesc{Size: len(data.Indices) * 4, Bind: BindIndexBuffer},
		EncodeIndices(data.Indices))
	if err != nil {
		vb.Release()
		return nil, fmt.Errorf("mesh %s index buffer: %w", path, err)
	}
	pts := make([]mgl32.Vec3, len(data.Vertices))
	for i, v := range data.Vertices {
		pts[i] = v.Position
	}
	return &Mesh{
		path:       path,
		vb:         vb,
		ib:         ib,
		indexCount: len(data.Indices),
		stride:     VertexStride,
		bounds:     gmath.AABBFromPoints(pts),
	}, nil
}

func (m *Mesh) Path() string       { return m.path }
func (m *Mesh) IndexCount() int    { return m.indexCount }
func (m *Mesh) Stride() int        { return m.stride }
func (m *Mesh) Bounds() gmath.AABB { return m.bounds }

func (m *Mesh) Release() {
	if m.vb != nil {
		m.vb.Release()
		m.vb = nil
	}
	if m.ib != nil {
		m.ib.Release()
		m.ib = nil
	}
}

// Shader is a linked vertex + pixel program and its input layout.
type Shader struct {
	path   string
	vs     VertexShader
	ps     PixelShader
	layout InputLayout
}

func newShader(dev Device, path string, src ShaderSource) (*Shader, error) {
	vs, err := dev.CreateVertexShader(src.Vertex)
	if err != nil {
		return nil, fmt.Errorf("shader %s vertex stage: %w", path, err)
	}
	ps, err := dev.CreatePixelShader(src.Pixel)
	if err != nil {
		vs.Release()
		return nil, fmt.Errorf("shader %s pixel stage: %w", path, err)
	}
	layout, err := dev.CreateInputLayout(VertexLayout, vs)
	if err != nil {
		ps.Release()
		vs.Release()
		return nil, fmt.Errorf("shader %s input layout: %w", path, err)
	}
	return &Shader{path: path, vs: vs, ps: ps, layout: layout}, nil
}

func (s *Shader) Path() string { return s.path }

func (s *Shader) valid() bool {
	return s != nil && s.vs != nil && s.ps != nil && s.layout != nil
}

func (s *Shader) Release() {
	for _, r := range []Resource{s.layout, s.ps, s.vs} {
		if r != nil {
			r.Release()
		}
	}
	s.layout, s.ps, s.vs = nil, nil, nil
}

// Texture is a sampled 2D image.
type Texture struct {
	path string
	tex  Texture2D
	srv  ShaderResourceView
}

func newTexture(dev Device, path string, img Image) (*Texture, error) {
	if img.Width <= 0 || img.Height <= 0 || len(img.Pix) != img.Width*img.Height*4 {
		return nil, fmt.Errorf("texture %s: %dx%d with %d bytes: %w",
			path, img.Width, img.Height, len(img.Pix), ErrInvalidResource)
	}
	tex, err := dev.CreateTexture2D(TextureDesc{
		Width: img.Width, Height: img.Height, Format: FormatRGBA8, Bind: BindShaderResource,
	}, img.Pix)
	if err != nil {
		return nil, fmt.Errorf("texture %s: %w", path, err)
	}
	srv, err := dev.CreateShaderResourceView(tex)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("texture %s view: %w", path, err)
	}
	return &Texture{path: path, tex: tex, srv: srv}, nil
}

func (t *Texture) Path() string { return t.path }

func (t *Texture) Release() {
	if t.srv != nil {
		t.srv.Release()
		t.srv = nil
	}
	if t.tex != nil {
		t.tex.Release()
		t.tex = nil
	}
}

// MaterialOptions are the optional inputs of CreateMaterial.
type MaterialOptions struct {
	Texture *Texture
	Color   mgl32.Vec4
}

// Material binds a shader, an optional texture and per-object constants.
type Material struct {
	shader  *Shader
	texture *Texture
	color   mgl32.Vec4
	object  *ConstantBuffer
}

func newMaterial(dev Device, shader *Shader, opts MaterialOptions) (*Material, error) {
	cb, err := NewConstantBuffer(dev, ObjectConstantsSize)
	if err != nil {
		return nil, err
	}
	color := opts.Color
	if color == (mgl32.Vec4{}) {
		color = mgl32.Vec4{1, 1, 1, 1}
	}
	return &Material{shader: shader, texture: opts.Texture, color: color, object: cb}, nil
}

func (m *Material) Shader() *Shader       { return m.shader }
func (m *Material) Color() mgl32.Vec4     { return m.color }
func (m *Material) SetColor(c mgl32.Vec4) { m.color = c }

// Valid reports whether the material can be drawn with.
func (m *Material) Valid() bool {
	if !m.shader.valid() || m.object == nil {
		return false
	}
	if m.texture != nil && m.texture.srv == nil {
		return false
	}
	return !hasNaN(m.color[:])
}

// apply binds the material's pipeline state and uploads the object constants.
func (m *Material) apply(ctx Context, world mgl32.Mat4) {
	ctx.SetInputLayout(m.shader.layout)
	ctx.SetVertexShader(m.shader.vs)
	ctx.SetPixelShader(m.shader.ps)
	m.object.Upload(ctx, ObjectConstants{World: world, Color: m.color}.Encode())
	ctx.SetConstantBuffer(StageVertex, SlotObject, m.object.Buffer())
	ctx.SetConstantBuffer(StagePixel, SlotObject, m.object.Buffer())
	if m.texture != nil {
		ctx.SetShaderResource(0, m.texture.srv)
	} else {
		ctx.SetShaderResource(0, nil)
	}
}

// Release frees the material's own buffers. Shader and texture belong to the
// rendering system caches.
func (m *Material) Release() {
	if m.object != nil {
		m.object.Release()
		m.object = nil
	}
}

func hasNaN(fs []float32) bool {
	for _, f := range fs {
		if math.IsNaN(float64(f)) {
			return true
		}
	}
	return false
}
