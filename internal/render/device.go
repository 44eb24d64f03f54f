// Package render owns the GPU-facing side of the engine: the device
// boundary, resource caches and the per-frame draw of a SceneGraph.
package render

// Stage selects the shader stage a constant buffer is bound to.
type Stage int

const (
	StageVertex Stage = iota
	StagePixel
)

type Format int

const (
	FormatRGBA8 Format = iota
	FormatRGBA32F
	FormatDepth32F
)

// BindFlags says how a buffer or texture may be bound.
type BindFlags uint32

const (
	BindVertexBuffer BindFlags = 1 << iota
	BindIndexBuffer
	BindConstantBuffer
	BindShaderResource
	BindRenderTarget
	BindDepthStencil
)

type Topology int

const (
	TopologyTriangleList Topology = iota
)

type BufferDesc struct {
	Size int
	Bind BindFlags
}

type TextureDesc struct {
	Width, Height int
	Format        Format
	Bind          BindFlags
}

type Viewport struct {
	X, Y, Width, Height float32
	MinDepth, MaxDepth  float32
}

// InputElement describes one vertex attribute.
type InputElement struct {
	Semantic string
	Offset   int
	Size     int // number of float32 components
}

// Resource is anything the device allocates.
type Resource interface {
	Release()
}

type Buffer interface {
	Resource
	Desc() BufferDesc
}

type Texture2D interface {
	Resource
	Desc() TextureDesc
}

type RenderTargetView interface{ Resource }
type DepthStencilView interface{ Resource }
type ShaderResourceView interface{ Resource }
type VertexShader interface{ Resource }
type PixelShader interface{ Resource }
type InputLayout interface{ Resource }

// SwapChain owns the presentable back buffer.
type SwapChain interface {
	Resource
	ResizeBuffers(width, height int) error
	// BackBuffer returns a new reference to the current back buffer. The
	// caller releases it.
	BackBuffer() (Texture2D, error)
	Present() error
}

// Window is the OS surface the swap chain presents into.
type Window interface {
	// Handle is the backend-specific native surface.
	Handle() any
	ClientSize() (width, height int)
	// AddResizeListener adds fn to the listeners called on resize.
	AddResizeListener(fn func(width, height int))
}

// Device creates resources.
type Device interface {
	CreateSwapChain(win Window, width, height int) (SwapChain, error)
	CreateBuffer(desc BufferDesc, initial []byte) (Buffer, error)
	CreateTexture2D(desc TextureDesc, pixels []byte) (Texture2D, error)
	CreateRenderTargetView(tex Texture2D) (RenderTargetView, error)
	CreateDepthStencilView(tex Texture2D) (DepthStencilView, error)
	CreateShaderResourceView(tex Texture2D) (ShaderResourceView, error)
	CreateVertexShader(code []byte) (VertexShader, error)
	CreatePixelShader(code []byte) (PixelShader, error)
	CreateInputLayout(elems []InputElement, vs VertexShader) (InputLayout, error)
	Context() Context
	Release()
}

// Context records pipeline state and issues draws.
type Context interface {
	ClearRenderTarget(rtv RenderTargetView, rgba [4]float32)
	ClearDepthStencil(dsv DepthStencilView, depth float32)
	SetRenderTargets(rtv RenderTargetView, dsv DepthStencilView)
	SetViewport(vp Viewport)
	SetTopology(t Topology)
	SetInputLayout(l InputLayout)
	SetVertexBuffer(buf Buffer, stride, offset int)
	SetIndexBuffer(buf Buffer, offset int)
	SetVertexShader(vs VertexShader)
	SetPixelShader(ps PixelShader)
	SetConstantBuffer(stage Stage, slot int, buf Buffer)
	SetShaderResource(slot int, srv ShaderResourceView)
	SetDepthWrite(enabled bool)
	UpdateBuffer(buf Buffer, data []byte)
	DrawIndexed(indexCount, startIndex, baseVertex int)
	ClearState()
	Release()
}
