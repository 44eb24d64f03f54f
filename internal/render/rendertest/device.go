// Package rendertest provides a recording render.Device for tests. Every
// call is logged, and use of released resources is collected as a violation
// instead of crashing.
package rendertest

import (
	"errors"
	"fmt"

	"github.com/emberforge/ember/internal/render"
)

var ErrInjected = errors.New("injected failure")

// Draw captures one DrawIndexed call.
type Draw struct {
	IndexCount   int
	VertexBuffer int
	IndexBuffer  int
	Stride       int
	DepthWrite   bool
}

// Device is a fake render.Device.
type Device struct {
	Calls      []string
	Violations []string
	Draws      []Draw
	Uploads    int
	Presented  int

	// failure injection
	FailSwapChain  bool
	FailVertexCode string // CreateVertexShader fails for this exact code
	FailResize     bool

	nextID   int
	live     map[int]*res
	ctx      *Context
	released bool
}

func NewDevice() *Device {
	d := &Device{live: make(map[int]*res)}
	d.ctx = &Context{dev: d, depthWrite: true}
	return d
}

type res struct {
	dev      *Device
	kind     string
	id       int
	released bool
}

func (r *res) Release() {
	r.dev.record("release %s#%d", r.kind, r.id)
	if r.released {
		r.dev.violate("double release of %s#%d", r.kind, r.id)
		return
	}
	r.released = true
	delete(r.dev.live, r.id)
}

func (r *res) ID() int { return r.id }

type Buffer struct {
	*res
	desc render.BufferDesc
	Data []byte
}

func (b *Buffer) Desc() render.BufferDesc { return b.desc }

type Texture struct {
	*res
	desc render.TextureDesc
}

func (t *Texture) Desc() render.TextureDesc { return t.desc }

func (d *Device) record(format string, args ...any) {
	d.Calls = append(d.Calls, fmt.Sprintf(format, args...))
}

func (d *Device) violate(format string, args ...any) {
	d.Violations = append(d.Violations, fmt.Sprintf(format, args...))
}

func (d *Device) alloc(kind string) *res {
	d.nextID++
	r := &res{dev: d, kind: kind, id: d.nextID}
	d.live[r.id] = r
	d.record("create %s#%d", kind, r.id)
	return r
}

// Live returns how many resources have not been released.
func (d *Device) Live() int { return len(d.live) }

// Released reports whether the device itself was released.
func (d *Device) Released() bool { return d.released }

func (d *Device) checkLive(what string, r render.Resource) {
	if r == nil {
		return
	}
	var base *res
	switch v := r.(type) {
	case *res:
		base = v
	case *Buffer:
		base = v.res
	case *Texture:
		base = v.res
	case *SwapChain:
		base = v.res
	}
	if base != nil && base.released {
		d.violate("%s uses released %s#%d", what, base.kind, base.id)
	}
}

func (d *Device) CreateSwapChain(win render.Window, w, h int) (render.SwapChain, error) {
	if d.FailSwapChain {
		return nil, ErrInjected
	}
	return &SwapChain{res: d.alloc("swapchain"), Width: w, Height: h}, nil
}

func (d *Device) CreateBuffer(desc render.BufferDesc, initial []byte) (render.Buffer, error) {
	b := &Buffer{res: d.alloc("buffer"), desc: desc}
	if initial != nil {
		b.Data = append([]byte(nil), initial...)
	}
	return b, nil
}

func (d *Device) CreateTexture2D(desc render.TextureDesc, _ []byte) (render.Texture2D, error) {
	kind := "texture"
	if desc.Bind&render.BindDepthStencil != 0 {
		kind = "depth"
	}
	return &Texture{res: d.alloc(kind), desc: desc}, nil
}

func (d *Device) CreateRenderTargetView(tex render.Texture2D) (render.RenderTargetView, error) {
	d.checkLive("CreateRenderTargetView", tex)
	return d.alloc("rtv"), nil
}

func (d *Device) CreateDepthStencilView(tex render.Texture2D) (render.DepthStencilView, error) {
	d.checkLive("CreateDepthStencilView", tex)
	return d.alloc("dsv"), nil
}

func (d *Device) CreateShaderResourceView(tex render.Texture2D) (render.ShaderResourceView, error) {
	d.checkLive("CreateShaderResourceView", tex)
	return d.alloc("srv"), nil
}

func (d *Device) CreateVertexShader(code []byte) (render.VertexShader, error) {
	if d.FailVertexCode != "" && string(code) == d.FailVertexCode {
		return nil, ErrInjected
	}
	return d.alloc("vs"), nil
}

func (d *Device) CreatePixelShader([]byte) (render.PixelShader, error) {
	return d.alloc("ps"), nil
}

func (d *Device) CreateInputLayout(_ []render.InputElement, vs render.VertexShader) (render.InputLayout, error) {
	d.checkLive("CreateInputLayout", vs)
	return d.alloc("layout"), nil
}

func (d *Device) Context() render.Context { return d.ctx }

func (d *Device) Release() {
	d.record("release device")
	d.released = true
}

// SwapChain is the fake swap chain.
type SwapChain struct {
	*res
	Width, Height int
}

func (s *SwapChain) ResizeBuffers(w, h int) error {
	s.dev.record("resize %dx%d", w, h)
	s.dev.checkLive("ResizeBuffers", s)
	if s.dev.FailResize {
		return fmt.Errorf("resize buffers: %w", ErrInjected)
	}
	s.Width, s.Height = w, h
	return nil
}

func (s *SwapChain) BackBuffer() (render.Texture2D, error) {
	return &Texture{res: s.dev.alloc("backbuffer"), desc: render.TextureDesc{
		Width: s.Width, Height: s.Height, Format: render.FormatRGBA8, Bind: render.BindRenderTarget,
	}}, nil
}

func (s *SwapChain) Present() error {
	s.dev.record("present")
	s.dev.checkLive("Present", s)
	s.dev.Presented++
	return nil
}

// Window is a fake render.Window whose size can be changed from tests.
type Window struct {
	W, H     int
	onResize []func(int, int)
}

func (w *Window) Handle() any            { return w }
func (w *Window) ClientSize() (int, int) { return w.W, w.H }

func (w *Window) AddResizeListener(fn func(int, int)) {
	w.onResize = append(w.onResize, fn)
}

// Resize changes the size and fires the callback like a window manager would.
func (w *Window) Resize(width, height int) {
	w.W, w.H = width, height
	for _, fn := range w.onResize {
		fn(width, height)
	}
}
