// Package soft is a CPU rasterizer behind the render.Device interface. It
// draws into a float RGBA back buffer and hands finished frames to a
// Presenter, which is how the terminal window shows them.
package soft

import (
	"errors"
	"fmt"

	"github.com/emberforge/ember/internal/render"
	"go.uber.org/zap"
)

var (
	ErrReleased     = errors.New("resource already released")
	ErrNoPresenter  = errors.New("window handle is not a presenter")
	ErrUnknownShade = errors.New("unknown shader program")
	ErrBadSize      = errors.New("invalid resource size")
)

// Presenter receives finished frames. pix holds width*height RGBA floats
// in row-major order.
type Presenter interface {
	Present(width, height int, pix []float32) error
}

// Device implements render.Device.
type Device struct {
	log      *zap.Logger
	ctx      *Context
	live     int
	released bool
}

func NewDevice(log *zap.Logger) *Device {
	d := &Device{log: log}
	d.ctx = newContext(d)
	return d
}

// Live reports how many resources are still allocated.
func (d *Device) Live() int { return d.live }

type resource struct {
	dev      *Device
	refs     int
	released bool
}

func (d *Device) newResource() resource {
	d.live++
	return resource{dev: d, refs: 1}
}

func (r *resource) addRef() { r.refs++ }

func (r *resource) Release() {
	if r.released {
		return
	}
	r.refs--
	if r.refs <= 0 {
		r.released = true
		r.dev.live--
	}
}

type buffer struct {
	resource
	desc render.BufferDesc
	data []byte
}

func (b *buffer) Desc() render.BufferDesc { return b.desc }

type texture struct {
	resource
	desc render.TextureDesc
	// colour targets and sampled images use pix (RGBA), depth targets use depth
	pix   []float32
	depth []float32
}

func (t *texture) Desc() render.TextureDesc { return t.desc }

type view struct {
	resource
	tex *texture
}

func (v *view) Release() {
	if v.released {
		return
	}
	v.resource.Release()
	if v.released {
		v.tex.Release()
	}
}

type vertexShader struct {
	resource
	program string
}

type pixelShader struct {
	resource
	program string
}

type inputLayout struct {
	resource
	elems []render.InputElement
}

var (
	vertexPrograms = map[string]bool{"transform": true}
	pixelPrograms  = map[string]bool{"unlit": true, "lambert": true, "textured": true, "sky": true}
)

func (d *Device) CreateSwapChain(win render.Window, w, h int) (render.SwapChain, error) {
	p, ok := win.Handle().(Presenter)
	if !ok {
		return nil, ErrNoPresenter
	}
	sc := &swapChain{resource: d.newResource(), presenter: p}
	if err := sc.ResizeBuffers(w, h); err != nil {
		return nil, err
	}
	return sc, nil
}

func (d *Device) CreateBuffer(desc render.BufferDesc, initial []byte) (render.Buffer, error) {
	if desc.Size <= 0 {
		return nil, fmt.Errorf("buffer of %d bytes: %w", desc.Size, ErrBadSize)
	}
	b := &buffer{resource: d.newResource(), desc: desc, data: make([]byte, desc.Size)}
	copy(b.data, initial)
	return b, nil
}

func (d *Device) newTexture(desc render.TextureDesc) (*texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("texture %dx%d: %w", desc.Width, desc.Height, ErrBadSize)
	}
	t := &texture{resource: d.newResource(), desc: desc}
	n := desc.Width * desc.Height
	if desc.Format == render.FormatDepth32F {
		t.depth = make([]float32, n)
	} else {
		t.pix = make([]float32, n*4)
	}
	return t, nil
}

func (d *Device) CreateTexture2D(desc render.TextureDesc, pixels []byte) (render.Texture2D, error) {
	t, err := d.newTexture(desc)
	if err != nil {
		return nil, err
	}
	if pixels != nil && t.pix != nil {
		if len(pixels) != len(t.pix) {
			t.Release()
			return nil, fmt.Errorf("%d bytes for %dx%d texture: %w", len(pixels), desc.Width, desc.Height, ErrBadSize)
		}
		for i, p := range pixels {
			t.pix[i] = float32(p) / 255
		}
	}
	return t, nil
}

func (d *Device) newView(tex render.Texture2D) (*view, error) {
	t, ok := tex.(*texture)
	if !ok || t.released {
		return nil, ErrReleased
	}
	t.addRef()
	return &view{resource: d.newResource(), tex: t}, nil
}

func (d *Device) CreateRenderTargetView(tex render.Texture2D) (render.RenderTargetView, error) {
	return d.newView(tex)
}

func (d *Device) CreateDepthStencilView(tex render.Texture2D) (render.DepthStencilView, error) {
	return d.newView(tex)
}

func (d *Device) CreateShaderResourceView(tex render.Texture2D) (render.ShaderResourceView, error) {
	return d.newView(tex)
}

func (d *Device) CreateVertexShader(code []byte) (render.VertexShader, error) {
	if !vertexPrograms[string(code)] {
		return nil, fmt.Errorf("vertex program %q: %w", code, ErrUnknownShade)
	}
	return &vertexShader{resource: d.newResource(), program: string(code)}, nil
}

func (d *Device) CreatePixelShader(code []byte) (render.PixelShader, error) {
	if !pixelPrograms[string(code)] {
		return nil, fmt.Errorf("pixel program %q: %w", code, ErrUnknownShade)
	}
	return &pixelShader{resource: d.newResource(), program: string(code)}, nil
}

func (d *Device) CreateInputLayout(elems []render.InputElement, vs render.VertexShader) (render.InputLayout, error) {
	if _, ok := vs.(*vertexShader); !ok {
		return nil, fmt.Errorf("input layout: %w", ErrReleased)
	}
	for _, e := range elems {
		if e.Offset+e.Size*4 > render.VertexStride {
			return nil, fmt.Errorf("element %s past vertex end: %w", e.Semantic, ErrBadSize)
		}
	}
	return &inputLayout{resource: d.newResource(), elems: elems}, nil
}

func (d *Device) Context() render.Context { return d.ctx }

func (d *Device) Release() {
	if d.released {
		return
	}
	d.released = true
	if d.live > 0 {
		d.log.Warn("device released with live resources", zap.Int("live", d.live))
	}
}

type swapChain struct {
	resource
	presenter Presenter
	back      *texture
}

func (s *swapChain) ResizeBuffers(w, h int) error {
	if s.back != nil {
		s.back.Release()
	}
	t, err := s.dev.newTexture(render.TextureDesc{
		Width: w, Height: h, Format: render.FormatRGBA32F, Bind: render.BindRenderTarget,
	})
	if err != nil {
		return err
	}
	s.back = t
	return nil
}

func (s *swapChain) BackBuffer() (render.Texture2D, error) {
	if s.back == nil || s.back.released {
		return nil, ErrReleased
	}
	s.back.addRef()
	return s.back, nil
}

func (s *swapChain) Present() error {
	if s.released {
		return ErrReleased
	}
	return s.presenter.Present(s.back.desc.Width, s.back.desc.Height, s.back.pix)
}

func (s *swapChain) Release() {
	if s.released {
		return
	}
	if s.back != nil {
		s.back.Release()
		s.back = nil
	}
	s.resource.Release()
}
