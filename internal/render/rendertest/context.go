package rendertest

import "github.com/emberforge/ember/internal/render"

// Context is the fake device context. It tracks bound state so draws can
// be checked against released resources.
type Context struct {
	dev *Device

	rtv        render.RenderTargetView
	dsv        render.DepthStencilView
	vb         render.Buffer
	ib         render.Buffer
	stride     int
	vs         render.VertexShader
	ps         render.PixelShader
	layout     render.InputLayout
	depthWrite bool
	Viewport   render.Viewport
}

func (c *Context) ClearRenderTarget(rtv render.RenderTargetView, _ [4]float32) {
	c.dev.record("clear rtv")
	c.dev.checkLive("ClearRenderTarget", rtv)
}

func (c *Context) ClearDepthStencil(dsv render.DepthStencilView, _ float32) {
	c.dev.record("clear dsv")
	c.dev.checkLive("ClearDepthStencil", dsv)
}

func (c *Context) SetRenderTargets(rtv render.RenderTargetView, dsv render.DepthStencilView) {
	c.dev.checkLive("SetRenderTargets", rtv)
	c.dev.checkLive("SetRenderTargets", dsv)
	c.rtv, c.dsv = rtv, dsv
}

func (c *Context) SetViewport(vp render.Viewport)         { c.Viewport = vp }
func (c *Context) SetTopology(render.Topology)            {}
func (c *Context) SetInputLayout(l render.InputLayout)    { c.layout = l }
func (c *Context) SetVertexShader(vs render.VertexShader) { c.vs = vs }
func (c *Context) SetPixelShader(ps render.PixelShader)   { c.ps = ps }
func (c *Context) SetDepthWrite(enabled bool)             { c.depthWrite = enabled }

func (c *Context) SetVertexBuffer(buf render.Buffer, stride, _ int) {
	c.vb, c.stride = buf, stride
}

func (c *Context) SetIndexBuffer(buf render.Buffer, _ int) { c.ib = buf }

func (c *Context) SetConstantBuffer(_ render.Stage, _ int, buf render.Buffer) {
	c.dev.checkLive("SetConstantBuffer", buf)
}

func (c *Context) SetShaderResource(_ int, srv render.ShaderResourceView) {
	c.dev.checkLive("SetShaderResource", srv)
}

func (c *Context) UpdateBuffer(buf render.Buffer, data []byte) {
	c.dev.checkLive("UpdateBuffer", buf)
	if b, ok := buf.(*Buffer); ok {
		b.Data = append(b.Data[:0], data...)
	}
	c.dev.Uploads++
}

func (c *Context) DrawIndexed(count, _, _ int) {
	for _, r := range []render.Resource{c.rtv, c.dsv, c.vb, c.ib, c.vs, c.ps, c.layout} {
		c.dev.checkLive("DrawIndexed", r)
	}
	d := Draw{IndexCount: count, Stride: c.stride, DepthWrite: c.depthWrite}
	if b, ok := c.vb.(*Buffer); ok {
		d.VertexBuffer = b.id
	}
	if b, ok := c.ib.(*Buffer); ok {
		d.IndexBuffer = b.id
	}
	c.dev.Draws = append(c.dev.Draws, d)
	c.dev.record("draw %d", count)
}

func (c *Context) ClearState() {
	c.dev.record("clear state")
	*c = Context{dev: c.dev, depthWrite: true}
}

func (c *Context) Release() { c.dev.record("release context") }
