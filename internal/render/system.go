package render

import (
	"errors"
	"fmt"
	"time"

	"github.com/emberforge/ember/internal/config"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

var (
	ErrDeviceInit     = errors.New("device initialisation failed")
	ErrNotInitialized = errors.New("rendering system not initialised")
	ErrAlreadyInit    = errors.New("rendering system already initialised")
	ErrClosed         = errors.New("rendering system closed")
)

// State is the lifecycle of a RenderingSystem.
type State int

const (
	StateUninitialized State = iota
	StateInitialized
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateDestroyed:
		return "destroyed"
	}
	return "uninitialized"
}

// CacheStats counts cached and owned resources.
type CacheStats struct {
	Meshes, Shaders, Textures, Materials int
}

// FrameStats describes the last DrawScene call.
type FrameStats struct {
	DrawCalls int
	Skipped   int
	Frame     uint64
}

// Skybox is drawn before the scene, centred on the camera, without
// writing depth.
type Skybox struct {
	Mesh     *Mesh
	Material *Material
}

// RenderingSystem owns the device, swap chain, render targets and every
// resource created through it. Meshes, shaders and textures are cached by
// path; materials are always new. Not safe for concurrent use.
type RenderingSystem struct {
	dev     Device
	ctx     Context
	loaders Loaders
	cfg     config.RenderConfig
	log     *zap.Logger

	state    State
	swap     SwapChain
	rtv      RenderTargetView
	depth    Texture2D
	dsv      DepthStencilView
	viewport Viewport
	aspect   float32
	width    int
	height   int

	frameCB *ConstantBuffer
	start   time.Time

	meshes    map[string]*Mesh
	shaders   map[string]*Shader
	textures  map[string]*Texture
	materials []*Material
	skybox    *Skybox

	stats FrameStats
}

func NewRenderingSystem(dev Device, loaders Loaders, cfg config.RenderConfig, log *zap.Logger) *RenderingSystem {
	return &RenderingSystem{
		dev:      dev,
		loaders:  loaders,
		cfg:      cfg,
		log:      log,
		meshes:   make(map[string]*Mesh),
		shaders:  make(map[string]*Shader),
		textures: make(map[string]*Texture),
	}
}

func (r *RenderingSystem) State() State          { return r.state }
func (r *RenderingSystem) AspectRatio() float32  { return r.aspect }
func (r *RenderingSystem) Viewport() Viewport    { return r.viewport }
func (r *RenderingSystem) Size() (int, int)      { return r.width, r.height }
func (r *RenderingSystem) LastFrame() FrameStats { return r.stats }

func (r *RenderingSystem) CacheStats() CacheStats {
	return CacheStats{
		Meshes:    len(r.meshes),
		Shaders:   len(r.shaders),
		Textures:  len(r.textures),
		Materials: len(r.materials),
	}
}

func (r *RenderingSystem) ready() error {
	switch r.state {
	case StateUninitialized:
		return ErrNotInitialized
	case StateDestroyed:
		return ErrClosed
	}
	return nil
}

// Init creates the swap chain for win, builds the render targets and hooks
// the window's resize notifications.
func (r *RenderingSystem) Init(win Window) error {
	switch r.state {
	case StateInitialized:
		return ErrAlreadyInit
	case StateDestroyed:
		return ErrClosed
	}
	w, h := win.ClientSize()
	w, h = max(w, 1), max(h, 1)

	swap, err := r.dev.CreateSwapChain(win, w, h)
	if err != nil {
		return fmt.Errorf("create swap chain: %w: %w", ErrDeviceInit, err)
	}
	r.swap = swap
	r.ctx = r.dev.Context()

	r.frameCB, err = NewConstantBuffer(r.dev, FrameConstantsSize)
	if err != nil {
		return fmt.Errorf("create frame constants: %w: %w", ErrDeviceInit, err)
	}
	if err := r.resize(w, h); err != nil {
		return fmt.Errorf("initial render targets: %w: %w", ErrDeviceInit, err)
	}

	r.state = StateInitialized
	r.start = time.Now()
	win.AddResizeListener(func(w, h int) {
		if err := r.OnResize(w, h); err != nil {
			r.log.Error("resize failed", zap.Int("width", w), zap.Int("height", h), zap.Error(err))
		}
	})
	r.log.Info("rendering system initialised", zap.Int("width", w), zap.Int("height", h))
	return nil
}

// OnResize rebuilds the size-dependent targets. Sizes below one are clamped.
func (r *RenderingSystem) OnResize(width, height int) error {
	if err := r.ready(); err != nil {
		return err
	}
	return r.resize(max(width, 1), max(height, 1))
}

func (r *RenderingSystem) resize(w, h int) error {
	r.ctx.SetRenderTargets(nil, nil)
	r.releaseTargets()

	if err := r.swap.ResizeBuffers(w, h); err != nil {
		return fmt.Errorf("resize buffers: %w", err)
	}
	back, err := r.swap.BackBuffer()
	if err != nil {
		return fmt.Errorf("back buffer: %w", err)
	}
	r.rtv, err = r.dev.CreateRenderTargetView(back)
	back.Release()
	if err != nil {
		return fmt.Errorf("render target view: %w", err)
	}

	r.depth, err = r.dev.CreateTexture2D(TextureDesc{
		Width: w, Height: h, Format: FormatDepth32F, Bind: BindDepthStencil,
	}, nil)
	if err != nil {
		return fmt.Errorf("depth buffer: %w", err)
	}
	r.dsv, err = r.dev.CreateDepthStencilView(r.depth)
	if err != nil {
		return fmt.Errorf("depth stencil view: %w", err)
	}

	r.ctx.SetRenderTargets(r.rtv, r.dsv)
	r.viewport = Viewport{Width: float32(w), Height: float32(h), MaxDepth: 1}
	r.ctx.SetViewport(r.viewport)
	r.width, r.height = w, h
	r.aspect = float32(w) / float32(h)
	r.log.Debug("render targets rebuilt", zap.Int("width", w), zap.Int("height", h))
	return nil
}

func (r *RenderingSystem) releaseTargets() {
	if r.rtv != nil {
		r.rtv.Release()
		r.rtv = nil
	}
	if r.dsv != nil {
		r.dsv.Release()
		r.dsv = nil
	}
	if r.depth != nil {
		r.depth.Release()
		r.depth = nil
	}
}

// CreateMesh returns the cached mesh for path, loading it on first request.
// A failed load is not cached.
func (r *RenderingSystem) CreateMesh(path string) (*Mesh, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	if m, ok := r.meshes[path]; ok {
		return m, nil
	}
	data, err := r.loaders.Mesh.LoadMesh(path)
	if err != nil {
		r.log.Warn("mesh load failed", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("load mesh %s: %w", path, err)
	}
	m, err := newMesh(r.dev, path, data)
	if err != nil {
		r.log.Warn("mesh build failed", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	r.meshes[path] = m
	r.log.Debug("mesh cached", zap.String("path", path), zap.Int("indices", m.indexCount))
	return m, nil
}

// CreateShader returns the cached shader for path, loading it on first request.
func (r *RenderingSystem) CreateShader(path string) (*Shader, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	if s, ok := r.shaders[path]; ok {
		return s, nil
	}
	src, err := r.loaders.Shader.LoadShader(path)
	if err != nil {
		r.log.Warn("shader load failed", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("load shader %s: %w", path, err)
	}
	s, err := newShader(r.dev, path, src)
	if err != nil {
		r.log.Warn("shader build failed", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	r.shaders[path] = s
	r.log.Debug("shader cached", zap.String("path", path), zap.String("name", src.Name))
	return s, nil
}

// CreateTexture returns the cached texture for path, loading it on first request.
func (r *RenderingSystem) CreateTexture(path string) (*Texture, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	if t, ok := r.textures[path]; ok {
		return t, nil
	}
	img, err := r.loaders.Texture.LoadTexture(path)
	if err != nil {
		r.log.Warn("texture load failed", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("load texture %s: %w", path, err)
	}
	t, err := newTexture(r.dev, path, img)
	if err != nil {
		r.log.Warn("texture build failed", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	r.textures[path] = t
	r.log.Debug("texture cached", zap.String("path", path), zap.Int("width", img.Width), zap.Int("height", img.Height))
	return t, nil
}

// CreateMaterial always builds a new material. Invalid materials are
// released and reported as ErrInvalidResource.
func (r *RenderingSystem) CreateMaterial(shader *Shader, opts MaterialOptions) (*Material, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	if shader == nil {
		return nil, fmt.Errorf("material without shader: %w", ErrInvalidResource)
	}
	m, err := newMaterial(r.dev, shader, opts)
	if err != nil {
		return nil, fmt.Errorf("material constants: %w", err)
	}
	if !m.Valid() {
		m.Release()
		return nil, fmt.Errorf("material for %s: %w", shader.path, ErrInvalidResource)
	}
	r.materials = append(r.materials, m)
	return m, nil
}

// SetSkybox installs (or with nil, removes) the skybox.
func (r *RenderingSystem) SetSkybox(sb *Skybox) { r.skybox = sb }
func (r *RenderingSystem) Skybox() *Skybox      { return r.skybox }

// DrawScene clears the targets, uploads the frame constants, draws the
// skybox and then every renderable in list order, and presents once.
func (r *RenderingSystem) DrawScene(cam Camera, graph *SceneGraph) error {
	if err := r.ready(); err != nil {
		return err
	}
	if r.rtv == nil || r.dsv == nil {
		return fmt.Errorf("render targets missing after failed resize: %w", ErrNotInitialized)
	}
	ctx := r.ctx
	r.stats = FrameStats{Frame: r.stats.Frame + 1}

	ctx.SetRenderTargets(r.rtv, r.dsv)
	ctx.SetViewport(r.viewport)
	ctx.ClearRenderTarget(r.rtv, r.cfg.ClearColor)
	ctx.ClearDepthStencil(r.dsv, 1)

	r.frameCB.Upload(ctx, FrameConstants{
		View:       cam.View(),
		Projection: cam.Projection(),
		CameraPos:  cam.Position(),
		Time:       float32(time.Since(r.start).Seconds()),
	}.Encode())
	ctx.SetConstantBuffer(StageVertex, SlotFrame, r.frameCB.Buffer())
	ctx.SetConstantBuffer(StagePixel, SlotFrame, r.frameCB.Buffer())
	ctx.SetTopology(TopologyTriangleList)

	if sb := r.skybox; sb != nil && sb.Mesh != nil && sb.Material != nil {
		p := cam.Position()
		ctx.SetDepthWrite(false)
		r.draw(sb.Mesh, sb.Material, mgl32.Translate3D(p.X(), p.Y(), p.Z()))
		ctx.SetDepthWrite(true)
	}

	for _, item := range graph.Renderables() {
		if item.Mesh == nil || item.Material == nil {
			r.stats.Skipped++
			continue
		}
		r.draw(item.Mesh, item.Material, item.World)
	}

	if err := r.swap.Present(); err != nil {
		return fmt.Errorf("present: %w", err)
	}
	return nil
}

func (r *RenderingSystem) draw(mesh *Mesh, mat *Material, world mgl32.Mat4) {
	mat.apply(r.ctx, world)
	r.ctx.SetVertexBuffer(mesh.vb, mesh.stride, 0)
	r.ctx.SetIndexBuffer(mesh.ib, 0)
	r.ctx.DrawIndexed(mesh.indexCount, 0, 0)
	r.stats.DrawCalls++
}

// Close releases everything the system created, newest kinds first, then
// the targets, swap chain, context and device. Calling it again is a no-op.
func (r *RenderingSystem) Close() {
	if r.state == StateDestroyed {
		return
	}
	for i := len(r.materials) - 1; i >= 0; i-- {
		r.materials[i].Release()
	}
	r.materials = nil
	for _, t := range r.textures {
		t.Release()
	}
	for _, s := range r.shaders {
		s.Release()
	}
	for _, m := range r.meshes {
		m.Release()
	}
	clear(r.textures)
	clear(r.shaders)
	clear(r.meshes)
	r.skybox = nil

	if r.frameCB != nil {
		r.frameCB.Release()
		r.frameCB = nil
	}
	if r.rtv != nil {
		r.rtv.Release()
		r.rtv = nil
	}
	if r.dsv != nil {
		r.dsv.Release()
		r.dsv = nil
	}
	if r.swap != nil {
		r.swap.Release()
		r.swap = nil
	}
	if r.depth != nil {
		r.depth.Release()
		r.depth = nil
	}
	if r.ctx != nil {
		r.ctx.ClearState()
		r.ctx.Release()
		r.ctx = nil
	}
	r.dev.Release()
	r.state = StateDestroyed
	r.log.Info("rendering system closed")
}
