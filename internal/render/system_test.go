package render_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/emberforge/ember/internal/config"
	"github.com/emberforge/ember/internal/render"
	"github.com/emberforge/ember/internal/render/rendertest"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errMissing = errors.New("no such file")

type fakeLoaders struct {
	meshes   map[string]render.MeshData
	shaders  map[string]render.ShaderSource
	textures map[string]render.Image
	calls    map[string]int
}

func newFakeLoaders() *fakeLoaders {
	tri := render.MeshData{
		Vertices: []render.Vertex{
			{Position: mgl32.Vec3{0, 0, 0}},
			{Position: mgl32.Vec3{1, 0, 0}},
			{Position: mgl32.Vec3{0, 1, 0}},
		},
		Indices: []uint32{0, 1, 2},
	}
	quad := render.MeshData{
		Vertices: append(append([]render.Vertex(nil), tri.Vertices...), render.Vertex{Position: mgl32.Vec3{1, 1, 0}}),
		Indices:  []uint32{0, 1, 2, 2, 1, 3},
	}
	return &fakeLoaders{
		meshes: map[string]render.MeshData{"tri.obj": tri, "quad.obj": quad},
		shaders: map[string]render.ShaderSource{
			"lit.shader":    {Name: "lit", Vertex: []byte("transform"), Pixel: []byte("lambert")},
			"broken.shader": {Name: "broken", Vertex: []byte("garbage"), Pixel: []byte("lambert")},
		},
		textures: map[string]render.Image{"white.png": {Width: 1, Height: 1, Pix: []byte{255, 255, 255, 255}}},
		calls:    map[string]int{},
	}
}

func (f *fakeLoaders) LoadMesh(path string) (render.MeshData, error) {
	f.calls[path]++
	d, ok := f.meshes[path]
	if !ok {
		return render.MeshData{}, errMissing
	}
	return d, nil
}

func (f *fakeLoaders) LoadShader(path string) (render.ShaderSource, error) {
	f.calls[path]++
	s, ok := f.shaders[path]
	if !ok {
		return render.ShaderSource{}, errMissing
	}
	return s, nil
}

func (f *fakeLoaders) LoadTexture(path string) (render.Image, error) {
	f.calls[path]++
	img, ok := f.textures[path]
	if !ok {
		return render.Image{}, errMissing
	}
	return img, nil
}

type fixedCam struct{}

func (fixedCam) View() mgl32.Mat4       { return mgl32.Ident4() }
func (fixedCam) Projection() mgl32.Mat4 { return mgl32.Ident4() }
func (fixedCam) Position() mgl32.Vec3   { return mgl32.Vec3{} }

type fixture struct {
	dev     *rendertest.Device
	win     *rendertest.Window
	loaders *fakeLoaders
	rs      *render.RenderingSystem
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		dev:     rendertest.NewDevice(),
		win:     &rendertest.Window{W: 800, H: 600},
		loaders: newFakeLoaders(),
	}
	f.dev.FailVertexCode = "garbage"
	f.rs = render.NewRenderingSystem(f.dev, render.Loaders{
		Mesh: f.loaders, Shader: f.loaders, Texture: f.loaders,
	}, config.Default().Render, zap.NewNop())
	require.NoError(t, f.rs.Init(f.win))
	return f
}

func (f *fixture) material(t *testing.T) *render.Material {
	t.Helper()
	sh, err := f.rs.CreateShader("lit.shader")
	require.NoError(t, err)
	m, err := f.rs.CreateMaterial(sh, render.MaterialOptions{})
	require.NoError(t, err)
	return m
}

func TestInitSetsAspectAndViewport(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, render.StateInitialized, f.rs.State())
	assert.InDelta(t, 800.0/600.0, f.rs.AspectRatio(), 1e-6)
	assert.Equal(t, float32(800), f.rs.Viewport().Width)
	assert.ErrorIs(t, f.rs.Init(f.win), render.ErrAlreadyInit)
}

func TestInitFailureIsFatal(t *testing.T) {
	dev := rendertest.NewDevice()
	dev.FailSwapChain = true
	rs := render.NewRenderingSystem(dev, render.Loaders{}, config.Default().Render, zap.NewNop())
	err := rs.Init(&rendertest.Window{W: 10, H: 10})
	assert.ErrorIs(t, err, render.ErrDeviceInit)
	assert.Equal(t, render.StateUninitialized, rs.State())

	_, err = rs.CreateMesh("tri.obj")
	assert.ErrorIs(t, err, render.ErrNotInitialized)
}

func TestMeshCacheReturnsSameInstance(t *testing.T) {
	f := newFixture(t)
	a, err := f.rs.CreateMesh("tri.obj")
	require.NoError(t, err)
	b, err := f.rs.CreateMesh("tri.obj")
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, f.loaders.calls["tri.obj"])
	assert.Equal(t, 1, f.rs.CacheStats().Meshes)
}

func TestFailedLoadIsNotCached(t *testing.T) {
	f := newFixture(t)
	_, err := f.rs.CreateMesh("missing.obj")
	assert.ErrorIs(t, err, errMissing)
	_, err = f.rs.CreateMesh("missing.obj")
	assert.ErrorIs(t, err, errMissing)
	assert.Equal(t, 2, f.loaders.calls["missing.obj"], "each request retries the load")
	assert.Equal(t, 0, f.rs.CacheStats().Meshes)

	// the file shows up later and the next request succeeds
	f.loaders.meshes["missing.obj"] = f.loaders.meshes["tri.obj"]
	m, err := f.rs.CreateMesh("missing.obj")
	require.NoError(t, err)
	assert.Equal(t, 3, m.IndexCount())
}

func TestShaderBuildFailureIsNotCached(t *testing.T) {
	f := newFixture(t)
	_, err := f.rs.CreateShader("broken.shader")
	assert.ErrorIs(t, err, rendertest.ErrInjected)
	assert.Equal(t, 0, f.rs.CacheStats().Shaders)
}

func TestTextureCache(t *testing.T) {
	f := newFixture(t)
	a, err := f.rs.CreateTexture("white.png")
	require.NoError(t, err)
	b, err := f.rs.CreateTexture("white.png")
	require.NoError(t, err)
	assert.Same(t, a, b)

	f.loaders.textures["bad.png"] = render.Image{Width: 2, Height: 2, Pix: []byte{1}}
	_, err = f.rs.CreateTexture("bad.png")
	assert.ErrorIs(t, err, render.ErrInvalidResource)
}

func TestMaterialsAreNotDeduplicated(t *testing.T) {
	f := newFixture(t)
	a := f.material(t)
	b := f.material(t)
	assert.NotSame(t, a, b)
	assert.Equal(t, 2, f.rs.CacheStats().Materials)
	assert.Equal(t, 1, f.rs.CacheStats().Shaders)

	_, err := f.rs.CreateMaterial(nil, render.MaterialOptions{})
	assert.ErrorIs(t, err, render.ErrInvalidResource)

	sh, _ := f.rs.CreateShader("lit.shader")
	nan := float32(0)
	nan = nan / nan
	_, err = f.rs.CreateMaterial(sh, render.MaterialOptions{Color: mgl32.Vec4{nan, 0, 0, 1}})
	assert.ErrorIs(t, err, render.ErrInvalidResource)
	assert.Equal(t, 2, f.rs.CacheStats().Materials)
}

func TestDrawSceneInListOrder(t *testing.T) {
	f := newFixture(t)
	mat := f.material(t)
	tri, _ := f.rs.CreateMesh("tri.obj")
	quad, _ := f.rs.CreateMesh("quad.obj")

	g := render.NewSceneGraph()
	g.CreateRenderable(quad, mat, mgl32.Ident4())
	g.CreateRenderable(tri, mat, mgl32.Ident4())
	g.CreateRenderable(nil, mat, mgl32.Ident4())
	g.CreateRenderable(quad, mat, mgl32.Translate3D(1, 0, 0))

	require.NoError(t, f.rs.DrawScene(fixedCam{}, g))

	require.Len(t, f.dev.Draws, 3)
	assert.Equal(t, []int{6, 3, 6}, []int{
		f.dev.Draws[0].IndexCount, f.dev.Draws[1].IndexCount, f.dev.Draws[2].IndexCount,
	})
	for _, d := range f.dev.Draws {
		assert.Equal(t, render.VertexStride, d.Stride)
	}
	assert.Equal(t, 1, f.dev.Presented)
	assert.Equal(t, 1, f.rs.LastFrame().Skipped)
	assert.Empty(t, f.dev.Violations)
}

func TestEmptySceneStillPresents(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.rs.DrawScene(fixedCam{}, render.NewSceneGraph()))
	assert.Empty(t, f.dev.Draws)
	assert.Equal(t, 1, f.dev.Presented)
	assert.Contains(t, f.dev.Calls, "clear rtv")
}

func TestFrameConstantsSkipIdenticalUpload(t *testing.T) {
	dev := rendertest.NewDevice()
	cb, err := render.NewConstantBuffer(dev, render.ObjectConstantsSize)
	require.NoError(t, err)
	data := render.ObjectConstants{World: mgl32.Ident4(), Color: mgl32.Vec4{1, 1, 1, 1}}.Encode()

	assert.True(t, cb.Upload(dev.Context(), data))
	assert.False(t, cb.Upload(dev.Context(), data))
	data[0] ^= 0xff
	assert.True(t, cb.Upload(dev.Context(), data))
	assert.Equal(t, 2, dev.Uploads)
}

func TestResizeRebuildsTargets(t *testing.T) {
	f := newFixture(t)
	mat := f.material(t)
	tri, _ := f.rs.CreateMesh("tri.obj")
	g := render.NewSceneGraph()
	g.CreateRenderable(tri, mat, mgl32.Ident4())

	require.NoError(t, f.rs.DrawScene(fixedCam{}, g))
	f.win.Resize(1024, 512)
	assert.InDelta(t, 2.0, f.rs.AspectRatio(), 1e-6)
	require.NoError(t, f.rs.DrawScene(fixedCam{}, g))

	f.win.Resize(0, 0)
	w, h := f.rs.Size()
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, h)
	require.NoError(t, f.rs.DrawScene(fixedCam{}, g))

	assert.Empty(t, f.dev.Violations, "no draw may touch a released target")
	assert.Contains(t, f.dev.Calls, "resize 1024x512")
}

func TestFailedResizeStopsDrawing(t *testing.T) {
	f := newFixture(t)
	g := render.NewSceneGraph()
	require.NoError(t, f.rs.DrawScene(fixedCam{}, g))
	presented := f.dev.Presented

	f.dev.FailResize = true
	assert.ErrorIs(t, f.rs.OnResize(640, 480), rendertest.ErrInjected)
	assert.ErrorIs(t, f.rs.DrawScene(fixedCam{}, g), render.ErrNotInitialized)
	assert.Equal(t, presented, f.dev.Presented, "no stale back buffer presented")

	f.dev.FailResize = false
	require.NoError(t, f.rs.OnResize(640, 480))
	require.NoError(t, f.rs.DrawScene(fixedCam{}, g))
	assert.Equal(t, presented+1, f.dev.Presented)
	assert.Empty(t, f.dev.Violations)
}

func TestSkyboxDrawsFirstWithoutDepthWrite(t *testing.T) {
	f := newFixture(t)
	mat := f.material(t)
	quad, _ := f.rs.CreateMesh("quad.obj")
	tri, _ := f.rs.CreateMesh("tri.obj")
	f.rs.SetSkybox(&render.Skybox{Mesh: quad, Material: mat})

	g := render.NewSceneGraph()
	g.CreateRenderable(tri, mat, mgl32.Ident4())
	require.NoError(t, f.rs.DrawScene(fixedCam{}, g))

	require.Len(t, f.dev.Draws, 2)
	assert.False(t, f.dev.Draws[0].DepthWrite)
	assert.Equal(t, 6, f.dev.Draws[0].IndexCount)
	assert.True(t, f.dev.Draws[1].DepthWrite)
}

func TestCloseReleasesEverything(t *testing.T) {
	f := newFixture(t)
	f.material(t)
	_, _ = f.rs.CreateMesh("tri.obj")
	_, _ = f.rs.CreateTexture("white.png")

	f.rs.Close()
	assert.Equal(t, render.StateDestroyed, f.rs.State())
	assert.Equal(t, 0, f.dev.Live())
	assert.True(t, f.dev.Released())
	assert.Empty(t, f.dev.Violations)

	n := len(f.dev.Calls)
	require.GreaterOrEqual(t, n, 3)
	assert.Equal(t, []string{"clear state", "release context", "release device"}, f.dev.Calls[n-3:])

	// targets go after the cached resources
	lastMeshRelease, firstTargetRelease := -1, -1
	for i, c := range f.dev.Calls {
		if strings.HasPrefix(c, "release layout") || strings.HasPrefix(c, "release srv") {
			lastMeshRelease = i
		}
		if strings.HasPrefix(c, "release rtv") && firstTargetRelease < 0 && i > lastMeshRelease && lastMeshRelease >= 0 {
			firstTargetRelease = i
		}
	}
	assert.Greater(t, firstTargetRelease, lastMeshRelease)

	f.rs.Close()
	assert.Empty(t, f.dev.Violations, "second close is a no-op")
	assert.ErrorIs(t, f.rs.DrawScene(fixedCam{}, render.NewSceneGraph()), render.ErrClosed)
	_, err := f.rs.CreateMesh("tri.obj")
	assert.ErrorIs(t, err, render.ErrClosed)
}
