package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/emberforge/ember/internal/asset"
	"github.com/emberforge/ember/internal/camera"
	"github.com/emberforge/ember/internal/config"
	"github.com/emberforge/ember/internal/core/ecs"
	"github.com/emberforge/ember/internal/core/event"
	"github.com/emberforge/ember/internal/editor"
	"github.com/emberforge/ember/internal/physics"
	"github.com/emberforge/ember/internal/platform"
	"github.com/emberforge/ember/internal/render"
	"github.com/emberforge/ember/internal/render/rendertest"
	"github.com/emberforge/ember/internal/scene"
	"github.com/emberforge/ember/internal/scripting"
	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const arena = `
name: arena
camera:
  position: [0, 0, -5]
entities:
  - name: mover
    mesh: builtin:cube
    shader: builtin:lit
    body:
      velocity: [1, 0, 0]
  - name: still
    mesh: builtin:quad
    shader: builtin:unlit
    position: [10, 0, 0]
`

type rig struct {
	eng  *Engine
	dev  *rendertest.Device
	term *platform.Terminal
}

func newRig(t *testing.T) *rig {
	t.Helper()
	cfg := config.Default()
	cfg.Editor.SavePath = filepath.Join(t.TempDir(), "saved.yaml")
	log := zap.NewNop()

	screen := tcell.NewSimulationScreen("UTF-8")
	term, err := platform.NewTerminal(screen, cfg.Render, log)
	require.NoError(t, err)
	screen.SetSize(16, 8)
	t.Cleanup(term.Close)

	dev := rendertest.NewDevice()
	rs := render.NewRenderingSystem(dev, asset.NewLoader("", log).Loaders(), cfg.Render, log)
	require.NoError(t, rs.Init(term))

	world := ecs.NewWorld(ecs.PoolConfig{InitialCapacity: 4, Growth: 4}, log)
	bus := event.NewBus()
	sc := scene.New("arena", world, bus, log)
	cam := camera.New(cfg.Camera, rs.AspectRatio())
	eng := New(cfg, Parts{
		World:    world,
		Bus:      bus,
		Scene:    sc,
		Graph:    render.NewSceneGraph(),
		Renderer: rs,
		Window:   term,
		Camera:   cam,
		Editor:   editor.New(sc, bus, cfg.Editor, log),
	}, log)
	t.Cleanup(eng.Close)

	path := filepath.Join(t.TempDir(), "arena.yaml")
	require.NoError(t, os.WriteFile(path, []byte(arena), 0o644))
	require.NoError(t, eng.LoadScene(path))
	return &rig{eng: eng, dev: dev, term: term}
}

func (r *rig) mover(t *testing.T) *scene.Entity {
	e, ok := r.eng.Scene().FindByName("mover")
	require.True(t, ok)
	return e
}

func TestFrameRunsAllPhases(t *testing.T) {
	r := newRig(t)
	assert.Equal(t, float32(-5), r.eng.Camera().Position().Z(), "scene camera applied")
	assert.Equal(t, 8, r.eng.Runner().Len())

	r.eng.Frame(500 * time.Millisecond)
	assert.InDelta(t, 0.5, r.mover(t).Transform.Position.X(), 1e-5)
	assert.Equal(t, 1, r.dev.Presented)
	assert.Equal(t, uint64(1), r.eng.Frames())
	assert.Empty(t, r.dev.Violations)
}

func TestPauseFreezesSimulation(t *testing.T) {
	r := newRig(t)
	require.True(t, r.term.Post(tcell.NewEventKey(tcell.KeyRune, 'p', tcell.ModNone)))
	r.eng.Frame(0)
	assert.True(t, r.eng.Paused())

	before := r.mover(t).Transform.Position
	r.eng.Frame(time.Second)
	assert.Equal(t, before, r.mover(t).Transform.Position)
	assert.Equal(t, 2, r.dev.Presented, "paused frames still draw")
}

func TestQuitStopsRun(t *testing.T) {
	r := newRig(t)
	require.True(t, r.term.Post(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, r.eng.Run(ctx))
	assert.NoError(t, ctx.Err(), "returned because of quit, not the timeout")
}

func TestRunStopsOnCancel(t *testing.T) {
	r := newRig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, r.eng.Run(ctx))
}

func TestCollisionsReachTheBus(t *testing.T) {
	r := newRig(t)
	still, _ := r.eng.Scene().FindByName("still")
	_, err := ecs.Add(r.eng.Scene().Components(), still.ID(),
		physics.NewRigidBody(&still.Transform, still.Mesh.Bounds()))
	require.NoError(t, err)

	var hits int
	event.Subscribe(r.eng.bus, func(event.Collision) { hits++ })
	r.eng.Frame(0)
	assert.Zero(t, hits)

	still.Transform.Position = r.mover(t).Transform.Position
	r.eng.Frame(0)
	assert.Equal(t, 1, hits)
}

func TestLoadSnapshotWithoutStore(t *testing.T) {
	r := newRig(t)
	assert.ErrorContains(t, r.eng.LoadSnapshot(context.Background(), [16]byte{1}), "no database")
	assert.Error(t, r.eng.LoadScene(filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestDemoSceneRuns(t *testing.T) {
	cfg := config.Default()
	cfg.Physics.Seed = 7
	log := zap.NewNop()
	assets := filepath.Join("..", "..", "assets")

	screen := tcell.NewSimulationScreen("UTF-8")
	term, err := platform.NewTerminal(screen, cfg.Render, log)
	require.NoError(t, err)
	screen.SetSize(40, 20)
	t.Cleanup(term.Close)

	dev := rendertest.NewDevice()
	rs := render.NewRenderingSystem(dev, asset.NewLoader(assets, log).Loaders(), cfg.Render, log)
	require.NoError(t, rs.Init(term))

	world := ecs.NewWorld(ecs.PoolConfig{InitialCapacity: 8, Growth: 8}, log)
	bus := event.NewBus()
	sc := scene.New("demo", world, bus, log)
	scripts, err := scripting.NewEngine(filepath.Join(assets, "scripts"), world.Components(), bus, log)
	require.NoError(t, err)
	eng := New(cfg, Parts{
		World:    world,
		Bus:      bus,
		Scene:    sc,
		Graph:    render.NewSceneGraph(),
		Renderer: rs,
		Window:   term,
		Camera:   camera.New(cfg.Camera, rs.AspectRatio()),
		Scripts:  scripts,
	}, log)
	t.Cleanup(eng.Close)

	require.NoError(t, eng.LoadScene(filepath.Join(assets, "scenes", "demo.yaml")))
	assert.Equal(t, 6, sc.Len())
	for _, e := range sc.AllEntities() {
		assert.True(t, e.Renderable(), e.Name)
	}

	spinner, ok := sc.FindByName("spinner")
	require.True(t, ok)
	yaw := spinner.Transform.Rotation.Y()
	for i := 0; i < 10; i++ {
		eng.Frame(33 * time.Millisecond)
	}
	assert.NotEqual(t, yaw, spinner.Transform.Rotation.Y(), "spinner script ran")
	for _, e := range sc.AllEntities() {
		if s, err := ecs.Get[scripting.Script](world.Components(), e.ID()); err == nil {
			assert.False(t, s.Disabled(), e.Name)
		}
	}
	assert.Equal(t, 10, dev.Presented)
	assert.Empty(t, dev.Violations)
}
