// Package engine owns the running game: the scene, its systems and the
// frame loop that steps them.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/emberforge/ember/internal/camera"
	"github.com/emberforge/ember/internal/config"
	"github.com/emberforge/ember/internal/core/ecs"
	"github.com/emberforge/ember/internal/core/event"
	coresys "github.com/emberforge/ember/internal/core/system"
	"github.com/emberforge/ember/internal/data"
	"github.com/emberforge/ember/internal/editor"
	"github.com/emberforge/ember/internal/persist"
	"github.com/emberforge/ember/internal/platform"
	"github.com/emberforge/ember/internal/render"
	"github.com/emberforge/ember/internal/scene"
	"github.com/emberforge/ember/internal/scripting"
	"github.com/emberforge/ember/internal/system"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// pausedPhases keep the window, the editor and drawing alive while the
// simulation is paused.
var pausedPhases = []coresys.Phase{
	coresys.PhaseInput,
	coresys.PhaseEditor,
	coresys.PhaseScene,
	coresys.PhaseRender,
	coresys.PhaseCleanup,
}

// Window is the platform side the engine drives.
type Window interface {
	system.EventPump
	render.Window
	AddOverlay(o platform.Overlay)
	PollEvents(ctx context.Context) error
	Close()
}

// Engine is the explicit context object holding every subsystem of a run.
type Engine struct {
	cfg      *config.Config
	world    *ecs.World
	bus      *event.Bus
	scene    *scene.Scene
	graph    *render.SceneGraph
	renderer *render.RenderingSystem
	window   Window
	cam      *camera.DebugCam
	editor   *editor.Editor
	scripts  *scripting.Engine
	store    *persist.SceneRepo // nil without a database
	builder  *scene.Builder
	runner   *coresys.Runner

	paused   bool
	frames   uint64
	quit     chan struct{}
	quitOnce sync.Once
	log      *zap.Logger
}

// Parts lists what New assembles. Store may be nil.
type Parts struct {
	World    *ecs.World
	Bus      *event.Bus
	Scene    *scene.Scene
	Graph    *render.SceneGraph
	Renderer *render.RenderingSystem
	Window   Window
	Camera   *camera.DebugCam
	Editor   *editor.Editor
	Scripts  *scripting.Engine
	Store    *persist.SceneRepo
}

// New wires the parts together and registers the frame systems.
func New(cfg *config.Config, p Parts, log *zap.Logger) *Engine {
	e := &Engine{
		cfg:      cfg,
		world:    p.World,
		bus:      p.Bus,
		scene:    p.Scene,
		graph:    p.Graph,
		renderer: p.Renderer,
		window:   p.Window,
		cam:      p.Camera,
		editor:   p.Editor,
		scripts:  p.Scripts,
		store:    p.Store,
		quit:     make(chan struct{}),
		log:      log,
	}
	var host scene.ScriptHost
	if p.Scripts != nil {
		host = p.Scripts
	}
	e.builder = scene.NewBuilder(p.Renderer, host, cfg.Physics, log.Named("builder"))
	e.builder.SetSkyboxEnabled(cfg.Render.Skybox)

	r := coresys.NewRunner()
	r.Register(system.NewInputSystem(p.Window, p.Camera, e.Quit))
	if cfg.Editor.Enabled && p.Editor != nil {
		r.Register(system.NewEditorSystem(context.Background(), p.Editor, p.Window.Input()))
		p.Window.AddOverlay(p.Editor)
	}
	r.Register(system.NewSteeringSystem(p.Scene, cfg.Physics.Seed))
	r.Register(system.NewComponentUpdateSystem(p.World.Components()))
	r.Register(system.NewCollisionSystem(p.World.Components(), p.Bus, cfg.Physics.BoxTest))
	r.Register(system.NewSceneSystem(p.Scene, p.Graph))
	r.Register(system.NewRenderSystem(p.Renderer, p.Camera, p.Graph, log.Named("render")))
	r.Register(system.NewCleanupSystem(p.World, p.Bus, log))
	e.runner = r
	if p.Editor != nil {
		p.Editor.SetPhaseSource(r)
	}
	return e
}

func (e *Engine) Scene() *scene.Scene       { return e.scene }
func (e *Engine) Runner() *coresys.Runner   { return e.runner }
func (e *Engine) Paused() bool              { return e.paused }
func (e *Engine) Frames() uint64            { return e.frames }
func (e *Engine) Camera() *camera.DebugCam  { return e.cam }
func (e *Engine) Store() *persist.SceneRepo { return e.store }
func (e *Engine) Window() Window            { return e.window }

// Quit asks Run to return after the current frame.
func (e *Engine) Quit() {
	e.quitOnce.Do(func() { close(e.quit) })
}

// LoadScene builds the scene file at path. Resource failures are logged and
// the entities are kept; only an unreadable file is an error.
func (e *Engine) LoadScene(path string) error {
	sf, err := data.LoadSceneFile(path)
	if err != nil {
		return err
	}
	e.build(sf)
	return nil
}

// LoadSnapshot builds a stored snapshot.
func (e *Engine) LoadSnapshot(ctx context.Context, id uuid.UUID) error {
	if e.store == nil {
		return fmt.Errorf("load snapshot %s: no database configured", id)
	}
	sf, err := e.store.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	e.build(sf)
	return nil
}

func (e *Engine) build(sf *data.SceneFile) {
	if err := e.builder.Build(e.scene, sf); err != nil {
		e.log.Warn("scene built with errors", zap.Error(err))
	}
	if e.cam != nil && sf.Camera != (data.CameraDef{}) {
		e.cam.SetPose(sf.Camera)
	}
}

// Frame steps every system once. While paused only input, editor, scene,
// render and cleanup run.
func (e *Engine) Frame(dt time.Duration) {
	if e.paused {
		e.runner.TickPhases(dt, pausedPhases...)
	} else {
		e.runner.Tick(dt)
	}
	e.frames++
	if e.window.Input().Pressed(platform.ActionPause) {
		e.paused = !e.paused
		e.log.Info("simulation paused", zap.Bool("paused", e.paused))
	}
}

// Run steps frames at the configured rate until ctx ends or Quit is called.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.cfg.Loop.FrameRate)
	defer ticker.Stop()

	e.log.Info("frame loop started", zap.Duration("frame_rate", e.cfg.Loop.FrameRate))
	last := time.Now()
	for {
		select {
		case now := <-ticker.C:
			dt := now.Sub(last)
			if e.cfg.Loop.MaxDelta > 0 {
				dt = min(dt, e.cfg.Loop.MaxDelta)
			}
			last = now
			e.Frame(dt)
		case <-e.quit:
			e.log.Info("quit requested", zap.Uint64("frames", e.frames))
			return nil
		case <-ctx.Done():
			e.log.Info("frame loop stopped", zap.Uint64("frames", e.frames))
			return nil
		}
	}
}

// Close releases subsystems in dependency order: components (scripts call
// back into Lua on release) before the VM, then the renderer.
func (e *Engine) Close() {
	e.world.Components().Close()
	if e.scripts != nil {
		e.scripts.Close()
	}
	e.renderer.Close()
}
