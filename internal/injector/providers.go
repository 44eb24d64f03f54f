// Package injector assembles an engine from configuration. The dependency
// graph is declared in injector.go and generated into wire_gen.go.
package injector

import (
	"context"
	"fmt"

	"github.com/emberforge/ember/internal/asset"
	"github.com/emberforge/ember/internal/camera"
	"github.com/emberforge/ember/internal/config"
	"github.com/emberforge/ember/internal/core/ecs"
	"github.com/emberforge/ember/internal/core/event"
	"github.com/emberforge/ember/internal/editor"
	"github.com/emberforge/ember/internal/engine"
	"github.com/emberforge/ember/internal/persist"
	"github.com/emberforge/ember/internal/platform"
	"github.com/emberforge/ember/internal/render"
	"github.com/emberforge/ember/internal/render/soft"
	"github.com/emberforge/ember/internal/scene"
	"github.com/emberforge/ember/internal/scripting"
	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
)

func ProvideWorld(cfg *config.Config, log *zap.Logger) *ecs.World {
	return ecs.NewWorld(ecs.PoolConfig{
		InitialCapacity: cfg.Pool.InitialCapacity,
		Growth:          cfg.Pool.Growth,
		MaxCapacity:     cfg.Pool.MaxCapacity,
	}, log.Named("ecs"))
}

func ProvideScene(cfg *config.Config, world *ecs.World, bus *event.Bus, log *zap.Logger) *scene.Scene {
	return scene.New(cfg.Window.Title, world, bus, log.Named("scene"))
}

// ProvideScreen opens the controlling terminal.
func ProvideScreen() (tcell.Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("open terminal: %w", err)
	}
	return s, nil
}

func ProvideTerminal(screen tcell.Screen, cfg *config.Config, log *zap.Logger) (*platform.Terminal, func(), error) {
	t, err := platform.NewTerminal(screen, cfg.Render, log.Named("terminal"))
	if err != nil {
		return nil, nil, fmt.Errorf("init terminal: %w", err)
	}
	return t, t.Close, nil
}

func ProvideDevice(log *zap.Logger) render.Device {
	return soft.NewDevice(log.Named("soft"))
}

func ProvideLoaders(cfg *config.Config, log *zap.Logger) render.Loaders {
	return asset.NewLoader(cfg.Scene.AssetRoot, log.Named("asset")).Loaders()
}

// ProvideRenderer creates the rendering system and initialises it against
// the terminal window. Engine.Close releases it.
func ProvideRenderer(dev render.Device, loaders render.Loaders, term *platform.Terminal, cfg *config.Config, log *zap.Logger) (*render.RenderingSystem, error) {
	rs := render.NewRenderingSystem(dev, loaders, cfg.Render, log.Named("render"))
	if err := rs.Init(term); err != nil {
		return nil, err
	}
	return rs, nil
}

// ProvideCamera creates the debug camera and keeps its projection in step
// with window resizes. The renderer's own listener, added by Init, has
// already rebuilt the targets when this one runs.
func ProvideCamera(cfg *config.Config, rs *render.RenderingSystem, term *platform.Terminal) *camera.DebugCam {
	cam := camera.New(cfg.Camera, rs.AspectRatio())
	term.AddResizeListener(func(int, int) {
		cam.SetProjection(rs.AspectRatio())
	})
	return cam
}

func ProvideScripts(cfg *config.Config, world *ecs.World, bus *event.Bus, sc *scene.Scene, log *zap.Logger) (*scripting.Engine, error) {
	eng, err := scripting.NewEngine(cfg.Scene.ScriptRoot, world.Components(), bus, log.Named("lua"))
	if err != nil {
		return nil, err
	}
	eng.SetNameResolver(func(id ecs.EntityID) (string, bool) {
		e, ok := sc.Entity(id)
		if !ok {
			return "", false
		}
		return e.Name, true
	})
	return eng, nil
}

// ProvideStore connects to the snapshot database. Without a DSN it returns
// a nil repo and the editor saves to a file instead.
func ProvideStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (*persist.SceneRepo, func(), error) {
	if cfg.Database.DSN == "" {
		log.Info("no database configured, snapshots go to file", zap.String("path", cfg.Editor.SavePath))
		return nil, func() {}, nil
	}
	db, err := persist.NewDB(ctx, cfg.Database, log.Named("db"))
	if err != nil {
		return nil, nil, fmt.Errorf("database: %w", err)
	}
	if err := persist.RunMigrations(ctx, db.Pool, log); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}
	return persist.NewSceneRepo(db), db.Close, nil
}

func ProvideEditor(cfg *config.Config, sc *scene.Scene, bus *event.Bus, rs *render.RenderingSystem, cam *camera.DebugCam, store *persist.SceneRepo, log *zap.Logger) *editor.Editor {
	ed := editor.New(sc, bus, cfg.Editor, log.Named("editor"))
	ed.SetFrameSource(rs)
	ed.SetCamera(cam)
	if store != nil {
		ed.SetStore(store)
	}
	return ed
}

func ProvideEngine(
	cfg *config.Config,
	world *ecs.World,
	bus *event.Bus,
	sc *scene.Scene,
	graph *render.SceneGraph,
	rs *render.RenderingSystem,
	term *platform.Terminal,
	cam *camera.DebugCam,
	ed *editor.Editor,
	scripts *scripting.Engine,
	store *persist.SceneRepo,
	log *zap.Logger,
) (*engine.Engine, func()) {
	eng := engine.New(cfg, engine.Parts{
		World:    world,
		Bus:      bus,
		Scene:    sc,
		Graph:    graph,
		Renderer: rs,
		Window:   term,
		Camera:   cam,
		Editor:   ed,
		Scripts:  scripts,
		Store:    store,
	}, log)
	return eng, eng.Close
}
