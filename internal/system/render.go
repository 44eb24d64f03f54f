package system

import (
	"time"

	coresys "github.com/emberforge/ember/internal/core/system"
	"github.com/emberforge/ember/internal/render"
	"github.com/emberforge/ember/internal/scene"
	"go.uber.org/zap"
)

// SceneSystem refreshes world matrices and rebuilds the render list.
// Phase 5 (Scene).
type SceneSystem struct {
	scene *scene.Scene
	graph *render.SceneGraph
}

func NewSceneSystem(s *scene.Scene, g *render.SceneGraph) *SceneSystem {
	return &SceneSystem{scene: s, graph: g}
}

func (s *SceneSystem) Phase() coresys.Phase { return coresys.PhaseScene }

func (s *SceneSystem) Update(_ time.Duration) {
	s.scene.UpdateScene()
	s.scene.Populate(s.graph)
}

// Drawer is the rendering system as the frame loop sees it.
type Drawer interface {
	DrawScene(cam render.Camera, graph *render.SceneGraph) error
}

// RenderSystem draws the render list. Phase 6 (Render).
type RenderSystem struct {
	drawer Drawer
	cam    render.Camera
	graph  *render.SceneGraph
	failed bool
	log    *zap.Logger
}

func NewRenderSystem(d Drawer, cam render.Camera, g *render.SceneGraph, log *zap.Logger) *RenderSystem {
	return &RenderSystem{drawer: d, cam: cam, graph: g, log: log}
}

func (s *RenderSystem) Phase() coresys.Phase { return coresys.PhaseRender }

// Update logs the first failure of a run of failing frames only.
func (s *RenderSystem) Update(_ time.Duration) {
	err := s.drawer.DrawScene(s.cam, s.graph)
	if err != nil && !s.failed {
		s.log.Error("draw scene", zap.Error(err))
	}
	s.failed = err != nil
}
