// Package editor is the in-game scene inspector: an entity hierarchy, the
// component list of the selected entity, and a debug panel. It draws as a
// terminal overlay on top of the rendered frame.
package editor

import (
	"context"
	"fmt"
	"strconv"

	"github.com/emberforge/ember/internal/config"
	"github.com/emberforge/ember/internal/core/ecs"
	"github.com/emberforge/ember/internal/core/event"
	coresys "github.com/emberforge/ember/internal/core/system"
	"github.com/emberforge/ember/internal/data"
	"github.com/emberforge/ember/internal/platform"
	"github.com/emberforge/ember/internal/render"
	"github.com/emberforge/ember/internal/scene"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SceneStore persists scene snapshots.
type SceneStore interface {
	SaveScene(ctx context.Context, sf *data.SceneFile) (uuid.UUID, error)
}

// FrameSource reports renderer statistics for the debug panel.
type FrameSource interface {
	LastFrame() render.FrameStats
}

// PhaseSource reports how long each frame phase took.
type PhaseSource interface {
	Timings() []coresys.PhaseTiming
}

// CameraSource supplies the camera pose written into saved scenes.
type CameraSource interface {
	Pose() data.CameraDef
}

type Editor struct {
	scene    *scene.Scene
	bus      *event.Bus
	store    SceneStore
	frames   FrameSource
	phases   PhaseSource
	cam      CameraSource
	savePath string

	open     bool
	selected ecs.EntityID
	comp     int
	status   string

	// last input snapshot for the debug panel
	held   []platform.Action
	mx, my float32

	log *zap.Logger
}

func New(s *scene.Scene, bus *event.Bus, cfg config.EditorConfig, log *zap.Logger) *Editor {
	return &Editor{
		scene:    s,
		bus:      bus,
		savePath: cfg.SavePath,
		open:     cfg.StartOpen,
		log:      log,
	}
}

func (ed *Editor) SetStore(st SceneStore)       { ed.store = st }
func (ed *Editor) SetFrameSource(f FrameSource) { ed.frames = f }
func (ed *Editor) SetCamera(c CameraSource)     { ed.cam = c }
func (ed *Editor) SetPhaseSource(p PhaseSource) { ed.phases = p }

func (ed *Editor) Open() bool     { return ed.open }
func (ed *Editor) Toggle()        { ed.open = !ed.open }
func (ed *Editor) Status() string { return ed.status }

// HierarchyRows lists every entity as "<name> (<n>)", n counting from 1 in
// creation order.
func (ed *Editor) HierarchyRows() []string {
	ents := ed.scene.AllEntities()
	rows := make([]string, len(ents))
	for i, e := range ents {
		rows[i] = e.Name + " (" + strconv.Itoa(i+1) + ")"
	}
	return rows
}

// ComponentRows lists the selected entity's components as
// "<Type Name> (-<k>)", k counting from 1 in attach order.
func (ed *Editor) ComponentRows() []string {
	entries := ed.components()
	rows := make([]string, len(entries))
	for i, c := range entries {
		rows[i] = ecs.TypeName(c.Type) + " (-" + strconv.Itoa(i+1) + ")"
	}
	return rows
}

func (ed *Editor) components() []ecs.Entry {
	if _, ok := ed.Selected(); !ok {
		return nil
	}
	return ed.scene.Components().AllComponents(ed.selected)
}

// Select picks the entity at hierarchy row i.
func (ed *Editor) Select(i int) bool {
	ents := ed.scene.AllEntities()
	if i < 0 || i >= len(ents) {
		return false
	}
	ed.selected = ents[i].ID()
	ed.comp = 0
	return true
}

// Selected returns the selected entity if it still exists.
func (ed *Editor) Selected() (*scene.Entity, bool) {
	if ed.selected.IsZero() {
		return nil, false
	}
	return ed.scene.Entity(ed.selected)
}

// SelectedComponent is the highlighted row of the component panel.
func (ed *Editor) SelectedComponent() int { return ed.comp }

// Step moves the hierarchy selection by d rows, wrapping around.
func (ed *Editor) Step(d int) {
	n := ed.scene.Len()
	if n == 0 {
		return
	}
	i := ed.scene.Index(ed.selected)
	if i < 0 {
		if d < 0 {
			i = 0
		} else {
			i = -1
		}
	}
	ed.Select(((i+d)%n + n) % n)
}

// NextComponent highlights the next component row, wrapping around.
func (ed *Editor) NextComponent() {
	if n := len(ed.components()); n > 0 {
		ed.comp = (ed.comp + 1) % n
	}
}

// DeleteComponent detaches the component of type typ from entity id.
func (ed *Editor) DeleteComponent(id ecs.EntityID, typ ecs.TypeID) bool {
	if !ed.scene.Components().RemoveComponent(id, typ) {
		return false
	}
	if ed.bus != nil {
		event.Emit(ed.bus, event.ComponentRemoved{EntityID: id, Type: typ})
	}
	ed.status = "removed " + ecs.TypeName(typ)
	ed.log.Info("component removed", zap.Uint64("entity", uint64(id)), zap.String("type", ecs.TypeName(typ)))
	return true
}

// DeleteSelectedComponent removes the highlighted component row.
func (ed *Editor) DeleteSelectedComponent() bool {
	entries := ed.components()
	if ed.comp >= len(entries) {
		return false
	}
	ok := ed.DeleteComponent(ed.selected, entries[ed.comp].Type)
	if ed.comp > 0 && ed.comp >= len(entries)-1 {
		ed.comp--
	}
	return ok
}

// Save writes a snapshot of the scene to the store, or to the save path
// when no store is set.
func (ed *Editor) Save(ctx context.Context) error {
	snap := ed.scene.Snapshot()
	if ed.cam != nil {
		snap.Camera = ed.cam.Pose()
	}
	if ed.store != nil {
		id, err := ed.store.SaveScene(ctx, snap)
		if err != nil {
			ed.status = "save failed"
			return fmt.Errorf("save scene: %w", err)
		}
		ed.status = "saved " + id.String()
		ed.log.Info("scene saved", zap.String("snapshot", id.String()))
		return nil
	}
	if ed.savePath == "" {
		ed.status = "nowhere to save"
		return fmt.Errorf("save scene: no store and no save path")
	}
	if err := data.SaveSceneFile(ed.savePath, snap); err != nil {
		ed.status = "save failed"
		return err
	}
	ed.status = "saved " + ed.savePath
	ed.log.Info("scene saved", zap.String("file", ed.savePath))
	return nil
}

// Update applies this frame's editor actions.
func (ed *Editor) Update(ctx context.Context, in *platform.Input) {
	ed.held = in.HeldActions()
	ed.mx, ed.my = in.MouseDelta()
	if in.Pressed(platform.ActionToggleEditor) {
		ed.Toggle()
	}
	if !ed.open {
		return
	}
	switch {
	case in.Pressed(platform.ActionNextEntity):
		ed.Step(1)
	case in.Pressed(platform.ActionPrevEntity):
		ed.Step(-1)
	case in.Pressed(platform.ActionNextComponent):
		ed.NextComponent()
	case in.Pressed(platform.ActionDeleteComponent):
		ed.DeleteSelectedComponent()
	case in.Pressed(platform.ActionSave):
		if err := ed.Save(ctx); err != nil {
			ed.log.Warn("save failed", zap.Error(err))
		}
	}
}
