package editor

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/emberforge/ember/internal/config"
	"github.com/emberforge/ember/internal/core/ecs"
	"github.com/emberforge/ember/internal/core/event"
	coresys "github.com/emberforge/ember/internal/core/system"
	"github.com/emberforge/ember/internal/data"
	"github.com/emberforge/ember/internal/gmath"
	"github.com/emberforge/ember/internal/physics"
	"github.com/emberforge/ember/internal/platform"
	"github.com/emberforge/ember/internal/scene"
	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memStore struct {
	saved []*data.SceneFile
	err   error
}

func (m *memStore) SaveScene(_ context.Context, sf *data.SceneFile) (uuid.UUID, error) {
	if m.err != nil {
		return uuid.Nil, m.err
	}
	m.saved = append(m.saved, sf)
	return uuid.New(), nil
}

type fixedPose struct{}

func (fixedPose) Pose() data.CameraDef { return data.CameraDef{Position: [3]float32{9, 9, 9}} }

type fixedTimings []coresys.PhaseTiming

func (f fixedTimings) Timings() []coresys.PhaseTiming { return f }

func newEditor(t *testing.T) (*Editor, *scene.Scene, *event.Bus) {
	t.Helper()
	bus := event.NewBus()
	world := ecs.NewWorld(ecs.PoolConfig{InitialCapacity: 4, Growth: 4}, zap.NewNop())
	s := scene.New("edit", world, bus, zap.NewNop())

	player := s.CreateEntity("Player")
	s.CreateEntity("Light")
	m := s.Components()
	_, err := ecs.Add(m, player.ID(), physics.NewRigidBody(&player.Transform, defaultBox()))
	require.NoError(t, err)
	_, err = ecs.Add(m, player.ID(), physics.Steering{Mode: physics.SteerHoming})
	require.NoError(t, err)

	cfg := config.Default().Editor
	cfg.SavePath = filepath.Join(t.TempDir(), "scene.yaml")
	return New(s, bus, cfg, zap.NewNop()), s, bus
}

func TestHierarchyRows(t *testing.T) {
	ed, _, _ := newEditor(t)
	assert.Equal(t, []string{"Player (1)", "Light (2)"}, ed.HierarchyRows())
	assert.Empty(t, ed.ComponentRows(), "nothing selected")
}

func TestComponentRowsAndDelete(t *testing.T) {
	ed, s, bus := newEditor(t)
	require.True(t, ed.Select(0))
	assert.Equal(t, []string{"Rigid Body (-1)", "Steering (-2)"}, ed.ComponentRows())

	var removed []ecs.TypeID
	event.Subscribe(bus, func(ev event.ComponentRemoved) { removed = append(removed, ev.Type) })

	ed.NextComponent()
	assert.Equal(t, 1, ed.SelectedComponent())
	require.True(t, ed.DeleteSelectedComponent())
	assert.Equal(t, []string{"Rigid Body (-1)"}, ed.ComponentRows())
	assert.Equal(t, 0, ed.SelectedComponent())

	player, _ := ed.Selected()
	assert.False(t, ecs.Has[physics.Steering](s.Components(), player.ID()))
	assert.False(t, ed.DeleteComponent(player.ID(), ecs.TypeOf[physics.Steering]()))

	bus.SwapBuffers()
	bus.DispatchAll()
	assert.Equal(t, []ecs.TypeID{ecs.TypeOf[physics.Steering]()}, removed)
}

func TestSelectionSurvivesDestroy(t *testing.T) {
	ed, s, _ := newEditor(t)
	ed.Step(1)
	e, ok := ed.Selected()
	require.True(t, ok)
	assert.Equal(t, "Player", e.Name)
	ed.Step(-1)
	e, _ = ed.Selected()
	assert.Equal(t, "Light", e.Name, "wraps around")

	s.DestroyEntity(e.ID())
	s.World().FlushDestroyQueue()
	_, ok = ed.Selected()
	assert.False(t, ok)
	assert.Empty(t, ed.ComponentRows())
	assert.False(t, ed.Select(5))
}

func TestUpdateFromInput(t *testing.T) {
	ed, _, _ := newEditor(t)
	in := platform.NewInput()
	ctx := context.Background()

	in.Press(platform.ActionNextEntity)
	ed.Update(ctx, in)
	_, ok := ed.Selected()
	assert.False(t, ok, "closed editor ignores navigation")

	in.EndFrame()
	in.Press(platform.ActionToggleEditor)
	ed.Update(ctx, in)
	assert.True(t, ed.Open())

	in.EndFrame()
	in.Press(platform.ActionNextEntity)
	ed.Update(ctx, in)
	e, ok := ed.Selected()
	require.True(t, ok)
	assert.Equal(t, "Player", e.Name)

	in.EndFrame()
	in.Press(platform.ActionDeleteComponent)
	ed.Update(ctx, in)
	assert.Equal(t, []string{"Steering (-1)"}, ed.ComponentRows())
}

func TestSaveToStore(t *testing.T) {
	ed, _, _ := newEditor(t)
	store := &memStore{}
	ed.SetStore(store)
	ed.SetCamera(fixedPose{})
	require.NoError(t, ed.Save(context.Background()))
	require.Len(t, store.saved, 1)
	assert.Equal(t, float32(9), store.saved[0].Camera.Position[0])
	assert.Len(t, store.saved[0].Entities, 2)
	assert.True(t, strings.HasPrefix(ed.Status(), "saved "))

	store.err = errors.New("db down")
	assert.ErrorContains(t, ed.Save(context.Background()), "db down")
	assert.Equal(t, "save failed", ed.Status())
}

func TestSaveToFile(t *testing.T) {
	ed, _, _ := newEditor(t)
	require.NoError(t, ed.Save(context.Background()))
	sf, err := data.LoadSceneFile(ed.savePath)
	require.NoError(t, err)
	assert.Equal(t, "edit", sf.Name)
	assert.Equal(t, "homing", sf.Entities[0].Body.Steering)
}

func TestDrawOverlay(t *testing.T) {
	ed, _, _ := newEditor(t)
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	defer screen.Fini()
	screen.SetSize(60, 20)

	ed.Draw(screen)
	r, _, _, _ := screen.GetContent(41, 0)
	assert.Equal(t, ' ', r, "closed editor draws nothing")

	ed.Toggle()
	ed.Select(0)
	ed.Draw(screen)
	assert.Equal(t, "Hierarchy", readRow(screen, 41, 0, 9))
	assert.Equal(t, "Player (1)", readRow(screen, 41, 1, 10))
	assert.Equal(t, "Rigid Body (-1)", readRow(screen, 41, 11, 15))
	_, _, style, _ := screen.GetContent(41, 1)
	assert.Equal(t, selectedStyle, style)
	assert.Equal(t, "Debug", readRow(screen, 1, 0, 5))
}

func TestDrawPhaseTimings(t *testing.T) {
	ed, _, _ := newEditor(t)
	ed.SetPhaseSource(fixedTimings{
		{Phase: coresys.PhaseInput, Systems: 1, Elapsed: 100 * time.Microsecond},
		{Phase: coresys.PhaseRender, Systems: 1, Elapsed: 2500 * time.Microsecond},
	})
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	defer screen.Fini()
	screen.SetSize(80, 20)

	ed.Toggle()
	ed.Draw(screen)
	want := "phases: input 0.1ms render 2.5ms"
	assert.Equal(t, want, readRow(screen, 1, 4, len(want)))
}

func readRow(s tcell.Screen, x, y, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		r, _, _, _ := s.GetContent(x+i, y)
		b.WriteRune(r)
	}
	return b.String()
}

func defaultBox() gmath.AABB {
	return gmath.AABB{Extents: mgl32.Vec3{0.5, 0.5, 0.5}}
}
