package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/emberforge/ember/internal/component"
	"github.com/emberforge/ember/internal/core/ecs"
	"github.com/emberforge/ember/internal/core/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	root string
	m    *ecs.Manager
	bus  *event.Bus
	eng  *Engine
}

func newFixture(t *testing.T, files map[string]string) *fixture {
	t.Helper()
	root := t.TempDir()
	for name, src := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	}
	m := ecs.NewManager(ecs.PoolConfig{InitialCapacity: 2, Growth: 2}, zap.NewNop())
	bus := event.NewBus()
	eng, err := NewEngine(root, m, bus, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(eng.Close)
	return &fixture{root: root, m: m, bus: bus, eng: eng}
}

func TestUpdateMovesEntity(t *testing.T) {
	f := newFixture(t, map[string]string{
		"lib/util.lua": `function speed() return 2 end`,
		"mover.lua": `
function update(dt)
  entity.x = entity.x + speed() * dt
  entity:rotate(0, dt, 0)
end`,
	})
	tr := component.NewTransform()
	id := ecs.NewEntityID(1, 1)
	require.NoError(t, f.eng.Attach(id, "mover", &tr, "mover.lua"))

	f.m.UpdateAll(0.5)
	f.m.UpdateAll(0.5)
	assert.InDelta(t, 2, tr.Position.X(), 1e-6)
	assert.InDelta(t, 1, tr.Rotation.Y(), 1e-6)
}

func TestScriptsHaveSeparateGlobals(t *testing.T) {
	f := newFixture(t, map[string]string{
		"counter.lua": `
count = 0
function update(dt)
  count = count + 1
  entity.y = count
end`,
	})
	a, b := component.NewTransform(), component.NewTransform()
	require.NoError(t, f.eng.Attach(ecs.NewEntityID(1, 1), "a", &a, "counter.lua"))
	f.m.UpdateAll(0)
	require.NoError(t, f.eng.Attach(ecs.NewEntityID(2, 1), "b", &b, "counter.lua"))
	f.m.UpdateAll(0)

	assert.Equal(t, float32(2), a.Position.Y())
	assert.Equal(t, float32(1), b.Position.Y())
}

func TestCollisionCallback(t *testing.T) {
	f := newFixture(t, map[string]string{
		"hit.lua": `
hits = 0
function on_collision(other)
  hits = hits + 1
  if type(other) == "string" then
    entity.z = 100
  else
    entity.scale_x = 3
  end
end`,
	})
	f.eng.SetNameResolver(func(ecs.EntityID) (string, bool) { return "wall", true })

	a, b := component.NewTransform(), component.NewTransform()
	ida, idb, wall := ecs.NewEntityID(1, 1), ecs.NewEntityID(2, 1), ecs.NewEntityID(3, 1)
	require.NoError(t, f.eng.Attach(ida, "a", &a, "hit.lua"))
	require.NoError(t, f.eng.Attach(idb, "b", &b, "hit.lua"))

	event.Emit(f.bus, event.Collision{A: ida, B: idb})
	event.Emit(f.bus, event.Collision{A: ida, B: wall})
	f.bus.SwapBuffers()
	f.bus.DispatchAll()

	assert.Equal(t, float32(3), a.Scale.X(), "scripted peer arrives as an entity")
	assert.Equal(t, float32(3), b.Scale.X())
	assert.Equal(t, float32(100), a.Position.Z(), "plain entity arrives by name")
}

func TestErrorDisablesScript(t *testing.T) {
	f := newFixture(t, map[string]string{
		"bad.lua": `
calls = 0
function update(dt)
  calls = calls + 1
  entity.x = calls
  entity.bogus = 1
end`,
	})
	tr := component.NewTransform()
	id := ecs.NewEntityID(1, 1)
	require.NoError(t, f.eng.Attach(id, "bad", &tr, "bad.lua"))

	f.m.UpdateAll(0.1)
	f.m.UpdateAll(0.1)
	assert.Equal(t, float32(1), tr.Position.X())
	s, err := ecs.Get[Script](f.m, id)
	require.NoError(t, err)
	assert.True(t, s.Disabled())
}

func TestReleaseCallsOnDestroy(t *testing.T) {
	f := newFixture(t, map[string]string{
		"bye.lua": `function on_destroy() entity.x = -1 end`,
	})
	tr := component.NewTransform()
	id := ecs.NewEntityID(1, 1)
	require.NoError(t, f.eng.Attach(id, "bye", &tr, "bye.lua"))
	assert.True(t, f.m.RemoveComponent(id, ecs.TypeOf[Script]()))
	assert.Equal(t, float32(-1), tr.Position.X())
}

func TestReattachReleasesPreviousScript(t *testing.T) {
	f := newFixture(t, map[string]string{
		"old.lua": `function on_destroy() entity.y = 5 end`,
		"new.lua": `function update(dt) entity.x = entity.x + dt end`,
	})
	tr := component.NewTransform()
	id := ecs.NewEntityID(1, 1)
	require.NoError(t, f.eng.Attach(id, "swap", &tr, "old.lua"))
	require.NoError(t, f.eng.Attach(id, "swap", &tr, "new.lua"))
	assert.Equal(t, float32(5), tr.Position.Y(), "old script saw on_destroy")

	s, err := ecs.Get[Script](f.m, id)
	require.NoError(t, err)
	assert.Equal(t, "new.lua", s.Path)
	f.m.UpdateAll(1)
	assert.Equal(t, float32(1), tr.Position.X())
	assert.Len(t, f.m.AllComponents(id), 1)
}

func TestAttachErrors(t *testing.T) {
	f := newFixture(t, map[string]string{
		"syntax.lua": `function (`,
		"boom.lua":   `error("boom")`,
	})
	tr := component.NewTransform()
	assert.Error(t, f.eng.Attach(ecs.NewEntityID(1, 1), "x", &tr, "missing.lua"))
	assert.Error(t, f.eng.Attach(ecs.NewEntityID(1, 1), "x", &tr, "syntax.lua"))
	assert.ErrorContains(t, f.eng.Attach(ecs.NewEntityID(1, 1), "x", &tr, "boom.lua"), "boom")
	assert.False(t, ecs.Has[Script](f.m, ecs.NewEntityID(1, 1)))
}

func TestBrokenLibFailsEngine(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "lib"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "lib", "x.lua"), []byte("error('bad lib')"), 0o644))
	_, err := NewEngine(root, ecs.NewManager(ecs.PoolConfig{InitialCapacity: 1, Growth: 1}, zap.NewNop()), nil, zap.NewNop())
	assert.ErrorContains(t, err, "load lib scripts")
}
