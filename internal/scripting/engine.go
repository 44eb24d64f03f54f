// Package scripting runs per-entity Lua behaviour on a single gopher-lua VM.
package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/emberforge/ember/internal/component"
	"github.com/emberforge/ember/internal/core/ecs"
	"github.com/emberforge/ember/internal/core/event"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

const entityTypeName = "ember.entity"

// Engine wraps a single gopher-lua VM for entity scripts.
// Single-goroutine access only (game loop).
type Engine struct {
	vm    *lua.LState
	root  string
	m     *ecs.Manager
	names func(ecs.EntityID) (string, bool)
	log   *zap.Logger
}

// NewEngine creates the VM and loads the shared scripts in root/lib.
// Entity scripts are loaded later by Attach. bus may be nil, in which case
// on_collision is never called.
func NewEngine(root string, m *ecs.Manager, bus *event.Bus, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState()

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, root: root, m: m, log: log}
	vm.SetGlobal("log", vm.NewFunction(e.luaLog))
	e.registerEntityType()

	if err := e.loadDir(filepath.Join(root, "lib")); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load lib scripts: %w", err)
	}
	if bus != nil {
		event.Subscribe(bus, e.onCollision)
	}
	return e, nil
}

// SetNameResolver lets on_collision report entities that carry no script.
func (e *Engine) SetNameResolver(fn func(ecs.EntityID) (string, bool)) { e.names = fn }

// loadDir loads all .lua files in a directory into the global environment.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

func (e *Engine) resolve(path string) string {
	if filepath.IsAbs(path) || e.root == "" {
		return path
	}
	return filepath.Join(e.root, path)
}

// Attach loads the script at path into a fresh environment for entity id and
// adds a Script component. Globals the script defines stay in its own
// environment; reads fall through to the shared globals.
func (e *Engine) Attach(id ecs.EntityID, name string, t *component.Transform, path string) error {
	fn, err := e.vm.LoadFile(e.resolve(path))
	if err != nil {
		return fmt.Errorf("load script %s: %w", path, err)
	}

	env := e.vm.NewTable()
	meta := e.vm.NewTable()
	meta.RawSetString("__index", e.vm.G.Global)
	e.vm.SetMetatable(env, meta)

	ud := e.vm.NewUserData()
	ud.Value = &entityRef{id: id, name: name, t: t}
	e.vm.SetMetatable(ud, e.vm.GetTypeMetatable(entityTypeName))
	env.RawSetString("entity", ud)

	fn.Env = env
	if err := e.vm.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}); err != nil {
		return fmt.Errorf("run script %s: %w", path, err)
	}

	s := Script{Path: path, entity: ud, env: env, engine: e}
	if _, err := ecs.Add(e.m, id, s); err != nil {
		return err
	}
	e.log.Debug("script attached", zap.String("entity", name), zap.String("file", path))
	return nil
}

func (e *Engine) onCollision(ev event.Collision) {
	e.notifyCollision(ev.A, ev.B)
	e.notifyCollision(ev.B, ev.A)
}

func (e *Engine) notifyCollision(self, other ecs.EntityID) {
	s, err := ecs.Get[Script](e.m, self)
	if err != nil {
		return
	}
	var arg lua.LValue = lua.LNil
	if peer, err := ecs.Get[Script](e.m, other); err == nil && peer.entity != nil {
		arg = peer.entity
	} else if e.names != nil {
		if n, ok := e.names(other); ok {
			arg = lua.LString(n)
		}
	}
	s.call("on_collision", arg)
}

func (e *Engine) luaLog(L *lua.LState) int {
	msg := L.CheckString(1)
	e.log.Info("lua", zap.String("msg", msg))
	return 0
}

func (e *Engine) Close() {
	e.vm.Close()
}
