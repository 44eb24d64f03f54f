package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Script is the component that binds an entity to its Lua environment.
// A script whose callback raises an error is disabled.
type Script struct {
	Path     string
	entity   *lua.LUserData
	env      *lua.LTable
	engine   *Engine
	disabled bool
}

// Disabled reports whether the script stopped after an error.
func (s *Script) Disabled() bool { return s.disabled }

// Update calls the script's update(dt), if it defines one.
func (s *Script) Update(dt float32) {
	s.call("update", lua.LNumber(dt))
}

// Release calls on_destroy and drops the environment.
func (s *Script) Release() {
	s.call("on_destroy")
	s.env = nil
	s.entity = nil
}

func (s *Script) call(name string, args ...lua.LValue) {
	if s.disabled || s.env == nil {
		return
	}
	fn, ok := s.env.RawGetString(name).(*lua.LFunction)
	if !ok {
		return
	}
	vm := s.engine.vm
	if err := vm.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, args...); err != nil {
		s.disabled = true
		s.engine.log.Error("lua "+name+" error, script disabled",
			zap.String("file", s.Path), zap.Error(err))
	}
}
