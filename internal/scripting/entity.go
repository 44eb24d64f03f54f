package scripting

import (
	"github.com/emberforge/ember/internal/component"
	"github.com/emberforge/ember/internal/core/ecs"
	"github.com/go-gl/mathgl/mgl32"
	lua "github.com/yuin/gopher-lua"
)

// entityRef is the userdata behind the `entity` global of a script.
type entityRef struct {
	id   ecs.EntityID
	name string
	t    *component.Transform
}

var entityMethods = map[string]lua.LGFunction{
	"move":   entityMove,
	"rotate": entityRotate,
}

func (e *Engine) registerEntityType() {
	mt := e.vm.NewTypeMetatable(entityTypeName)
	mt.RawSetString("__index", e.vm.NewFunction(entityIndex))
	mt.RawSetString("__newindex", e.vm.NewFunction(entityNewIndex))
	mt.RawSetString("__tostring", e.vm.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString("entity(" + checkEntity(L).name + ")"))
		return 1
	}))
}

func checkEntity(L *lua.LState) *entityRef {
	ud := L.CheckUserData(1)
	ref, ok := ud.Value.(*entityRef)
	if !ok {
		L.ArgError(1, "entity expected")
	}
	return ref
}

// entityIndex serves entity.<field> reads: transform fields, name, id and
// the method table.
func entityIndex(L *lua.LState) int {
	ref := checkEntity(L)
	key := L.CheckString(2)
	if v, ok := ref.t.Field(key); ok {
		L.Push(lua.LNumber(v))
		return 1
	}
	switch key {
	case "name":
		L.Push(lua.LString(ref.name))
	case "id":
		L.Push(lua.LNumber(ref.id))
	default:
		if fn, ok := entityMethods[key]; ok {
			L.Push(L.NewFunction(fn))
		} else {
			L.Push(lua.LNil)
		}
	}
	return 1
}

func entityNewIndex(L *lua.LState) int {
	ref := checkEntity(L)
	key := L.CheckString(2)
	v := L.CheckNumber(3)
	if !ref.t.SetField(key, float32(v)) {
		L.ArgError(2, "unknown or read-only field "+key)
	}
	return 0
}

func vec3Args(L *lua.LState) mgl32.Vec3 {
	return mgl32.Vec3{
		float32(L.OptNumber(2, 0)),
		float32(L.OptNumber(3, 0)),
		float32(L.OptNumber(4, 0)),
	}
}

// entity:move(dx, dy, dz)
func entityMove(L *lua.LState) int {
	checkEntity(L).t.Move(vec3Args(L))
	return 0
}

// entity:rotate(dpitch, dyaw, droll) in radians
func entityRotate(L *lua.LState) int {
	checkEntity(L).t.Rotate(vec3Args(L))
	return 0
}
