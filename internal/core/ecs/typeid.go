package ecs

import (
	"reflect"
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TypeID identifies a component type. Ids are assigned on first use and stay
// fixed for the life of the process. Zero is never assigned.
type TypeID uint32

type typeInfo struct {
	rtype reflect.Type
	name  string
}

var types = struct {
	mu    sync.RWMutex
	byRT  map[reflect.Type]TypeID
	infos []typeInfo
}{
	byRT:  make(map[reflect.Type]TypeID),
	infos: []typeInfo{{}},
}

var titleCaser = cases.Title(language.English)

// TypeOf returns the TypeID for T, registering it on first call.
func TypeOf[T any]() TypeID {
	rt := reflect.TypeOf((*T)(nil)).Elem()

	types.mu.RLock()
	id, ok := types.byRT[rt]
	types.mu.RUnlock()
	if ok {
		return id
	}

	types.mu.Lock()
	defer types.mu.Unlock()
	if id, ok := types.byRT[rt]; ok {
		return id
	}
	id = TypeID(len(types.infos))
	types.infos = append(types.infos, typeInfo{rtype: rt, name: displayName(rt.Name())})
	types.byRT[rt] = id
	return id
}

// TypeName returns the display name of a registered type, e.g. "Rigid Body"
// for RigidBody. Unknown ids render as "Unknown".
func TypeName(id TypeID) string {
	types.mu.RLock()
	defer types.mu.RUnlock()
	if id == 0 || int(id) >= len(types.infos) {
		return "Unknown"
	}
	return types.infos[id].name
}

// displayName splits a Go identifier on case boundaries and title-cases the words.
func displayName(ident string) string {
	if ident == "" {
		return "Unknown"
	}
	// generic instantiations carry their type arguments in brackets
	if i := strings.IndexByte(ident, '['); i > 0 {
		ident = ident[:i]
	}
	runes := []rune(ident)
	var b strings.Builder
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte(' ')
			}
		}
		b.WriteRune(r)
	}
	return titleCaser.String(b.String())
}
