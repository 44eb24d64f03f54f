package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusDeliversNextFrame(t *testing.T) {
	b := NewBus()
	var got []Collision
	Subscribe(b, func(c Collision) { got = append(got, c) })

	Emit(b, Collision{A: 1, B: 2})
	b.DispatchAll()
	assert.Empty(t, got, "events are not visible before a swap")

	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, []Collision{{A: 1, B: 2}}, got)

	b.SwapBuffers()
	b.DispatchAll()
	assert.Len(t, got, 1)
}
