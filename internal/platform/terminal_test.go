package platform

import (
	"testing"

	"github.com/emberforge/ember/internal/config"
	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSimTerminal(t *testing.T, shading string) (*Terminal, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	cfg := config.Default().Render
	cfg.Shading = shading
	term, err := NewTerminal(screen, cfg, zap.NewNop())
	require.NoError(t, err)
	screen.SetSize(4, 2)
	t.Cleanup(term.Close)
	return term, screen
}

func TestClientSizeHalfBlock(t *testing.T) {
	term, _ := newSimTerminal(t, "halfblock")
	w, h := term.ClientSize()
	assert.Equal(t, 4, w)
	assert.Equal(t, 4, h)

	ascii, _ := newSimTerminal(t, "ascii")
	w, h = ascii.ClientSize()
	assert.Equal(t, 4, w)
	assert.Equal(t, 2, h)
}

func TestPresentHalfBlock(t *testing.T) {
	term, screen := newSimTerminal(t, "halfblock")
	pix := make([]float32, 4*4*4)
	// top-left pixel red, the one below it blue
	copy(pix[0:4], []float32{1, 0, 0, 1})
	copy(pix[16:20], []float32{0, 0, 1, 1})
	require.NoError(t, term.Present(4, 4, pix))

	ch, _, style, _ := screen.GetContent(0, 0)
	assert.Equal(t, '▀', ch)
	fg, bg, _ := style.Decompose()
	r, g, b := fg.RGB()
	assert.Equal(t, [3]int32{255, 0, 0}, [3]int32{r, g, b})
	r, g, b = bg.RGB()
	assert.Equal(t, [3]int32{0, 0, 255}, [3]int32{r, g, b})
}

type marker struct{ drawn int }

func (m *marker) Draw(s tcell.Screen) {
	m.drawn++
	DrawText(s, 0, 1, tcell.StyleDefault, "hello")
}

func TestOverlayDrawsAfterFrame(t *testing.T) {
	term, screen := newSimTerminal(t, "halfblock")
	m := &marker{}
	term.AddOverlay(m)
	require.NoError(t, term.Present(4, 4, make([]float32, 64)))
	assert.Equal(t, 1, m.drawn)
	ch, _, _, _ := screen.GetContent(0, 1)
	assert.Equal(t, 'h', ch)
	ch, _, _, _ = screen.GetContent(3, 1)
	assert.Equal(t, 'l', ch, "clipped at the screen edge")
}

func TestResizeListenersAllRun(t *testing.T) {
	term, screen := newSimTerminal(t, "halfblock")
	var got [2]int
	var order []string
	term.AddResizeListener(func(w, h int) {
		got = [2]int{w, h}
		order = append(order, "renderer")
	})
	term.AddResizeListener(func(int, int) { order = append(order, "camera") })
	screen.SetSize(10, 5)
	term.Inject(tcell.NewEventResize(10, 5))
	assert.Equal(t, [2]int{10, 10}, got)
	assert.Equal(t, []string{"renderer", "camera"}, order)
}

func TestKeysBecomeActions(t *testing.T) {
	term, _ := newSimTerminal(t, "halfblock")
	in := term.Input()

	term.Inject(tcell.NewEventKey(tcell.KeyRune, 'w', tcell.ModNone))
	assert.True(t, in.Pressed(ActionForward))
	assert.True(t, in.Held(ActionForward))
	assert.Equal(t, []Action{ActionForward}, in.HeldActions())

	for i := 0; i < holdFrames; i++ {
		in.EndFrame()
	}
	assert.False(t, in.Held(ActionForward))
	assert.False(t, in.Pressed(ActionForward))

	assert.True(t, term.Pump())
	require.True(t, term.Post(tcell.NewEventKey(tcell.KeyRune, 'a', tcell.ModNone)))
	assert.False(t, in.Held(ActionLeft), "posted events wait for the pump")
	assert.True(t, term.Pump())
	assert.True(t, in.Held(ActionLeft))

	term.Inject(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))
	assert.False(t, term.Pump())
}

func TestMouseDrag(t *testing.T) {
	in := NewInput()
	in.Handle(tcell.NewEventMouse(1, 1, tcell.Button1, tcell.ModNone))
	in.Handle(tcell.NewEventMouse(3, 2, tcell.Button1, tcell.ModNone))
	dx, dy := in.MouseDelta()
	assert.Equal(t, float32(16), dx)
	assert.Equal(t, float32(16), dy)

	in.EndFrame()
	in.Handle(tcell.NewEventMouse(5, 5, tcell.ButtonNone, tcell.ModNone))
	dx, _ = in.MouseDelta()
	assert.Zero(t, dx)
	assert.Equal(t, "look-left", ActionLookLeft.String())
}
