// Package platform adapts a terminal (through tcell) into the engine's
// window, presentation surface and input source.
package platform

import (
	"context"
	"sync"

	"github.com/emberforge/ember/internal/config"
	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
)

// Overlay draws on top of a presented frame, before the screen is shown.
type Overlay interface {
	Draw(screen tcell.Screen)
}

const asciiRamp = " .:-=+*#%@"

// Terminal is a render.Window and soft.Presenter backed by a tcell screen.
// In half-block mode every cell shows two vertically stacked pixels.
type Terminal struct {
	screen   tcell.Screen
	log      *zap.Logger
	events   chan tcell.Event
	onResize []func(int, int)
	input    *Input
	overlays []Overlay
	ascii    bool
	quit     bool
	closed   sync.Once
}

// NewTerminal initialises screen and enables mouse reporting.
func NewTerminal(screen tcell.Screen, cfg config.RenderConfig, log *zap.Logger) (*Terminal, error) {
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.EnableMouse()
	screen.HideCursor()
	screen.Clear()
	return &Terminal{
		screen: screen,
		log:    log,
		events: make(chan tcell.Event, 100),
		input:  NewInput(),
		ascii:  cfg.Shading == "ascii",
	}, nil
}

func (t *Terminal) Screen() tcell.Screen { return t.screen }
func (t *Terminal) Input() *Input        { return t.input }
func (t *Terminal) Handle() any          { return t }

// ClientSize is the drawable size in pixels.
func (t *Terminal) ClientSize() (int, int) {
	cols, rows := t.screen.Size()
	if t.ascii {
		return cols, rows
	}
	return cols, rows * 2
}

// AddResizeListener registers fn for size changes. Listeners run in
// registration order.
func (t *Terminal) AddResizeListener(fn func(int, int)) { t.onResize = append(t.onResize, fn) }

func (t *Terminal) AddOverlay(o Overlay) { t.overlays = append(t.overlays, o) }

// PollEvents forwards terminal events to the frame loop until ctx ends or
// the screen is finalised.
func (t *Terminal) PollEvents(ctx context.Context) error {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return nil
		}
		select {
		case t.events <- ev:
		case <-ctx.Done():
			return nil
		}
	}
}

// Pump applies queued events. It returns false once quit was requested.
func (t *Terminal) Pump() bool {
	for {
		select {
		case ev := <-t.events:
			t.handle(ev)
		default:
			return !t.quit
		}
	}
}

// Inject feeds an event directly, bypassing the poll goroutine.
func (t *Terminal) Inject(ev tcell.Event) { t.handle(ev) }

// Post queues ev for the next Pump, as if the poll goroutine had read it.
func (t *Terminal) Post(ev tcell.Event) bool {
	select {
	case t.events <- ev:
		return true
	default:
		t.log.Warn("event queue full, event dropped")
		return false
	}
}

func (t *Terminal) handle(ev tcell.Event) {
	switch ev.(type) {
	case *tcell.EventResize:
		t.screen.Sync()
		w, h := t.ClientSize()
		for _, fn := range t.onResize {
			fn(w, h)
		}
		return
	}
	t.input.Handle(ev)
	if t.input.Pressed(ActionQuit) {
		t.quit = true
	}
}

// Present draws a frame. Pixels beyond the screen are dropped.
func (t *Terminal) Present(w, h int, pix []float32) error {
	cols, rows := t.screen.Size()
	if t.ascii {
		for y := 0; y < min(h, rows); y++ {
			for x := 0; x < min(w, cols); x++ {
				r, g, b := rgb(pix, (y*w+x)*4)
				lum := (0.2126*float32(r) + 0.7152*float32(g) + 0.0722*float32(b)) / 255
				ch := rune(asciiRamp[min(len(asciiRamp)-1, int(lum*float32(len(asciiRamp))))])
				t.screen.SetContent(x, y, ch, nil, tcell.StyleDefault.Foreground(tcell.NewRGBColor(r, g, b)))
			}
		}
	} else {
		for row := 0; row < min((h+1)/2, rows); row++ {
			for x := 0; x < min(w, cols); x++ {
				tr, tg, tb := rgb(pix, ((2*row)*w+x)*4)
				style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(tr, tg, tb))
				if 2*row+1 < h {
					br, bg, bb := rgb(pix, ((2*row+1)*w+x)*4)
					style = style.Background(tcell.NewRGBColor(br, bg, bb))
				}
				t.screen.SetContent(x, row, '▀', nil, style)
			}
		}
	}
	for _, o := range t.overlays {
		o.Draw(t.screen)
	}
	t.screen.Show()
	return nil
}

func rgb(pix []float32, i int) (int32, int32, int32) {
	return to8(pix[i]), to8(pix[i+1]), to8(pix[i+2])
}

func to8(f float32) int32 {
	return int32(max(0, min(1, f))*255 + 0.5)
}

// Close restores the terminal. It is safe to call more than once.
func (t *Terminal) Close() {
	t.closed.Do(t.screen.Fini)
}

// DrawText writes s at (x, y), clipped to the screen width.
func DrawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	w, _ := s.Size()
	for _, r := range text {
		if x >= w {
			return
		}
		s.SetContent(x, y, r, nil, style)
		x++
	}
}
