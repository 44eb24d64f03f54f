package platform

import "github.com/gdamore/tcell/v2"

// Action is a logical input the engine reacts to.
type Action int

const (
	ActionNone Action = iota
	ActionForward
	ActionBack
	ActionLeft
	ActionRight
	ActionRise
	ActionSink
	ActionLookLeft
	ActionLookRight
	ActionLookUp
	ActionLookDown
	ActionToggleEditor
	ActionNextEntity
	ActionPrevEntity
	ActionNextComponent
	ActionDeleteComponent
	ActionSave
	ActionPause
	ActionQuit
	actionCount
)

var actionNames = [actionCount]string{
	"none", "forward", "back", "left", "right", "rise", "sink",
	"look-left", "look-right", "look-up", "look-down",
	"editor", "next-entity", "prev-entity", "next-component", "delete-component",
	"save", "pause", "quit",
}

func (a Action) String() string {
	if a < 0 || a >= actionCount {
		return "unknown"
	}
	return actionNames[a]
}

var runeBindings = map[rune]Action{
	'w': ActionForward, 's': ActionBack, 'a': ActionLeft, 'd': ActionRight,
	'r': ActionRise, 'f': ActionSink,
	'n': ActionNextEntity, 'b': ActionPrevEntity, 'm': ActionNextComponent,
	'x': ActionDeleteComponent, 'S': ActionSave, 'p': ActionPause, 'q': ActionQuit,
}

var keyBindings = map[tcell.Key]Action{
	tcell.KeyLeft: ActionLookLeft, tcell.KeyRight: ActionLookRight,
	tcell.KeyUp: ActionLookUp, tcell.KeyDown: ActionLookDown,
	tcell.KeyTab: ActionToggleEditor, tcell.KeyEscape: ActionQuit, tcell.KeyCtrlC: ActionQuit,
}

// holdFrames approximates key-up, which terminals never report: a press
// counts as held for this many frames unless repeated.
const holdFrames = 3

// Input accumulates terminal key and mouse events between frames.
type Input struct {
	held    [actionCount]int
	pressed [actionCount]bool

	mouseX, mouseY int
	dragging       bool
	dx, dy         float32
}

func NewInput() *Input { return &Input{} }

// Handle feeds one terminal event into the input state.
func (in *Input) Handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		a := ActionNone
		if ev.Key() == tcell.KeyRune {
			a = runeBindings[ev.Rune()]
		} else {
			a = keyBindings[ev.Key()]
		}
		if a != ActionNone {
			in.Press(a)
		}
	case *tcell.EventMouse:
		x, y := ev.Position()
		if ev.Buttons()&tcell.Button1 != 0 {
			if in.dragging {
				// one cell is roughly eight pixels wide and sixteen tall
				in.dx += float32(x-in.mouseX) * 8
				in.dy += float32(y-in.mouseY) * 16
			}
			in.dragging = true
		} else {
			in.dragging = false
		}
		in.mouseX, in.mouseY = x, y
	}
}

// Press marks a as pressed this frame and held for the next few.
func (in *Input) Press(a Action) {
	in.pressed[a] = true
	in.held[a] = holdFrames
}

func (in *Input) Held(a Action) bool    { return in.held[a] > 0 }
func (in *Input) Pressed(a Action) bool { return in.pressed[a] }

// MouseDelta returns the drag distance in pixels since the last frame.
func (in *Input) MouseDelta() (float32, float32) { return in.dx, in.dy }

// EndFrame ages held keys and clears per-frame state.
func (in *Input) EndFrame() {
	for i := range in.held {
		if in.held[i] > 0 {
			in.held[i]--
		}
		in.pressed[i] = false
	}
	in.dx, in.dy = 0, 0
}

// HeldActions lists the actions currently held, for the debug panel.
func (in *Input) HeldActions() []Action {
	var out []Action
	for a := ActionNone + 1; a < actionCount; a++ {
		if in.held[a] > 0 {
			out = append(out, a)
		}
	}
	return out
}
