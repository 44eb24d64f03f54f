package editor

import (
	"fmt"
	"strings"

	"github.com/emberforge/ember/internal/platform"
	"github.com/gdamore/tcell/v2"
)

var (
	panelStyle    = tcell.StyleDefault.Background(tcell.ColorNavy).Foreground(tcell.ColorWhite)
	titleStyle    = panelStyle.Bold(true)
	selectedStyle = tcell.StyleDefault.Background(tcell.ColorWhite).Foreground(tcell.ColorNavy)
	debugStyle    = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorYellow)
)

// Draw implements platform.Overlay. The hierarchy takes the top half of the
// right third of the screen and the component panel the bottom half.
func (ed *Editor) Draw(s tcell.Screen) {
	if !ed.open {
		return
	}
	w, h := s.Size()
	x := 2 * w / 3
	pw := w - x
	mid := h / 2

	fill(s, x, 0, pw, mid, panelStyle)
	platform.DrawText(s, x+1, 0, titleStyle, "Hierarchy")
	sel := ed.scene.Index(ed.selected)
	for i, row := range ed.HierarchyRows() {
		y := i + 1
		if y >= mid {
			break
		}
		st := panelStyle
		if i == sel {
			st = selectedStyle
		}
		platform.DrawText(s, x+1, y, st, clip(row, pw-2))
	}

	fill(s, x, mid, pw, h-mid, panelStyle)
	platform.DrawText(s, x+1, mid, titleStyle, "Component")
	for i, row := range ed.ComponentRows() {
		y := mid + 1 + i
		if y >= h-1 {
			break
		}
		st := panelStyle
		if i == ed.comp {
			st = selectedStyle
		}
		platform.DrawText(s, x+1, y, st, clip(row, pw-2))
	}
	if ed.status != "" {
		platform.DrawText(s, x+1, h-1, panelStyle, clip(ed.status, pw-2))
	}

	ed.drawDebug(s)
}

func (ed *Editor) drawDebug(s tcell.Screen) {
	lines := []string{"Debug"}
	keys := make([]string, len(ed.held))
	for i, a := range ed.held {
		keys[i] = a.String()
	}
	lines = append(lines,
		"keys: "+strings.Join(keys, " "),
		fmt.Sprintf("mouse: %+.0f %+.0f", ed.mx, ed.my),
		fmt.Sprintf("entities: %d", ed.scene.Len()),
	)
	if ed.frames != nil {
		f := ed.frames.LastFrame()
		lines = append(lines, fmt.Sprintf("frame %d: %d draws, %d skipped", f.Frame, f.DrawCalls, f.Skipped))
	}
	if ed.phases != nil {
		var parts []string
		for _, t := range ed.phases.Timings() {
			parts = append(parts, fmt.Sprintf("%s %.1fms", t.Phase, float64(t.Elapsed.Microseconds())/1000))
		}
		lines = append(lines, "phases: "+strings.Join(parts, " "))
	}
	for _, st := range ed.scene.Components().Stats() {
		lines = append(lines, fmt.Sprintf("%s: %d/%d", st.Name, st.Valid, st.Capacity))
	}
	width := 0
	for _, l := range lines {
		width = max(width, len(l)+2)
	}
	fill(s, 0, 0, width, len(lines), debugStyle)
	for i, l := range lines {
		platform.DrawText(s, 1, i, debugStyle, l)
	}
}

func fill(s tcell.Screen, x, y, w, h int, st tcell.Style) {
	for row := y; row < y+h; row++ {
		for col := x; col < x+w; col++ {
			s.SetContent(col, row, ' ', nil, st)
		}
	}
}

func clip(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}
