package system

import (
	"time"

	"github.com/emberforge/ember/internal/camera"
	coresys "github.com/emberforge/ember/internal/core/system"
	"github.com/emberforge/ember/internal/platform"
)

// EventPump is the window side of the input phase.
type EventPump interface {
	Input() *platform.Input
	// Pump drains pending window events and reports false once quit was
	// requested.
	Pump() bool
}

// InputSystem drains window events and flies the debug camera.
// Phase 0 (Input).
type InputSystem struct {
	pump EventPump
	cam  *camera.DebugCam
	quit func()
}

func NewInputSystem(pump EventPump, cam *camera.DebugCam, quit func()) *InputSystem {
	return &InputSystem{pump: pump, cam: cam, quit: quit}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(dt time.Duration) {
	in := s.pump.Input()
	in.EndFrame()
	if !s.pump.Pump() || in.Pressed(platform.ActionQuit) {
		s.quit()
		return
	}
	s.cam.Update(in, float32(dt.Seconds()))
}
