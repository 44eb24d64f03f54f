package system

import (
	"context"
	"time"

	coresys "github.com/emberforge/ember/internal/core/system"
	"github.com/emberforge/ember/internal/editor"
	"github.com/emberforge/ember/internal/platform"
)

// EditorSystem feeds input to the editor. Phase 1 (Editor).
type EditorSystem struct {
	ctx    context.Context
	editor *editor.Editor
	input  *platform.Input
}

func NewEditorSystem(ctx context.Context, ed *editor.Editor, in *platform.Input) *EditorSystem {
	return &EditorSystem{ctx: ctx, editor: ed, input: in}
}

func (s *EditorSystem) Phase() coresys.Phase { return coresys.PhaseEditor }

func (s *EditorSystem) Update(_ time.Duration) {
	s.editor.Update(s.ctx, s.input)
}
