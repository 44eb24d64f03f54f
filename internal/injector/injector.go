//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"context"

	"github.com/emberforge/ember/internal/config"
	"github.com/emberforge/ember/internal/core/event"
	"github.com/emberforge/ember/internal/engine"
	"github.com/emberforge/ember/internal/render"
	"github.com/google/wire"
	"go.uber.org/zap"
)

// InitializeEngine builds an engine on the controlling terminal. The
// returned cleanup releases the engine, the database and the terminal, in
// that order.
func InitializeEngine(ctx context.Context, cfg *config.Config, log *zap.Logger) (*engine.Engine, func(), error) {
	wire.Build(
		ProvideWorld,
		event.NewBus,
		ProvideScene,
		ProvideScreen,
		ProvideTerminal,
		ProvideDevice,
		ProvideLoaders,
		ProvideRenderer,
		ProvideCamera,
		ProvideScripts,
		ProvideStore,
		ProvideEditor,
		render.NewSceneGraph,
		ProvideEngine,
	)
	return nil, nil, nil
}
