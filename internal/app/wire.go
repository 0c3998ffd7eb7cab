//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"

	"videochat/internal/app/pipeline"
	"videochat/internal/config"
)

// InitializeApp assembles the full application graph.
func InitializeApp(env *config.Env) (*App, error) {
	wire.Build(
		provideZapLogger,
		provideSlogLogger,
		providePipelineConfig,
		provideEmbedder,
		provideDAO,
		provideTranscriber,
		provideTranslator,
		provideGenerator,
		provideTracker,
		provideArtifacts,
		provideRegistry,
		wire.Bind(new(prometheus.Registerer), new(*prometheus.Registry)),
		pipeline.NewMetrics,
		providePipeline,
		provideWorker,
		provideContainer,
		provideServer,
		wire.Struct(new(App), "*"),
	)
	return &App{}, nil
}
