package app

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	gopenai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"videochat/internal/api/server"
	v1routes "videochat/internal/api/v1/routes"
	"videochat/internal/api/v1/services"
	"videochat/internal/app/api"
	"videochat/internal/app/api/generate"
	openaiapi "videochat/internal/app/api/openai"
	"videochat/internal/app/api/translate"
	"videochat/internal/app/chat"
	"videochat/internal/app/embedding/provider"
	"videochat/internal/app/media"
	"videochat/internal/app/pipeline"
	"videochat/internal/app/repository"
	"videochat/internal/app/repository/migrate"
	"videochat/internal/app/repository/pg"
	"videochat/internal/app/repository/sqlite"
	"videochat/internal/app/status"
	"videochat/internal/app/storage"
	"videochat/internal/config"
)

// App bundles everything a running process needs.
type App struct {
	Server   *server.Server
	Worker   *pipeline.Worker
	Pipeline *pipeline.Pipeline
	DAO      repository.VideoDAO
	Logger   *zap.Logger
}

// Shutdown stops intake, drains in-flight jobs and releases resources.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Server.Shutdown(ctx)
	a.Worker.Stop()
	if cerr := a.DAO.Close(); cerr != nil && err == nil {
		err = cerr
	}
	a.Logger.Sync()
	return err
}

func provideZapLogger(env *config.Env) (*zap.Logger, error) {
	if env.Environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func provideSlogLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, nil))
}

func providePipelineConfig(env *config.Env) (config.PipelineConfig, error) {
	return config.LoadPipelineConfig(env.PipelineConfig)
}

// provideEmbedder picks the first configured embedding backend; with
// no API key at all, the deterministic local provider keeps the system
// usable for development.
func provideEmbedder(env *config.Env) (provider.EmbeddingProvider, error) {
	switch {
	case env.OpenAIAPIKey != "":
		return provider.NewOpenAIProvider(gopenai.NewClient(env.OpenAIAPIKey)), nil
	case env.GeminiAPIKey != "":
		return provider.NewGeminiProvider(context.Background(), env.GeminiAPIKey)
	default:
		return provider.NewMockProvider(1536), nil
	}
}

// provideDAO selects postgres when a connection string is configured,
// sqlite otherwise, and applies the schema either way. The embedder
// fixes the vector column dimension.
func provideDAO(env *config.Env, embedder provider.EmbeddingProvider) (repository.VideoDAO, error) {
	if env.DatabaseURL != "" {
		db, err := pg.Open(env.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := migrate.Postgres(db, embedder.GetProviderInfo().Dimension); err != nil {
			db.Close()
			return nil, err
		}
		return pg.NewVideoDB(db), nil
	}
	return sqlite.Open(env.SQLitePath)
}

func provideTranscriber(env *config.Env) api.Transcriber {
	return openaiapi.NewWhisperTranscriber(gopenai.NewClient(env.OpenAIAPIKey))
}

// provideTranslator checks the configured target languages against the
// service. An unsupported language still runs, its calls just degrade
// to the source text, so this is a warning and not a failure.
func provideTranslator(env *config.Env, cfg config.PipelineConfig, logger *zap.Logger) api.Translator {
	translator := translate.NewLibreTranslate(env.LibreTranslateURL, cfg.SourceLanguage, logger)
	if langs, err := translator.Languages(context.Background()); err != nil {
		logger.Warn("translation service unreachable", zap.Error(err))
	} else {
		supported := make(map[string]bool, len(langs))
		for _, l := range langs {
			supported[l.Code] = true
		}
		for _, code := range cfg.TargetLanguages {
			if !supported[code] {
				logger.Warn("target language not supported by translation service", zap.String("language", code))
			}
		}
	}
	return translator
}

func provideGenerator(env *config.Env, logger *zap.Logger) api.Generator {
	ollama := generate.NewOllama(env.OllamaURL, env.OllamaModel)
	if !ollama.Available(context.Background()) {
		logger.Warn("generation model not available, chat answers will degrade",
			zap.String("model", env.OllamaModel))
	}
	return ollama
}

func provideTracker(env *config.Env) pipeline.Tracker {
	if env.RedisAddr == "" {
		return pipeline.NewMemoryTracker()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     env.RedisAddr,
		Password: env.RedisPassword,
		DB:       env.RedisDB,
	})
	return pipeline.NewRedisTracker(client)
}

// provideArtifacts is nil when no MinIO endpoint is configured;
// artifacts then stay on local disk only.
func provideArtifacts(env *config.Env, logger *zap.Logger) storage.ArtifactStore {
	if env.MinioEndpoint == "" {
		return nil
	}
	store, err := storage.NewMinioStore(context.Background(), storage.MinioConfig{
		Endpoint:  env.MinioEndpoint,
		AccessKey: env.MinioAccessKey,
		SecretKey: env.MinioSecretKey,
		Bucket:    env.MinioBucket,
		UseSSL:    env.MinioUseSSL,
	})
	if err != nil {
		logger.Warn("object storage unavailable, artifacts stay local", zap.Error(err))
		return nil
	}
	return store
}

func provideRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return registry
}

func providePipeline(
	dao repository.VideoDAO,
	transcriber api.Transcriber,
	translator api.Translator,
	embedder provider.EmbeddingProvider,
	artifacts storage.ArtifactStore,
	tracker pipeline.Tracker,
	metrics *pipeline.Metrics,
	logger *zap.Logger,
	cfg config.PipelineConfig,
	env *config.Env,
) *pipeline.Pipeline {
	return pipeline.New(dao, media.NewFFmpeg(), transcriber, translator, embedder,
		artifacts, tracker, metrics, logger, cfg, env.UploadDir)
}

func provideWorker(p *pipeline.Pipeline, tracker pipeline.Tracker, logger *zap.Logger, cfg config.PipelineConfig) *pipeline.Worker {
	return pipeline.NewWorker(p, tracker, logger, cfg.Workers, cfg.Workers*4)
}

func provideContainer(
	dao repository.VideoDAO,
	worker *pipeline.Worker,
	tracker pipeline.Tracker,
	embedder provider.EmbeddingProvider,
	generator api.Generator,
	logger *zap.Logger,
	env *config.Env,
) *v1routes.ServiceContainer {
	orchestrator := chat.NewOrchestrator(dao, embedder, generator, logger)
	return &v1routes.ServiceContainer{
		VideoService:   services.NewVideoService(dao, worker, logger, env.UploadDir),
		ChatService:    services.NewChatService(orchestrator, dao, logger),
		JobService:     services.NewJobService(tracker),
		StatusStreamer: status.NewObserver(dao, logger),
	}
}

func provideServer(env *config.Env, container *v1routes.ServiceContainer, registry *prometheus.Registry, logger *slog.Logger) *server.Server {
	return server.NewServer(server.Config{
		Addr:        env.ListenAddr,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 2 * time.Minute,
		Environment: env.Environment,
	}, container, registry, logger)
}
