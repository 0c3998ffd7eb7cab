package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvDefaults(t *testing.T) {
	for _, key := range []string{
		"DATABASE_URL", "SQLITE_PATH", "REDIS_ADDR", "REDIS_DB",
		"LIBRETRANSLATE_URL", "OLLAMA_URL", "OLLAMA_MODEL",
		"PIPELINE_CONFIG", "UPLOAD_DIR", "LISTEN_ADDR", "ENVIRONMENT",
	} {
		t.Setenv(key, "")
	}

	env, err := LoadEnv()
	require.NoError(t, err)

	assert.Empty(t, env.DatabaseURL)
	assert.Equal(t, "data/videochat.db", env.SQLitePath)
	assert.Equal(t, "http://localhost:5000", env.LibreTranslateURL)
	assert.Equal(t, "http://localhost:11434", env.OllamaURL)
	assert.Equal(t, "configs/pipeline.yaml", env.PipelineConfig)
	assert.Equal(t, "data/videos", env.UploadDir)
	assert.Equal(t, ":8000", env.ListenAddr)
	assert.Equal(t, "development", env.Environment)
	assert.Equal(t, 0, env.RedisDB)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/videochat")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("LISTEN_ADDR", ":9090")
	t.Setenv("MINIO_USE_SSL", "true")

	env, err := LoadEnv()
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/videochat", env.DatabaseURL)
	assert.Equal(t, "localhost:6379", env.RedisAddr)
	assert.Equal(t, 3, env.RedisDB)
	assert.Equal(t, ":9090", env.ListenAddr)
	assert.True(t, env.MinioUseSSL)
}

func TestLoadEnvBadRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")

	_, err := LoadEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_DB")
}
