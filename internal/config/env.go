package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Env holds environment-sourced settings for external services.
type Env struct {
	DatabaseURL       string // postgres connection string; empty selects the sqlite backend
	SQLitePath        string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	MinioEndpoint     string
	MinioAccessKey    string
	MinioSecretKey    string
	MinioBucket       string
	MinioUseSSL       bool
	LibreTranslateURL string
	OllamaURL         string
	OllamaModel       string
	OpenAIAPIKey      string
	GeminiAPIKey      string
	PipelineConfig    string
	UploadDir         string
	ListenAddr        string
	Environment       string
}

// LoadEnv loads variables from a .env file if one exists, then reads
// the process environment. Missing optional services leave their
// fields empty; the wiring layer decides what is required.
func LoadEnv() (*Env, error) {
	envPaths := []string{".env", ".env.local", "../.env"}
	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Load(envPath); err != nil {
				return nil, fmt.Errorf("error loading %s file: %w", envPath, err)
			}
			break
		}
	}

	redisDB := 0
	if s := os.Getenv("REDIS_DB"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB %q: %w", s, err)
		}
		redisDB = n
	}

	return &Env{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		SQLitePath:        getEnvOrDefault("SQLITE_PATH", "data/videochat.db"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:           redisDB,
		MinioEndpoint:     os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey:    getEnvOrDefault("MINIO_ACCESS_KEY", "minioadmin"),
		MinioSecretKey:    getEnvOrDefault("MINIO_SECRET_KEY", "minioadmin"),
		MinioBucket:       getEnvOrDefault("MINIO_BUCKET", "videos"),
		MinioUseSSL:       os.Getenv("MINIO_USE_SSL") == "true",
		LibreTranslateURL: getEnvOrDefault("LIBRETRANSLATE_URL", "http://localhost:5000"),
		OllamaURL:         getEnvOrDefault("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel:       getEnvOrDefault("OLLAMA_MODEL", "lfm2.5-thinking"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		PipelineConfig:    getEnvOrDefault("PIPELINE_CONFIG", "configs/pipeline.yaml"),
		UploadDir:         getEnvOrDefault("UPLOAD_DIR", "data/videos"),
		ListenAddr:        getEnvOrDefault("LISTEN_ADDR", ":8000"),
		Environment:       getEnvOrDefault("ENVIRONMENT", "development"),
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
