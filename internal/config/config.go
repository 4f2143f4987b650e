package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Images   ImageConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	EmbeddingProvider  string // "hash" or "ollama"
	OllamaBaseURL      string
	OllamaModel        string
	OllamaEmbeddingDim int    // vector width the Ollama embedding model emits
	LLMProvider        string // "ollama", "openai", or "none"
	LLMModel           string // e.g. "llama3", "gpt-3.5-turbo"
	LLMBaseURL         string
	LLMAPIKey          string
}

// ImageConfig locates the rendered document-page images referenced by answers.
type ImageConfig struct {
	BaseURL    string
	PathPrefix string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider:  getEnv("EMBEDDING_PROVIDER", "hash"),
			OllamaBaseURL:      getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:        getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			OllamaEmbeddingDim: getEnvAsInt("OLLAMA_EMBEDDING_DIM", 768),
			LLMProvider:        getEnv("LLM_PROVIDER", "none"),
			LLMModel:           getEnv("LLM_MODEL", "gpt-3.5-turbo"),
			LLMBaseURL:         getEnv("LLM_BASE_URL", ""),
			LLMAPIKey:          getEnv("LLM_API_KEY", ""),
		},
		Images: ImageConfig{
			BaseURL:    getEnv("IMAGE_BASE_URL", ""),
			PathPrefix: getEnv("IMAGE_PATH_PREFIX", "/images"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
		log.Printf("Warn: %s is not an integer, using default %d", key, fallback)
	}
	return fallback
}
