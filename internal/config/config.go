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
	Auth     AuthConfig
	Ai       AIConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	StreamLogFilePath  string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	// Enabled gates all persistence. With it off the service still answers
	// every endpoint from in-memory fallbacks.
	Enabled    bool
	Connection string
}

type AuthConfig struct {
	JWTSecret string
}

type AIConfig struct {
	LLMProvider     string // "ollama" or "openai"
	LLMModel        string // e.g. "llama3", "gpt-3.5-turbo"
	OllamaBaseURL   string
	OpenAIBaseURL   string
	OpenAIAPIKey    string
	DetectorBackend string // "http" or "mock"
	DetectorBaseURL string // model sidecar (FER/DeepFace service)
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			StreamLogFilePath:  getEnv("STREAM_LOG_FILE_PATH", "logs/stream.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Enabled:    getEnvAsBool("DATABASE_ENABLED", true),
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Ai: AIConfig{
			LLMProvider:     getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:        getEnv("LLM_MODEL", "llama3"),
			OllamaBaseURL:   getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
			DetectorBackend: getEnv("DETECTOR_BACKEND", "mock"),
			DetectorBaseURL: getEnv("DETECTOR_BASE_URL", "http://localhost:5001"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
