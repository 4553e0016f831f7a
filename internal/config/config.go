package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Upstream UpstreamConfig
	Chat     ChatConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	JWTSecret          string
	NatsURL            string
	RedisURL           string
}

// UpstreamConfig points at the two backends the gateway fronts: the
// question-answering service that streams answers, and the selection store
// that persists document scopes.
type UpstreamConfig struct {
	QABaseURL    string
	ScopeBaseURL string
}

type ChatConfig struct {
	MaxSelection int
	DefaultModel string
	StreamTopic  string
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
			JWTSecret:          getEnv("JWT_SECRET", ""),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Upstream: UpstreamConfig{
			QABaseURL:    getEnv("QA_BASE_URL", "http://localhost:8000"),
			ScopeBaseURL: getEnv("SCOPE_STORE_BASE_URL", "http://localhost:8100"),
		},
		Chat: ChatConfig{
			MaxSelection: getEnvAsInt("CHAT_MAX_SELECTION", 20),
			DefaultModel: getEnv("CHAT_DEFAULT_MODEL", "default"),
			StreamTopic:  getEnv("CHAT_STREAM_TOPIC_NAME", "CHAT_STREAM_DELTA"),
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
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
