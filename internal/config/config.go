package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Ai       AIConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	StreamLogFilePath  string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	IndexTopic         string
	OtelEnabled        bool
	OtelEndpoint       string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	JWTSecret          string
	JWTIssuer          string
	JWTTTL             time.Duration
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	OpenAI             string
	GoogleGemini       string
}

type AIConfig struct {
	EmbeddingProvider string // "openai", "ollama" or "gemini"
	EmbeddingBaseURL  string
	EmbeddingModel    string
	EmbeddingCacheTTL time.Duration
	OllamaBaseURL     string
	LLMProvider       string // "openai" or "ollama"
	LLMBaseURL        string
	LLMModel          string
	Budget            BudgetConfig
	TopK              int
	ScoreBatchSize    int
	ScoreWorkers      int
}

// BudgetConfig holds every token limit, in model tokens.
type BudgetConfig struct {
	TotalTokens          int
	QACompletionTokens   int
	ChatCompletionTokens int
	SelectionTokens      int
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
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			StreamLogFilePath:  getEnv("STREAM_LOG_FILE_PATH", "logs/stream.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", ""),
			IndexTopic:         getEnv("INDEX_TEXT_TOPIC_NAME", "INDEX_TEXT_CONTENT"),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			JWTSecret:          getEnv("JWT_SECRET", ""),
			JWTIssuer:          getEnv("JWT_ISSUER", "ai-qa-be"),
			JWTTTL:             getEnvAsDuration("JWT_TTL", 30*24*time.Hour),
			GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:3000/api/auth/v1/google/callback"),
			OpenAI:             getEnv("OPENAI_API_KEY", ""),
			GoogleGemini:       getEnv("GOOGLE_GEMINI_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "openai"),
			EmbeddingBaseURL:  getEnv("EMBEDDING_BASE_URL", ""),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "text-embedding-ada-002"),
			EmbeddingCacheTTL: getEnvAsDuration("EMBEDDING_CACHE_TTL", time.Hour),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			LLMProvider:       getEnv("LLM_PROVIDER", "openai"),
			LLMBaseURL:        getEnv("LLM_BASE_URL", ""),
			LLMModel:          getEnv("LLM_MODEL", "gpt-3.5-turbo"),
			Budget: BudgetConfig{
				TotalTokens:          getEnvAsInt("TOTAL_TOKENS", 4096),
				QACompletionTokens:   getEnvAsInt("QA_COMPLETION_TOKENS", 1000),
				ChatCompletionTokens: getEnvAsInt("CHAT_COMPLETION_TOKENS", 1000),
				SelectionTokens:      getEnvAsInt("SELECTION_TOKENS", 200),
			},
			TopK:           getEnvAsInt("TOP_K", 5),
			ScoreBatchSize: getEnvAsInt("SCORE_BATCH_SIZE", 100),
			ScoreWorkers:   getEnvAsInt("SCORE_WORKERS", 0),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
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

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
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
