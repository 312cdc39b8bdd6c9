package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Provider names accepted by LLM_PROVIDER / EMBEDDING_PROVIDER.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderNone   = "none"
)

// Retrieval modes accepted by RETRIEVAL_MODE.
const (
	RetrievalVector = "vector"
	RetrievalSQL    = "sql"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string

	// Database
	DatabaseURL string
	RedisURL    string

	// JWT
	JWTSecret string

	// Providers
	OpenAIAPIKey      string
	GeminiAPIKey      string
	LLMProvider       string
	EmbeddingProvider string
	LLMModel          string
	GeminiModel       string
	LLMMaxTokens      int
	LLMTemperature    float64
	LLMTimeout        time.Duration
	EmbedTimeout      time.Duration

	// Retrieval
	RetrievalMode string
	MaxCandidates int
	VectorTopK    int

	// Cache
	FeedbackCacheTTL  time.Duration
	EmbeddingCacheTTL time.Duration

	// Background jobs
	JobWorkers   int
	JobQueueSize int

	// CORS
	AllowedOrigins []string
}

func Load() (*Config, error) {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),

		JWTSecret: getEnv("JWT_SECRET", ""),

		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		LLMProvider:       getEnv("LLM_PROVIDER", ProviderOpenAI),
		EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", ProviderGemini),
		LLMModel:          getEnv("LLM_MODEL", "gpt-4o-mini"),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.5-flash-lite"),
		LLMMaxTokens:      getEnvInt("LLM_MAX_TOKENS", 800),
		LLMTemperature:    getEnvFloat("LLM_TEMPERATURE", 0.3),
		LLMTimeout:        time.Duration(getEnvInt("LLM_TIMEOUT_SEC", 60)) * time.Second,
		EmbedTimeout:      time.Duration(getEnvInt("EMBED_TIMEOUT_SEC", 15)) * time.Second,

		RetrievalMode: getEnv("RETRIEVAL_MODE", RetrievalVector),
		MaxCandidates: getEnvInt("MAX_CANDIDATES", 20),
		VectorTopK:    getEnvInt("VECTOR_TOP_K", 30),

		FeedbackCacheTTL:  time.Duration(getEnvInt("FEEDBACK_CACHE_TTL_MIN", 5)) * time.Minute,
		EmbeddingCacheTTL: time.Duration(getEnvInt("EMBEDDING_CACHE_TTL_MIN", 60)) * time.Minute,

		JobWorkers:   getEnvInt("JOB_WORKERS", 4),
		JobQueueSize: getEnvInt("JOB_QUEUE_SIZE", 256),

		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
