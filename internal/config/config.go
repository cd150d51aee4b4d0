package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Messaging MessagingConfig
	Keys      APIKeys
	Ai        AIConfig
	Rag       RAGConfig
	Indexer   IndexerConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
}

type DatabaseConfig struct {
	Connection  string
	VectorStore string // "postgres" or "memory"
}

type MessagingConfig struct {
	NatsURL             string
	RedisURL            string
	ReviewInsertedTopic string
}

type APIKeys struct {
	OpenAI string
}

type AIConfig struct {
	EmbeddingProvider   string // "openai" or "ollama"
	EmbeddingModel      string
	EmbeddingDimensions int
	OpenAIBaseURL       string
	OllamaBaseURL       string
	LLMProvider         string // "openai" or "ollama"
	LLMModel            string
	LLMTemperature      float64
	CallTimeout         time.Duration
	RetryMaxAttempts    int
}

// RAGConfig holds the retrieval and generation knobs. None of these are
// hardcoded in the pipeline.
type RAGConfig struct {
	ScoreThreshold float64
	CandidateCap   int
	HistoryWindow  int
	StageTimeout   time.Duration
	FormatMessages bool
}

type IndexerConfig struct {
	SweepInterval time.Duration
	SweepBatch    int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3001"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.json"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Database: DatabaseConfig{
			Connection:  getEnv("DB_CONNECTION_STRING", ""),
			VectorStore: getEnv("VECTOR_STORE", "postgres"),
		},
		Messaging: MessagingConfig{
			NatsURL:             getEnv("NATS_URL", ""),
			RedisURL:            getEnv("REDIS_URL", ""),
			ReviewInsertedTopic: getEnv("REVIEW_INSERTED_TOPIC", "REVIEW_INSERTED"),
		},
		Keys: APIKeys{
			OpenAI: getEnv("OPENAI_API_KEY", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider:   getEnv("EMBEDDING_PROVIDER", "openai"),
			EmbeddingModel:      getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			EmbeddingDimensions: getEnvAsInt("EMBEDDING_DIMENSIONS", 1536),
			OpenAIBaseURL:       getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			OllamaBaseURL:       getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			LLMProvider:         getEnv("LLM_PROVIDER", "openai"),
			LLMModel:            getEnv("LLM_MODEL", "gpt-4.1-nano-2025-04-14"),
			LLMTemperature:      getEnvAsFloat("LLM_TEMPERATURE", 0.1),
			CallTimeout:         getEnvAsSeconds("EXTERNAL_CALL_TIMEOUT_SECONDS", 30),
			RetryMaxAttempts:    getEnvAsInt("RETRY_MAX_ATTEMPTS", 3),
		},
		Rag: RAGConfig{
			ScoreThreshold: getEnvAsFloat("RAG_SCORE_THRESHOLD", 0.5),
			CandidateCap:   getEnvAsInt("RAG_CANDIDATE_CAP", 100),
			HistoryWindow:  getEnvAsInt("RAG_HISTORY_WINDOW", 10),
			StageTimeout:   getEnvAsSeconds("RAG_STAGE_TIMEOUT_SECONDS", 60),
			FormatMessages: getEnvAsBool("RAG_FORMAT_MESSAGES", true),
		},
		Indexer: IndexerConfig{
			SweepInterval: getEnvAsSeconds("INDEXER_SWEEP_INTERVAL_SECONDS", 60),
			SweepBatch:    getEnvAsInt("INDEXER_SWEEP_BATCH", 100),
		},
	}
}

// Validate reports every missing or invalid setting at once. A non-nil
// result must abort startup.
func (c *Config) Validate() error {
	var problems []string

	if c.Database.VectorStore != "memory" && c.Database.VectorStore != "postgres" {
		problems = append(problems, "VECTOR_STORE must be 'postgres' or 'memory'")
	}
	if c.Database.VectorStore == "postgres" && c.Database.Connection == "" {
		problems = append(problems, "DB_CONNECTION_STRING is required when VECTOR_STORE=postgres")
	}

	switch c.Ai.EmbeddingProvider {
	case "openai":
		if c.Keys.OpenAI == "" {
			problems = append(problems, "OPENAI_API_KEY is required for the openai embedding provider")
		}
	case "ollama":
	default:
		problems = append(problems, "unsupported EMBEDDING_PROVIDER: "+c.Ai.EmbeddingProvider)
	}
	if c.Ai.EmbeddingModel == "" {
		problems = append(problems, "EMBEDDING_MODEL is required")
	}
	if c.Ai.EmbeddingDimensions <= 0 {
		problems = append(problems, "EMBEDDING_DIMENSIONS must be positive")
	}

	switch c.Ai.LLMProvider {
	case "openai":
		if c.Keys.OpenAI == "" {
			problems = append(problems, "OPENAI_API_KEY is required for the openai LLM provider")
		}
	case "ollama":
	default:
		problems = append(problems, "unsupported LLM_PROVIDER: "+c.Ai.LLMProvider)
	}
	if c.Ai.LLMModel == "" {
		problems = append(problems, "LLM_MODEL is required")
	}

	if c.Rag.CandidateCap <= 0 {
		problems = append(problems, "RAG_CANDIDATE_CAP must be positive")
	}
	if c.Rag.HistoryWindow < 0 {
		problems = append(problems, "RAG_HISTORY_WINDOW must not be negative")
	}

	if len(problems) > 0 {
		return &ConfigurationError{Problems: problems}
	}
	return nil
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

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
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

func getEnvAsSeconds(key string, fallback int) time.Duration {
	return time.Duration(getEnvAsInt(key, fallback)) * time.Second
}
