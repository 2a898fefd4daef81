package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Storage  StorageConfig
	Keys     APIKeys
	Ai       AIConfig
	Cache    CacheConfig
	Stream   StreamConfig
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

type StorageConfig struct {
	SupabaseURL string
	SupabaseKey string
	Bucket      string
}

type APIKeys struct {
	GoogleGemini string
	Pinecone     string
	IndexTopic   string // Paper indexing topic
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "ollama", etc
	LLMModel          string // e.g. "llama3", "qwen2.5"

	VectorBackend string // "pinecone" or "pgvector"
	PineconeHost  string
	TopK          int
	NoiseFloor    float64 // chunks at or below this score are dropped
	MaxTokens     int     // context budget for retrieved evidence

	// Heuristic knobs for answer cleaning. These are approximate by nature;
	// tune here rather than in code.
	EchoSimilarity       float64
	InsufficiencyPhrases []string
}

type CacheConfig struct {
	CorpusTTL    time.Duration
	ByteCacheTTL time.Duration
	BuildTimeout time.Duration
}

type StreamConfig struct {
	ThinkingTick     time.Duration
	FragmentTick     time.Duration
	FragmentCount    int
	SynthesisTimeout time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Storage: StorageConfig{
			SupabaseURL: getEnv("SUPABASE_URL", ""),
			SupabaseKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
			Bucket:      getEnv("SUPABASE_BUCKET", "uploadedpdfs"),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			Pinecone:     getEnv("PINECONE_API_KEY", ""),
			IndexTopic:   getEnv("INDEX_PAPER_TOPIC_NAME", "INDEX_PAPER"),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			VectorBackend:     getEnv("VECTOR_BACKEND", "pgvector"),
			PineconeHost:      getEnv("PINECONE_HOST", ""),
			TopK:              getEnvAsInt("RETRIEVAL_TOP_K", 5),
			NoiseFloor:        getEnvAsFloat("RETRIEVAL_NOISE_FLOOR", 0.3),
			MaxTokens:         getEnvAsInt("CONTEXT_MAX_TOKENS", 3000),
			EchoSimilarity:    getEnvAsFloat("ANSWER_ECHO_SIMILARITY", 0.7),
			InsufficiencyPhrases: getEnvAsList("ANSWER_INSUFFICIENCY_PHRASES", []string{
				"cannot answer",
				"not enough information",
				"insufficient information",
				"no relevant information found",
			}),
		},
		Cache: CacheConfig{
			CorpusTTL:    getEnvAsDuration("CORPUS_CACHE_TTL", 30*time.Minute),
			ByteCacheTTL: getEnvAsDuration("PAPER_BYTE_CACHE_TTL", 5*time.Minute),
			BuildTimeout: getEnvAsDuration("CORPUS_BUILD_TIMEOUT", 2*time.Minute),
		},
		Stream: StreamConfig{
			ThinkingTick:     getEnvAsDuration("STREAM_THINKING_TICK", 800*time.Millisecond),
			FragmentTick:     getEnvAsDuration("STREAM_FRAGMENT_TICK", 50*time.Millisecond),
			FragmentCount:    getEnvAsInt("STREAM_FRAGMENT_COUNT", 20),
			SynthesisTimeout: getEnvAsDuration("SYNTHESIS_TIMEOUT", 90*time.Second),
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

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
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

func getEnvAsList(key string, fallback []string) []string {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	parts := strings.Split(strValue, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
