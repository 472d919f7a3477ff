package admsg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ──────────────────────────────────────────────
// Configuration — environment surface with documented defaults
// ──────────────────────────────────────────────

// GeneratorConfig holds every tunable of the pipeline. All fields have
// defaults and are overridable per process via environment variables.
type GeneratorConfig struct {
	// ChatModel is the generative backend model name (CHAT_MODEL).
	ChatModel string
	// Temperature is the sampling temperature (TEMPERATURE).
	Temperature float32
	// RequestTimeout bounds a single generation call (REQUEST_TIMEOUT_SECONDS).
	RequestTimeout time.Duration
	// MaxSubjectLength / MaxBodyLength bound generated copy
	// (MAX_SUBJECT_LENGTH, MAX_BODY_LENGTH).
	MaxSubjectLength int
	MaxBodyLength    int
	// DefaultCampaignGoal substitutes an omitted goal (DEFAULT_CAMPAIGN_GOAL).
	DefaultCampaignGoal string
	// TopK is the product retrieval depth (TOP_K).
	TopK int

	// EmbeddingModel selects the embedding provider (EMBEDDING_MODEL_TYPE).
	EmbeddingModel string
	// VectorDBURL locates the vector store (VECTOR_DB_URL).
	VectorDBURL string
	// Collection names inside the vector store.
	BrandCollection   string // COLLECTION_NAME_BRANDS
	ProductCollection string // COLLECTION_NAME_PRODUCTS
	PersonaCollection string // COLLECTION_NAME_PERSONAS

	// Backend credentials. Whichever backend is wired reads its own key.
	OpenAIAPIKey string // OPENAI_API_KEY
	GeminiAPIKey string // GEMINI_API_KEY

	// RedisAddr enables the Redis result cache when non-empty (REDIS_ADDR).
	RedisAddr string
}

// NewGeneratorConfigFromEnv loads configuration from environment
// variables, reading a .env file first when one exists.
func NewGeneratorConfigFromEnv() *GeneratorConfig {
	_ = godotenv.Load()

	return &GeneratorConfig{
		ChatModel:           getEnv("CHAT_MODEL", "gpt-4-turbo-preview"),
		Temperature:         getEnvFloat32("TEMPERATURE", 0.7),
		RequestTimeout:      time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 60)) * time.Second,
		MaxSubjectLength:    getEnvInt("MAX_SUBJECT_LENGTH", 40),
		MaxBodyLength:       getEnvInt("MAX_BODY_LENGTH", 350),
		DefaultCampaignGoal: getEnv("DEFAULT_CAMPAIGN_GOAL", "재구매 유도"),
		TopK:                getEnvInt("TOP_K", 5),
		EmbeddingModel:      getEnv("EMBEDDING_MODEL_TYPE", "snowflake-arctic"),
		VectorDBURL:         getEnv("VECTOR_DB_URL", "http://localhost:8000"),
		BrandCollection:     getEnv("COLLECTION_NAME_BRANDS", "brand_guidelines"),
		ProductCollection:   getEnv("COLLECTION_NAME_PRODUCTS", "products"),
		PersonaCollection:   getEnv("COLLECTION_NAME_PERSONAS", "personas"),
		OpenAIAPIKey:        getEnv("OPENAI_API_KEY", ""),
		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		RedisAddr:           getEnv("REDIS_ADDR", ""),
	}
}

// Summary returns a human-readable configuration summary with credentials
// masked.
func (c *GeneratorConfig) Summary() string {
	return fmt.Sprintf(
		"Model: %s | Temp: %.1f | TopK: %d | Limits: %d/%d | Embedder: %s | VectorDB: %s | OpenAI key: %s | Gemini key: %s",
		c.ChatModel, c.Temperature, c.TopK, c.MaxSubjectLength, c.MaxBodyLength,
		c.EmbeddingModel, c.VectorDBURL, maskKey(c.OpenAIAPIKey), maskKey(c.GeminiAPIKey),
	)
}

func maskKey(key string) string {
	if key == "" {
		return "(unset)"
	}
	if len(key) <= 8 {
		return "***"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// --- internal helpers ---

func getEnv(key, fallback string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	return val
}

func getEnvInt(key string, fallback int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat32(key string, fallback float32) float32 {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(val, 32)
	if err != nil {
		return fallback
	}
	return float32(f)
}
