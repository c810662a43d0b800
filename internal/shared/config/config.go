package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string
	DatabaseURL     string

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	S3Endpoint      string
	SSEKMSKeyID     string

	LLMProvider             string
	LLMModel                string
	OpenAIAPIKey            string
	OpenAIBaseURL           string
	OpenAITimeout           time.Duration
	ClassificationThreshold float64

	EnableCache bool
	RedisURL    string
	CacheTTL    time.Duration

	MinWords           int
	RequiredParagraphs int
	TopNWords          int
	ReportTemplatePath string
	MinParagraphWords  int

	MaxFileSizeBytes  int64
	AllowedExtensions []string

	APIKeyEnabled      bool
	APIKey             string
	RateLimitEnabled   bool
	RateLimitPerMinute int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	cfg := Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		DatabaseURL:     dbURL,

		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),
		S3Endpoint:      getEnv("S3_ENDPOINT", ""),
		SSEKMSKeyID:     getEnv("SSE_KMS_KEY_ID", ""),

		LLMProvider:             normalizeProvider(getEnv("LLM_PROVIDER", "heuristic")),
		LLMModel:                getEnv("LLM_MODEL", "gpt-4o-mini"),
		OpenAIAPIKey:            os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:           os.Getenv("OPENAI_BASE_URL"),
		OpenAITimeout:           time.Duration(getInt("OPENAI_TIMEOUT_SECONDS", 30)) * time.Second,
		ClassificationThreshold: getFloat("CLASSIFICATION_THRESHOLD", 0.5),

		EnableCache: getBool("ENABLE_CACHE", false),
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379/0"),
		CacheTTL:    time.Duration(getInt("CACHE_TTL_SECONDS", 86400)) * time.Second,

		MinWords:           getInt("MIN_WORDS", 2000),
		RequiredParagraphs: getInt("REQUIRED_PARAGRAPHS", 8),
		TopNWords:          getInt("TOP_N_WORDS", 10),
		ReportTemplatePath: getEnv("REPORT_TEMPLATE_PATH", ""),
		MinParagraphWords:  getInt("MIN_PARAGRAPH_WORDS", 0),

		MaxFileSizeBytes:  int64(getInt("MAX_FILE_SIZE_MB", 50)) << 20,
		AllowedExtensions: splitAndTrim(strings.ToLower(getEnv("ALLOWED_EXTENSIONS", "pdf,docx,txt,md"))),

		APIKeyEnabled:      getBool("API_KEY_ENABLED", false),
		APIKey:             os.Getenv("API_KEY"),
		RateLimitEnabled:   getBool("RATE_LIMIT_ENABLED", false),
		RateLimitPerMinute: getInt("RATE_LIMIT_PER_MINUTE", 60),
	}

	if cfg.APIKeyEnabled && cfg.APIKey == "" {
		log.Printf("API_KEY_ENABLED is set but API_KEY is empty; all requests will be rejected")
	}
	if cfg.LLMProvider == "openai" && cfg.OpenAIAPIKey == "" {
		log.Printf("LLM_PROVIDER=openai requires OPENAI_API_KEY")
	}
	return cfg
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config: invalid %s=%q, using %d", key, raw, def)
		return def
	}
	return val
}

func getFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("config: invalid %s=%q, using %v", key, raw, def)
		return def
	}
	return val
}

func getBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("config: invalid %s=%q, using %v", key, raw, def)
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "test":
		return "test"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "openai":
		return "openai"
	case "none", "off", "disabled":
		return "none"
	default:
		return "heuristic"
	}
}
