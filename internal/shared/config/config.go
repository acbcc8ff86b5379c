package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Record media.
const (
	MediumMemory   = "memory"
	MediumFile     = "file"
	MediumPostgres = "postgres"
)

// LLM providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderNone   = "none"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string
	LogLevel        string

	RecordMedium string
	RecordFile   string
	DatabaseURL  string

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string

	LLMProvider  string
	LLMModel     string
	OpenAIAPIKey string
	GeminiAPIKey string

	EventsAMQPURL string
	EventsQueue   string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	UIRedirectURL      string
	JWTSecret          string
}

// Load reads configuration from environment variables with defaults. Values
// from .env and cmd/.env fill in variables that are not already set.
func Load() Config {
	if files := existing(".env", "cmd/.env"); len(files) > 0 {
		_ = godotenv.Load(files...)
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             normalizeEnv(getEnv("ENV", "dev")),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		LogLevel:        getEnv("LOG_LEVEL", "info"),

		RecordMedium: normalizeMedium(getEnv("RECORD_MEDIUM", ""), dbURL),
		RecordFile:   getEnv("RECORD_FILE", "./data/resumes.json"),
		DatabaseURL:  dbURL,

		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data/objects"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:     getEnv("SSE_KMS_KEY_ID", ""),

		LLMProvider:  normalizeProvider(getEnv("LLM_PROVIDER", ProviderNone)),
		LLMModel:     getEnv("LLM_MODEL", ""),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),

		EventsAMQPURL: getEnv("EVENTS_AMQP_URL", ""),
		EventsQueue:   getEnv("EVENTS_QUEUE", "resume_events"),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		UIRedirectURL:      getEnv("UI_REDIRECT_URL", "http://localhost:5173/auth/callback"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
	}
}

// IsProduction reports whether Env is production.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks combinations that cannot work at startup.
func (c Config) Validate() error {
	var errs []error
	if c.RecordMedium == MediumPostgres && c.DatabaseURL == "" {
		errs = append(errs, errors.New("RECORD_MEDIUM=postgres requires DATABASE_URL"))
	}
	if c.RecordMedium == MediumFile && strings.TrimSpace(c.RecordFile) == "" {
		errs = append(errs, errors.New("RECORD_MEDIUM=file requires RECORD_FILE"))
	}
	if c.ObjectStoreType == "s3" && (c.AWSRegion == "" || c.S3Bucket == "") {
		errs = append(errs, errors.New("OBJECT_STORE=s3 requires AWS_REGION and S3_BUCKET"))
	}
	switch c.LLMProvider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" || c.LLMModel == "" {
			errs = append(errs, errors.New("LLM_PROVIDER=openai requires OPENAI_API_KEY and LLM_MODEL"))
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			errs = append(errs, errors.New("LLM_PROVIDER=gemini requires GEMINI_API_KEY"))
		}
	}
	if c.IsProduction() {
		if c.JWTSecret == "" {
			errs = append(errs, errors.New("JWT_SECRET is required in production"))
		}
		if c.RecordMedium == MediumMemory {
			errs = append(errs, errors.New("RECORD_MEDIUM=memory is not allowed in production"))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

func existing(paths ...string) []string {
	var out []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
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
	default:
		return "dev"
	}
}

// normalizeMedium defaults to postgres when a database is configured.
func normalizeMedium(raw, dbURL string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case MediumMemory:
		return MediumMemory
	case MediumFile:
		return MediumFile
	case MediumPostgres, "pg":
		return MediumPostgres
	}
	if dbURL != "" {
		return MediumPostgres
	}
	return MediumFile
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
	case ProviderOpenAI:
		return ProviderOpenAI
	case ProviderGemini:
		return ProviderGemini
	default:
		return ProviderNone
	}
}
