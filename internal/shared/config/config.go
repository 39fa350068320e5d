package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v8"
)

// Config holds application configuration.
type Config struct {
	Env             string   `env:"ENV" envDefault:"dev"`
	Port            string   `env:"PORT" envDefault:"8080"`
	CORSAllowOrigin []string `env:"CORS_ALLOW_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
	PublicBaseURL   string   `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`
	LogLevel        string   `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string   `env:"LOG_FORMAT" envDefault:"json"`

	SubmitRatePerMinute int `env:"SUBMIT_RATE_PER_MINUTE" envDefault:"10"`
	ChatRatePerMinute   int `env:"CHAT_RATE_PER_MINUTE" envDefault:"30"`

	DatabaseURL     string `env:"DATABASE_URL"`
	SubmissionStore string `env:"SUBMISSION_STORE" envDefault:"postgres"`
	MongoURI        string `env:"MONGODB_URI"`
	MongoDatabase   string `env:"MONGODB_DATABASE" envDefault:"hairalyzer"`
	RedisURL        string `env:"REDIS_URL"`

	ObjectStoreType string `env:"OBJECT_STORE" envDefault:"local"`
	LocalStoreDir   string `env:"LOCAL_STORE_DIR" envDefault:"./data"`
	AWSRegion       string `env:"AWS_REGION"`
	S3Bucket        string `env:"S3_BUCKET"`
	S3Prefix        string `env:"S3_PREFIX" envDefault:"uploads"`
	S3PublicBaseURL string `env:"S3_PUBLIC_BASE_URL"`
	MinioEndpoint   string `env:"MINIO_ENDPOINT"`
	MinioAccessKey  string `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey  string `env:"MINIO_SECRET_KEY"`
	MinioBucket     string `env:"MINIO_BUCKET" envDefault:"hairalyzer"`
	MinioUseSSL     bool   `env:"MINIO_USE_SSL" envDefault:"true"`

	OpenAIAPIKey  string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string        `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	VisionModel   string        `env:"VISION_MODEL" envDefault:"gpt-4o"`
	ChatModel     string        `env:"CHAT_MODEL" envDefault:"gpt-4o-mini"`
	OpenAITimeout time.Duration `env:"OPENAI_TIMEOUT" envDefault:"120s"`

	AuthProviders           []string      `env:"AUTH_PROVIDERS" envSeparator:"," envDefault:"supabase"`
	SupabaseURL             string        `env:"SUPABASE_URL"`
	SupabaseAnonKey         string        `env:"SUPABASE_ANON_KEY"`
	SupabaseJWTSecret       string        `env:"SUPABASE_JWT_SECRET"`
	FirebaseProjectID       string        `env:"FIREBASE_PROJECT_ID"`
	FirebaseCredentialsFile string        `env:"FIREBASE_CREDENTIALS_FILE"`
	AuthCacheTTL            time.Duration `env:"AUTH_CACHE_TTL" envDefault:"60s"`
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (Config, error) {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.normalize()

	if cfg.Env == "production" && strings.TrimSpace(cfg.DatabaseURL) == "" && cfg.SubmissionStore == "postgres" {
		return Config{}, fmt.Errorf("DATABASE_URL is required in production")
	}
	return cfg, nil
}

// IsDevLike reports whether the environment tolerates in-memory fallbacks.
func (c Config) IsDevLike() bool {
	return c.Env == "dev" || c.Env == "local"
}

func (c *Config) normalize() {
	c.Env = normalizeEnv(c.Env)
	c.SubmissionStore = normalizeSubmissionStore(c.SubmissionStore)
	c.ObjectStoreType = normalizeStoreType(c.ObjectStoreType)
	c.CORSAllowOrigin = splitAndTrim(c.CORSAllowOrigin)
	c.AuthProviders = splitAndTrim(c.AuthProviders)
	for i, p := range c.AuthProviders {
		c.AuthProviders[i] = strings.ToLower(p)
	}
	c.PublicBaseURL = strings.TrimRight(strings.TrimSpace(c.PublicBaseURL), "/")
	c.OpenAIBaseURL = strings.TrimRight(strings.TrimSpace(c.OpenAIBaseURL), "/")
	if c.OpenAITimeout <= 0 {
		c.OpenAITimeout = 120 * time.Second
	}
	if c.AuthCacheTTL < 0 {
		c.AuthCacheTTL = 0
	}
}

func splitAndTrim(raw []string) []string {
	var out []string
	for _, p := range raw {
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

func normalizeSubmissionStore(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "mongo", "mongodb":
		return "mongo"
	case "memory":
		return "memory"
	default:
		return "postgres"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	case "minio":
		return "minio"
	default:
		return "local"
	}
}
