// Package config handles application configuration loading. Values come from
// an optional .env file, the process environment and an optional YAML file,
// merged through viper into a single Config struct.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration values.
type Config struct {
	// Server settings
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"` // "development", "production", "testing"

	// PostgreSQL connection. DatabaseURL wins over the discrete fields.
	DatabaseURL string `mapstructure:"database_url"`
	DBHost      string `mapstructure:"db_host"`
	DBPort      string `mapstructure:"db_port"`
	DBUser      string `mapstructure:"db_user"`
	DBPassword  string `mapstructure:"db_password"`
	DBName      string `mapstructure:"db_name"`

	// Valkey (Redis-compatible cache + sessions)
	ValkeyHost     string `mapstructure:"valkey_host"`
	ValkeyPort     string `mapstructure:"valkey_port"`
	ValkeyPassword string `mapstructure:"valkey_password"`

	// AI provider settings
	AIProvider     string  `mapstructure:"ai_provider"` // "gemini", "openai", "claude", "mistral"
	AIRateLimit    float64 `mapstructure:"ai_rate_limit"`
	OpenAIKey      string  `mapstructure:"openai_api_key"`
	OpenAIModel    string  `mapstructure:"openai_model"`
	OpenAIBaseURL  string  `mapstructure:"openai_base_url"`
	GeminiKey      string  `mapstructure:"gemini_api_key"`
	GeminiModel    string  `mapstructure:"gemini_model"`
	GeminiImage    string  `mapstructure:"gemini_image_model"`
	GeminiBaseURL  string  `mapstructure:"gemini_base_url"`
	ClaudeKey      string  `mapstructure:"claude_api_key"`
	ClaudeModel    string  `mapstructure:"claude_model"`
	ClaudeBaseURL  string  `mapstructure:"claude_base_url"`
	MistralKey     string  `mapstructure:"mistral_api_key"`
	MistralModel   string  `mapstructure:"mistral_model"`
	MistralBaseURL string  `mapstructure:"mistral_base_url"`

	// S3-compatible object storage for generated images (optional)
	S3Endpoint      string `mapstructure:"s3_endpoint"`
	S3Region        string `mapstructure:"s3_region"`
	S3AccessKey     string `mapstructure:"s3_access_key"`
	S3SecretKey     string `mapstructure:"s3_secret_key"`
	S3BucketPublic  string `mapstructure:"s3_bucket_public"`
	S3BucketPrivate string `mapstructure:"s3_bucket_private"`
	S3PublicURL     string `mapstructure:"s3_public_url"`

	// Owner used when a request carries no session. Ignored in production.
	DevOwnerID string `mapstructure:"dev_owner_id"`

	// Generation thresholds
	SummarizeThreshold   int           `mapstructure:"summarize_threshold"`
	StyleSampleThreshold int           `mapstructure:"style_sample_threshold"`
	SlideCount           int           `mapstructure:"slide_count"`
	FetchTimeout         time.Duration `mapstructure:"fetch_timeout"`
	StyleCacheTTL        time.Duration `mapstructure:"style_cache_ttl"`

	// HTTP limits
	RateLimitPerMinute int           `mapstructure:"rate_limit_per_minute"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`

	// Carousel export
	RenderScale  float64       `mapstructure:"render_scale"`
	ExportSettle time.Duration `mapstructure:"export_settle_delay"`
	ExportURLTTL time.Duration `mapstructure:"export_url_ttl"`
}

// envBindings maps config keys to the environment variables that feed them.
var envBindings = []struct{ key, env string }{
	{"host", "APP_HOST"},
	{"port", "APP_PORT"},
	{"env", "APP_ENV"},

	{"database_url", "DATABASE_URL"},
	{"db_host", "POSTGRES_HOST"},
	{"db_port", "POSTGRES_PORT"},
	{"db_user", "POSTGRES_USER"},
	{"db_password", "POSTGRES_PASSWORD"},
	{"db_name", "POSTGRES_DB"},

	{"valkey_host", "VALKEY_HOST"},
	{"valkey_port", "VALKEY_PORT"},
	{"valkey_password", "VALKEY_PASSWORD"},

	{"ai_provider", "AI_PROVIDER"},
	{"ai_rate_limit", "AI_RATE_LIMIT"},
	{"openai_api_key", "OPENAI_API_KEY"},
	{"openai_model", "OPENAI_MODEL"},
	{"openai_base_url", "OPENAI_BASE_URL"},
	{"gemini_api_key", "GEMINI_API_KEY"},
	{"gemini_model", "GEMINI_MODEL"},
	{"gemini_image_model", "GEMINI_IMAGE_MODEL"},
	{"gemini_base_url", "GEMINI_BASE_URL"},
	{"claude_api_key", "CLAUDE_API_KEY"},
	{"claude_model", "CLAUDE_MODEL"},
	{"claude_base_url", "CLAUDE_BASE_URL"},
	{"mistral_api_key", "MISTRAL_API_KEY"},
	{"mistral_model", "MISTRAL_MODEL"},
	{"mistral_base_url", "MISTRAL_BASE_URL"},

	{"s3_endpoint", "S3_ENDPOINT"},
	{"s3_region", "S3_REGION"},
	{"s3_access_key", "S3_ACCESS_KEY"},
	{"s3_secret_key", "S3_SECRET_KEY"},
	{"s3_bucket_public", "S3_BUCKET_PUBLIC"},
	{"s3_bucket_private", "S3_BUCKET_PRIVATE"},
	{"s3_public_url", "S3_PUBLIC_URL"},

	{"dev_owner_id", "DEV_OWNER_ID"},

	{"summarize_threshold", "SUMMARIZE_THRESHOLD"},
	{"style_sample_threshold", "STYLE_SAMPLE_THRESHOLD"},
	{"slide_count", "SLIDE_COUNT"},
	{"fetch_timeout", "FETCH_TIMEOUT"},
	{"style_cache_ttl", "STYLE_CACHE_TTL"},

	{"rate_limit_per_minute", "RATE_LIMIT_PER_MINUTE"},
	{"request_timeout", "REQUEST_TIMEOUT"},

	{"render_scale", "RENDER_SCALE"},
	{"export_settle_delay", "EXPORT_SETTLE_DELAY"},
	{"export_url_ttl", "EXPORT_URL_TTL"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", "8080")
	v.SetDefault("env", "development")

	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "postcraft")
	v.SetDefault("db_password", "changeme")
	v.SetDefault("db_name", "postcraft")

	v.SetDefault("valkey_host", "localhost")
	v.SetDefault("valkey_port", "6379")

	v.SetDefault("ai_provider", "gemini")
	v.SetDefault("ai_rate_limit", 2.0)
	v.SetDefault("openai_model", "gpt-4o")
	v.SetDefault("openai_base_url", "https://api.openai.com/v1")
	v.SetDefault("gemini_model", "gemini-2.5-flash")
	v.SetDefault("gemini_image_model", "gemini-2.5-flash-image-preview")
	v.SetDefault("claude_model", "claude-sonnet-4-5")
	v.SetDefault("claude_base_url", "https://api.anthropic.com")
	v.SetDefault("mistral_model", "mistral-large-latest")
	v.SetDefault("mistral_base_url", "https://api.mistral.ai")

	v.SetDefault("s3_region", "fsn1")
	v.SetDefault("s3_bucket_public", "postcraft-public")
	v.SetDefault("s3_bucket_private", "postcraft-private")

	v.SetDefault("summarize_threshold", 15000)
	v.SetDefault("style_sample_threshold", 10)
	v.SetDefault("slide_count", 5)
	v.SetDefault("fetch_timeout", 10*time.Second)
	v.SetDefault("style_cache_ttl", 30*time.Minute)

	v.SetDefault("rate_limit_per_minute", 30)
	v.SetDefault("request_timeout", 120*time.Second)

	v.SetDefault("render_scale", 1.5)
	v.SetDefault("export_settle_delay", 100*time.Millisecond)
	v.SetDefault("export_url_ttl", time.Hour)
}

// Load reads configuration from .env, the environment and an optional YAML
// file named by CONFIG_FILE. It returns an error if critical values are
// missing in production mode or a threshold is not positive.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not read .env file", "error", err)
	}

	v := viper.New()
	setDefaults(v)
	for _, b := range envBindings {
		if err := v.BindEnv(b.key, b.env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", b.env, err)
		}
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Env == "production" {
		if c.DatabaseURL == "" && c.DBPassword == "changeme" {
			return fmt.Errorf("POSTGRES_PASSWORD or DATABASE_URL must be set in production")
		}
		if c.DevOwnerID != "" {
			return fmt.Errorf("DEV_OWNER_ID must not be set in production")
		}
	}
	if c.SummarizeThreshold <= 0 {
		return fmt.Errorf("SUMMARIZE_THRESHOLD must be positive, got %d", c.SummarizeThreshold)
	}
	if c.StyleSampleThreshold <= 0 {
		return fmt.Errorf("STYLE_SAMPLE_THRESHOLD must be positive, got %d", c.StyleSampleThreshold)
	}
	if c.SlideCount <= 0 {
		return fmt.Errorf("SLIDE_COUNT must be positive, got %d", c.SlideCount)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be positive, got %s", c.FetchTimeout)
	}
	if c.RenderScale <= 0 {
		return fmt.Errorf("RENDER_SCALE must be positive, got %g", c.RenderScale)
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// StorageEnabled reports whether enough S3 settings are present to connect.
func (c *Config) StorageEnabled() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != ""
}
