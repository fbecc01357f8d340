package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL string

	// Server ports
	APIPort  int
	SMTPPort int

	// SMTP ingest
	SMTPIngestEnabled bool
	SMTPDomain        string
	SMTPRecipients    []string

	// Model service (OpenAI-compatible)
	ModelAPIKey      string
	ModelBaseURL     string
	ModelName        string
	ModelTemperature float64
	ModelTimeout     time.Duration

	// Object storage (S3-compatible). If Endpoint is empty the server
	// falls back to local filesystem storage at LocalStoragePath.
	StorageEndpoint  string
	StorageAccessKey string
	StorageSecretKey string
	StorageBucket    string
	StorageUseSSL    bool
	PresignTTL       time.Duration
	LocalStoragePath string

	// Gmail integration
	GmailClientID     string
	GmailClientSecret string
	GmailRedirectURL  string

	// Logging
	LogLevel string

	// Security
	SessionSecret  string
	SessionTTL     time.Duration
	AllowedOrigins string
	AppEnv         string

	// Rate Limiting
	RateLimitRequests float64
	RateLimitBurst    int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}

	// Required: DATABASE_URL
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required but not set")
	}

	var err error
	if cfg.APIPort, err = intEnv("API_PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.SMTPPort, err = intEnv("SMTP_PORT", 2525); err != nil {
		return nil, err
	}

	// SMTP_INGEST_ENABLED (default: false)
	if v := os.Getenv("SMTP_INGEST_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("SMTP_INGEST_ENABLED must be a valid boolean: %w", err)
		}
		cfg.SMTPIngestEnabled = enabled
	}
	cfg.SMTPDomain = envOr("SMTP_DOMAIN", "localhost")
	if v := os.Getenv("SMTP_RECIPIENTS"); v != "" {
		for _, r := range strings.Split(v, ",") {
			if r = strings.TrimSpace(r); r != "" {
				cfg.SMTPRecipients = append(cfg.SMTPRecipients, r)
			}
		}
	}

	// Model service
	cfg.ModelAPIKey = os.Getenv("MODEL_API_KEY")
	cfg.ModelBaseURL = envOr("MODEL_BASE_URL", "https://api.openai.com/v1")
	cfg.ModelName = envOr("MODEL_NAME", "gpt-4o-mini")
	cfg.ModelTemperature = 0.0
	if v := os.Getenv("MODEL_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.ModelTemperature = f
		}
	}
	cfg.ModelTimeout = durationEnv("MODEL_TIMEOUT", 60*time.Second)

	// Object storage
	cfg.StorageEndpoint = os.Getenv("STORAGE_ENDPOINT")
	cfg.StorageAccessKey = os.Getenv("STORAGE_ACCESS_KEY")
	cfg.StorageSecretKey = os.Getenv("STORAGE_SECRET_KEY")
	cfg.StorageBucket = envOr("STORAGE_BUCKET", "invoices")
	if v := os.Getenv("STORAGE_USE_SSL"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.StorageUseSSL = b
		}
	}
	cfg.PresignTTL = durationEnv("PRESIGN_TTL", 15*time.Minute)
	cfg.LocalStoragePath = envOr("LOCAL_STORAGE_PATH", "./attachments")

	// Gmail integration
	cfg.GmailClientID = os.Getenv("GMAIL_CLIENT_ID")
	cfg.GmailClientSecret = os.Getenv("GMAIL_CLIENT_SECRET")
	cfg.GmailRedirectURL = os.Getenv("GMAIL_REDIRECT_URL")

	// LOG_LEVEL (default: info)
	cfg.LogLevel = envOr("LOG_LEVEL", "info")

	// Security configuration
	cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	cfg.SessionTTL = durationEnv("SESSION_TTL", 24*time.Hour)
	cfg.AllowedOrigins = os.Getenv("ALLOWED_ORIGINS")
	cfg.AppEnv = envOr("APP_ENV", "development")

	// Rate limiting configuration
	cfg.RateLimitRequests = 10.0
	if rps := os.Getenv("RATE_LIMIT_REQUESTS"); rps != "" {
		if v, err := strconv.ParseFloat(rps, 64); err == nil {
			cfg.RateLimitRequests = v
		}
	}
	cfg.RateLimitBurst = 20
	if burst := os.Getenv("RATE_LIMIT_BURST"); burst != "" {
		if v, err := strconv.Atoi(burst); err == nil {
			cfg.RateLimitBurst = v
		}
	}

	return cfg, nil
}

// LoadWithValidation loads and validates configuration, failing fast on errors
func LoadWithValidation() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Production-specific validation
	if cfg.AppEnv == "production" {
		if err := cfg.ValidateProduction(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DatabaseURL cannot be empty")
	}
	if c.APIPort <= 0 || c.APIPort > 65535 {
		return fmt.Errorf("APIPort must be between 1 and 65535")
	}
	if c.SMTPIngestEnabled && (c.SMTPPort <= 0 || c.SMTPPort > 65535) {
		return fmt.Errorf("SMTPPort must be between 1 and 65535")
	}
	if c.StorageEndpoint != "" && (c.StorageAccessKey == "" || c.StorageSecretKey == "") {
		return fmt.Errorf("STORAGE_ACCESS_KEY and STORAGE_SECRET_KEY are required when STORAGE_ENDPOINT is set")
	}
	if c.StorageEndpoint == "" && c.LocalStoragePath == "" {
		return fmt.Errorf("LocalStoragePath cannot be empty without an object storage endpoint")
	}
	return nil
}

// ValidateProduction performs additional validation for production environment
func (c *Config) ValidateProduction() error {
	if c.ModelAPIKey == "" {
		return fmt.Errorf("MODEL_API_KEY is required in production")
	}

	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required in production")
	}

	if c.AllowedOrigins == "" {
		return fmt.Errorf("ALLOWED_ORIGINS is required in production")
	}

	// Check for wildcard in production
	if strings.Contains(c.AllowedOrigins, "*") {
		return fmt.Errorf("wildcard (*) origins are not allowed in production")
	}

	// Check for sslmode=disable in database URL
	if strings.Contains(c.DatabaseURL, "sslmode=disable") {
		return fmt.Errorf("sslmode=disable is not allowed in production")
	}

	return nil
}

// OriginsList splits the configured CORS origins into a slice
func (c *Config) OriginsList() []string {
	if c.AllowedOrigins == "" {
		return nil
	}
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// LogConfig logs configuration values (excluding secrets)
func (c *Config) LogConfig(logger *slog.Logger) {
	logger.Info("configuration loaded",
		slog.Int("api_port", c.APIPort),
		slog.Int("smtp_port", c.SMTPPort),
		slog.Bool("smtp_ingest", c.SMTPIngestEnabled),
		slog.String("model", c.ModelName),
		slog.String("model_base_url", c.ModelBaseURL),
		slog.Bool("model_api_key_set", c.ModelAPIKey != ""),
		slog.Bool("object_storage", c.StorageEndpoint != ""),
		slog.String("storage_bucket", c.StorageBucket),
		slog.String("log_level", c.LogLevel),
		slog.String("app_env", c.AppEnv),
		slog.Bool("gmail_configured", c.GmailClientID != ""),
		slog.Float64("rate_limit_rps", c.RateLimitRequests),
		slog.Int("rate_limit_burst", c.RateLimitBurst),
	)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return n, nil
}

func durationEnv(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
