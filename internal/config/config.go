package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	Email        EmailConfig        `yaml:"email"`
	Subscription SubscriptionConfig `yaml:"subscription"`
	Storage      StorageConfig      `yaml:"storage"`
	Content      ContentConfig      `yaml:"content"`
	Insights     InsightsConfig     `yaml:"insights"`
	Analytics    AnalyticsConfig    `yaml:"analytics"`
	Auth         AuthConfig         `yaml:"auth"`
	RateLimit    RateLimitConfig    `yaml:"rate_limit"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port        int      `yaml:"port"`
	Host        string   `yaml:"host"`
	BaseURL     string   `yaml:"base_url"` // public site origin used in emails and the sitemap
	CORSOrigins []string `yaml:"cors_origins"`
}

// GetHost returns the server host, listening on all interfaces inside containers.
func (c ServerConfig) GetHost() string {
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// DatabaseConfig selects the persistence backend.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // "postgres" or "memory"
	URL                    string `yaml:"url"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// ConnMaxLifetime returns the pool connection lifetime.
func (c DatabaseConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(c.ConnMaxLifetimeMinutes) * time.Minute
}

// RedisConfig is optional; an empty URL disables Redis features.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// EmailConfig configures outbound mail.
type EmailConfig struct {
	Provider          string `yaml:"provider"` // "ses", "resend" or "log"
	From              string `yaml:"from"`
	AdminEmail        string `yaml:"admin_email"`
	UnsubscribeSecret string `yaml:"unsubscribe_secret"`
	TimeoutSeconds    int    `yaml:"timeout_seconds"`
	RetryAttempts     int    `yaml:"retry_attempts"`

	ResendAPIKey  string `yaml:"resend_api_key"`
	ResendBaseURL string `yaml:"resend_base_url"`

	SESRegion    string `yaml:"ses_region"`
	SESAccessKey string `yaml:"ses_access_key"`
	SESSecretKey string `yaml:"ses_secret_key"`
}

// Timeout returns the per-send timeout.
func (c EmailConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SubscriptionConfig controls the newsletter welcome email.
type SubscriptionConfig struct {
	PDFKey      string `yaml:"pdf_key"`
	PDFFilename string `yaml:"pdf_filename"`
	Subject     string `yaml:"subject"`
}

// StorageConfig holds document storage configuration
type StorageConfig struct {
	Type          string `yaml:"type"` // "local" or "aws"
	LocalPath     string `yaml:"local_path"`
	S3Bucket      string `yaml:"s3_bucket"`
	DynamoDBTable string `yaml:"dynamodb_table"` // optional revision log
	AWSRegion     string `yaml:"aws_region"`
	AWSProfile    string `yaml:"aws_profile"` // Empty string uses default credential chain (IAM role on ECS)
}

// GetAWSProfile returns the AWS profile, with environment variable override
func (c StorageConfig) GetAWSProfile() string {
	if envProfile := os.Getenv("AWS_PROFILE_OVERRIDE"); envProfile != "" {
		if envProfile == "none" || envProfile == "iam" {
			return ""
		}
		return envProfile
	}
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return ""
	}
	return c.AWSProfile
}

// ContentConfig names the stored documents.
type ContentConfig struct {
	DocumentKey string `yaml:"document_key"`
	SEOSeedKey  string `yaml:"seo_seed_key"`
}

// InsightsConfig tunes the campaign runner.
type InsightsConfig struct {
	LeaseTTLSeconds     int `yaml:"lease_ttl_seconds"`
	DripLimit           int `yaml:"drip_limit"`
	BroadcastLimit      int `yaml:"broadcast_limit"`
	PollIntervalSeconds int `yaml:"poll_interval_seconds"` // 0 disables the in-process poller
}

// LeaseTTL returns how long a campaign lease survives without extension.
func (c InsightsConfig) LeaseTTL() time.Duration {
	return time.Duration(c.LeaseTTLSeconds) * time.Second
}

// PollInterval returns the poller tick, zero when disabled.
func (c InsightsConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// AnalyticsConfig enables the SQS ingest path when QueueURL is set.
type AnalyticsConfig struct {
	QueueURL  string `yaml:"sqs_queue_url"`
	AWSRegion string `yaml:"aws_region"`
}

// AuthConfig holds admin authentication configuration
type AuthConfig struct {
	Enabled            bool   `yaml:"enabled"`
	GoogleClientID     string `yaml:"google_client_id"`
	GoogleClientSecret string `yaml:"google_client_secret"`
	AllowedDomain      string `yaml:"allowed_domain"`
	CookieName         string `yaml:"cookie_name"`
	CookieMaxAge       int    `yaml:"cookie_max_age"`
	AdminAPIKey        string `yaml:"admin_api_key"`
}

// RateLimitConfig limits public write endpoints per client IP.
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
}

// LoggingConfig configures pkg/logger.
type LoggingConfig struct {
	Level     string `yaml:"level"`
	RedactPII *bool  `yaml:"redact_pii"`
}

// ShouldRedact defaults to true when unset.
func (c LoggingConfig) ShouldRedact() bool {
	return c.RedactPII == nil || *c.RedactPII
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = "http://localhost:3000"
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{"http://localhost:3000"}
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetimeMinutes == 0 {
		cfg.Database.ConnMaxLifetimeMinutes = 30
	}
	if cfg.Email.Provider == "" {
		cfg.Email.Provider = "resend"
	}
	if cfg.Email.From == "" {
		cfg.Email.From = "onboarding@resend.dev"
	}
	if cfg.Email.UnsubscribeSecret == "" {
		cfg.Email.UnsubscribeSecret = "dev-secret"
	}
	if cfg.Email.TimeoutSeconds == 0 {
		cfg.Email.TimeoutSeconds = 30
	}
	if cfg.Email.ResendBaseURL == "" {
		cfg.Email.ResendBaseURL = "https://api.resend.com"
	}
	if cfg.Email.SESRegion == "" {
		cfg.Email.SESRegion = "us-east-1"
	}
	if cfg.Subscription.PDFKey == "" {
		cfg.Subscription.PDFKey = "insights.pdf"
	}
	if cfg.Subscription.PDFFilename == "" {
		cfg.Subscription.PDFFilename = "LumeWave-Insights.pdf"
	}
	if cfg.Subscription.Subject == "" {
		cfg.Subscription.Subject = "Your Insights PDF – LumeWave Digital"
	}
	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "local"
	}
	if cfg.Storage.LocalPath == "" {
		cfg.Storage.LocalPath = "./data"
	}
	if cfg.Storage.AWSRegion == "" {
		cfg.Storage.AWSRegion = "us-east-1"
	}
	if cfg.Content.DocumentKey == "" {
		cfg.Content.DocumentKey = "content.json"
	}
	if cfg.Content.SEOSeedKey == "" {
		cfg.Content.SEOSeedKey = "seo.json"
	}
	if cfg.Insights.LeaseTTLSeconds == 0 {
		cfg.Insights.LeaseTTLSeconds = 600
	}
	if cfg.Insights.DripLimit == 0 {
		cfg.Insights.DripLimit = 500
	}
	if cfg.Insights.BroadcastLimit == 0 {
		cfg.Insights.BroadcastLimit = 1000
	}
	if cfg.Analytics.AWSRegion == "" {
		cfg.Analytics.AWSRegion = cfg.Storage.AWSRegion
	}
	if cfg.Auth.CookieName == "" {
		cfg.Auth.CookieName = "lumewave_admin"
	}
	if cfg.Auth.CookieMaxAge == 0 {
		cfg.Auth.CookieMaxAge = 86400
	}
	if cfg.RateLimit.RequestsPerMinute == 0 {
		cfg.RateLimit.RequestsPerMinute = 30
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It loads a .env file (if present) before reading env vars, so secrets can
// live in .env locally and in real env vars in production. A missing config
// file is not an error: defaults plus environment are enough to boot.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg, err = Default(), nil
	}
	if err != nil {
		return nil, err
	}

	override := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := os.Getenv(k); v != "" {
				*dst = v
				return
			}
		}
	}

	override(&cfg.Server.BaseURL, "PUBLIC_BASE_URL", "NEXT_PUBLIC_BASE_URL")
	override(&cfg.Database.URL, "DATABASE_URL", "POSTGRES_URL")
	override(&cfg.Database.Driver, "DATABASE_DRIVER")
	override(&cfg.Redis.URL, "REDIS_URL", "REDIS_ADDR")
	override(&cfg.Email.Provider, "EMAIL_PROVIDER")
	override(&cfg.Email.From, "RESEND_FROM", "EMAIL_FROM")
	override(&cfg.Email.AdminEmail, "ADMIN_EMAIL")
	override(&cfg.Email.UnsubscribeSecret, "UNSUBSCRIBE_SECRET")
	override(&cfg.Email.ResendAPIKey, "RESEND_API_KEY")
	override(&cfg.Email.SESAccessKey, "AWS_SES_ACCESS_KEY")
	override(&cfg.Email.SESSecretKey, "AWS_SES_SECRET_KEY")
	override(&cfg.Email.SESRegion, "AWS_SES_REGION")
	override(&cfg.Subscription.PDFKey, "SUBSCRIPTION_PDF_PATH")
	override(&cfg.Storage.S3Bucket, "CONTENT_S3_BUCKET")
	override(&cfg.Storage.DynamoDBTable, "CONTENT_REVISIONS_TABLE")
	override(&cfg.Analytics.QueueURL, "ANALYTICS_SQS_QUEUE_URL")
	override(&cfg.Auth.AdminAPIKey, "ADMIN_API_KEY")
	override(&cfg.Auth.GoogleClientID, "GOOGLE_CLIENT_ID")
	override(&cfg.Auth.GoogleClientSecret, "GOOGLE_CLIENT_SECRET")
	override(&cfg.Auth.AllowedDomain, "AUTH_ALLOWED_DOMAIN")
	override(&cfg.Logging.Level, "LOG_LEVEL")

	if cfg.Auth.GoogleClientID != "" && cfg.Auth.GoogleClientSecret != "" {
		cfg.Auth.Enabled = true
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = splitList(v)
	}
	cfg.Server.BaseURL = strings.TrimRight(cfg.Server.BaseURL, "/")

	return cfg, nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
