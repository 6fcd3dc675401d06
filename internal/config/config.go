package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the environment driven configuration for the moderation service.
type Config struct {
	// Service Configuration
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"moderation-api"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"MODERATION_API_PORT" envDefault:"8287"`
	LogLevel        string        `env:"MODERATION_LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"MODERATION_LOG_FORMAT" envDefault:"json"`
	EnableTracing   bool          `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Database (required, no default)
	DatabaseURL string `env:"DB_POSTGRESQL_DSN,notEmpty"`

	// Database Connection Pool
	DBMaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBMaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"15"`
	DBConnLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`

	// Redis (submission change feed)
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"127.0.0.1:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka (object finalize events)
	KafkaBrokers       []string `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"127.0.0.1:9092"`
	KafkaFinalizeTopic string   `env:"KAFKA_FINALIZE_TOPIC" envDefault:"storage.object.finalized"`
	KafkaGroupID       string   `env:"KAFKA_GROUP_ID" envDefault:"moderation-api"`

	// S3 Storage Configuration
	S3Endpoint         string        `env:"MODERATION_S3_ENDPOINT"`
	S3EmulatorEndpoint string        `env:"MODERATION_S3_EMULATOR_ENDPOINT" envDefault:"http://127.0.0.1:9199"`
	S3Region           string        `env:"MODERATION_S3_REGION" envDefault:"us-west-2"`
	S3Bucket           string        `env:"MODERATION_S3_BUCKET,notEmpty"`
	S3AccessKeyID      string        `env:"MODERATION_S3_ACCESS_KEY_ID"`
	S3SecretKey        string        `env:"MODERATION_S3_SECRET_ACCESS_KEY"`
	S3UsePathStyle     bool          `env:"MODERATION_S3_USE_PATH_STYLE" envDefault:"true"`
	SignedURLTTL       time.Duration `env:"MODERATION_SIGNED_URL_TTL" envDefault:"720h"`

	// Submission Configuration
	UploadPrefix   string `env:"MODERATION_UPLOAD_PREFIX" envDefault:"uploads/"`
	MaxUploadBytes int64  `env:"MODERATION_MAX_UPLOAD_BYTES" envDefault:"20971520"`

	// Classifier (safe-search scoring service)
	ClassifierEndpoint string        `env:"CLASSIFIER_ENDPOINT" envDefault:"https://vision.googleapis.com/v1/images:annotate"`
	ClassifierToken    string        `env:"CLASSIFIER_API_TOKEN"` // Optional static bearer; ambient credentials otherwise
	ClassifierTimeout  time.Duration `env:"CLASSIFIER_TIMEOUT" envDefault:"15s"`
	QuotaProject       string        `env:"CLASSIFIER_QUOTA_PROJECT"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.S3Bucket = strings.TrimSpace(cfg.S3Bucket)
	cfg.S3AccessKeyID = strings.TrimSpace(cfg.S3AccessKeyID)
	cfg.S3SecretKey = strings.TrimSpace(cfg.S3SecretKey)
	cfg.S3Endpoint = strings.TrimSpace(cfg.S3Endpoint)
	cfg.S3EmulatorEndpoint = strings.TrimSpace(cfg.S3EmulatorEndpoint)
	cfg.UploadPrefix = strings.TrimSpace(cfg.UploadPrefix)
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20 * 1024 * 1024
	}
	if cfg.UploadPrefix == "" {
		cfg.UploadPrefix = "uploads/"
	}
	if !strings.HasSuffix(cfg.UploadPrefix, "/") {
		cfg.UploadPrefix += "/"
	}
	if cfg.IsProduction() && cfg.S3AccessKeyID == "" {
		return nil, fmt.Errorf("MODERATION_S3_ACCESS_KEY_ID is required in production")
	}
	return cfg, nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// IsProduction reports whether signed URL resolution should be attempted.
// Non-production environments go straight to the emulator media URL.
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}
