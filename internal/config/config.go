// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every setting the service reads at startup
type Config struct {
	ServiceName string `envconfig:"OTEL_SERVICE_NAME" default:"station-pos"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	HTTPPort    string        `envconfig:"HTTP_PORT" default:"8080"`
	GRPCPort    string        `envconfig:"GRPC_PORT" default:"9090"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`

	// StoreDriver is postgres or memory.
	StoreDriver string `envconfig:"STORE_DRIVER" default:"postgres"`
	Database

	RedisAddr     string `envconfig:"REDIS_ADDR"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// RateLimitPerMinute caps requests per client address. Zero disables it;
	// it also needs Redis.
	RateLimitPerMinute int `envconfig:"RATE_LIMIT_PER_MINUTE" default:"600"`

	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	KafkaGroupID string   `envconfig:"KAFKA_GROUP_ID" default:"station-pos"`

	JaegerEndpoint string `envconfig:"JAEGER_ENDPOINT"`

	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	JWTTTL    time.Duration `envconfig:"JWT_TTL" default:"12h"`

	MaxNumberAttempts   int  `envconfig:"MAX_NUMBER_ATTEMPTS" default:"3"`
	AutoApplyPromotions bool `envconfig:"AUTO_APPLY_PROMOTIONS" default:"true"`
}

// Database holds PostgreSQL connection settings
type Database struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name     string `envconfig:"DB_NAME" default:"posdb"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
}

// Load reads an optional .env file, then the environment
func Load(envFiles ...string) (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load(envFiles...)

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot start with
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("invalid STORE_DRIVER %q: want postgres or memory", c.StoreDriver)
	}
	if c.MaxNumberAttempts < 1 {
		return fmt.Errorf("MAX_NUMBER_ATTEMPTS must be at least 1, got %d", c.MaxNumberAttempts)
	}
	if c.RateLimitPerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative")
	}
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}
	return nil
}

// IsDevelopment reports whether pretty console logging should be used
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

// KafkaEnabled reports whether brokers were configured
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// RedisEnabled reports whether a Redis address was configured
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}
