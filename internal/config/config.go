package config

import (
	"fmt"

	pkgconfig "github.com/CMPHP00100/cetera-storefront/pkg/config"
)

// Config holds all configuration for the storefront.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// Postgres (order ledger)
	PostgresHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER" envDefault:"storefront"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"storefront"`
	PostgresDB       string `env:"POSTGRES_DB" envDefault:"storefront"`
	PostgresSSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`

	// Redis (cart store)
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Cart TTL in hours (default: 7 days)
	CartTTL int `env:"CART_TTL_HOURS" envDefault:"168"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Mail API. An empty endpoint falls back to the logging sender.
	MailAPIEndpoint string `env:"MAIL_API_ENDPOINT" envDefault:""`
	MailFrom        string `env:"MAIL_FROM" envDefault:"orders@cetera.example"`

	// Auth. An empty secret disables bearer auth on order history.
	JWTSecret string `env:"JWT_SECRET" envDefault:""`

	// Per-IP rate limit on the charge endpoint.
	ChargeRPS   int `env:"CHARGE_RATE_LIMIT_RPS" envDefault:"5"`
	ChargeBurst int `env:"CHARGE_RATE_LIMIT_BURST" envDefault:"10"`

	// Tracing
	TracingEnabled  bool    `env:"TRACING_ENABLED" envDefault:"false"`
	OTLPEndpoint    string  `env:"OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TraceSampleRate float64 `env:"TRACE_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.CartTTL < 1 {
		return fmt.Errorf("cart TTL must be at least 1 hour, got %d", c.CartTTL)
	}
	if c.ChargeRPS < 1 || c.ChargeBurst < 1 {
		return fmt.Errorf("charge rate limit must be positive, got rps=%d burst=%d", c.ChargeRPS, c.ChargeBurst)
	}
	return nil
}
