package config

import (
	"fmt"

	pkgconfig "github.com/jun-JUNJUN/dxeeworld-sub001/pkg/config"
)

// Config holds all configuration for the review engine.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"REVIEW_HTTP_PORT" envDefault:"8080"`

	Postgres PostgresConfig `envPrefix:"POSTGRES_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`
	Kafka    KafkaConfig    `envPrefix:"KAFKA_"`

	// Circuit breaker settings for the rating summary cache
	CBMaxRequests  uint32  `env:"CB_MAX_REQUESTS" envDefault:"1"`
	CBInterval     int     `env:"CB_INTERVAL_SECONDS" envDefault:"60"`
	CBTimeout      int     `env:"CB_TIMEOUT_SECONDS" envDefault:"30"`
	CBFailureRatio float64 `env:"CB_FAILURE_RATIO" envDefault:"0.5"`
	CBMinRequests  uint32  `env:"CB_MIN_REQUESTS" envDefault:"5"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Pprof debug endpoints (IP allowlist in CIDR notation)
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"10.0.0.0/8,172.16.0.0/12,192.168.0.0/16,127.0.0.0/8,::1/128" envSeparator:","`

	// Slow query logging
	SlowQueryThresholdMs int `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`
}

// PostgresConfig holds the PostgreSQL connection and pool settings. Variables
// are scoped with the POSTGRES_ prefix (POSTGRES_HOST, POSTGRES_DB_NAME, ...).
type PostgresConfig struct {
	Host    string `env:"HOST" envDefault:"localhost"`
	Port    int    `env:"PORT" envDefault:"5432"`
	User    string `env:"USER" envDefault:"dxeeworld"`
	Pass    string `env:"PASSWORD" envDefault:"dxeeworld_secret"`
	DBName  string `env:"DB_NAME" envDefault:"review_db"`
	SSLMode string `env:"SSL_MODE" envDefault:"disable"`

	MaxConns            int32 `env:"MAX_CONNS" envDefault:"25"`
	MinConns            int32 `env:"MIN_CONNS" envDefault:"5"`
	MaxConnLifetimeMins int   `env:"MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	MaxConnIdleTimeMins int   `env:"MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`
}

// RedisConfig holds the Redis connection settings for the rating summary
// cache. Variables are scoped with the REDIS_ prefix.
type RedisConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB" envDefault:"0"`
	PoolSize int    `env:"POOL_SIZE" envDefault:"10"`

	// SummaryTTLSecs bounds how stale a cached rating summary may get.
	SummaryTTLSecs int `env:"SUMMARY_TTL_SECONDS" envDefault:"300"`
}

// KafkaConfig holds the Kafka broker and audit consumer settings. Variables
// are scoped with the KAFKA_ prefix (KAFKA_BROKERS, ...).
type KafkaConfig struct {
	Brokers []string `env:"BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Audit trail consumer
	AuditEnabled            bool `env:"AUDIT_CONSUMER_ENABLED" envDefault:"true"`
	AuditIdempotencyTTLMins int  `env:"AUDIT_IDEMPOTENCY_TTL_MINUTES" envDefault:"60"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load review engine config: %w", err)
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
	if c.Postgres.Host == "" {
		return fmt.Errorf("POSTGRES_HOST is required")
	}
	if c.Postgres.User == "" {
		return fmt.Errorf("POSTGRES_USER is required")
	}
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required")
	}
	if c.Redis.SummaryTTLSecs < 1 {
		return fmt.Errorf("REDIS_SUMMARY_TTL_SECONDS must be positive, got %d", c.Redis.SummaryTTLSecs)
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate)
	}
	if c.CBFailureRatio <= 0 || c.CBFailureRatio > 1.0 {
		return fmt.Errorf("CB_FAILURE_RATIO must be in (0.0, 1.0], got %f", c.CBFailureRatio)
	}
	return nil
}

// PostgresDSN returns the PostgreSQL connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Postgres.User, c.Postgres.Pass, c.Postgres.Host, c.Postgres.Port, c.Postgres.DBName, c.Postgres.SSLMode,
	)
}
