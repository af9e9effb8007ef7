// Package config loads application settings from environment variables
// using envconfig struct tags.
package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Store backend names accepted in LEDGER_STORE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

// Config holds every runtime setting of the ledger service.
type Config struct {
	// --- HTTP ---
	ListenAddr string `envconfig:"LEDGER_LISTEN_ADDR" default:":8080"`

	// --- Storage ---
	StoreBackend string `envconfig:"LEDGER_STORE_BACKEND" default:"memory"`

	// --- Database (postgres backend) ---
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"ledger"`
	DBPassword string `envconfig:"DB_PASSWORD" default:""`
	DBName     string `envconfig:"DB_NAME" default:"trustledger"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	// --- Redis (redis backend) ---
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// --- Migrations ---
	MigrationsPath string `envconfig:"LEDGER_MIGRATIONS_PATH" default:"file://migrations"`

	// --- Logging ---
	LogDir   string `envconfig:"LEDGER_LOG_DIR" default:"./logs"`
	LogLevel string `envconfig:"LEDGER_LOG_LEVEL" default:"info"`
}

// DatabaseDSN returns the PostgreSQL connection string for the kv store.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// RedisAddr returns the host:port address of the Redis backend.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory, BackendPostgres, BackendRedis:
	default:
		return fmt.Errorf("unknown LEDGER_STORE_BACKEND %q", c.StoreBackend)
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("LEDGER_LISTEN_ADDR must not be empty")
	}
	return nil
}

// Load reads the environment and fills a Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
