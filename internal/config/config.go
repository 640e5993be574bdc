package config

import (
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime configuration of a single engine run.
type Config struct {
	ServiceName  string
	Env          string // "dev" switches the diagnostic stream to console output
	LogLevel     string // "debug", "info", "warn", "error"
	OutputFormat string // "csv" or "table"

	// Statement export; disabled when DatabaseURL is empty.
	DatabaseURL       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBTimeout         time.Duration
}

// Load loads configuration from environment variables and .env file if present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServiceName:       GetEnv("SERVICE_NAME", "txengine"),
		Env:               GetEnv("ENV", "prod"),
		LogLevel:          GetEnv("LOG_LEVEL", "error"),
		OutputFormat:      GetEnv("OUTPUT_FORMAT", "csv"),
		DatabaseURL:       GetEnv("DATABASE_URL", ""),
		DBMaxOpenConns:    GetEnvInt("DB_MAX_OPEN_CONNS", 5),
		DBMaxIdleConns:    GetEnvInt("DB_MAX_IDLE_CONNS", 2),
		DBConnMaxLifetime: GetEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		DBTimeout:         GetEnvDuration("DB_TIMEOUT", 30*time.Second),
	}
}

// ExportEnabled reports whether final statements should be written to Postgres.
func (c *Config) ExportEnabled() bool {
	return c.DatabaseURL != ""
}
