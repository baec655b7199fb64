// Package config carga la configuración del servicio desde variables de
// entorno, con defaults de desarrollo.
package config

import (
	"os"
	"time"

	"cat-shelter-api/internal/platform/logger"
)

// Config agrupa toda la configuración del proceso.
type Config struct {
	// Server
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// Logging
	LogLevel  logger.Level
	LogFormat logger.Format

	// Storage: DSN de Postgres manda; si no hay, archivo SQLite; si
	// tampoco, repo in-memory.
	DBDSN      string
	SQLitePath string

	// Cache de estadísticas (opcional)
	ValkeyAddr     string
	ValkeyPassword string
	StatsCacheTTL  time.Duration
}

func Load() *Config {
	return &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		LogLevel:  logger.ParseLevel(os.Getenv("LOG_LEVEL")),
		LogFormat: logger.ParseFormat(os.Getenv("LOG_FORMAT")),

		DBDSN:      os.Getenv("DB_DSN"),
		SQLitePath: os.Getenv("SQLITE_PATH"),

		ValkeyAddr:     os.Getenv("VALKEY_ADDR"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),
		StatsCacheTTL:  envDuration("STATS_CACHE_TTL", 5*time.Minute),
	}
}

// Addr devuelve la dirección de escucha host:port.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

// IsDev indica si el proceso corre en modo desarrollo.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
