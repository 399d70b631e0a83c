package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds the settings shared by every fritter command
type Config struct {
	DatabaseURL    string
	DatabaseDriver string
	SQLitePath     string
	Addr           string
	SessionSecret  string
	Debug          bool
}

// Load reads the configuration from the environment
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DatabaseDriver: getenv("DATABASE_DRIVER", DriverPostgres),
		SQLitePath:     getenv("SQLITE_PATH", "fritter.db"),
		Addr:           getenv("FRITTER_ADDR", ":8080"),
		SessionSecret:  os.Getenv("SESSION_SECRET"),
	}

	if v := os.Getenv("FRITTER_DEBUG"); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid FRITTER_DEBUG value %q: %w", v, err)
		}
		cfg.Debug = debug
	}

	return cfg, nil
}

// ValidateDatabase checks that the selected driver has what it needs to connect
func (c *Config) ValidateDatabase() error {
	switch c.DatabaseDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL not set in environment or .env file")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH must not be empty")
		}
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	return nil
}

// ValidateServer checks the settings needed by the HTTP server
func (c *Config) ValidateServer() error {
	if err := c.ValidateDatabase(); err != nil {
		return err
	}
	if len(c.SessionSecret) < 32 {
		return fmt.Errorf("SESSION_SECRET must be at least 32 bytes")
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
