package config

import (
	"fmt"
	"os"
)

// Config holds all application configuration
type Config struct {
	Storage  StorageConfig
	Exchange ExchangeConfig
	Identity IdentityConfig
	Logger   LoggerConfig
}

// StorageConfig selects and configures the persistence backend
type StorageConfig struct {
	// Backend is "memory" or "postgres".
	Backend  string
	Database DatabaseConfig
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// ExchangeConfig selects and configures the currency exchange backend
type ExchangeConfig struct {
	// Backend is "static" or "ratesapi".
	Backend string
	BaseURL string
	APIKey  string
}

// IdentityConfig holds the acting user's external identifier
type IdentityConfig struct {
	UserID string
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level string // debug, info, warn, error
}

// Load loads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	cfg := &Config{
		Storage: StorageConfig{
			Backend: getEnv("WALLET_STORAGE", "memory"),
			Database: DatabaseConfig{
				Host:     getEnv("DB_HOST", "localhost"),
				Port:     getEnv("DB_PORT", "5432"),
				User:     getEnv("DB_USER", "postgres"),
				Password: getEnv("DB_PASSWORD", "postgres"),
				DBName:   getEnv("DB_NAME", "wallet"),
				SSLMode:  getEnv("DB_SSLMODE", "disable"),
			},
		},
		Exchange: ExchangeConfig{
			Backend: getEnv("WALLET_EXCHANGE", "static"),
			BaseURL: getEnv("RATES_API_URL", "https://api.ratesapi.io/api/latest?base=USD"),
			APIKey:  getEnv("RATES_API_KEY", ""),
		},
		Identity: IdentityConfig{
			UserID: getEnv("WALLET_USER", ""),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "memory", "postgres":
	default:
		return fmt.Errorf("invalid storage backend: %s (must be memory or postgres)", c.Storage.Backend)
	}

	if c.Storage.Backend == "postgres" {
		if c.Storage.Database.Host == "" {
			return fmt.Errorf("database host cannot be empty")
		}
		if c.Storage.Database.DBName == "" {
			return fmt.Errorf("database name cannot be empty")
		}
	}

	switch c.Exchange.Backend {
	case "static", "ratesapi":
	default:
		return fmt.Errorf("invalid exchange backend: %s (must be static or ratesapi)", c.Exchange.Backend)
	}

	if c.Exchange.Backend == "ratesapi" && c.Exchange.BaseURL == "" {
		return fmt.Errorf("rates API URL cannot be empty")
	}

	if c.Identity.UserID == "" {
		return fmt.Errorf("wallet user cannot be empty (set WALLET_USER)")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	return nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
