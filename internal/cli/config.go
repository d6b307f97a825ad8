package cli

import (
	"os"
	"path/filepath"
)

type Config struct {
	BaseURL      string // Vault service base URL (default: http://localhost:8080)
	DatabaseFile string // Path to the local SQLite session store
	Profile      string // Session profile name, one per account (default: default)
	Env          string // Environment (dev, staging, prod) (default: dev)
	LogLevel     string // Log level (debug, info, warn, error) (default: warn)
	LogFormat    string // Log format (json, text) (default: text)
}

func LoadConfig() Config {
	return Config{
		BaseURL:      getEnvOrDefault("VAULTCRAFT_BASE_URL", "http://localhost:8080"),
		DatabaseFile: getEnvOrDefault("VAULTCRAFT_DB_FILE", defaultDatabaseFile()),
		Profile:      getEnvOrDefault("VAULTCRAFT_PROFILE", "default"),
		Env:          getEnvOrDefault("ENV", "dev"),
		LogLevel:     getEnvOrDefault("LOG_LEVEL", "warn"),
		LogFormat:    getEnvOrDefault("LOG_FORMAT", "text"),
	}
}

func defaultDatabaseFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "vaultcraft.db"
	}
	return filepath.Join(home, ".vaultcraft", "vaultcraft.db")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
