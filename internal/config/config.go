// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ServerConfig holds all server-related settings
type ServerConfig struct {
	Port           int
	Host           string
	MetricsEnabled bool
}

// DatabaseConfig holds database configuration settings
type DatabaseConfig struct {
	Type string // "mongo", "postgres" or "memory"
	URI  string
	Name string
}

// Config holds the complete application configuration
type Config struct {
	Server         *ServerConfig
	Database       *DatabaseConfig
	AllowedOrigins []string
	Debug          bool
}

// DefaultServerConfig provides default server settings
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:           8080,
		Host:           "0.0.0.0",
		MetricsEnabled: true,
	}
}

// LoadConfig loads configuration from environment variables and applies
// defaults. A .env file in the working directory is read first if present.
func LoadConfig() (*Config, error) {
	// Silent no-op when no .env exists; real deployments set env vars.
	_ = godotenv.Load()

	serverConfig := DefaultServerConfig()

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT value %q: %w", portStr, err)
		}
		serverConfig.Port = port
	}

	if host := os.Getenv("HOST"); host != "" {
		serverConfig.Host = host
	}

	if metricsEnabled := os.Getenv("METRICS_ENABLED"); metricsEnabled != "" {
		serverConfig.MetricsEnabled = metricsEnabled == "true"
	}

	dbConfig := &DatabaseConfig{
		Type: getEnvOrDefault("DB_TYPE", "mongo"),
		Name: getEnvOrDefault("DB_NAME", "heron_marsh"),
	}

	switch dbConfig.Type {
	case "mongo":
		dbConfig.URI = getEnvOrDefault("MONGODB_URI", "mongodb://localhost:27017")
	case "postgres":
		dbConfig.URI = os.Getenv("DATABASE_URL")
		if dbConfig.URI == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when DB_TYPE is postgres")
		}
	case "memory":
		// No connection settings needed.
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE %q (expected mongo, postgres or memory)", dbConfig.Type)
	}

	config := &Config{
		Server:         serverConfig,
		Database:       dbConfig,
		AllowedOrigins: []string{"*"},
		Debug:          os.Getenv("DEBUG") == "true",
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		config.AllowedOrigins = strings.Split(origins, ",")
	}

	return config, nil
}

// Helper function to get environment variable with default fallback
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
