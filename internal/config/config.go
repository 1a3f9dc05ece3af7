package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	ServerPort       int    `yaml:"serverPort"`
	DatabasePath     string `yaml:"databasePath"`
	CORSOrigin       string `yaml:"corsOrigin"`
	TokenSecret      string `yaml:"tokenSecret"`
	LogLevel         string `yaml:"logLevel"`
	SnapshotSchedule string `yaml:"snapshotSchedule"`
}

// Load builds the configuration from environment variables, applying an
// optional YAML file on top when CONFIG_FILE is set.
func Load() (*Config, error) {
	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ServerPort:       port,
		DatabasePath:     getEnv("DATABASE_PATH", "./tweeter.db"),
		CORSOrigin:       getEnv("CORS_ORIGIN", "http://localhost:3000"),
		TokenSecret:      getEnv("TOKEN_SECRET", "tweeter-dev-secret"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		SnapshotSchedule: getEnv("SNAPSHOT_SCHEDULE", "@every 1m"),
	}

	if path, ok := os.LookupEnv("CONFIG_FILE"); ok {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// applyFile overlays values from a YAML file onto the config.
func (c *Config) applyFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, c)
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
