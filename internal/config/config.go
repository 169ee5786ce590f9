package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gocausal/internal/discovery"
	"gocausal/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	LogLevel  string
	Database  DatabaseConfig
	Server    ServerConfig
	Discovery DiscoveryConfig
}

// DatabaseConfig holds database connection settings. An empty URL selects
// the in-memory run store.
type DatabaseConfig struct {
	URL string
}

// Enabled reports whether runs go to postgres
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port              string
	MaxConcurrentFits int64
	MaxBodyBytes      int64
}

// DiscoveryConfig holds the engine defaults used when a request leaves a
// parameter unset
type DiscoveryConfig struct {
	PCAlpha          float64
	PCMaxDepth       int
	PCUnboundedDepth bool
	GESMaxIter       int
	Workers          int
}

// PC returns the PC defaults as an engine config
func (d DiscoveryConfig) PC() discovery.PCConfig {
	return discovery.PCConfig{
		Alpha:                  d.PCAlpha,
		MaxConditioningSetSize: d.PCMaxDepth,
		UnboundedDepth:         d.PCUnboundedDepth,
	}
}

// GES returns the GES defaults as an engine config
func (d DiscoveryConfig) GES() discovery.GESConfig {
	return discovery.GESConfig{
		MaxIter: d.GESMaxIter,
		Workers: d.Workers,
	}
}

// Load reads configuration from environment variables and validates it.
// Callers load .env files beforehand.
func Load() (*Config, error) {
	pc := discovery.DefaultPCConfig()
	ges := discovery.DefaultGESConfig()

	config := &Config{
		LogLevel: strings.ToUpper(getEnvOrDefault("LOG_LEVEL", "INFO")),
		Database: DatabaseConfig{
			URL: getEnvOrDefault("DATABASE_URL", ""),
		},
		Server: ServerConfig{
			Port:              getEnvOrDefault("PORT", "8080"),
			MaxConcurrentFits: int64(getEnvIntOrDefault("MAX_CONCURRENT_FITS", 4)),
			MaxBodyBytes:      int64(getEnvIntOrDefault("MAX_BODY_BYTES", 32<<20)),
		},
		Discovery: DiscoveryConfig{
			PCAlpha:          getEnvFloatOrDefault("PC_ALPHA", pc.Alpha),
			PCMaxDepth:       getEnvIntOrDefault("PC_MAX_DEPTH", pc.MaxConditioningSetSize),
			PCUnboundedDepth: getEnvBoolOrDefault("PC_UNBOUNDED_DEPTH", pc.UnboundedDepth),
			GESMaxIter:       getEnvIntOrDefault("GES_MAX_ITER", ges.MaxIter),
			Workers:          getEnvIntOrDefault("DISCOVERY_WORKERS", ges.Workers),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	if config.Server.MaxConcurrentFits < 1 {
		return errors.ConfigInvalid(fmt.Sprintf("MAX_CONCURRENT_FITS must be at least 1, got %d", config.Server.MaxConcurrentFits))
	}
	if config.Server.MaxBodyBytes < 1 {
		return errors.ConfigInvalid(fmt.Sprintf("MAX_BODY_BYTES must be positive, got %d", config.Server.MaxBodyBytes))
	}
	if err := config.Discovery.PC().Validate(); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	if err := config.Discovery.GES().Validate(); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, err)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
