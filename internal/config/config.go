package config

import (
	"os"
	"strconv"

	"incidentscope/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Data     DataConfig
	Output   OutputConfig
	Server   ServerConfig
	API      APIConfig
	Database DatabaseConfig
	Analysis AnalysisConfig
}

// DataConfig holds input dataset settings
type DataConfig struct {
	IncidentsFile string `validate:"required"`
}

// OutputConfig holds paths for generated artifacts
type OutputConfig struct {
	Dir string
}

// ServerConfig holds dashboard web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// APIConfig holds headless JSON API settings
type APIConfig struct {
	Port string
}

// DatabaseConfig holds the optional Postgres archive settings
type DatabaseConfig struct {
	URL string // empty disables the archive
}

// AnalysisConfig holds tunables for grouping and distribution analysis
type AnalysisConfig struct {
	TopN          int
	HistogramBins int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Data: DataConfig{
			IncidentsFile: getEnvOrDefault("INCIDENTS_FILE", ""),
		},
		Output: OutputConfig{
			Dir: getEnvOrDefault("OUTPUT_DIR", "output"),
		},
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "debug"),
		},
		API: APIConfig{
			Port: getEnvOrDefault("API_PORT", "8090"),
		},
		Database: DatabaseConfig{
			URL: getEnvOrDefault("DATABASE_URL", ""),
		},
		Analysis: AnalysisConfig{
			TopN:          getEnvIntOrDefault("TOP_N", 10),
			HistogramBins: getEnvIntOrDefault("HISTOGRAM_BINS", 30),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Data.IncidentsFile == "" {
		return errors.ConfigInvalid("INCIDENTS_FILE is required")
	}
	if config.Analysis.TopN <= 0 {
		return errors.ConfigInvalid("TOP_N must be positive")
	}
	if config.Analysis.HistogramBins <= 0 {
		return errors.ConfigInvalid("HISTOGRAM_BINS must be positive")
	}
	return nil
}

// ArchiveEnabled reports whether the Postgres archive is configured.
func (c *Config) ArchiveEnabled() bool {
	return c.Database.URL != ""
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
