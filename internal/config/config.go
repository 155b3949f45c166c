package config

import (
	"os"
	"strconv"
	"time"

	"statgrid/adapters/datareadiness/coercer"
	"statgrid/internal/analysis/density"
	"statgrid/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Analysis AnalysisConfig
	Input    InputConfig
	LogLevel string
}

// ServerConfig holds HTTP service settings
type ServerConfig struct {
	Port            string
	MaxUploadMB     int
	ShutdownTimeout time.Duration
}

// AnalysisConfig holds engine defaults
type AnalysisConfig struct {
	NumericThreshold float64
	Lenient          bool
	KDEPoints        int
	Mu0              float64
	Workers          int
}

// InputConfig holds reader settings
type InputConfig struct {
	SheetName string
}

// Policy returns the numeric coercion policy described by the config.
func (a AnalysisConfig) Policy() coercer.NumericPolicy {
	return coercer.NumericPolicy{Threshold: a.NumericThreshold, Lenient: a.Lenient}
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:   *loadServerConfig(),
		Analysis: *loadAnalysisConfig(),
		Input:    *loadInputConfig(),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:            getEnvOrDefault("PORT", "8080"),
		MaxUploadMB:     getEnvIntOrDefault("MAX_UPLOAD_MB", 10),
		ShutdownTimeout: getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func loadAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{
		NumericThreshold: getEnvFloatOrDefault("NUMERIC_THRESHOLD", coercer.DefaultNumericThreshold),
		Lenient:          getEnvBoolOrDefault("LENIENT_NUMBERS", false),
		KDEPoints:        getEnvIntOrDefault("KDE_POINTS", density.DefaultKDEPoints),
		Mu0:              getEnvFloatOrDefault("MU0", 0),
		Workers:          getEnvIntOrDefault("ANALYSIS_WORKERS", 0),
	}
}

func loadInputConfig() *InputConfig {
	return &InputConfig{
		SheetName: getEnvOrDefault("SHEET_NAME", "Sheet1"),
	}
}

func validateConfig(config *Config) error {
	if _, err := strconv.Atoi(config.Server.Port); err != nil {
		return errors.ConfigInvalid("PORT must be numeric")
	}
	if config.Server.MaxUploadMB <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	t := config.Analysis.NumericThreshold
	if t < 0 || t >= 1 {
		return errors.ConfigInvalid("NUMERIC_THRESHOLD must be in [0, 1)")
	}
	if config.Analysis.KDEPoints < 2 {
		return errors.ConfigInvalid("KDE_POINTS must be at least 2")
	}
	if config.Analysis.Workers < 0 {
		return errors.ConfigInvalid("ANALYSIS_WORKERS cannot be negative")
	}
	if config.Input.SheetName == "" {
		return errors.ConfigInvalid("SHEET_NAME is required")
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

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
