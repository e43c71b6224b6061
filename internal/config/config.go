package config

import (
	"os"
	"strconv"

	"gobiomark/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Data      DataConfig
	Database  DatabaseConfig
	Pipeline  PipelineConfig
	Profiling ProfilingConfig
}

// DataConfig holds input and output locations
type DataConfig struct {
	InputDir  string
	OutputDir string
}

// DatabaseConfig holds the optional candidate sink settings
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// PipelineConfig holds analysis settings
type PipelineConfig struct {
	Seed          int64
	TestFraction  float64
	KFold         int
	MaxAdjustedP  float64
	MinAbsEffect  float64
	WeightedHubs  bool
	ReportFormats []string
}

// ProfilingConfig holds performance profiling settings
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Data:      loadDataConfig(),
		Database:  loadDatabaseConfig(),
		Pipeline:  loadPipelineConfig(),
		Profiling: loadProfilingConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadDataConfig() DataConfig {
	return DataConfig{
		InputDir:  getEnvOrDefault("INPUT_DIR", "./data"),
		OutputDir: getEnvOrDefault("OUTPUT_DIR", "./results"),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URL:     getEnvOrDefault("DATABASE_URL", ""),
		SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
	}
}

func loadPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Seed:         getEnvInt64OrDefault("PIPELINE_SEED", 42),
		TestFraction: getEnvFloatOrDefault("TEST_FRACTION", 0.2),
		KFold:        getEnvIntOrDefault("K_FOLD", 0),
		MaxAdjustedP: getEnvFloatOrDefault("MAX_ADJUSTED_P", 0.05),
		MinAbsEffect: getEnvFloatOrDefault("MIN_ABS_EFFECT", 0.5),
		WeightedHubs: getEnvBoolOrDefault("WEIGHTED_HUBS", false),
	}
}

func loadProfilingConfig() ProfilingConfig {
	return ProfilingConfig{
		Port:    getEnvOrDefault("PPROF_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
	}
}

func validateConfig(config *Config) error {
	if config.Pipeline.TestFraction <= 0 || config.Pipeline.TestFraction >= 1 {
		return errors.ConfigInvalid("TEST_FRACTION must be in (0, 1)")
	}
	if config.Pipeline.KFold < 0 || config.Pipeline.KFold == 1 {
		return errors.ConfigInvalid("K_FOLD must be 0 (holdout) or at least 2")
	}
	if config.Pipeline.MaxAdjustedP <= 0 || config.Pipeline.MaxAdjustedP > 1 {
		return errors.ConfigInvalid("MAX_ADJUSTED_P must be in (0, 1]")
	}
	if config.Pipeline.MinAbsEffect < 0 {
		return errors.ConfigInvalid("MIN_ABS_EFFECT must be non-negative")
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

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
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
