package config

import (
	"os"
	"strconv"
	"strings"

	"sefval/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Engine   EngineConfig
	Database DatabaseConfig
	Server   ServerConfig
	Data     DataConfig
}

// EngineConfig holds the validation engine settings
type EngineConfig struct {
	MinSampleSize          int
	BootstrapRepetitions   int
	PermutationRepetitions int
	ConfidenceLevels       []float64
	CorrectionMethod       string
	CorrectionAlpha        float64
	AxiomThreshold         float64
	Workers                int

	// RandomSeed enables reproducible resampling streams when set.
	RandomSeed *int64
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// DataConfig holds sample-source settings
type DataConfig struct {
	WorkbookFile  string
	SheetName     string
	ClassColumn   string
	ValueColumn   string
	ClassA        string
	ClassB        string
	MetricColumn  string
	GroupColumn   string
	OutcomeColumn string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Engine:   loadEngineConfig(),
		Database: loadDatabaseConfig(),
		Server:   loadServerConfig(),
		Data:     loadDataConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadEngineConfig() EngineConfig {
	cfg := EngineConfig{
		MinSampleSize:          getEnvIntOrDefault("MIN_SAMPLE_SIZE", 10),
		BootstrapRepetitions:   getEnvIntOrDefault("BOOTSTRAP_REPETITIONS", 1000),
		PermutationRepetitions: getEnvIntOrDefault("PERMUTATION_REPETITIONS", 10000),
		ConfidenceLevels:       getEnvFloatsOrDefault("CONFIDENCE_LEVELS", []float64{0.95, 0.99}),
		CorrectionMethod:       getEnvOrDefault("CORRECTION_METHOD", "fdr"),
		CorrectionAlpha:        getEnvFloatOrDefault("CORRECTION_ALPHA", 0.05),
		AxiomThreshold:         getEnvFloatOrDefault("AXIOM_THRESHOLD", 0.6),
		Workers:                getEnvIntOrDefault("WORKERS", 4),
	}

	if raw := os.Getenv("RANDOM_SEED"); raw != "" {
		if seed, err := strconv.ParseInt(raw, 10, 64); err == nil {
			cfg.RandomSeed = &seed
		}
	}
	return cfg
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URL:     os.Getenv("DATABASE_URL"),
		SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
	}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func loadDataConfig() DataConfig {
	return DataConfig{
		WorkbookFile:  getEnvOrDefault("WORKBOOK_FILE", ""),
		SheetName:     getEnvOrDefault("WORKBOOK_SHEET", "Sheet1"),
		ClassColumn:   getEnvOrDefault("CLASS_COLUMN", ""),
		ValueColumn:   getEnvOrDefault("VALUE_COLUMN", ""),
		ClassA:        getEnvOrDefault("CLASS_A", ""),
		ClassB:        getEnvOrDefault("CLASS_B", ""),
		MetricColumn:  getEnvOrDefault("METRIC_COLUMN", ""),
		GroupColumn:   getEnvOrDefault("GROUP_COLUMN", ""),
		OutcomeColumn: getEnvOrDefault("OUTCOME_COLUMN", ""),
	}
}

func validateConfig(config *Config) error {
	if config.Engine.MinSampleSize < 2 {
		return errors.ConfigInvalid("MIN_SAMPLE_SIZE must be at least 2")
	}
	if config.Engine.BootstrapRepetitions <= 0 {
		return errors.ConfigInvalid("BOOTSTRAP_REPETITIONS must be positive")
	}
	if config.Engine.PermutationRepetitions <= 0 {
		return errors.ConfigInvalid("PERMUTATION_REPETITIONS must be positive")
	}
	for _, level := range config.Engine.ConfidenceLevels {
		if level <= 0 || level >= 1 {
			return errors.ConfigInvalid("CONFIDENCE_LEVELS entries must be in (0, 1)")
		}
	}
	switch config.Engine.CorrectionMethod {
	case "bonferroni", "holm", "fdr":
	default:
		return errors.ConfigInvalid("CORRECTION_METHOD must be bonferroni, holm, or fdr")
	}
	if config.Engine.AxiomThreshold <= 0 || config.Engine.AxiomThreshold > 1 {
		return errors.ConfigInvalid("AXIOM_THRESHOLD must be in (0, 1]")
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

func getEnvFloatsOrDefault(key string, defaultValue []float64) []float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	parts := strings.Split(raw, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return defaultValue
		}
		out = append(out, v)
	}
	return out
}
