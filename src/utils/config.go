package utils

import (
	"fmt"
)

type Config struct {
	Port         string
	LogLevel     string
	LogFormat    string
	MaxSteps     int
	Concurrency  int
	DefaultModel string
	OtelEnabled  bool
}

const (
	DefaultPort        = "3000"
	DefaultMaxSteps    = 10_000
	DefaultConcurrency = 8
)

// LoadConfig reads the service configuration from the environment.
func LoadConfig() (*Config, error) {
	maxSteps, err := GetEnvInt("MAX_STEPS", DefaultMaxSteps)
	if err != nil {
		return nil, fmt.Errorf("LoadConfig: %w", err)
	}

	concurrency, err := GetEnvInt("CONCURRENCY", DefaultConcurrency)
	if err != nil {
		return nil, fmt.Errorf("LoadConfig: %w", err)
	}

	if maxSteps < 1 {
		return nil, fmt.Errorf("LoadConfig: $MAX_STEPS must be positive, got %d", maxSteps)
	}

	if concurrency < 1 {
		return nil, fmt.Errorf("LoadConfig: $CONCURRENCY must be positive, got %d", concurrency)
	}

	return &Config{
		Port:         GetEnvOrDefault("PORT", DefaultPort),
		LogLevel:     GetEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:    GetEnvOrDefault("LOG_FORMAT", "text"),
		MaxSteps:     maxSteps,
		Concurrency:  concurrency,
		DefaultModel: GetEnvOrDefault("DEFAULT_MODEL", "binomial"),
		OtelEnabled:  GetEnvBool("OTEL_ENABLED"),
	}, nil
}
