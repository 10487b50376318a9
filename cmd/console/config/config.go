// Package config loads the console configuration from a YAML file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConsoleConfig holds the tunables of the interactive console.
type ConsoleConfig struct {
	// LogFile is where structured JSON logs are appended. Stdout stays
	// reserved for the console UI.
	LogFile string `yaml:"logFile"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"logLevel"`
	// MetricsAddr, when set, exposes the Prometheus registry over HTTP.
	MetricsAddr string `yaml:"metricsAddr"`
	// KToleranceScaled overrides the SafeSwap constant-product tolerance,
	// expressed against amm.ToleranceDenominator. Zero means the default.
	KToleranceScaled uint64 `yaml:"kToleranceScaled"`
}

// Default returns the configuration used when no file is provided.
func Default() *ConsoleConfig {
	return &ConsoleConfig{
		LogFile:  "console.log",
		LogLevel: "info",
	}
}

// LoadConfig reads and validates a YAML configuration file.
func LoadConfig(path string) (*ConsoleConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("could not parse config file: %w", err)
	}
	if _, err := cfg.Level(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Level parses LogLevel into a slog.Level.
func (c *ConsoleConfig) Level() (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", c.LogLevel)
	}
}
