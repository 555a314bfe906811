// Package config loads runtime settings from the environment and an optional
// .env file in the working directory.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds every setting of the lending binary.
type Config struct {
	LoanDays  int
	Seed      bool
	LogLevel  slog.Level
	LogFormat string
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{LoanDays: 7, Seed: true, LogLevel: slog.LevelInfo, LogFormat: "text"}
}

// Load reads .env (missing is fine) and then the LENDING_* variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read .env: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv, applying defaults for unset keys.
func FromEnv(getenv func(string) string) (*Config, error) {
	cfg := Default()

	if v := strings.TrimSpace(getenv("LENDING_LOAN_DAYS")); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days <= 0 {
			return nil, fmt.Errorf("LENDING_LOAN_DAYS must be a positive integer, got %q", v)
		}
		cfg.LoanDays = days
	}

	if v := strings.TrimSpace(getenv("LENDING_SEED")); v != "" {
		seed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("LENDING_SEED: %w", err)
		}
		cfg.Seed = seed
	}

	if v := strings.TrimSpace(getenv("LENDING_LOG_LEVEL")); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("LENDING_LOG_LEVEL: %w", err)
		}
	}

	if v := strings.TrimSpace(getenv("LENDING_LOG_FORMAT")); v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that flags may have overridden.
func (c *Config) Validate() error {
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log format must be text or json, got %q", c.LogFormat)
	}
	if c.LoanDays <= 0 {
		return fmt.Errorf("loan days must be positive, got %d", c.LoanDays)
	}
	return nil
}
