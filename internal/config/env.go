package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables that override file configuration.
const (
	EnvSource   = "WEBBUILD_SOURCE"
	EnvOutput   = "WEBBUILD_OUTPUT"
	EnvTemplate = "WEBBUILD_TEMPLATE"
	EnvHistory  = "WEBBUILD_HISTORY"
)

var envFiles = []string{".env", ".env.local"}

// loadEnvFile loads environment variables from the first readable .env/.env.local file.
// godotenv never overwrites variables already present in the process environment.
func loadEnvFile() error {
	for _, envPath := range envFiles {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err != nil {
			return fmt.Errorf("load %s: %w", envPath, err)
		}
		return nil
	}
	return fmt.Errorf("no .env file found")
}

// applyEnvOverrides replaces configured values with non-empty environment values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvSource); v != "" {
		cfg.Paths.Source = v
	}
	if v := os.Getenv(EnvOutput); v != "" {
		cfg.Paths.Output = v
	}
	if v := os.Getenv(EnvTemplate); v != "" {
		cfg.Paths.Template = v
	}
	if v := os.Getenv(EnvHistory); v != "" {
		cfg.Build.History = HistoryMode(v)
	}
}
