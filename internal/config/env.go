package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// dotenvPath is read before environment overrides are applied. Variables already present in the
// process environment win over the file.
var dotenvPath = ".env"

// loadFromEnv overrides configuration with environment variables named by the env struct tags
func loadFromEnv(config *Config) error {
	if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", dotenvPath, err)
	}

	if err := env.Parse(config); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}

	return nil
}
