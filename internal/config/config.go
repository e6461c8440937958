// Package config loads daemon settings from an optional YAML file, layered
// under environment variables. A .env file in the working directory is
// honored when present.
package config

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/MaxTraderDev/aster-liquidations-bot/internal/core/domain"
)

// Config holds all settings for the packaging daemon. It is immutable after
// Load.
type Config struct {
	// ListenAddr is the address the control API binds to.
	ListenAddr string `yaml:"listen_addr"`

	// RecipePath points at a recipe file; empty means the built-in
	// default recipe for the aster bot.
	RecipePath string `yaml:"recipe_path"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

func Default() Config {
	return Config{
		ListenAddr: ":3000",
		LogLevel:   "info",
	}
}

// Load builds the effective configuration: defaults, then the YAML file at
// path (if any), then environment overrides. A missing .env file is not an
// error.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if v := os.Getenv("ASTERPACK_LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("ASTERPACK_RECIPE"); v != "" {
		cfg.RecipePath = v
	}
	if v := os.Getenv("ASTERPACK_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	if _, err := log.ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, fmt.Errorf("invalid log level %q", cfg.LogLevel)
	}
	return cfg, nil
}

// Logger builds the daemon logger at the configured level.
func (c Config) Logger() *log.Logger {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           level,
		Prefix:          "asterpack",
	})
}

// LoadRecipe reads a recipe file layered over the built-in default, so a
// partial file only overrides the fields it names. An empty path returns the
// default recipe unchanged.
func LoadRecipe(path string) (domain.Recipe, error) {
	recipe := domain.DefaultRecipe()
	if path == "" {
		return recipe, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Recipe{}, fmt.Errorf("failed to read recipe: %w", err)
	}
	if err := yaml.Unmarshal(data, &recipe); err != nil {
		return domain.Recipe{}, fmt.Errorf("failed to parse recipe: %w", err)
	}
	if err := recipe.Validate(); err != nil {
		return domain.Recipe{}, err
	}
	return recipe, nil
}
