// BobJido - Taste Compatibility & Recommendation Engine
// Copyright 2026 Cho Namwoo (chonamwoo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chonamwoo/bobjido-sub005

// Package config loads engine configuration from layered sources: built-in
// defaults, an optional YAML file, and environment variables, in increasing
// precedence.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/chonamwoo/bobjido-sub005/internal/expertise"
	"github.com/chonamwoo/bobjido-sub005/internal/logging"
	"github.com/chonamwoo/bobjido-sub005/internal/storage"
	"github.com/chonamwoo/bobjido-sub005/internal/taste"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/bobjido/config.yaml",
	"/etc/bobjido/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "BOBJIDO_CONFIG_PATH"

// envPrefix namespaces the engine's environment variables. A double
// underscore separates sections: BOBJIDO_DATABASE__MAX_MEMORY maps to
// database.max_memory.
const envPrefix = "BOBJIDO_"

// Config is the root configuration for the engine.
type Config struct {
	Server    ServerConfig          `json:"server" koanf:"server"`
	Database  storage.Config        `json:"database" koanf:"database"`
	Logging   logging.Config        `json:"logging" koanf:"logging"`
	Scoring   taste.ScoringWeights  `json:"scoring" koanf:"scoring"`
	Match     taste.MatchBonuses    `json:"match" koanf:"match"`
	Typer     taste.TyperWeights    `json:"typer" koanf:"typer"`
	Recommend taste.RecommendLimits `json:"recommend" koanf:"recommend"`
	Expertise ExpertiseConfig       `json:"expertise" koanf:"expertise"`
	Metrics   MetricsConfig         `json:"metrics" koanf:"metrics"`
}

// ServerConfig holds process-level settings.
type ServerConfig struct {
	// ShutdownTimeout bounds graceful shutdown of background services.
	ShutdownTimeout time.Duration `json:"shutdown_timeout" koanf:"shutdown_timeout" validate:"min=0"`
}

// ExpertiseConfig groups the expertise subsystem settings.
type ExpertiseConfig struct {
	Points    expertise.PointValues     `json:"points" koanf:"points"`
	Scheduler expertise.SchedulerConfig `json:"scheduler" koanf:"scheduler"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled    bool   `json:"enabled" koanf:"enabled"`
	ListenAddr string `json:"listen_addr" koanf:"listen_addr" validate:"required_if=Enabled true"`
}

// Default returns a Config with all default values applied.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ShutdownTimeout: 30 * time.Second,
		},
		Database:  storage.DefaultConfig(),
		Logging:   logging.DefaultConfig(),
		Scoring:   taste.DefaultScoringWeights(),
		Match:     taste.DefaultMatchBonuses(),
		Typer:     taste.DefaultTyperWeights(),
		Recommend: taste.DefaultRecommendLimits(),
		Expertise: ExpertiseConfig{
			Points:    expertise.DefaultPointValues(),
			Scheduler: expertise.DefaultSchedulerConfig(),
		},
		Metrics: MetricsConfig{
			Enabled:    true,
			ListenAddr: ":9090",
		},
	}
}

// Load builds the configuration from defaults, the optional config file,
// and environment variables, then validates it.
func Load() (*Config, error) {
	return loadFrom(findConfigFile())
}

func loadFrom(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", configPath, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", envTransform)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}
	return cfg, nil
}

// envTransform maps BOBJIDO_SECTION__KEY_NAME to section.key_name.
func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// findConfigFile returns the first existing config file path, or empty.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
		return ""
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Validate checks the whole tree. Domain sections carry their own
// validation; struct tags cover the rest.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if err := c.Scoring.Validate(); err != nil {
		return fmt.Errorf("scoring: %w", err)
	}
	if err := c.Match.Validate(); err != nil {
		return fmt.Errorf("match: %w", err)
	}
	if err := c.Typer.Validate(); err != nil {
		return fmt.Errorf("typer: %w", err)
	}
	if err := c.Recommend.Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	if err := c.Expertise.Points.Validate(); err != nil {
		return fmt.Errorf("expertise points: %w", err)
	}
	if c.Expertise.Scheduler.Interval <= 0 {
		return fmt.Errorf("expertise scheduler: interval must be positive, got %s", c.Expertise.Scheduler.Interval)
	}
	return nil
}
