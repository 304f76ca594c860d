// Fieldwise - Crop Suitability Ranking and Fertilizer Blend Optimization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldwise

// Package config loads layered application configuration using Koanf v2.
//
// Precedence, lowest to highest:
//  1. Built-in defaults
//  2. Optional YAML config file
//  3. Environment variables (FIELDWISE_ prefix)
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/fieldwise/internal/engine"
	"github.com/tomtom215/fieldwise/internal/logging"
	"github.com/tomtom215/fieldwise/internal/optimizer"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/fieldwise/config.yaml",
	"/etc/fieldwise/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "FIELDWISE_CONFIG_PATH"

// envPrefix is stripped from environment variables before they are mapped
// to koanf paths: FIELDWISE_SERVER_PORT -> server.port.
const envPrefix = "FIELDWISE_"

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the listen address. Default: 0.0.0.0.
	Host string `json:"host" koanf:"host"`

	// Port is the listen port. Default: 8764.
	Port int `json:"port" koanf:"port"`

	// Timeout is the per-request read/write timeout. Default: 30s.
	Timeout time.Duration `json:"timeout" koanf:"timeout"`

	// ShutdownTimeout bounds graceful shutdown. Default: 15s.
	ShutdownTimeout time.Duration `json:"shutdown_timeout" koanf:"shutdown_timeout"`

	// RateLimitReqs is the per-IP request budget per window.
	// Default: 100. Set 0 to disable rate limiting.
	RateLimitReqs int `json:"rate_limit_reqs" koanf:"rate_limit_reqs"`

	// RateLimitWindow is the rate limiting window. Default: 1m.
	RateLimitWindow time.Duration `json:"rate_limit_window" koanf:"rate_limit_window"`
}

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig     `json:"server" koanf:"server"`
	Logging   logging.Config   `json:"logging" koanf:"logging"`
	Engine    engine.Config    `json:"engine" koanf:"engine"`
	Optimizer optimizer.Config `json:"optimizer" koanf:"optimizer"`
}

// defaultConfig returns a Config with all production defaults applied.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8764,
			Timeout:         30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			RateLimitReqs:   100,
			RateLimitWindow: 1 * time.Minute,
		},
		Logging:   logging.DefaultConfig(),
		Engine:    *engine.DefaultConfig(),
		Optimizer: *optimizer.DefaultConfig(),
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment variables, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Underscores appear both as path separators and inside key names
	// (FIELDWISE_ENGINE_LIMITS_MAX_CANDIDATES -> engine.limits.max_candidates),
	// so variables are resolved through an explicit mapping table rather
	// than a positional split.
	if err := k.Load(env.Provider(envPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first config file that exists, preferring the
// path named by FIELDWISE_CONFIG_PATH.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envMappings maps lowercased environment variable names (prefix stripped)
// to koanf config paths. Every overridable key is listed explicitly.
var envMappings = map[string]string{
	// Server
	"server_host":              "server.host",
	"server_port":              "server.port",
	"server_timeout":           "server.timeout",
	"server_shutdown_timeout":  "server.shutdown_timeout",
	"server_rate_limit_reqs":   "server.rate_limit_reqs",
	"server_rate_limit_window": "server.rate_limit_window",

	// Logging
	"logging_level":  "logging.level",
	"logging_format": "logging.format",

	// Engine scoring weights
	"engine_weights_ph":         "engine.weights.ph",
	"engine_weights_texture":    "engine.weights.texture",
	"engine_weights_drainage":   "engine.weights.drainage",
	"engine_weights_climate":    "engine.weights.climate",
	"engine_weights_disease":    "engine.weights.disease",
	"engine_weights_economics":  "engine.weights.economics",
	"engine_weights_management": "engine.weights.management",

	// Engine evaluator parameters
	"engine_evaluator_ph_edge_score":         "engine.evaluator.ph_edge_score",
	"engine_evaluator_ph_floor":              "engine.evaluator.ph_floor",
	"engine_evaluator_ph_decay_per_unit":     "engine.evaluator.ph_decay_per_unit",
	"engine_evaluator_roi_cap":               "engine.evaluator.roi_cap",
	"engine_evaluator_climate_match_base":    "engine.evaluator.climate_match_base",
	"engine_evaluator_climate_mismatch_base": "engine.evaluator.climate_mismatch_base",
	"engine_evaluator_climate_stress_bonus":  "engine.evaluator.climate_stress_bonus",

	// Engine confidence parameters
	"engine_confidence_inclusion_weight":         "engine.confidence.inclusion_weight",
	"engine_confidence_regional_weight":          "engine.confidence.regional_weight",
	"engine_confidence_evidence_weight":          "engine.confidence.evidence_weight",
	"engine_confidence_evidence_saturation":      "engine.confidence.evidence_saturation",
	"engine_confidence_default_regional_quality": "engine.confidence.default_regional_quality",

	// Engine limits and cache
	"engine_limits_max_candidates":           "engine.limits.max_candidates",
	"engine_limits_max_parallel_evaluations": "engine.limits.max_parallel_evaluations",
	"engine_cache_enabled":                   "engine.cache.enabled",
	"engine_cache_ttl":                       "engine.cache.ttl",

	// Optimizer
	"optimizer_workers":                 "optimizer.workers",
	"optimizer_solve_timeout":           "optimizer.solve_timeout",
	"optimizer_tolerance":               "optimizer.tolerance",
	"optimizer_relaxed_tolerance":       "optimizer.relaxed_tolerance",
	"optimizer_nitrogen_risk_threshold": "optimizer.nitrogen_risk_threshold",
}

// envTransformFunc maps environment variable names to koanf config paths:
//
//   - FIELDWISE_SERVER_PORT                   -> server.port
//   - FIELDWISE_LOGGING_LEVEL                 -> logging.level
//   - FIELDWISE_ENGINE_LIMITS_MAX_CANDIDATES  -> engine.limits.max_candidates
//   - FIELDWISE_OPTIMIZER_SOLVE_TIMEOUT       -> optimizer.solve_timeout
//
// Unknown variables map to the empty string and are ignored.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	return envMappings[key]
}

// Validate checks the full configuration tree.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %v", c.Server.Timeout)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive, got %v", c.Server.ShutdownTimeout)
	}
	if c.Server.RateLimitReqs < 0 {
		return fmt.Errorf("server.rate_limit_reqs must not be negative, got %d", c.Server.RateLimitReqs)
	}
	if c.Server.RateLimitReqs > 0 && c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("server.rate_limit_window must be positive, got %v", c.Server.RateLimitWindow)
	}
	if err := c.Engine.Validate(); err != nil {
		return err
	}
	if err := c.Optimizer.Validate(); err != nil {
		return err
	}
	return nil
}
