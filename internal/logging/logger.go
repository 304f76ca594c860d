// Fieldwise - Crop Suitability Ranking and Fertilizer Blend Optimization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldwise

// Package logging provides centralized zerolog-based logging for Fieldwise.
//
//   - Zero-allocation structured logging
//   - JSON output for production, console output for development
//   - Context-aware logging with request ID propagation
//
// Always terminate log chains with .Msg() or .Send(), and prefer
// structured fields over string formatting:
//
//	logging.Info().Str("key", "value").Msg("message")
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logging configuration.
type Config struct {
	// Level is the minimum log level: trace, debug, info, warn, error,
	// fatal, panic. Default: info.
	Level string `json:"level" koanf:"level"`

	// Format is the output format: json or console.
	// Default: json (recommended for production).
	Format string `json:"format" koanf:"format"`

	// Output is the writer for log output. Default: os.Stderr.
	Output io.Writer `json:"-" koanf:"-"`
}

// DefaultConfig returns the default logging configuration.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "json",
		Output: os.Stderr,
	}
}

var (
	// log is the global logger instance.
	log zerolog.Logger

	// mu protects concurrent initialization.
	mu sync.RWMutex
)

//nolint:gochecknoinits // init ensures logging works before explicit Init() call
func init() {
	log = build(DefaultConfig())
}

// Init configures the global logger. Safe to call more than once.
func Init(cfg Config) error {
	if cfg.Level != "" {
		if _, err := zerolog.ParseLevel(strings.ToLower(cfg.Level)); err != nil {
			return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	log = build(cfg)
	return nil
}

// build constructs a logger from the configuration.
func build(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	level := zerolog.InfoLevel
	if cfg.Level != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(cfg.Level)); err == nil {
			level = parsed
		}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// L returns the global logger.
func L() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// Debug starts a debug-level log event.
func Debug() *zerolog.Event {
	l := L()
	return l.Debug()
}

// Info starts an info-level log event.
func Info() *zerolog.Event {
	l := L()
	return l.Info()
}

// Warn starts a warn-level log event.
func Warn() *zerolog.Event {
	l := L()
	return l.Warn()
}

// Error starts an error-level log event.
func Error() *zerolog.Event {
	l := L()
	return l.Error()
}

// Fatal starts a fatal-level log event. The process exits after Msg.
func Fatal() *zerolog.Event {
	l := L()
	return l.Fatal()
}
