// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logging configuration.
type Config struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string

	// Format is json (default) or console.
	Format string

	// Caller adds file:line to every line.
	Caller bool

	// Timestamp adds an RFC 3339 "time" field.
	Timestamp bool

	// Service and Env, when set, are stamped on every line so the
	// correlator's own logs can be told apart from the records it exports.
	Service string
	Env     string

	// Output defaults to os.Stderr.
	Output io.Writer
}

// DefaultConfig returns the configuration the package starts with.
func DefaultConfig() Config {
	return Config{
		Level:     "info",
		Format:    "json",
		Timestamp: true,
		Output:    os.Stderr,
	}
}

var (
	mu     sync.RWMutex
	global zerolog.Logger
)

//nolint:gochecknoinits // logging must work before Init is called
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.TimestampFieldName = "time"
	zerolog.MessageFieldName = "message"
	global = build(DefaultConfig())
}

// Init replaces the global logger. It is safe to call more than once.
func Init(cfg Config) {
	l := build(cfg)
	mu.Lock()
	global = l
	mu.Unlock()
}

func build(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	lc := zerolog.New(out).With()
	if cfg.Timestamp {
		lc = lc.Timestamp()
	}
	if cfg.Caller {
		lc = lc.Caller()
	}
	if cfg.Service != "" {
		lc = lc.Str("service", cfg.Service)
	}
	if cfg.Env != "" {
		lc = lc.Str("env", cfg.Env)
	}
	return lc.Logger()
}

// parseLevel maps a level name to zerolog, falling back to info for empty or
// unknown names. "warning" is accepted for "warn".
func parseLevel(level string) zerolog.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		level = "warn"
	}
	l, err := zerolog.ParseLevel(level)
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}

// Logger returns a copy of the global logger.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// SetLogger replaces the global logger. Tests use it to capture output.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func SetLogger(l zerolog.Logger) {
	mu.Lock()
	global = l
	mu.Unlock()
}

func current() *zerolog.Logger {
	l := Logger()
	return &l
}

// Debug starts a debug message on the global logger.
func Debug() *zerolog.Event { return current().Debug() }

// Info starts an info message on the global logger.
//
//	logging.Info().Str("backend", "loki").Msg("Exporter ready")
func Info() *zerolog.Event { return current().Info() }

// Warn starts a warning message on the global logger.
func Warn() *zerolog.Event { return current().Warn() }

// Error starts an error message on the global logger.
func Error() *zerolog.Event { return current().Error() }

// Fatal starts a fatal message; os.Exit(1) follows Msg.
func Fatal() *zerolog.Event { return current().Fatal() }

// GetLevel returns the global minimum level.
func GetLevel() zerolog.Level {
	return zerolog.GlobalLevel()
}

// NewTestLogger returns a JSON logger writing to w.
func NewTestLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}
