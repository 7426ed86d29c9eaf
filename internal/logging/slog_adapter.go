// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package logging

import (
	"context"
	"log/slog"

	"github.com/rs/zerolog"
)

// SlogHandler is an slog.Handler that writes through zerolog. It lets
// sutureslog report supervisor events in the correlator's log format.
//
// Groups become dotted key prefixes. Attributes given to WithAttrs are bound
// to the logger at once, so groups opened later do not qualify them.
type SlogHandler struct {
	logger zerolog.Logger
	prefix string
}

// NewSlogHandler wraps the global logger as it is at call time.
func NewSlogHandler() *SlogHandler {
	return &SlogHandler{logger: Logger()}
}

// NewSlogHandlerWithLogger wraps logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSlogHandlerWithLogger(logger zerolog.Logger) *SlogHandler {
	return &SlogHandler{logger: logger}
}

// NewSlogLogger is slog.New(NewSlogHandler()).
func NewSlogLogger() *slog.Logger {
	return slog.New(NewSlogHandler())
}

// Enabled implements slog.Handler.
func (h *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return zerologLevel(level) >= h.logger.GetLevel()
}

// Handle implements slog.Handler.
//
//nolint:gocritic // slog.Record is passed by value per slog.Handler interface
func (h *SlogHandler) Handle(_ context.Context, r slog.Record) error {
	var kv []any
	r.Attrs(func(a slog.Attr) bool {
		kv = flatten(kv, h.prefix, a)
		return true
	})

	e := h.logger.WithLevel(zerologLevel(r.Level))
	if len(kv) > 0 {
		e = e.Fields(kv)
	}
	e.Msg(r.Message)
	return nil
}

// WithAttrs implements slog.Handler.
func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	kv := flatten(nil, h.prefix, attrs...)
	if len(kv) == 0 {
		return h
	}
	return &SlogHandler{logger: h.logger.With().Fields(kv).Logger(), prefix: h.prefix}
}

// WithGroup implements slog.Handler.
func (h *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &SlogHandler{logger: h.logger, prefix: h.prefix + name + "."}
}

// flatten appends attrs to kv as alternating key, value pairs. Nested groups
// extend the prefix; empty attributes are dropped as slog requires.
func flatten(kv []any, prefix string, attrs ...slog.Attr) []any {
	for _, a := range attrs {
		v := a.Value.Resolve()
		if v.Kind() == slog.KindGroup {
			sub := prefix
			if a.Key != "" {
				sub += a.Key + "."
			}
			kv = flatten(kv, sub, v.Group()...)
			continue
		}
		if a.Key == "" {
			continue
		}
		kv = append(kv, prefix+a.Key, v.Any())
	}
	return kv
}

// zerologLevel maps slog levels onto zerolog, rounding down between steps.
func zerologLevel(l slog.Level) zerolog.Level {
	switch {
	case l >= slog.LevelError:
		return zerolog.ErrorLevel
	case l >= slog.LevelWarn:
		return zerolog.WarnLevel
	case l >= slog.LevelInfo:
		return zerolog.InfoLevel
	case l >= slog.LevelDebug:
		return zerolog.DebugLevel
	}
	return zerolog.TraceLevel
}
