// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package logging

import (
	"context"
	"maps"
	"slices"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// scopeKey holds the *scope of a context.
type scopeKey struct{}

// scope is everything the logging helpers attach to a context. It is
// copied on every change, so a parent context never sees a child's values.
type scope struct {
	logger        *zerolog.Logger
	correlationID string
	requestID     string
	fields        map[string]string
}

func scopeOf(ctx context.Context) scope {
	if s, ok := ctx.Value(scopeKey{}).(*scope); ok {
		return *s
	}
	return scope{}
}

func withScope(ctx context.Context, edit func(*scope)) context.Context {
	s := scopeOf(ctx)
	edit(&s)
	return context.WithValue(ctx, scopeKey{}, &s)
}

// GenerateCorrelationID returns a random UUID for a new correlation.
func GenerateCorrelationID() string { return uuid.NewString() }

// GenerateRequestID returns a random UUID for an inbound HTTP request.
func GenerateRequestID() string { return uuid.NewString() }

// ContextWithCorrelationID attaches a correlation ID.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return withScope(ctx, func(s *scope) { s.correlationID = id })
}

// CorrelationIDFromContext returns the correlation ID, or "".
func CorrelationIDFromContext(ctx context.Context) string {
	return scopeOf(ctx).correlationID
}

// ContextWithRequestID attaches a request ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return withScope(ctx, func(s *scope) { s.requestID = id })
}

// RequestIDFromContext returns the request ID, or "".
func RequestIDFromContext(ctx context.Context) string {
	return scopeOf(ctx).requestID
}

// ContextWithLogger makes l the base logger for Ctx.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func ContextWithLogger(ctx context.Context, l zerolog.Logger) context.Context {
	return withScope(ctx, func(s *scope) { s.logger = &l })
}

// LoggerFromContext returns the logger set by ContextWithLogger, else the
// global logger.
func LoggerFromContext(ctx context.Context) zerolog.Logger {
	if l := scopeOf(ctx).logger; l != nil {
		return *l
	}
	return Logger()
}

// ContextWithFields merges fields into those already attached; on a key
// collision the new value wins. The caller's map is not retained.
func ContextWithFields(ctx context.Context, fields map[string]string) context.Context {
	return withScope(ctx, func(s *scope) {
		merged := maps.Clone(s.fields)
		if merged == nil {
			merged = make(map[string]string, len(fields))
		}
		maps.Copy(merged, fields)
		s.fields = merged
	})
}

// FieldsFromContext returns the attached fields. Do not modify the map.
func FieldsFromContext(ctx context.Context) map[string]string {
	return scopeOf(ctx).fields
}

// Ctx returns the context's logger with correlation_id, request_id and the
// attached fields, in key order.
//
//	logging.Ctx(ctx).Info().Msg("Processing resource")
//	// {"level":"info","circuit_id":"CID-001","resource_id":"r1","message":"Processing resource"}
func Ctx(ctx context.Context) *zerolog.Logger {
	l := CtxWith(ctx).Logger()
	return &l
}

// CtxWith is Ctx before the logger is built, for adding more fields.
func CtxWith(ctx context.Context) zerolog.Context {
	s := scopeOf(ctx)

	base := Logger()
	if s.logger != nil {
		base = *s.logger
	}
	lc := base.With()
	if s.correlationID != "" {
		lc = lc.Str("correlation_id", s.correlationID)
	}
	if s.requestID != "" {
		lc = lc.Str("request_id", s.requestID)
	}
	for _, k := range slices.Sorted(maps.Keys(s.fields)) {
		lc = lc.Str(k, s.fields[k])
	}
	return lc
}

// CtxErr starts an error event on Ctx(ctx) carrying err.
func CtxErr(ctx context.Context, err error) *zerolog.Event {
	return Ctx(ctx).Err(err)
}
