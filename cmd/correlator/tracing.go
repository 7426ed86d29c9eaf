// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package main

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/tomtom215/correlator/internal/config"
)

// initTracing installs the global tracer provider and the W3C trace-context
// and baggage propagators. No span exporter is attached: the provider only
// mints the trace and span IDs the collector stamps onto exported records.
// The returned function flushes and stops the provider.
func initTracing(cfg config.TracingConfig, exp config.ExportersConfig) (*sdktrace.TracerProvider, func(context.Context) error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if !cfg.Enabled {
		return nil, func(context.Context) error { return nil }
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", exp.Service),
		attribute.String("deployment.environment", exp.Env),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)
	otel.SetTracerProvider(tp)

	return tp, tp.Shutdown
}
