// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package exporter

import (
	"context"
	"strings"
	"time"

	"github.com/tomtom215/correlator/internal/models"
)

const backendTempo = "tempo"

// TempoExporter posts OTLP/HTTP JSON spans to Tempo.
type TempoExporter struct {
	url     string
	service string
	t       *transport
	now     func() time.Time
}

// NewTempoExporter creates an exporter for the Tempo OTLP/HTTP endpoint.
// service names spans whose input carries none.
func NewTempoExporter(endpoint, service string, opts Options) *TempoExporter {
	return &TempoExporter{
		url:     strings.TrimRight(endpoint, "/") + "/v1/traces",
		service: service,
		t:       newTransport(backendTempo, opts),
		now:     time.Now,
	}
}

// ExportCorrelation exports event as a single span. Failures are logged and swallowed.
func (e *TempoExporter) ExportCorrelation(ctx context.Context, event models.CorrelationEvent) {
	_ = e.exportCorrelation(ctx, event)
}

// ExportTraces posts req unchanged. Failures are logged and swallowed.
func (e *TempoExporter) ExportTraces(ctx context.Context, req *TraceRequest) {
	_ = e.exportTraces(ctx, req)
}

// ExportBridgeSpan exports a synthetic span linking other trace contexts.
// Failures are logged and swallowed.
func (e *TempoExporter) ExportBridgeSpan(ctx context.Context, span models.BridgeSpan) {
	_ = e.exportTraces(ctx, e.bridgeRequest(&span))
}

func (e *TempoExporter) exportCorrelation(ctx context.Context, event models.CorrelationEvent) error {
	return e.exportTraces(ctx, e.correlationRequest(&event))
}

func (e *TempoExporter) exportTraces(ctx context.Context, req *TraceRequest) error {
	n := req.SpanCount()
	if n == 0 {
		return nil
	}
	return e.t.deliver(ctx, n, func(ctx context.Context) error {
		return e.t.post(ctx, e.url, nil, req)
	})
}

func (e *TempoExporter) correlationRequest(event *models.CorrelationEvent) *TraceRequest {
	ts := event.Timestamp
	if ts.IsZero() {
		ts = e.now()
	}
	service := event.Service
	if service == "" {
		service = e.service
	}

	span := Span{
		TraceID:           NormalizeTraceID(event.TraceID, event.CorrelationID),
		SpanID:            NormalizeSpanID("", event.CorrelationID),
		Name:              "correlation",
		Kind:              spanKindInternal,
		StartTimeUnixNano: unixNanos(ts),
		EndTimeUnixNano:   unixNanos(ts),
		Attributes:        attributesFromList(event.Attributes()),
	}
	return newTraceRequest(service, span)
}

func (e *TempoExporter) bridgeRequest(bridge *models.BridgeSpan) *TraceRequest {
	start := bridge.StartTime
	if start.IsZero() {
		start = e.now()
	}
	end := bridge.EndTime
	if end.Before(start) {
		end = start
	}
	service := bridge.Service
	if service == "" {
		service = e.service
	}

	span := Span{
		TraceID:           NormalizeTraceID(bridge.TraceID, bridge.TraceID+bridge.Name),
		SpanID:            NormalizeSpanID(bridge.SpanID, bridge.SpanID+bridge.Name),
		Name:              bridge.Name,
		Kind:              spanKindInternal,
		StartTimeUnixNano: unixNanos(start),
		EndTimeUnixNano:   unixNanos(end),
		Attributes:        attributesFromMap(bridge.Attributes),
	}
	if bridge.ParentSpanID != "" {
		span.ParentSpanID = NormalizeSpanID(bridge.ParentSpanID, bridge.ParentSpanID)
	}
	for _, l := range bridge.Links {
		span.Links = append(span.Links, Link{
			TraceID:    NormalizeTraceID(l.TraceID, l.TraceID),
			SpanID:     NormalizeSpanID(l.SpanID, l.SpanID),
			Attributes: attributesFromMap(l.Attributes),
		})
	}
	return newTraceRequest(service, span)
}

// Status returns the breaker snapshot.
func (e *TempoExporter) Status() BreakerStatus {
	return e.t.status()
}

// Close releases idle connections.
func (e *TempoExporter) Close(context.Context) error {
	return e.t.close()
}
