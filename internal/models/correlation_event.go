// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package models

import "time"

// CorrelationEvent is a synthesized span describing a correlation outcome.
//
// TraceID is expected to be hex; exporters substitute a value derived from
// CorrelationID when it is not.
type CorrelationEvent struct {
	CorrelationID  string    `json:"correlation_id"`
	TraceID        string    `json:"trace_id"`
	LogCount       int       `json:"log_count"`
	SpanCount      int       `json:"span_count"`
	Service        string    `json:"service"`
	Env            string    `json:"env"`
	Timestamp      time.Time `json:"timestamp"`
	CircuitID      string    `json:"circuit_id,omitempty"`
	ProductID      string    `json:"product_id,omitempty"`
	ResourceID     string    `json:"resource_id,omitempty"`
	ResourceTypeID string    `json:"resource_type_id,omitempty"`
	RequestID      string    `json:"request_id,omitempty"`
}

// Attributes returns the span attributes for the event, in a stable order.
// Optional identifiers are included only when set.
func (e *CorrelationEvent) Attributes() []Attribute {
	attrs := []Attribute{
		{Key: "correlation.id", Value: e.CorrelationID},
		{Key: "correlation.log_count", Value: int64(e.LogCount)},
		{Key: "correlation.span_count", Value: int64(e.SpanCount)},
		{Key: "service.name", Value: e.Service},
		{Key: "deployment.environment", Value: e.Env},
	}

	optional := []struct {
		key   string
		value string
	}{
		{"circuit_id", e.CircuitID},
		{"product_id", e.ProductID},
		{"resource_id", e.ResourceID},
		{"resource_type_id", e.ResourceTypeID},
		{"request_id", e.RequestID},
	}
	for _, o := range optional {
		if o.value != "" {
			attrs = append(attrs, Attribute{Key: o.key, Value: o.value})
		}
	}
	return attrs
}

// Attribute is a typed span attribute. Value is a string, bool, int64 or float64.
type Attribute struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// SpanLink points from a bridge span to another span.
type SpanLink struct {
	TraceID    string         `json:"trace_id"`
	SpanID     string         `json:"span_id"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// BridgeSpan is a synthetic span manufactured to link two trace contexts.
type BridgeSpan struct {
	TraceID      string         `json:"trace_id"`
	SpanID       string         `json:"span_id"`
	ParentSpanID string         `json:"parent_span_id,omitempty"`
	Name         string         `json:"name"`
	Service      string         `json:"service"`
	StartTime    time.Time      `json:"start_time"`
	EndTime      time.Time      `json:"end_time"`
	Attributes   map[string]any `json:"attributes,omitempty"`
	Links        []SpanLink     `json:"links,omitempty"`
}
