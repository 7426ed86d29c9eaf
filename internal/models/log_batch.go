// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package models

// BatchResource is the denormalized identity shared by every record in a LogBatch.
type BatchResource struct {
	Service string `json:"service"`
	Env     string `json:"env"`
	Host    string `json:"host"`
}

// LogRecord is a single log line bound for export.
type LogRecord struct {
	Timestamp      string            `json:"timestamp"` // ISO-8601
	Severity       string            `json:"severity"`
	Message        string            `json:"message"`
	TraceID        string            `json:"trace_id,omitempty"`
	SpanID         string            `json:"span_id,omitempty"`
	CircuitID      string            `json:"circuit_id,omitempty"`
	ProductID      string            `json:"product_id,omitempty"`
	ResourceID     string            `json:"resource_id,omitempty"`
	ResourceTypeID string            `json:"resource_type_id,omitempty"`
	RequestID      string            `json:"request_id,omitempty"`
	Labels         map[string]string `json:"labels,omitempty"`
}

// Fields returns the record as a flat map suitable for a JSON log line.
// Empty optional fields are omitted; Labels are merged under their own keys
// unless they would shadow a record field.
func (r *LogRecord) Fields() map[string]any {
	fields := map[string]any{
		"timestamp": r.Timestamp,
		"severity":  r.Severity,
		"message":   r.Message,
	}

	optional := []struct {
		key   string
		value string
	}{
		{"trace_id", r.TraceID},
		{"span_id", r.SpanID},
		{"circuit_id", r.CircuitID},
		{"product_id", r.ProductID},
		{"resource_id", r.ResourceID},
		{"resource_type_id", r.ResourceTypeID},
		{"request_id", r.RequestID},
	}
	for _, f := range optional {
		if f.value != "" {
			fields[f.key] = f.value
		}
	}

	for k, v := range r.Labels {
		if _, exists := fields[k]; !exists {
			fields[k] = v
		}
	}
	return fields
}

// LogBatch is the unit of work for log export. All records share Resource.
type LogBatch struct {
	Resource BatchResource `json:"resource"`
	Records  []LogRecord   `json:"records"`
}

// StreamLabels builds the low-cardinality label set for a record in this batch:
// service, env, and trace_id when the record has one. Every other field belongs
// in the log line body.
func (b *LogBatch) StreamLabels(r *LogRecord) map[string]string {
	labels := map[string]string{
		"service": b.Resource.Service,
		"env":     b.Resource.Env,
	}
	if r.TraceID != "" {
		labels["trace_id"] = r.TraceID
	}
	return labels
}

// Len returns the number of records in the batch.
func (b *LogBatch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Records)
}
