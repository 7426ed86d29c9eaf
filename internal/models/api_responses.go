// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package models

import (
	"time"
)

// APIResponse is the envelope returned by every JSON endpoint of the
// correlator's HTTP surface.
//
// Status field values:
//   - "success" / "ready": see Data
//   - "error": see Error
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {"code": "UNKNOWN_PRODUCT", "message": "product \"sdwan\" is not configured"},
//	  "metadata": {"timestamp": "2026-03-02T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string    `json:"status"`
	Data     any       `json:"data"`
	Metadata Metadata  `json:"metadata"`
	Error    *APIError `json:"error,omitempty"`
}

// Metadata carries response timing.
type Metadata struct {
	Timestamp  time.Time `json:"timestamp"`
	DurationMS int64     `json:"duration_ms,omitempty"`
}

// APIError is a machine-readable error code plus a human message.
//
// Codes in use: VALIDATION_ERROR, INVALID_JSON, UNKNOWN_PRODUCT,
// COLLECTION_FAILED, RATE_LIMIT_EXCEEDED.
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// CollectResult is the data payload of a successful POST /collect.
type CollectResult struct {
	ProductType    string `json:"product_type"`
	ProductName    string `json:"product_name"`
	TimeRangeHours int    `json:"time_range_hours"`
	Records        int    `json:"records"`
	CorrelationID  string `json:"correlation_id"`
}

// ReadinessStatus is the data payload of GET /readyz.
type ReadinessStatus struct {
	Uptime    float64         `json:"uptime_seconds"`
	Exporters []ExporterState `json:"exporters"`
}

// ExporterState reports one backend's circuit breaker.
type ExporterState struct {
	Backend  string `json:"backend"`
	State    string `json:"state"`
	Failures uint32 `json:"failures"`
}
