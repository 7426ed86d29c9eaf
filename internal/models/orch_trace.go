// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package models

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// TraceStep is one step record of an orchestration trace.
//
// Error is nil when the step carried a null or missing error field. Fields keeps
// the step exactly as received so callers can inspect attributes the correlator
// does not model.
type TraceStep struct {
	Error        *string        `json:"error"`
	Process      string         `json:"process,omitempty"`
	ResourceType string         `json:"resource_type,omitempty"`
	Fields       map[string]any `json:"-"`
}

// UnmarshalJSON decodes a step, tolerating non-string error payloads. False,
// zero and empty objects or arrays mean no error.
func (s *TraceStep) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode trace step: %w", err)
	}

	*s = TraceStep{Fields: raw}

	switch v := raw["error"].(type) {
	case nil:
	case string:
		s.Error = &v
	default:
		if falsy(v) {
			break
		}
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode trace step error: %w", err)
		}
		msg := string(encoded)
		s.Error = &msg
	}

	if v, ok := raw["process"].(string); ok {
		s.Process = v
	}
	if v, ok := raw["resource_type"].(string); ok {
		s.ResourceType = v
	}
	return nil
}

// falsy reports whether a decoded JSON value is false, zero, or an empty
// object or array.
func falsy(v any) bool {
	switch v := v.(type) {
	case bool:
		return !v
	case float64:
		return v == 0
	case map[string]any:
		return len(v) == 0
	case []any:
		return len(v) == 0
	}
	return false
}

// HasError reports whether the step carries a non-empty error.
func (s *TraceStep) HasError() bool {
	return s.Error != nil && *s.Error != ""
}

// ErrorMessage returns the step's error, or "" when there is none.
func (s *TraceStep) ErrorMessage() string {
	if s.Error == nil {
		return ""
	}
	return *s.Error
}

// OrchTrace is one orchestration run's step log for a (circuit, resource) pair.
type OrchTrace struct {
	CircuitID  string      `json:"circuit_id"`
	ResourceID string      `json:"resource_id"`
	TraceData  []TraceStep `json:"trace_data"`
	Timestamp  time.Time   `json:"timestamp"`
}

// Errors returns the error-bearing steps in their original order.
// It never mutates the trace; the result shares no slice backing with TraceData.
func (t *OrchTrace) Errors() []TraceStep {
	if t == nil {
		return nil
	}
	out := make([]TraceStep, 0, len(t.TraceData))
	for i := range t.TraceData {
		if t.TraceData[i].HasError() {
			out = append(out, t.TraceData[i])
		}
	}
	return out
}
