// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package orchestration

import (
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/correlator/internal/models"
)

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Tenant   string `json:"tenant,omitempty"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type countResponse struct {
	Count int `json:"count"`
}

type listResponse struct {
	Items []resourceItem `json:"items"`
}

// resourceItem is a resource as the orchestration API returns it.
type resourceItem struct {
	ID         string         `json:"id"`
	Label      string         `json:"label"`
	CreatedAt  string         `json:"createdAt"`
	OrchState  string         `json:"orchState"`
	Properties map[string]any `json:"properties"`
}

// createdAtLayouts are the timestamp layouts seen in createdAt fields.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02T15:04:05",
}

func parseCreatedAt(s string) time.Time {
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// property returns a property as a string. Numbers and booleans are formatted;
// other shapes yield "".
func (r *resourceItem) property(name string) string {
	switch v := r.Properties[name].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

func (r *resourceItem) toModel() models.Resource {
	return models.Resource{
		ID:        r.ID,
		Label:     r.Label,
		CircuitID: r.property("circuit_id"),
		CreatedAt: parseCreatedAt(r.CreatedAt),
		OrchState: r.OrchState,
		DeviceTID: r.property("device_tid"),
	}
}

// traceSteps decodes properties.orchestration_trace. The payload is either a
// JSON array of steps or a string containing one.
func (r *resourceItem) traceSteps() ([]models.TraceStep, error) {
	raw, ok := r.Properties["orchestration_trace"]
	if !ok || raw == nil {
		return nil, nil
	}

	var data []byte
	if s, isString := raw.(string); isString {
		data = []byte(s)
	} else {
		encoded, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("re-encode orchestration_trace: %w", err)
		}
		data = encoded
	}

	var steps []models.TraceStep
	if err := json.Unmarshal(data, &steps); err != nil {
		return nil, fmt.Errorf("decode orchestration_trace: %w", err)
	}
	return steps, nil
}
