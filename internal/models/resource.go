// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package models

import "time"

// Resource identifies one orchestrated circuit or device record.
// Resources are owned by the orchestration system and read-only to the correlator.
type Resource struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	CircuitID string    `json:"circuit_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	OrchState string    `json:"orch_state"`
	DeviceTID string    `json:"device_tid,omitempty"`
}

// CorrelationKey returns the circuit ID, falling back to the label when the
// circuit ID is empty. Returns "" when neither is set.
func (r *Resource) CorrelationKey() string {
	if r.CircuitID != "" {
		return r.CircuitID
	}
	return r.Label
}

// CreatedWithin reports whether the resource was created inside [start, end].
// Both bounds are inclusive.
func (r *Resource) CreatedWithin(start, end time.Time) bool {
	return !r.CreatedAt.Before(start) && !r.CreatedAt.After(end)
}

// Attribute returns the string value of a filterable attribute by its wire name.
// The second return value is false for unknown attribute names.
func (r *Resource) Attribute(name string) (string, bool) {
	switch name {
	case "id":
		return r.ID, true
	case "label":
		return r.Label, true
	case "circuit_id":
		return r.CircuitID, true
	case "orch_state":
		return r.OrchState, true
	case "device_tid":
		return r.DeviceTID, true
	default:
		return "", false
	}
}

// MatchesFilters reports whether every filter entry equals the resource's attribute.
// Unknown attribute names never match. An empty filter set matches everything.
func (r *Resource) MatchesFilters(filters map[string]string) bool {
	for name, want := range filters {
		got, ok := r.Attribute(name)
		if !ok || got != want {
			return false
		}
	}
	return true
}
