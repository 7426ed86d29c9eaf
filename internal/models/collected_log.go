// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package models

import "time"

// CollectedLog is the normalized record emitted by the collector for one
// failed orchestration step.
type CollectedLog struct {
	Timestamp    time.Time `json:"timestamp"` // trace timestamp, not per step
	CircuitID    string    `json:"circuit_id"`
	ResourceID   string    `json:"resource_id"`
	ProductType  string    `json:"product_type"`
	Error        string    `json:"error"`
	Process      string    `json:"process,omitempty"`
	ResourceType string    `json:"resource_type,omitempty"`
	OrchState    string    `json:"orch_state"`
	DeviceTID    string    `json:"device_tid,omitempty"`
}

// ToLogRecord converts the collected log into an exportable error record.
func (c *CollectedLog) ToLogRecord() LogRecord {
	labels := map[string]string{
		"product_type": c.ProductType,
		"orch_state":   c.OrchState,
	}
	if c.Process != "" {
		labels["process"] = c.Process
	}
	if c.ResourceType != "" {
		labels["resource_type"] = c.ResourceType
	}
	if c.DeviceTID != "" {
		labels["device_tid"] = c.DeviceTID
	}

	// A trace without createdAt leaves the timestamp empty so exporters use now.
	var ts string
	if !c.Timestamp.IsZero() {
		ts = c.Timestamp.UTC().Format(time.RFC3339Nano)
	}

	return LogRecord{
		Timestamp:      ts,
		Severity:       "error",
		Message:        c.Error,
		CircuitID:      c.CircuitID,
		ProductID:      c.ProductType,
		ResourceID:     c.ResourceID,
		ResourceTypeID: c.ResourceType,
		Labels:         labels,
	}
}

// NewLogBatch wraps collected logs into a batch for the given identity.
func NewLogBatch(resource BatchResource, logs []CollectedLog) LogBatch {
	records := make([]LogRecord, 0, len(logs))
	for i := range logs {
		records = append(records, logs[i].ToLogRecord())
	}
	return LogBatch{Resource: resource, Records: records}
}
