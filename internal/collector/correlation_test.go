// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package collector

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/baggage"

	"github.com/tomtom215/correlator/internal/logging"
)

func TestWithCorrelation(t *testing.T) {
	corr := Correlation{CircuitID: "CID-001", ProductType: "ethernet", ResourceID: "r1"}
	ctx := WithCorrelation(context.Background(), corr)

	got, ok := CorrelationFromContext(ctx)
	if !ok || got != corr {
		t.Fatalf("CorrelationFromContext() = (%+v, %v), want (%+v, true)", got, ok, corr)
	}

	fields := logging.FieldsFromContext(ctx)
	for k, want := range map[string]string{"circuit_id": "CID-001", "product_type": "ethernet", "resource_id": "r1"} {
		if fields[k] != want {
			t.Errorf("logging field %s = %q, want %q", k, fields[k], want)
		}
	}

	bag := baggage.FromContext(ctx)
	if v := bag.Member("circuit_id").Value(); v != "CID-001" {
		t.Errorf("baggage circuit_id = %q, want CID-001", v)
	}
}

func TestWithCorrelation_DoesNotLeakToParent(t *testing.T) {
	parent := logging.ContextWithFields(context.Background(), map[string]string{"component": "collector"})
	child := WithCorrelation(parent, Correlation{CircuitID: "CID-9", ResourceID: "r9"})

	if _, ok := CorrelationFromContext(parent); ok {
		t.Error("parent context gained a correlation")
	}
	if _, ok := logging.FieldsFromContext(parent)["circuit_id"]; ok {
		t.Error("parent logging fields gained circuit_id")
	}
	if logging.FieldsFromContext(child)["component"] != "collector" {
		t.Error("child lost parent logging fields")
	}
	if _, ok := logging.FieldsFromContext(child)["product_type"]; ok {
		t.Error("empty product_type was attached")
	}
}

func TestWithCorrelation_Nested(t *testing.T) {
	ctx := WithCorrelation(context.Background(), Correlation{CircuitID: "A", ResourceID: "r1"})
	ctx = WithCorrelation(ctx, Correlation{CircuitID: "B", ResourceID: "r2"})

	got, _ := CorrelationFromContext(ctx)
	if got.CircuitID != "B" {
		t.Errorf("CircuitID = %q, want innermost B", got.CircuitID)
	}
	if v := baggage.FromContext(ctx).Member("resource_id").Value(); v != "r2" {
		t.Errorf("baggage resource_id = %q, want r2", v)
	}
}
