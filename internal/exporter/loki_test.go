// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package exporter

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/correlator/internal/metrics"
	"github.com/tomtom215/correlator/internal/models"
)

func TestLokiExporter_GroupsStreamsByLabels(t *testing.T) {
	backend := newFakeBackend(t, http.StatusNoContent)
	e := NewLokiExporter(backend.URL+"/loki/api/v1/push", testOptions())
	e.now = func() time.Time { return fixedNow }

	if err := e.export(context.Background(), sampleBatch()); err != nil {
		t.Fatalf("export() error = %v", err)
	}

	var req LokiPushRequest
	if err := json.Unmarshal(backend.lastBody(), &req); err != nil {
		t.Fatalf("decode push request: %v", err)
	}
	if len(req.Streams) != 2 {
		t.Fatalf("streams = %d, want 2", len(req.Streams))
	}

	traced := req.Streams[0]
	if traced.Stream["trace_id"] != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("first stream labels = %v", traced.Stream)
	}
	if len(traced.Stream) != 3 {
		t.Errorf("first stream has %d labels, want service/env/trace_id only", len(traced.Stream))
	}
	if len(traced.Values) != 2 {
		t.Fatalf("first stream values = %d, want 2", len(traced.Values))
	}

	wantNs := strconv.FormatInt(time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC).UnixNano(), 10)
	if traced.Values[0][0] != wantNs {
		t.Errorf("timestamp = %s, want %s", traced.Values[0][0], wantNs)
	}
	if traced.Values[1][0] != strconv.FormatInt(fixedNow.UnixNano(), 10) {
		t.Errorf("unparsable timestamp = %s, want now", traced.Values[1][0])
	}

	var line map[string]any
	if err := json.Unmarshal([]byte(traced.Values[0][1]), &line); err != nil {
		t.Fatalf("decode line: %v", err)
	}
	if line["circuit_id"] != "CID-001" || line["process"] != "activate" || line["message"] != "port unreachable" {
		t.Errorf("line = %v", line)
	}

	untraced := req.Streams[1]
	if _, ok := untraced.Stream["trace_id"]; ok {
		t.Errorf("untraced stream has trace_id label: %v", untraced.Stream)
	}
	if untraced.Stream["service"] != "correlator" || untraced.Stream["env"] != "test" {
		t.Errorf("untraced stream labels = %v", untraced.Stream)
	}
}

func TestLokiExporter_EmptyBatchSkipsRequest(t *testing.T) {
	backend := newFakeBackend(t, http.StatusNoContent)
	e := NewLokiExporter(backend.URL, testOptions())

	if err := e.export(context.Background(), models.LogBatch{}); err != nil {
		t.Fatalf("export() error = %v", err)
	}
	if backend.hits() != 0 {
		t.Errorf("backend hits = %d, want 0", backend.hits())
	}
}

func TestLokiExporter_FailureRecordedAndSwallowed(t *testing.T) {
	backend := newFakeBackend(t, http.StatusInternalServerError)
	opts := testOptions()
	opts.Retry.MaxRetries = 2
	e := NewLokiExporter(backend.URL, opts)

	before := testutil.ToFloat64(metrics.ExportAttempts.WithLabelValues(backendLoki, metrics.OutcomeFailure))

	err := e.export(context.Background(), sampleBatch())
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("export() error = %v, want *StatusError 500", err)
	}
	if backend.hits() != 2 {
		t.Errorf("backend hits = %d, want 2 (retried)", backend.hits())
	}
	if got := testutil.ToFloat64(metrics.ExportAttempts.WithLabelValues(backendLoki, metrics.OutcomeFailure)) - before; got != 1 {
		t.Errorf("failure attempts recorded = %v, want 1", got)
	}
	if e.Status().Failures != 1 {
		t.Errorf("breaker failures = %d, want 1", e.Status().Failures)
	}

	e.Export(context.Background(), sampleBatch())
}

func TestLokiExporter_CircuitOpenSkipsNetwork(t *testing.T) {
	backend := newFakeBackend(t, http.StatusBadGateway)
	opts := testOptions()
	opts.Breaker.FailureThreshold = 1
	e := NewLokiExporter(backend.URL, opts)

	_ = e.export(context.Background(), sampleBatch())
	hits := backend.hits()

	before := testutil.ToFloat64(metrics.ExportAttempts.WithLabelValues(backendLoki, metrics.OutcomeCircuitOpen))
	if err := e.export(context.Background(), sampleBatch()); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("export() error = %v, want ErrCircuitOpen", err)
	}
	if backend.hits() != hits {
		t.Error("open breaker still reached the backend")
	}
	if got := testutil.ToFloat64(metrics.ExportAttempts.WithLabelValues(backendLoki, metrics.OutcomeCircuitOpen)) - before; got != 1 {
		t.Errorf("circuit_open attempts = %v, want 1", got)
	}
	if e.Status().State != StateOpen {
		t.Errorf("state = %s, want open", e.Status().State)
	}
}

func TestLabelKeyIsOrderIndependent(t *testing.T) {
	a := labelKey(map[string]string{"service": "s", "env": "e"})
	b := labelKey(map[string]string{"env": "e", "service": "s"})
	if a != b {
		t.Errorf("labelKey differs: %q vs %q", a, b)
	}
}

func TestLokiExporter_ZeroTraceTimestampFallsBackToNow(t *testing.T) {
	e := NewLokiExporter("http://loki.invalid/loki/api/v1/push", testOptions())
	e.now = func() time.Time { return fixedNow }

	batch := models.NewLogBatch(
		models.BatchResource{Service: "correlator", Env: "test"},
		[]models.CollectedLog{{CircuitID: "CID-009", ResourceID: "r9", ProductType: "ethernet", Error: "no createdAt"}},
	)
	req, err := e.buildPushRequest(&batch)
	if err != nil {
		t.Fatalf("buildPushRequest() error = %v", err)
	}
	if len(req.Streams) != 1 || len(req.Streams[0].Values) != 1 {
		t.Fatalf("streams = %+v, want one entry", req.Streams)
	}
	if got, want := req.Streams[0].Values[0][0], strconv.FormatInt(fixedNow.UnixNano(), 10); got != want {
		t.Errorf("timestamp = %s, want now (%s)", got, want)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"2026-03-01T11:00:00Z", true},
		{"2026-03-01 11:00:00", true},
		{"", false},
		{"not-a-time", false},
		{"0001-01-01T00:00:00Z", false},
		{"1600-01-01T00:00:00Z", false},
		{"2300-01-01T00:00:00Z", false},
	}
	for _, tt := range tests {
		if _, ok := parseTimestamp(tt.in); ok != tt.ok {
			t.Errorf("parseTimestamp(%q) ok = %v, want %v", tt.in, ok, tt.ok)
		}
	}
}
