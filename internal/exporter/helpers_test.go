// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package exporter

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/correlator/internal/models"
)

// fakeBackend records every request body and answers with a fixed status.
type fakeBackend struct {
	*httptest.Server
	mu      sync.Mutex
	status  int
	bodies  [][]byte
	paths   []string
	headers []http.Header
}

func newFakeBackend(t *testing.T, status int) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{status: status}
	fb.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		fb.mu.Lock()
		fb.bodies = append(fb.bodies, body)
		fb.paths = append(fb.paths, r.URL.Path)
		fb.headers = append(fb.headers, r.Header.Clone())
		code := fb.status
		fb.mu.Unlock()
		w.WriteHeader(code)
	}))
	t.Cleanup(fb.Close)
	return fb
}

func (fb *fakeBackend) hits() int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return len(fb.bodies)
}

func (fb *fakeBackend) lastBody() []byte {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if len(fb.bodies) == 0 {
		return nil
	}
	return fb.bodies[len(fb.bodies)-1]
}

func testOptions() Options {
	return Options{
		Timeout: 2 * time.Second,
		Retry:   RetryConfig{MaxRetries: 1, InitialDelay: time.Millisecond},
		Breaker: BreakerConfig{Enabled: true, FailureThreshold: 5, RecoveryTimeout: time.Minute},
	}
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleBatch() models.LogBatch {
	return models.LogBatch{
		Resource: models.BatchResource{Service: "correlator", Env: "test", Host: "node-1"},
		Records: []models.LogRecord{
			{
				Timestamp: "2026-03-01T11:00:00Z",
				Severity:  "error",
				Message:   "port unreachable",
				TraceID:   "4bf92f3577b34da6a3ce929d0e0e4736",
				SpanID:    "00f067aa0ba902b7",
				CircuitID: "CID-001",
				ProductID: "ethernet",
				Labels:    map[string]string{"process": "activate"},
			},
			{
				Timestamp: "2026-03-01T11:00:01Z",
				Severity:  "error",
				Message:   "vlan conflict",
				CircuitID: "CID-002",
				ProductID: "ethernet",
			},
			{
				Timestamp: "not-a-time",
				Severity:  "error",
				Message:   "third",
				TraceID:   "4bf92f3577b34da6a3ce929d0e0e4736",
				CircuitID: "CID-003",
			},
		},
	}
}

func (fb *fakeBackend) path(i int) string {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.paths[i]
}

func (fb *fakeBackend) header(i int) http.Header {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.headers[i]
}
