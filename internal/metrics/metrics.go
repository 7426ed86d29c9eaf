// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Export outcomes recorded in ExportAttempts.
const (
	OutcomeSuccess     = "success"
	OutcomeFailure     = "failure"
	OutcomeCircuitOpen = "circuit_open"
)

var (
	// Exporter Metrics
	ExportAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "export_attempts_total",
			Help: "Total number of export attempts by backend and outcome",
		},
		[]string{"backend", "outcome"},
	)

	ExportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "export_duration_seconds",
			Help:    "Duration of export calls including retries, in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"backend"},
	)

	ExportRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "export_records_total",
			Help: "Total number of records or spans delivered by backend",
		},
		[]string{"backend"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Orchestration API Metrics
	OrchestrationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orchestration_requests_total",
			Help: "Total number of orchestration API requests by operation and HTTP status",
		},
		[]string{"operation", "status"},
	)

	OrchestrationRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "orchestration_request_duration_seconds",
			Help:    "Orchestration API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	OrchestrationTokenRefreshes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orchestration_token_refreshes_total",
			Help: "Total number of bearer token credential exchanges",
		},
	)

	// Collector Metrics
	CollectorRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collector_records_total",
			Help: "Total number of error records collected by product type",
		},
		[]string{"product_type"},
	)

	CollectorTickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "collector_tick_duration_seconds",
			Help:    "Duration of a full scheduled collection tick in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
	)

	CollectorTickErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "collector_tick_errors_total",
			Help: "Total number of collection ticks aborted by an error",
		},
	)

	CollectorLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "collector_last_success_timestamp_seconds",
			Help: "Unix timestamp of the last successful collection tick",
		},
	)

	// Repository Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repository_cache_hits_total",
			Help: "Total number of repository cache hits by operation",
		},
		[]string{"operation"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repository_cache_misses_total",
			Help: "Total number of repository cache misses by operation",
		},
		[]string{"operation"},
	)

	// HTTP Surface Metrics
	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120},
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of HTTP requests currently being served",
		},
	)
)

// RecordExport records one export call's outcome and duration.
// records is only counted on success.
func RecordExport(backend, outcome string, duration time.Duration, records int) {
	ExportAttempts.WithLabelValues(backend, outcome).Inc()
	if outcome == OutcomeCircuitOpen {
		return
	}
	ExportDuration.WithLabelValues(backend).Observe(duration.Seconds())
	if outcome == OutcomeSuccess && records > 0 {
		ExportRecords.WithLabelValues(backend).Add(float64(records))
	}
}

// RecordOrchestrationRequest records an orchestration API call. status is the
// HTTP status code, or 0 when the request never produced a response.
func RecordOrchestrationRequest(operation string, status int, duration time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	OrchestrationRequests.WithLabelValues(operation, label).Inc()
	OrchestrationRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCollectorTick records a scheduled tick's duration and outcome.
func RecordCollectorTick(duration time.Duration, err error) {
	CollectorTickDuration.Observe(duration.Seconds())
	if err != nil {
		CollectorTickErrors.Inc()
		return
	}
	CollectorLastSuccess.Set(float64(time.Now().Unix()))
}

// RecordCollectedRecords adds n collected records for a product type.
func RecordCollectedRecords(productType string, n int) {
	if n > 0 {
		CollectorRecords.WithLabelValues(productType).Add(float64(n))
	}
}

// RecordAPIRequest records a served HTTP request. route is the matched route
// pattern, never the raw path.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight request gauge.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
		return
	}
	APIActiveRequests.Dec()
}
