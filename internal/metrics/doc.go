// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

/*
Package metrics provides Prometheus instrumentation for the correlator.

The correlator's own failures must be observable without taking the pipeline down,
so every export attempt, every orchestration API call and every collection tick
is counted here.

# Metrics Endpoint

Metrics are exposed at /metrics by internal/api:

	curl http://localhost:9464/metrics

# Available Metrics

Export:
  - export_attempts_total{backend,outcome}: outcome is success, failure or circuit_open
  - export_duration_seconds{backend}
  - export_records_total{backend}

Circuit breakers:
  - circuit_breaker_state{name}: 0=closed, 1=half-open, 2=open
  - circuit_breaker_transitions_total{name,from,to}

Orchestration API:
  - orchestration_requests_total{operation,status}
  - orchestration_request_duration_seconds{operation}
  - orchestration_token_refreshes_total

Collector:
  - collector_records_total{product_type}
  - collector_tick_duration_seconds
  - collector_tick_errors_total

Repository cache:
  - repository_cache_hits_total{operation}
  - repository_cache_misses_total{operation}
*/
package metrics
