// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

/*
Package exporter delivers collected logs and correlation spans to telemetry
backends.

Three exporters are provided:

  - LokiExporter pushes LogBatch records as label-grouped streams
  - TempoExporter posts OTLP/HTTP JSON spans for correlation events, bridge
    spans and prebuilt trace requests
  - DatadogExporter dual-writes logs to the Datadog intake and is a no-op
    without an API key

# Delivery

Every export runs the same path. A per-backend Breaker decides whether the
call is attempted at all. Allowed calls run under exponential backoff retry
(cenkalti/backoff) and the final outcome is recorded against the breaker and
the export_attempts_total counter with outcome success, failure or
circuit_open. Failures are logged and never returned to the caller.

# Breaker

Breaker wraps sony/gobreaker's two-step breaker. FailureThreshold consecutive
failures open it. After RecoveryTimeout exactly one probe is allowed; success
closes the breaker, failure reopens it.

# Manager

Manager owns one exporter per backend. ExportLogs writes to Loki and then
Datadog without short-circuiting. Close closes every exporter and logs one
summary of any failures.
*/
package exporter
