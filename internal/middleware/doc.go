// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

// Package middleware provides HTTP instrumentation for the chi router.
//
// PrometheusMetrics records api_requests_total, api_request_duration_seconds
// and api_active_requests, labelled by the matched chi route pattern so path
// parameters never inflate label cardinality:
//
//	r := chi.NewRouter()
//	r.Use(middleware.PrometheusMetrics)
package middleware
