// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

/*
Package api serves the correlator's operational HTTP surface.

Routes:

  - GET /metrics: Prometheus exposition (promhttp)
  - GET /healthz: liveness, always 200 while the process serves
  - GET /readyz: circuit breaker state of every exporter, always 200
  - POST /collect: runs one collection for a configured product and exports it

Every request gets an X-Request-ID and a fresh correlation ID in its context,
so log lines written while serving a /collect call carry both. POST /collect
is rate limited per client IP with go-chi/httprate.

Example:

	handler := api.NewHandler(coll, manager, schedule.Configs())
	mw := api.NewChiMiddleware(&api.ChiMiddlewareConfig{CollectRateLimit: 6, RateLimitWindow: time.Minute})
	srv := &http.Server{Addr: cfg.Server.Addr(), Handler: api.NewRouter(handler, mw).SetupChi()}
*/
package api
