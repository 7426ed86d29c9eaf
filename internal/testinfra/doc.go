// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

// Package testinfra provides container-backed infrastructure for integration tests.
//
// Everything here is behind the integration build tag and uses testcontainers-go:
//
//	go test -tags integration ./internal/exporter/ ./internal/testinfra/
//
// # Loki Container
//
// LokiContainer runs a single-binary Grafana Loki so the Loki exporter's push
// payload is checked against a real ingester instead of an httptest server:
//
//	func TestLokiExport(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    loki, err := testinfra.NewLokiContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    testinfra.TerminateOnCleanup(t, loki.Container)
//
//	    exp := exporter.NewLokiExporter(loki.PushURL(), opts)
//	    exp.Export(ctx, batch)
//	    out, _ := loki.QueryRange(ctx, `{service="correlator"}`, start, end)
//	}
//
// Tests are skipped when Docker is unavailable. The first run pulls the image.
package testinfra
