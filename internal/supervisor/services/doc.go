// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

/*
Package services adapts correlator components to suture.Service.

  - CollectorService wraps a Runner, the RunWithContext loop of
    *collector.Schedule
  - HTTPServerService binds the API listener and drains on shutdown

Both implement fmt.Stringer so supervisor events name the service.
*/
package services
