// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

/*
Package models defines the data structures that flow through the correlator.

Key Components:

  - Resource: one orchestrated circuit/device record read from the orchestration API
  - OrchTrace: an orchestration run's step log, with Errors() projecting the failed steps
  - CollectedLog: the normalized record produced by the collector for each failed step
  - LogBatch: the export unit for log backends (shared resource identity + records)
  - CorrelationEvent: a synthesized span describing a correlation outcome
  - BridgeSpan: a synthetic span linking otherwise disconnected trace contexts

All types are plain data holders. Values are fetched fresh per collection cycle and are
never persisted by the correlator.
*/
package models
