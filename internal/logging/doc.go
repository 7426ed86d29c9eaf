// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

// Package logging provides centralized zerolog-based structured logging for the correlator.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Str("product_type", "ServiceMapper").Msg("Collection started")
//	logging.Error().Err(err).Str("backend", "loki").Msg("Export failed")
//
//	// Context-aware logging picks up correlation fields attached upstream
//	ctx = logging.ContextWithFields(ctx, map[string]string{"circuit_id": cid})
//	logging.Ctx(ctx).Debug().Msg("Fetching trace")
//
// # Configuration
//
// Environment Variables (mapped through internal/config):
//
//	LOG_LEVEL   - trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  - json, console (default: json)
//	LOG_CALLER  - include caller file:line (default: false)
//
// # Correlation
//
// Ctx(ctx) adds correlation_id, request_id and any fields attached with
// ContextWithFields. The collector uses this to tag every log line emitted while
// processing a resource with circuit_id, product_type and resource_id.
//
// # slog
//
// NewSlogHandler bridges log/slog to zerolog so suture's sutureslog hook writes
// through the same logger.
package logging
