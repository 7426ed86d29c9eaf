// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

/*
Package collector turns orchestration resources into normalized error logs.

A Collector reads resources of a product from a repository.Repository, keeps
those created inside a trailing time window, fetches each resource's
orchestration trace and emits one models.CollectedLog per error-bearing step.
Records keep listing order, then step order within a resource.

# Correlation

While a resource is processed its identity travels in the context as an
immutable Correlation value. WithCorrelation attaches it three ways:

  - as logging fields, so logging.Ctx(ctx) lines carry circuit_id,
    product_type and resource_id
  - as OpenTelemetry baggage members for downstream propagation
  - as attributes on the per-resource span

Nothing about the resource in flight is held in package or struct state.

# Scheduling

RunScheduled repeats a collection tick for a list of ProductConfig entries:

	c := collector.New(repo, collector.WithSink(manager))
	err := c.RunScheduled(ctx, configs, 5*time.Minute)

Ticks never overlap. A failed tick is logged and followed by the recovery
interval instead of ending the loop. The loop returns ctx.Err() once the
context is cancelled. Schedule adapts the loop to the supervisor's Runner
interface.
*/
package collector
