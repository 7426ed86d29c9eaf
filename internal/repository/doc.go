// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

/*
Package repository decouples collection logic from the orchestration transport.

The collector depends only on the Repository interface. Three implementations
are provided:

  - HTTPRepository delegates to the orchestration API client.
  - MemoryRepository is an in-process double for tests and local runs.
  - CachedRepository decorates any Repository with a TTL cache.

# Error Semantics

"Not found" and "no trace" are never errors: GetResourceByID returns
(nil, nil), GetOrchTrace returns nil, and GetErrorsForResource returns an
empty slice whenever any step of its lookup chain has no data. Hard upstream
failures from GetResources and GetResourceByID propagate unchanged, so
errors.Is(err, orchestration.ErrAuthentication) still works through the
decorators.

# Example

	client, _ := orchestration.NewClient(&cfg.Orchestration)
	repo := repository.NewCachedRepository(repository.NewHTTPRepository(client), 5*time.Minute)
	defer repo.Close(ctx)
*/
package repository
