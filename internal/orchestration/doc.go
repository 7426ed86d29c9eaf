// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

/*
Package orchestration provides the authenticated client for the orchestration
system's REST API.

The client is the single gateway to the upstream system. It exchanges
credentials for a bearer token, reuses that token until its TTL elapses, and
exposes typed reads over resources and orchestration traces.

# Endpoints

	POST   {base}{token_path}                  {username,password,tenant} -> {"token": "..."}
	DELETE {base}{token_path}/{token}
	GET    {base}{resources_path}/count?exactTypeId={namespace}.{product}   -> {"count": n}
	GET    {base}{resources_path}?resourceTypeId={type}&limit={n}           -> {"items": [...]}
	GET    {base}{resources_path}/{id}
	GET    {base}{resources_path}?resourceTypeId={trace_log_type}&p=label:{circuit}.orch_trace&limit=10

# Error Handling

  - Token exchange failures return *AuthenticationError (errors.Is(err, ErrAuthentication)).
  - Other non-2xx responses return *UpstreamError.
  - GetResourceByID returns (nil, nil) for HTTP 404.
  - GetOrchTrace never returns an error: any failure is logged and reported as nil.

# Concurrency

All methods are safe for concurrent use. The token check and refresh happen
under one mutex, so callers racing on an expired token trigger a single
credential exchange. Outbound requests are paced by a token-bucket limiter
when RequestsPerSecond is set.
*/
package orchestration
