// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

/*
Package cache is a typed in-memory TTL cache.

internal/repository.CachedRepository keeps one Cache per read operation so a
collection tick does not refetch the same resource, listing or orchestration
trace within the TTL.

Entries expire lazily on Get and are swept in the background until Close.
NewWithClock takes an injectable clock so expiry tests never sleep. Counters
are atomics; Stats snapshots them and Stats.Add merges snapshots from several
caches.

# Keys

GenerateKey hashes an operation name and its arguments. Map arguments are
encoded with sorted keys, so equal filter sets share an entry:

	k1 := cache.GenerateKey("resources", "ServiceMapper", map[string]string{"a": "1", "b": "2"})
	k2 := cache.GenerateKey("resources", "ServiceMapper", map[string]string{"b": "2", "a": "1"})
	// k1 == k2
*/
package cache
