// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/correlator/internal/metrics"
	"github.com/tomtom215/correlator/internal/models"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newCachedOverFake(t *testing.T) (*CachedRepository, *fakeClient, *manualClock) {
	t.Helper()
	client := newFakeClient()
	trace := sampleTrace("CID-001", "r1")
	client.resources = []models.Resource{sampleResource("r1", "CID-001", baseTime)}
	client.traces["CID-001:r1"] = &trace

	clock := &manualClock{now: baseTime}
	repo := NewCachedRepository(NewHTTPRepository(client), 300*time.Second, WithCacheClock(clock.Now))
	t.Cleanup(func() { _ = repo.Close(context.Background()) })
	return repo, client, clock
}

func TestCachedRepository_TTLRoundTrip(t *testing.T) {
	repo, client, clock := newCachedOverFake(t)
	ctx := context.Background()

	first, err := repo.GetResourceByID(ctx, "r1")
	if err != nil || first == nil {
		t.Fatalf("GetResourceByID() = %v, %v", first, err)
	}
	clock.Advance(299 * time.Second)
	second, _ := repo.GetResourceByID(ctx, "r1")

	if first != second {
		t.Error("expected the identical cached object within TTL")
	}
	if got := client.count("GetResourceByID"); got != 1 {
		t.Errorf("expected 1 delegate call within TTL, got %d", got)
	}

	clock.Advance(time.Second)
	if _, err := repo.GetResourceByID(ctx, "r1"); err != nil {
		t.Fatal(err)
	}
	if got := client.count("GetResourceByID"); got != 2 {
		t.Errorf("expected exactly one new delegate call after TTL, got %d total", got)
	}
}

func TestCachedRepository_NilNotCached(t *testing.T) {
	repo, client, _ := newCachedOverFake(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if res, _ := repo.GetResourceByID(ctx, "missing"); res != nil {
			t.Fatalf("expected nil, got %+v", res)
		}
		if trace := repo.GetOrchTrace(ctx, "CID-404", "r404"); trace != nil {
			t.Fatalf("expected nil trace, got %+v", trace)
		}
	}

	if got := client.count("GetResourceByID"); got != 3 {
		t.Errorf("expected nil resource lookups to always delegate, got %d calls", got)
	}
	if got := client.count("GetOrchTrace"); got != 3 {
		t.Errorf("expected nil trace lookups to always delegate, got %d calls", got)
	}
}

func TestCachedRepository_TraceCached(t *testing.T) {
	repo, client, _ := newCachedOverFake(t)
	ctx := context.Background()

	a := repo.GetOrchTrace(ctx, "CID-001", "r1")
	b := repo.GetOrchTrace(ctx, "CID-001", "r1")
	if a == nil || a != b {
		t.Fatal("expected cached trace")
	}
	if got := client.count("GetOrchTrace"); got != 1 {
		t.Errorf("expected 1 delegate call, got %d", got)
	}
}

func TestCachedRepository_CanonicalFilterKeys(t *testing.T) {
	repo, client, _ := newCachedOverFake(t)
	ctx := context.Background()

	f1 := map[string]string{}
	f1["orch_state"] = "ACTIVATED"
	f1["circuit_id"] = "CID-001"
	f2 := map[string]string{}
	f2["circuit_id"] = "CID-001"
	f2["orch_state"] = "ACTIVATED"

	if _, err := repo.GetResources(ctx, "ServiceMapper", f1); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.GetResources(ctx, "ServiceMapper", f2); err != nil {
		t.Fatal(err)
	}
	if got := client.count("GetResources"); got != 1 {
		t.Errorf("expected equal filter sets to share a cache entry, got %d delegate calls", got)
	}

	if _, err := repo.GetResources(ctx, "OtherProduct", f1); err != nil {
		t.Fatal(err)
	}
	if got := client.count("GetResources"); got != 2 {
		t.Errorf("expected a different product to miss, got %d delegate calls", got)
	}
}

func TestCachedRepository_SearchNeverCached(t *testing.T) {
	repo, client, _ := newCachedOverFake(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := repo.SearchResourcesByDate(ctx, "ServiceMapper", baseTime.Add(-time.Hour), nil); err != nil {
			t.Fatal(err)
		}
	}
	if got := client.count("GetResources"); got != 3 {
		t.Errorf("expected every search to delegate, got %d calls", got)
	}
}

func TestCachedRepository_ClearCache(t *testing.T) {
	repo, client, _ := newCachedOverFake(t)
	ctx := context.Background()

	_, _ = repo.GetResourceByID(ctx, "r1")
	repo.ClearCache()
	_, _ = repo.GetResourceByID(ctx, "r1")

	if got := client.count("GetResourceByID"); got != 2 {
		t.Errorf("expected ClearCache to force a new delegate call, got %d", got)
	}
	if stats := repo.CacheStats(); stats.Evictions < 1 {
		t.Errorf("expected eviction recorded, got %+v", stats)
	}
}

func TestCachedRepository_ErrorsCached(t *testing.T) {
	repo, client, _ := newCachedOverFake(t)
	ctx := context.Background()

	first := repo.GetErrorsForResource(ctx, "r1")
	second := repo.GetErrorsForResource(ctx, "r1")
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("expected 2 error steps, got %d and %d", len(first), len(second))
	}
	if got := client.count("GetOrchTrace"); got != 1 {
		t.Errorf("expected composed result to be cached, got %d trace lookups", got)
	}
}

func TestCachedRepository_Metrics(t *testing.T) {
	repo, _, _ := newCachedOverFake(t)
	ctx := context.Background()

	hitsBefore := testutil.ToFloat64(metrics.CacheHits.WithLabelValues(opResource))
	missesBefore := testutil.ToFloat64(metrics.CacheMisses.WithLabelValues(opResource))

	_, _ = repo.GetResourceByID(ctx, "r1")
	_, _ = repo.GetResourceByID(ctx, "r1")

	if got := testutil.ToFloat64(metrics.CacheMisses.WithLabelValues(opResource)) - missesBefore; got != 1 {
		t.Errorf("expected 1 miss, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.CacheHits.WithLabelValues(opResource)) - hitsBefore; got != 1 {
		t.Errorf("expected 1 hit, got %v", got)
	}
}

func TestNewCachedRepository_DefaultTTL(t *testing.T) {
	repo := NewCachedRepository(NewMemoryRepository(), 0)
	defer repo.Close(context.Background())

	if repo.TTL() != DefaultCacheTTL {
		t.Errorf("TTL = %v, want %v", repo.TTL(), DefaultCacheTTL)
	}
}
