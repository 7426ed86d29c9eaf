// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package repository

import (
	"context"
	"time"

	"github.com/tomtom215/correlator/internal/cache"
	"github.com/tomtom215/correlator/internal/metrics"
	"github.com/tomtom215/correlator/internal/models"
)

// DefaultCacheTTL is the TTL used when NewCachedRepository is given zero.
const DefaultCacheTTL = 300 * time.Second

// Cache operation names, used in keys and as the metrics operation label.
const (
	opResources = "resources"
	opResource  = "resource"
	opTrace     = "orch_trace"
	opErrors    = "errors"
)

// CachedRepository memoizes reads of another Repository for a fixed TTL.
//
// Nil single-item results are never cached, so a resource that appears later
// is seen on the next call. SearchResourcesByDate always delegates.
type CachedRepository struct {
	inner Repository

	resources *cache.Cache[[]models.Resource]
	resource  *cache.Cache[*models.Resource]
	traces    *cache.Cache[*models.OrchTrace]
	errs      *cache.Cache[[]models.TraceStep]
}

// CachedOption configures a CachedRepository.
type CachedOption func(*cachedOptions)

type cachedOptions struct {
	now cache.Clock
}

// WithCacheClock sets the clock used for entry expiry.
func WithCacheClock(now func() time.Time) CachedOption {
	return func(o *cachedOptions) {
		o.now = now
	}
}

// NewCachedRepository wraps inner with a TTL cache. A ttl of zero or less uses DefaultCacheTTL.
func NewCachedRepository(inner Repository, ttl time.Duration, opts ...CachedOption) *CachedRepository {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	o := cachedOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &CachedRepository{
		inner:     inner,
		resources: cache.NewWithClock[[]models.Resource](ttl, o.now),
		resource:  cache.NewWithClock[*models.Resource](ttl, o.now),
		traces:    cache.NewWithClock[*models.OrchTrace](ttl, o.now),
		errs:      cache.NewWithClock[[]models.TraceStep](ttl, o.now),
	}
}

// lookup reads key from c and counts the outcome under op.
func lookup[V any](c *cache.Cache[V], op, key string) (V, bool) {
	v, ok := c.Get(key)
	if ok {
		metrics.CacheHits.WithLabelValues(op).Inc()
	} else {
		metrics.CacheMisses.WithLabelValues(op).Inc()
	}
	return v, ok
}

// TTL is the entry lifetime shared by every operation.
func (c *CachedRepository) TTL() time.Duration {
	return c.resources.TTL()
}

// GetResources returns the cached listing for (productName, filters). Equal
// filter maps share an entry regardless of insertion order.
func (c *CachedRepository) GetResources(ctx context.Context, productName string, filters map[string]string) ([]models.Resource, error) {
	if filters == nil {
		filters = map[string]string{}
	}
	key := cache.GenerateKey(opResources, productName, filters)
	if v, ok := lookup(c.resources, opResources, key); ok {
		return v, nil
	}

	resources, err := c.inner.GetResources(ctx, productName, filters)
	if err != nil {
		return nil, err
	}
	c.resources.Set(key, resources)
	return resources, nil
}

// GetResourceByID returns the cached resource; misses and errors are not cached.
func (c *CachedRepository) GetResourceByID(ctx context.Context, id string) (*models.Resource, error) {
	key := cache.GenerateKey(opResource, id)
	if v, ok := lookup(c.resource, opResource, key); ok {
		return v, nil
	}

	res, err := c.inner.GetResourceByID(ctx, id)
	if err != nil || res == nil {
		return res, err
	}
	c.resource.Set(key, res)
	return res, nil
}

// GetOrchTrace returns the cached trace; nil results are not cached.
func (c *CachedRepository) GetOrchTrace(ctx context.Context, circuitID, resourceID string) *models.OrchTrace {
	key := cache.GenerateKey(opTrace, circuitID, resourceID)
	if v, ok := lookup(c.traces, opTrace, key); ok {
		return v
	}

	trace := c.inner.GetOrchTrace(ctx, circuitID, resourceID)
	if trace != nil {
		c.traces.Set(key, trace)
	}
	return trace
}

// SearchResourcesByDate always delegates so date-ranged reads are fresh.
func (c *CachedRepository) SearchResourcesByDate(ctx context.Context, productName string, start time.Time, end *time.Time) ([]models.Resource, error) {
	return c.inner.SearchResourcesByDate(ctx, productName, start, end)
}

// GetErrorsForResource caches the composed result; empty results are not cached.
func (c *CachedRepository) GetErrorsForResource(ctx context.Context, resourceID string) []models.TraceStep {
	key := cache.GenerateKey(opErrors, resourceID)
	if v, ok := lookup(c.errs, opErrors, key); ok {
		return v
	}

	steps := c.inner.GetErrorsForResource(ctx, resourceID)
	if len(steps) > 0 {
		c.errs.Set(key, steps)
	}
	return steps
}

// ClearCache purges every cached entry.
func (c *CachedRepository) ClearCache() {
	c.resources.Clear()
	c.resource.Clear()
	c.traces.Clear()
	c.errs.Clear()
}

// CacheStats sums the statistics of the per-operation caches.
func (c *CachedRepository) CacheStats() cache.Stats {
	return c.resources.GetStats().
		Add(c.resource.GetStats()).
		Add(c.traces.GetStats()).
		Add(c.errs.GetStats())
}

// Close stops the cache sweepers and closes the wrapped repository.
func (c *CachedRepository) Close(ctx context.Context) error {
	c.resources.Close()
	c.resource.Close()
	c.traces.Close()
	c.errs.Close()
	return c.inner.Close(ctx)
}
