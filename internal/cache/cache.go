// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
)

// sweepEvery is how often expired entries are swept in the background.
const sweepEvery = 5 * time.Minute

// Clock returns the current time.
type Clock func() time.Time

type item[V any] struct {
	value   V
	expires time.Time
}

// live reports whether the item is still valid at now. Expiry is exclusive:
// an item set with ttl d is gone at exactly set+d.
func (it item[V]) live(now time.Time) bool {
	return now.Before(it.expires)
}

// Cache is a TTL map of V keyed by string. It is safe for concurrent use.
type Cache[V any] struct {
	mu    sync.RWMutex
	items map[string]item[V]
	ttl   time.Duration
	now   Clock

	hits, misses, evictions atomic.Int64
	lastSweep               atomic.Int64 // unix nanos

	done     chan struct{}
	stopOnce sync.Once
}

// Stats is a point-in-time view of cache activity.
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// HitRate is the percentage of lookups that hit, or 0 before any lookup.
func (s Stats) HitRate() float64 {
	n := s.Hits + s.Misses
	if n == 0 {
		return 0
	}
	return 100 * float64(s.Hits) / float64(n)
}

// Add sums two snapshots. The later LastCleanup wins.
func (s Stats) Add(o Stats) Stats {
	s.Hits += o.Hits
	s.Misses += o.Misses
	s.Evictions += o.Evictions
	s.TotalKeys += o.TotalKeys
	if o.LastCleanup.After(s.LastCleanup) {
		s.LastCleanup = o.LastCleanup
	}
	return s
}

// New returns a cache whose entries live for ttl. Close stops its sweeper.
//
//	traces := cache.New[*models.OrchTrace](5 * time.Minute)
//	defer traces.Close()
func New[V any](ttl time.Duration) *Cache[V] {
	return NewWithClock[V](ttl, nil)
}

// NewWithClock is New with an injectable clock; nil means time.Now.
func NewWithClock[V any](ttl time.Duration, now Clock) *Cache[V] {
	if now == nil {
		now = time.Now
	}
	c := &Cache[V]{
		items: make(map[string]item[V]),
		ttl:   ttl,
		now:   now,
		done:  make(chan struct{}),
	}
	c.lastSweep.Store(now().UnixNano())
	go c.sweeper()
	return c
}

// TTL is the lifetime Set gives new entries.
func (c *Cache[V]) TTL() time.Duration { return c.ttl }

// Get returns the live value under key. An expired entry is dropped and
// counted as a miss and an eviction.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V

	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()

	switch {
	case !ok:
		c.misses.Add(1)
		return zero, false
	case it.live(c.now()):
		c.hits.Add(1)
		return it.value, true
	}

	c.mu.Lock()
	// A concurrent Set may have refreshed the entry.
	if cur, ok := c.items[key]; ok && !cur.live(c.now()) {
		delete(c.items, key)
	}
	c.mu.Unlock()
	c.misses.Add(1)
	c.evictions.Add(1)
	return zero, false
}

// Set stores value for the default TTL, replacing any previous entry.
func (c *Cache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores value for ttl.
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	exp := c.now().Add(ttl)
	c.mu.Lock()
	c.items[key] = item[V]{value: value, expires: exp}
	c.mu.Unlock()
}

// Delete drops key. It counts as an eviction even when key was absent.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
	c.evictions.Add(1)
}

// Clear drops every entry.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	n := len(c.items)
	clear(c.items)
	c.mu.Unlock()
	c.evictions.Add(int64(n))
}

// Len counts stored entries, expired ones not yet swept included.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// GetStats snapshots the counters.
func (c *Cache[V]) GetStats() Stats {
	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Evictions:   c.evictions.Load(),
		TotalKeys:   int64(c.Len()),
		LastCleanup: time.Unix(0, c.lastSweep.Load()),
	}
}

// HitRate is GetStats().HitRate().
func (c *Cache[V]) HitRate() float64 {
	return c.GetStats().HitRate()
}

// Close stops the background sweeper. The cache stays usable and Close may
// be called again.
func (c *Cache[V]) Close() {
	c.stopOnce.Do(func() { close(c.done) })
}

func (c *Cache[V]) sweeper() {
	t := time.NewTicker(sweepEvery)
	defer t.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-t.C:
			c.sweep()
		}
	}
}

// sweep drops every expired entry.
func (c *Cache[V]) sweep() {
	now := c.now()
	var n int64

	c.mu.Lock()
	for k, it := range c.items {
		if !it.live(now) {
			delete(c.items, k)
			n++
		}
	}
	c.mu.Unlock()

	c.evictions.Add(n)
	c.lastSweep.Store(now.UnixNano())
}

// GenerateKey derives a key from an operation name and its arguments. The
// arguments are hashed as one JSON array. go-json sorts map keys, so equal
// filter maps give equal keys whatever their insertion order.
func GenerateKey(op string, args ...any) string {
	if args == nil {
		args = []any{}
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return fmt.Sprintf("%s:%v", op, args)
	}
	sum := sha256.Sum256(raw)
	return op + ":" + hex.EncodeToString(sum[:16])
}
