// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package repository

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/correlator/internal/models"
)

// MemoryRepository is an in-process Repository backed by two maps: resources
// by id and traces by "{circuit_id}:{resource_id}". Listing follows insertion
// order. Product names are not modelled; every resource belongs to every product.
type MemoryRepository struct {
	mu        sync.RWMutex
	resources map[string]models.Resource
	order     []string
	traces    map[string]models.OrchTrace
	now       func() time.Time
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		resources: make(map[string]models.Resource),
		traces:    make(map[string]models.OrchTrace),
		now:       time.Now,
	}
}

func traceKey(circuitID, resourceID string) string {
	return circuitID + ":" + resourceID
}

// AddResource stores or replaces a resource. Replacing keeps the original position.
func (m *MemoryRepository) AddResource(res models.Resource) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.resources[res.ID]; !exists {
		m.order = append(m.order, res.ID)
	}
	m.resources[res.ID] = res
}

// AddOrchTrace stores or replaces the trace for its (circuit, resource) pair.
func (m *MemoryRepository) AddOrchTrace(trace models.OrchTrace) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.traces[traceKey(trace.CircuitID, trace.ResourceID)] = trace
}

// Clear removes all resources and traces.
func (m *MemoryRepository) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resources = make(map[string]models.Resource)
	m.order = nil
	m.traces = make(map[string]models.OrchTrace)
}

func (m *MemoryRepository) snapshot() []models.Resource {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Resource, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.resources[id])
	}
	return out
}

// GetResources returns stored resources matching filters.
func (m *MemoryRepository) GetResources(_ context.Context, _ string, filters map[string]string) ([]models.Resource, error) {
	return filterResources(m.snapshot(), filters), nil
}

// GetResourceByID returns a copy of the stored resource, or (nil, nil).
func (m *MemoryRepository) GetResourceByID(_ context.Context, id string) (*models.Resource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res, ok := m.resources[id]
	if !ok {
		return nil, nil
	}
	return &res, nil
}

// GetOrchTrace returns a copy of the stored trace, or nil.
func (m *MemoryRepository) GetOrchTrace(_ context.Context, circuitID, resourceID string) *models.OrchTrace {
	m.mu.RLock()
	defer m.mu.RUnlock()
	trace, ok := m.traces[traceKey(circuitID, resourceID)]
	if !ok {
		return nil
	}
	return &trace
}

// SearchResourcesByDate returns stored resources created in [start, end].
func (m *MemoryRepository) SearchResourcesByDate(_ context.Context, _ string, start time.Time, end *time.Time) ([]models.Resource, error) {
	upper := m.now()
	if end != nil {
		upper = *end
	}
	return filterByDate(m.snapshot(), start, upper), nil
}

// GetErrorsForResource returns the error steps of the resource's trace.
func (m *MemoryRepository) GetErrorsForResource(ctx context.Context, resourceID string) []models.TraceStep {
	return errorsForResource(ctx, m, resourceID)
}

// Close is a no-op.
func (m *MemoryRepository) Close(context.Context) error {
	return nil
}
