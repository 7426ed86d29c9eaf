// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package repository

import (
	"context"
	"time"

	"github.com/tomtom215/correlator/internal/logging"
	"github.com/tomtom215/correlator/internal/models"
)

// Repository is the read capability the collector needs from the orchestration system.
// Implementations must be safe for concurrent use.
type Repository interface {
	// GetResources lists resources of a product, keeping those whose attributes
	// equal every entry of filters. A nil or empty filters map keeps all.
	GetResources(ctx context.Context, productName string, filters map[string]string) ([]models.Resource, error)

	// GetResourceByID returns (nil, nil) when the resource does not exist.
	GetResourceByID(ctx context.Context, id string) (*models.Resource, error)

	// GetOrchTrace returns nil when no trace is available.
	GetOrchTrace(ctx context.Context, circuitID, resourceID string) *models.OrchTrace

	// SearchResourcesByDate lists resources created in [start, end]. A nil end
	// means now.
	SearchResourcesByDate(ctx context.Context, productName string, start time.Time, end *time.Time) ([]models.Resource, error)

	// GetErrorsForResource returns the error steps of a resource's trace, or an
	// empty slice when the resource, its correlation key or its trace is unavailable.
	GetErrorsForResource(ctx context.Context, resourceID string) []models.TraceStep

	// Close releases the underlying transport.
	Close(ctx context.Context) error
}

// filterResources keeps resources matching every filter, preserving order.
func filterResources(resources []models.Resource, filters map[string]string) []models.Resource {
	if len(filters) == 0 {
		return resources
	}
	out := make([]models.Resource, 0, len(resources))
	for i := range resources {
		if resources[i].MatchesFilters(filters) {
			out = append(out, resources[i])
		}
	}
	return out
}

// filterByDate keeps resources created in [start, end], preserving order.
func filterByDate(resources []models.Resource, start, end time.Time) []models.Resource {
	out := make([]models.Resource, 0, len(resources))
	for i := range resources {
		if resources[i].CreatedWithin(start, end) {
			out = append(out, resources[i])
		}
	}
	return out
}

// errorsForResource runs the resource -> correlation key -> trace -> errors chain
// shared by every implementation.
func errorsForResource(ctx context.Context, repo Repository, resourceID string) []models.TraceStep {
	res, err := repo.GetResourceByID(ctx, resourceID)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("resource_id", resourceID).Msg("Resource lookup failed")
		return []models.TraceStep{}
	}
	if res == nil {
		return []models.TraceStep{}
	}
	key := res.CorrelationKey()
	if key == "" {
		return []models.TraceStep{}
	}
	trace := repo.GetOrchTrace(ctx, key, res.ID)
	if trace == nil {
		return []models.TraceStep{}
	}
	return trace.Errors()
}
