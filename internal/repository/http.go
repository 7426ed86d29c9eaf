// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package repository

import (
	"context"
	"time"

	"github.com/tomtom215/correlator/internal/models"
)

// Client is the subset of the orchestration client used by HTTPRepository.
// *orchestration.Client satisfies it.
type Client interface {
	GetResources(ctx context.Context, productName string, limit int) ([]models.Resource, error)
	GetResourceByID(ctx context.Context, id string) (*models.Resource, error)
	GetOrchTrace(ctx context.Context, circuitID, resourceID string) *models.OrchTrace
	Close(ctx context.Context) error
}

// HTTPRepository delegates every read to the orchestration API client.
type HTTPRepository struct {
	client Client
	now    func() time.Time
}

// NewHTTPRepository wraps an orchestration client.
func NewHTTPRepository(client Client) *HTTPRepository {
	return &HTTPRepository{client: client, now: time.Now}
}

// GetResources fetches the full listing and applies filters client-side.
func (r *HTTPRepository) GetResources(ctx context.Context, productName string, filters map[string]string) ([]models.Resource, error) {
	resources, err := r.client.GetResources(ctx, productName, 0)
	if err != nil {
		return nil, err
	}
	return filterResources(resources, filters), nil
}

// GetResourceByID delegates to the client; a 404 is (nil, nil).
func (r *HTTPRepository) GetResourceByID(ctx context.Context, id string) (*models.Resource, error) {
	return r.client.GetResourceByID(ctx, id)
}

// GetOrchTrace delegates to the client.
func (r *HTTPRepository) GetOrchTrace(ctx context.Context, circuitID, resourceID string) *models.OrchTrace {
	return r.client.GetOrchTrace(ctx, circuitID, resourceID)
}

// SearchResourcesByDate fetches the full listing and keeps resources created in
// [start, end]; a nil end means now.
func (r *HTTPRepository) SearchResourcesByDate(ctx context.Context, productName string, start time.Time, end *time.Time) ([]models.Resource, error) {
	resources, err := r.client.GetResources(ctx, productName, 0)
	if err != nil {
		return nil, err
	}
	upper := r.now()
	if end != nil {
		upper = *end
	}
	return filterByDate(resources, start, upper), nil
}

// GetErrorsForResource composes resource lookup, correlation key and trace.
// Any failure along the way, including an upstream error, yields an empty slice.
func (r *HTTPRepository) GetErrorsForResource(ctx context.Context, resourceID string) []models.TraceStep {
	return errorsForResource(ctx, r, resourceID)
}

// Close closes the client.
func (r *HTTPRepository) Close(ctx context.Context) error {
	return r.client.Close(ctx)
}
