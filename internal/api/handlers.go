// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/correlator/internal/collector"
	"github.com/tomtom215/correlator/internal/exporter"
	"github.com/tomtom215/correlator/internal/logging"
	"github.com/tomtom215/correlator/internal/models"
)

// maxCollectBody bounds the POST /collect request body.
const maxCollectBody = 64 << 10

// Collector runs one collection and export for a product.
type Collector interface {
	CollectAndExport(ctx context.Context, pc collector.ProductConfig) (int, error)
}

// ExporterStatus reports the breaker state of every exporter.
type ExporterStatus interface {
	Status() []exporter.BreakerStatus
}

// Handler holds the dependencies of the HTTP handlers.
type Handler struct {
	collector Collector
	exporters ExporterStatus
	products  map[string]collector.ProductConfig
	startTime time.Time
}

// NewHandler creates a Handler. products is the configured product list;
// POST /collect only accepts product types found in it.
func NewHandler(c Collector, exporters ExporterStatus, products []collector.ProductConfig) *Handler {
	byType := make(map[string]collector.ProductConfig, len(products))
	for _, p := range products {
		byType[p.ProductType] = p
	}
	return &Handler{
		collector: c,
		exporters: exporters,
		products:  byType,
		startTime: time.Now(),
	}
}

// CollectRequest is the body of POST /collect. ProductName and
// TimeRangeHours override the configured values when set.
type CollectRequest struct {
	ProductType    string `json:"product_type" validate:"required,max=128,product"`
	ProductName    string `json:"product_name" validate:"omitempty,max=256"`
	TimeRangeHours int    `json:"time_range_hours" validate:"omitempty,gte=1,lte=168"`
}

// Healthz is the liveness probe.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	respondData(w, statusSuccess, map[string]any{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	}, time.Time{})
}

// Readyz reports each exporter's circuit breaker. It always answers 200.
func (h *Handler) Readyz(w http.ResponseWriter, _ *http.Request) {
	var statuses []exporter.BreakerStatus
	if h.exporters != nil {
		statuses = h.exporters.Status()
	}

	states := make([]models.ExporterState, 0, len(statuses))
	for _, s := range statuses {
		states = append(states, models.ExporterState{
			Backend:  s.Backend,
			State:    s.State,
			Failures: s.Failures,
		})
	}

	respondData(w, statusReady, models.ReadinessStatus{
		Uptime:    time.Since(h.startTime).Seconds(),
		Exporters: states,
	}, time.Time{})
}

// Collect runs one collection for a configured product and exports the result.
func (h *Handler) Collect(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req CollectRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCollectBody)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be a JSON object", nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, http.StatusBadRequest, apiErr)
		return
	}

	pc, ok := h.products[req.ProductType]
	if !ok {
		respondError(w, http.StatusNotFound, "UNKNOWN_PRODUCT",
			fmt.Sprintf("product %q is not configured", req.ProductType), nil)
		return
	}
	if req.ProductName != "" {
		pc.ProductName = req.ProductName
	}
	if req.TimeRangeHours > 0 {
		pc.TimeRangeHours = req.TimeRangeHours
	}
	if pc.TimeRangeHours <= 0 {
		pc.TimeRangeHours = collector.DefaultTimeRangeHours
	}

	ctx := r.Context()
	count, err := h.collector.CollectAndExport(ctx, pc)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		respondError(w, http.StatusBadGateway, "COLLECTION_FAILED", "Collection failed", err)
		return
	}

	logging.Ctx(ctx).Info().
		Str("product_type", pc.ProductType).
		Int("records", count).
		Msg("On-demand collection completed")

	respondData(w, statusSuccess, models.CollectResult{
		ProductType:    pc.ProductType,
		ProductName:    pc.ProductName,
		TimeRangeHours: pc.TimeRangeHours,
		Records:        count,
		CorrelationID:  logging.CorrelationIDFromContext(ctx),
	}, start)
}
