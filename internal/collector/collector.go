// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package collector

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tomtom215/correlator/internal/logging"
	"github.com/tomtom215/correlator/internal/metrics"
	"github.com/tomtom215/correlator/internal/models"
	"github.com/tomtom215/correlator/internal/repository"
)

const (
	// DefaultTimeRangeHours is the lookback window used when a ProductConfig leaves it unset.
	DefaultTimeRangeHours = 3

	// DefaultRecoveryInterval is the pause after a failed tick.
	DefaultRecoveryInterval = 60 * time.Second

	tracerName = "github.com/tomtom215/correlator/internal/collector"
)

// Sink receives the output of each collection tick. The exporter Manager
// satisfies it. Implementations handle their own failures.
type Sink interface {
	ExportLogs(ctx context.Context, batch models.LogBatch)
	ExportCorrelation(ctx context.Context, event models.CorrelationEvent)
}

// Collector gathers error logs from orchestration traces.
type Collector struct {
	repo             repository.Repository
	sink             Sink
	tracer           trace.Tracer
	now              func() time.Time
	resource         models.BatchResource
	recoveryInterval time.Duration
}

// Option configures a Collector.
type Option func(*Collector)

// WithClock overrides the time source used to compute collection windows.
func WithClock(now func() time.Time) Option {
	return func(c *Collector) {
		if now != nil {
			c.now = now
		}
	}
}

// WithTracer sets the tracer for collection spans. The global provider's
// tracer is used otherwise.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Collector) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

// WithSink sets where scheduled ticks deliver their records.
func WithSink(sink Sink) Option {
	return func(c *Collector) {
		c.sink = sink
	}
}

// WithResource sets the service, env and host stamped on exported batches.
func WithResource(resource models.BatchResource) Option {
	return func(c *Collector) {
		c.resource = resource
	}
}

// WithRecoveryInterval sets the pause after a failed tick.
func WithRecoveryInterval(d time.Duration) Option {
	return func(c *Collector) {
		if d > 0 {
			c.recoveryInterval = d
		}
	}
}

// New creates a Collector reading from repo.
func New(repo repository.Repository, opts ...Option) *Collector {
	c := &Collector{
		repo:             repo,
		tracer:           otel.Tracer(tracerName),
		now:              time.Now,
		resource:         models.BatchResource{Service: "correlator"},
		recoveryInterval: DefaultRecoveryInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CollectProductLogs returns the error logs of every resource of productName
// created in the last timeRangeHours hours. Listing errors are returned; a
// resource without a trace contributes no records.
func (c *Collector) CollectProductLogs(ctx context.Context, productType, productName string, timeRangeHours int) ([]models.CollectedLog, error) {
	end := c.now().UTC()
	start := end.Add(-time.Duration(timeRangeHours) * time.Hour)

	ctx, span := c.tracer.Start(ctx, "collector.collect_product_logs",
		trace.WithAttributes(
			attribute.String("product_type", productType),
			attribute.String("product_name", productName),
			attribute.Int("time_range_hours", timeRangeHours),
		))
	defer span.End()

	resources, err := c.repo.GetResources(ctx, productName, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list resources")
		return nil, fmt.Errorf("list resources for %s: %w", productName, err)
	}

	logs := make([]models.CollectedLog, 0)
	inWindow := 0
	for i := range resources {
		if !resources[i].CreatedWithin(start, end) {
			continue
		}
		inWindow++
		logs = append(logs, c.collectResource(ctx, productType, &resources[i])...)
	}

	span.SetAttributes(
		attribute.Int("collector.resources", inWindow),
		attribute.Int("collector.records", len(logs)),
	)
	metrics.RecordCollectedRecords(productType, len(logs))

	logging.Ctx(ctx).Debug().
		Str("product_type", productType).
		Str("product_name", productName).
		Int("resources_total", len(resources)).
		Int("resources_in_window", inWindow).
		Int("records", len(logs)).
		Msg("Collected product logs")

	return logs, nil
}

// collectResource converts one resource's trace errors into logs.
func (c *Collector) collectResource(ctx context.Context, productType string, res *models.Resource) []models.CollectedLog {
	corr := Correlation{
		CircuitID:   res.CorrelationKey(),
		ProductType: productType,
		ResourceID:  res.ID,
	}
	ctx = WithCorrelation(ctx, corr)
	ctx, span := c.tracer.Start(ctx, "collector.process_resource", trace.WithAttributes(corr.Attributes()...))
	defer span.End()

	if corr.CircuitID == "" {
		logging.Ctx(ctx).Debug().Msg("Resource has no circuit id or label, skipping")
		return nil
	}

	orchTrace := c.repo.GetOrchTrace(ctx, corr.CircuitID, res.ID)
	if orchTrace == nil {
		logging.Ctx(ctx).Debug().Msg("No orchestration trace for resource")
		return nil
	}

	steps := orchTrace.Errors()
	span.SetAttributes(attribute.Int("collector.error_steps", len(steps)))

	logs := make([]models.CollectedLog, 0, len(steps))
	for i := range steps {
		logs = append(logs, models.CollectedLog{
			Timestamp:    orchTrace.Timestamp,
			CircuitID:    corr.CircuitID,
			ResourceID:   res.ID,
			ProductType:  productType,
			Error:        steps[i].ErrorMessage(),
			Process:      steps[i].Process,
			ResourceType: steps[i].ResourceType,
			OrchState:    res.OrchState,
			DeviceTID:    res.DeviceTID,
		})
	}
	return logs
}
