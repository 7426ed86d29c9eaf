// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tomtom215/correlator/internal/logging"
	"github.com/tomtom215/correlator/internal/metrics"
	"github.com/tomtom215/correlator/internal/models"
)

// ProductConfig names one product to collect on every tick.
type ProductConfig struct {
	ProductType    string
	ProductName    string
	TimeRangeHours int
}

func (p ProductConfig) hours() int {
	if p.TimeRangeHours <= 0 {
		return DefaultTimeRangeHours
	}
	return p.TimeRangeHours
}

// CollectAndExport collects one product and hands the result to the sink as a
// LogBatch and a CorrelationEvent. It returns the number of records collected.
// Nothing is exported when the sink is unset or no records were found.
func (c *Collector) CollectAndExport(ctx context.Context, pc ProductConfig) (int, error) {
	if logging.CorrelationIDFromContext(ctx) == "" {
		ctx = logging.ContextWithCorrelationID(ctx, logging.GenerateCorrelationID())
	}

	ctx, span := c.tracer.Start(ctx, "collector.export_product",
		trace.WithAttributes(attribute.String("product_type", pc.ProductType)))
	defer span.End()

	logs, err := c.CollectProductLogs(ctx, pc.ProductType, pc.ProductName, pc.hours())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "collect")
		return 0, err
	}
	if len(logs) == 0 || c.sink == nil {
		return len(logs), nil
	}

	batch := models.NewLogBatch(c.resource, logs)
	var traceID string
	if sc := span.SpanContext(); sc.IsValid() {
		traceID = sc.TraceID().String()
		spanID := sc.SpanID().String()
		for i := range batch.Records {
			batch.Records[i].TraceID = traceID
			batch.Records[i].SpanID = spanID
		}
	}

	c.sink.ExportLogs(ctx, batch)
	c.sink.ExportCorrelation(ctx, models.CorrelationEvent{
		CorrelationID: logging.CorrelationIDFromContext(ctx),
		TraceID:       traceID,
		LogCount:      len(logs),
		SpanCount:     distinctResources(logs),
		Service:       c.resource.Service,
		Env:           c.resource.Env,
		Timestamp:     c.now().UTC(),
		ProductID:     pc.ProductType,
	})
	return len(logs), nil
}

func distinctResources(logs []models.CollectedLog) int {
	seen := make(map[string]struct{}, len(logs))
	for i := range logs {
		seen[logs[i].ResourceID] = struct{}{}
	}
	return len(seen)
}

// RunScheduled collects every config once per interval until ctx is cancelled.
// A failed tick is logged and retried after the recovery interval. It returns
// ctx.Err() on cancellation.
func (c *Collector) RunScheduled(ctx context.Context, configs []ProductConfig, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("collector: interval must be positive, got %s", interval)
	}

	logging.Ctx(ctx).Info().
		Int("products", len(configs)).
		Dur("interval", interval).
		Msg("Scheduled collection started")

	for {
		if err := ctx.Err(); err != nil {
			logging.Ctx(ctx).Info().Msg("Scheduled collection stopped")
			return err
		}

		started := time.Now()
		records, err := c.tick(ctx, configs)
		metrics.RecordCollectorTick(time.Since(started), err)

		wait := interval
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				return ctxErr
			}
			logging.CtxErr(ctx, err).
				Dur("retry_in", c.recoveryInterval).
				Msg("Collection tick failed")
			wait = c.recoveryInterval
		} else {
			logging.Ctx(ctx).Info().
				Int("records", records).
				Dur("duration", time.Since(started)).
				Msg("Collection tick completed")
		}

		if err := sleep(ctx, wait); err != nil {
			logging.Ctx(ctx).Info().Msg("Scheduled collection stopped")
			return err
		}
	}
}

// tick runs every config once under a fresh correlation id. The first error
// aborts the tick.
func (c *Collector) tick(ctx context.Context, configs []ProductConfig) (int, error) {
	ctx = logging.ContextWithCorrelationID(ctx, logging.GenerateCorrelationID())

	total := 0
	for _, pc := range configs {
		n, err := c.CollectAndExport(ctx, pc)
		if err != nil {
			return total, fmt.Errorf("collect %s: %w", pc.ProductType, err)
		}
		total += n
	}
	return total, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Schedule binds a Collector to its product list and interval so the loop can
// run under a supervisor.
type Schedule struct {
	collector *Collector
	configs   []ProductConfig
	interval  time.Duration
}

// NewSchedule creates a Schedule for c.
func NewSchedule(c *Collector, configs []ProductConfig, interval time.Duration) *Schedule {
	return &Schedule{collector: c, configs: configs, interval: interval}
}

// RunWithContext runs the scheduled loop until ctx is cancelled.
func (s *Schedule) RunWithContext(ctx context.Context) error {
	return s.collector.RunScheduled(ctx, s.configs, s.interval)
}

// Configs returns the scheduled product list.
func (s *Schedule) Configs() []ProductConfig {
	return s.configs
}
