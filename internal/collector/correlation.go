// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package collector

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/baggage"

	"github.com/tomtom215/correlator/internal/logging"
)

// Correlation identifies the resource a unit of collection work is about.
type Correlation struct {
	CircuitID   string
	ProductType string
	ResourceID  string
}

type correlationKey struct{}

// fields returns the non-empty correlation values keyed by their wire names.
func (c Correlation) fields() map[string]string {
	fields := make(map[string]string, 3)
	if c.CircuitID != "" {
		fields["circuit_id"] = c.CircuitID
	}
	if c.ProductType != "" {
		fields["product_type"] = c.ProductType
	}
	if c.ResourceID != "" {
		fields["resource_id"] = c.ResourceID
	}
	return fields
}

// Attributes returns the correlation as span attributes.
func (c Correlation) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("circuit_id", c.CircuitID),
		attribute.String("product_type", c.ProductType),
		attribute.String("resource_id", c.ResourceID),
	}
}

// WithCorrelation returns a child context carrying c. The values are also added
// to the context's logging fields and OpenTelemetry baggage.
func WithCorrelation(ctx context.Context, c Correlation) context.Context {
	fields := c.fields()
	ctx = context.WithValue(ctx, correlationKey{}, c)
	ctx = logging.ContextWithFields(ctx, fields)

	bag := baggage.FromContext(ctx)
	for k, v := range fields {
		member, err := baggage.NewMemberRaw(k, v)
		if err != nil {
			logging.Ctx(ctx).Debug().Err(err).Str("key", k).Msg("Skipping baggage member")
			continue
		}
		next, err := bag.SetMember(member)
		if err != nil {
			logging.Ctx(ctx).Debug().Err(err).Str("key", k).Msg("Skipping baggage member")
			continue
		}
		bag = next
	}
	return baggage.ContextWithBaggage(ctx, bag)
}

// CorrelationFromContext returns the Correlation attached by WithCorrelation.
func CorrelationFromContext(ctx context.Context) (Correlation, bool) {
	c, ok := ctx.Value(correlationKey{}).(Correlation)
	return c, ok
}
