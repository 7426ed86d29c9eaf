// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package exporter

import (
	"context"
	"errors"

	"github.com/tomtom215/correlator/internal/config"
	"github.com/tomtom215/correlator/internal/logging"
	"github.com/tomtom215/correlator/internal/models"
)

// Manager owns one exporter per backend and fans exports out to them.
type Manager struct {
	loki    *LokiExporter
	tempo   *TempoExporter
	datadog *DatadogExporter
}

// NewManager builds every exporter from the exporters configuration.
func NewManager(cfg *config.ExportersConfig) *Manager {
	opts := OptionsFromConfig(cfg)
	m := &Manager{
		loki:  NewLokiExporter(cfg.LokiURL, opts),
		tempo: NewTempoExporter(cfg.TempoEndpoint, cfg.Service, opts),
		datadog: NewDatadogExporter(DatadogSettings{
			APIKey:  cfg.DatadogAPIKey,
			Site:    cfg.DatadogSite,
			URL:     cfg.DatadogURL,
			Service: cfg.Service,
			Env:     cfg.Env,
			Host:    cfg.Host,
		}, opts),
	}

	logging.Info().
		Str("loki_url", cfg.LokiURL).
		Str("tempo_endpoint", cfg.TempoEndpoint).
		Bool("datadog_enabled", m.datadog.Enabled()).
		Bool("circuit_breaker_enabled", cfg.CircuitBreakerEnabled).
		Msg("Exporters initialized")
	return m
}

// ExportLogs writes batch to Loki, then to Datadog. A failure in one does not
// prevent the other.
func (m *Manager) ExportLogs(ctx context.Context, batch models.LogBatch) {
	m.loki.Export(ctx, batch)
	m.datadog.Export(ctx, batch)
}

// ExportCorrelation exports event as a span to Tempo.
func (m *Manager) ExportCorrelation(ctx context.Context, event models.CorrelationEvent) {
	m.tempo.ExportCorrelation(ctx, event)
}

// ExportTraces posts a prebuilt OTLP request to Tempo.
func (m *Manager) ExportTraces(ctx context.Context, req *TraceRequest) {
	m.tempo.ExportTraces(ctx, req)
}

// ExportBridgeSpan exports a bridge span to Tempo.
func (m *Manager) ExportBridgeSpan(ctx context.Context, span models.BridgeSpan) {
	m.tempo.ExportBridgeSpan(ctx, span)
}

// Status returns a breaker snapshot per backend. Datadog is omitted when disabled.
func (m *Manager) Status() []BreakerStatus {
	statuses := []BreakerStatus{m.loki.Status(), m.tempo.Status()}
	if m.datadog.Enabled() {
		statuses = append(statuses, m.datadog.Status())
	}
	return statuses
}

// Close closes every exporter. Failures are joined and logged as one warning.
func (m *Manager) Close(ctx context.Context) {
	closers := []func(context.Context) error{
		m.loki.Close,
		m.tempo.Close,
		m.datadog.Close,
	}

	var errs []error
	for _, closeFn := range closers {
		if err := closeFn(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Int("failures", len(errs)).Msg("Exporter shutdown completed with errors")
		return
	}
	logging.Ctx(ctx).Info().Msg("Exporters closed")
}
