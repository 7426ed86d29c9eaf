// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

// Package main is the entry point for the correlator service.
//
// The correlator polls an orchestration API for recently created resources,
// extracts the failed steps of their orchestration traces, and exports them as
// logs (Loki, optionally Datadog) and correlation spans (Tempo).
//
// # Application Architecture
//
// Components are built in this order:
//
//  1. Configuration: defaults, optional config.yaml, environment (Koanf v2)
//  2. Logging and the in-process tracer provider
//  3. Orchestration client, HTTP repository, TTL cache in front of it
//  4. Exporter manager (Loki, Tempo, Datadog behind circuit breakers)
//  5. Collector and its schedule
//  6. HTTP surface: /metrics, /healthz, /readyz, POST /collect
//  7. Supervisor tree: collection layer and API layer
//
// # Signal Handling
//
// On SIGINT or SIGTERM the supervisor stops the collector and drains the HTTP
// server, then the exporters and the repository are closed.
//
// # Example Usage
//
//	export ORCH_BASE_URL=https://orchestrator.example.net
//	export ORCH_USERNAME=svc-correlator ORCH_PASSWORD=... ORCH_NAMESPACE=charter
//	export COLLECTOR_PRODUCTS=sdwan:SDWAN.Circuit:6,dia
//	export LOKI_URL=http://loki:3100/loki/api/v1/push
//	./correlator
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/correlator/internal/api"
	"github.com/tomtom215/correlator/internal/collector"
	"github.com/tomtom215/correlator/internal/config"
	"github.com/tomtom215/correlator/internal/exporter"
	"github.com/tomtom215/correlator/internal/logging"
	"github.com/tomtom215/correlator/internal/models"
	"github.com/tomtom215/correlator/internal/orchestration"
	"github.com/tomtom215/correlator/internal/repository"
	"github.com/tomtom215/correlator/internal/supervisor"
	"github.com/tomtom215/correlator/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Service:   cfg.Exporters.Service,
		Env:       cfg.Exporters.Env,
		Output:    os.Stderr,
	})

	products, err := productConfigs(cfg.Collector)
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid collector products")
	}

	logging.Info().
		Str("orchestration_url", cfg.Orchestration.BaseURL).
		Str("namespace", cfg.Orchestration.Namespace).
		Int("products", len(products)).
		Dur("interval", cfg.Collector.Interval).
		Msg("Starting correlator with supervisor tree")

	_, shutdownTracing := initTracing(cfg.Tracing, cfg.Exporters)

	client, err := orchestration.NewClient(&cfg.Orchestration)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create orchestration client")
	}
	repo := repository.NewCachedRepository(repository.NewHTTPRepository(client), cfg.Collector.CacheTTL)

	manager := exporter.NewManager(&cfg.Exporters)

	coll := collector.New(repo,
		collector.WithSink(manager),
		collector.WithResource(batchResource(cfg.Exporters)),
		collector.WithRecoveryInterval(cfg.Collector.RecoveryInterval),
	)
	schedule := collector.NewSchedule(coll, products, cfg.Collector.Interval)

	handler := api.NewHandler(coll, manager, products)
	mw := api.NewChiMiddleware(&api.ChiMiddlewareConfig{
		CollectRateLimit: cfg.Server.CollectRateLimit,
		RateLimitWindow:  time.Minute,
	})
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewRouter(handler, mw).SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      2 * time.Minute,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	if cfg.Collector.Enabled {
		tree.AddCollectionService(services.NewCollectorService(schedule))
		logging.Info().Int("products", len(products)).Msg("Scheduled collector added to supervisor tree")
	} else {
		logging.Info().Msg("Scheduled collection disabled (COLLECTOR_ENABLED=false), POST /collect only")
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// errCh delivers exactly one value and is never closed.
	var treeErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish...")
		treeErr = <-errCh
	case treeErr = <-errCh:
		stop()
	}
	if treeErr != nil && !errors.Is(treeErr, context.Canceled) {
		logging.Error().Err(treeErr).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	manager.Close(shutdownCtx)
	if err := errors.Join(repo.Close(shutdownCtx), shutdownTracing(shutdownCtx)); err != nil {
		logging.Warn().Err(err).Msg("Shutdown completed with errors")
	}

	logging.Info().Msg("Correlator stopped gracefully")
}

// productConfigs converts the configured product list for the collector.
func productConfigs(cfg config.CollectorConfig) ([]collector.ProductConfig, error) {
	products, err := cfg.ProductList()
	if err != nil {
		return nil, err
	}
	out := make([]collector.ProductConfig, 0, len(products))
	for _, p := range products {
		out = append(out, collector.ProductConfig{
			ProductType:    p.Type,
			ProductName:    p.Name,
			TimeRangeHours: p.TimeRangeHours,
		})
	}
	return out, nil
}

// batchResource is the identity stamped on every exported batch. Host falls
// back to the machine hostname.
func batchResource(cfg config.ExportersConfig) models.BatchResource {
	host := cfg.Host
	if host == "" {
		host, _ = os.Hostname()
	}
	return models.BatchResource{
		Service: cfg.Service,
		Env:     cfg.Env,
		Host:    host,
	}
}
