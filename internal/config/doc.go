// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

/*
Package config provides centralized configuration management for the correlator.

Configuration is layered with Koanf v2: built-in defaults, then an optional
YAML file (CONFIG_PATH, config.yaml, /etc/correlator/config.yaml), then
environment variables. Only the variables listed in envMappings are read.

# Configuration Structure

  - OrchestrationConfig: orchestration API URL, credentials, TLS, pacing
  - ExportersConfig: Loki, Tempo and Datadog endpoints plus retry and breaker settings
  - CollectorConfig: product list, tick interval, recovery interval, cache TTL
  - ServerConfig: metrics/health HTTP listener
  - LoggingConfig, TracingConfig

# Example YAML

	orchestration:
	  base_url: https://orchestrator.example.net
	  username: svc-correlator
	  password: s3cret
	  namespace: charter
	exporters:
	  loki_url: http://loki:3100/loki/api/v1/push
	  retry_attempts: 3
	collector:
	  interval: 5m
	  products:
	    - ServiceMapper:ServiceMapper:3
	    - MerakiCompliance

# Products

Each product entry is "product_type[:product_name[:hours]]". The name
defaults to the type and hours to collector.time_range_hours. From the
environment the entries are comma separated:

	COLLECTOR_PRODUCTS=ServiceMapper:ServiceMapper:3,MerakiCompliance

# Validation

Load validates struct tags through internal/validation, then cross-field
rules (CA bundle requires TLS verification, products must parse, no
placeholder credentials).
*/
package config
