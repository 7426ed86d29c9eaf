// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting
//
// Config is immutable after Load() and safe for concurrent read access.
type Config struct {
	Orchestration OrchestrationConfig `koanf:"orchestration"`
	Exporters     ExportersConfig     `koanf:"exporters"`
	Collector     CollectorConfig     `koanf:"collector"`
	Server        ServerConfig        `koanf:"server"`
	Logging       LoggingConfig       `koanf:"logging"`
	Tracing       TracingConfig       `koanf:"tracing"`
}

// OrchestrationConfig holds the orchestration API connection settings.
//
// Environment Variables:
//   - ORCH_BASE_URL: API base URL (required)
//   - ORCH_USERNAME, ORCH_PASSWORD, ORCH_TENANT: token exchange credentials
//   - ORCH_NAMESPACE: resource type namespace, e.g. "charter"
//   - ORCH_VERIFY_SSL: verify TLS certificates (default: true)
//   - ORCH_CA_BUNDLE: optional PEM bundle path used when verifying
//   - ORCH_TIMEOUT: per-request timeout (default: 30s)
//   - ORCH_TOKEN_TTL: how long an issued token is reused (default: 1h)
//   - ORCH_REQUESTS_PER_SECOND: outbound pacing, 0 disables (default: 10)
type OrchestrationConfig struct {
	BaseURL       string `koanf:"base_url" validate:"required,httpurl"`
	Username      string `koanf:"username" validate:"required"`
	Password      string `koanf:"password" validate:"required"`
	Tenant        string `koanf:"tenant"`
	Namespace     string `koanf:"namespace" validate:"required"`
	TokenPath     string `koanf:"token_path" validate:"required,startswith=/"`
	ResourcesPath string `koanf:"resources_path" validate:"required,startswith=/"`

	// TraceLogType is the resource type holding orchestration traces.
	// Empty means "{namespace}.TraceLog".
	TraceLogType string `koanf:"trace_log_type"`

	VerifySSL         bool          `koanf:"verify_ssl"`
	CABundle          string        `koanf:"ca_bundle"`
	Timeout           time.Duration `koanf:"timeout" validate:"gt=0"`
	TokenTTL          time.Duration `koanf:"token_ttl" validate:"gt=0"`
	RequestsPerSecond float64       `koanf:"requests_per_second" validate:"gte=0"`
	Burst             int           `koanf:"burst" validate:"gte=1"`
}

// ResolvedTraceLogType returns TraceLogType, or "{namespace}.TraceLog" when unset.
func (o OrchestrationConfig) ResolvedTraceLogType() string {
	if o.TraceLogType != "" {
		return o.TraceLogType
	}
	return o.Namespace + ".TraceLog"
}

// ExportersConfig holds backend endpoints and the shared resilience settings.
//
// Environment Variables:
//   - LOKI_URL: Loki push endpoint (default: http://loki:3100/loki/api/v1/push)
//   - TEMPO_HTTP_ENDPOINT: OTLP/HTTP base endpoint (default: http://tempo:4318)
//   - DATADOG_API_KEY: enables Datadog dual-write when set
//   - DATADOG_SITE: Datadog site (default: datadoghq.com)
//   - DATADOG_URL: overrides the intake URL derived from the site
//   - SERVICE_NAME, DEPLOYMENT_ENV, HOSTNAME: batch resource identity
//   - EXPORT_RETRY_ATTEMPTS: total attempts per export (default: 3)
//   - EXPORT_RETRY_INITIAL_DELAY: first backoff delay (default: 1s)
//   - CIRCUIT_BREAKER_ENABLED: (default: true)
//   - CIRCUIT_BREAKER_FAILURE_THRESHOLD: consecutive failures to open (default: 5)
//   - CIRCUIT_BREAKER_RECOVERY_TIMEOUT: open duration before probing (default: 60s)
//   - EXPORT_TIMEOUT: per-request timeout (default: 10s)
type ExportersConfig struct {
	LokiURL       string `koanf:"loki_url" validate:"required,httpurl"`
	TempoEndpoint string `koanf:"tempo_endpoint" validate:"required,httpurl"`
	DatadogAPIKey string `koanf:"datadog_api_key"`
	DatadogSite   string `koanf:"datadog_site" validate:"required,hostname"`
	DatadogURL    string `koanf:"datadog_url" validate:"omitempty,httpurl"`

	Service string `koanf:"service" validate:"required"`
	Env     string `koanf:"env" validate:"required"`
	Host    string `koanf:"host"`

	RetryAttempts     int           `koanf:"retry_attempts" validate:"gte=1,lte=10"`
	RetryInitialDelay time.Duration `koanf:"retry_initial_delay" validate:"gte=0"`

	CircuitBreakerEnabled bool          `koanf:"circuit_breaker_enabled"`
	FailureThreshold      int           `koanf:"failure_threshold" validate:"gte=1"`
	RecoveryTimeout       time.Duration `koanf:"recovery_timeout" validate:"gt=0"`

	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
}

// CollectorConfig holds the scheduled collection loop settings.
//
// Environment Variables:
//   - COLLECTOR_ENABLED: run the scheduled loop (default: true)
//   - COLLECTOR_PRODUCTS: comma list of "product_type:product_name[:hours]"
//   - COLLECTOR_INTERVAL: sleep between ticks (default: 5m)
//   - COLLECTOR_RECOVERY_INTERVAL: sleep after a failed tick (default: 60s)
//   - COLLECTOR_TIME_RANGE_HOURS: window when a product omits hours (default: 3)
//   - COLLECTOR_CACHE_TTL: repository cache TTL (default: 300s)
type CollectorConfig struct {
	Enabled               bool          `koanf:"enabled"`
	Products              []string      `koanf:"products"`
	Interval              time.Duration `koanf:"interval" validate:"gt=0"`
	RecoveryInterval      time.Duration `koanf:"recovery_interval" validate:"gt=0"`
	DefaultTimeRangeHours int           `koanf:"time_range_hours" validate:"gte=1"`
	CacheTTL              time.Duration `koanf:"cache_ttl" validate:"gte=0"`
}

// Product is one parsed entry of CollectorConfig.Products.
type Product struct {
	Type           string
	Name           string
	TimeRangeHours int
}

// ProductList parses Products. Entries are "type:name" or "type:name:hours";
// a missing name defaults to the type and missing hours to DefaultTimeRangeHours.
func (c CollectorConfig) ProductList() ([]Product, error) {
	products := make([]Product, 0, len(c.Products))
	for _, raw := range c.Products {
		p, err := parseProduct(raw, c.DefaultTimeRangeHours)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func parseProduct(raw string, defaultHours int) (Product, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) > 3 || strings.TrimSpace(parts[0]) == "" {
		return Product{}, fmt.Errorf("invalid product %q: want product_type[:product_name[:hours]]", raw)
	}

	p := Product{
		Type:           strings.TrimSpace(parts[0]),
		TimeRangeHours: defaultHours,
	}
	p.Name = p.Type
	if len(parts) >= 2 && strings.TrimSpace(parts[1]) != "" {
		p.Name = strings.TrimSpace(parts[1])
	}
	if len(parts) == 3 {
		hours, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil || hours <= 0 {
			return Product{}, fmt.Errorf("invalid product %q: hours must be a positive integer", raw)
		}
		p.TimeRangeHours = hours
	}
	return p, nil
}

// ServerConfig holds HTTP server settings for the metrics/health surface.
//
// Environment Variables:
//   - HTTP_HOST, HTTP_PORT: listen address (default: 0.0.0.0:9464)
//   - HTTP_SHUTDOWN_TIMEOUT: graceful shutdown budget (default: 15s)
//   - HTTP_COLLECT_RATE_LIMIT: POST /collect requests per minute per client, 0 disables (default: 6)
type ServerConfig struct {
	Host             string        `koanf:"host"`
	Port             int           `koanf:"port" validate:"gte=1,lte=65535"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	CollectRateLimit int           `koanf:"collect_rate_limit" validate:"gte=0"`
}

// Addr returns host:port for http.Server.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// LoggingConfig holds logging configuration.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// TracingConfig controls the in-process OpenTelemetry tracer provider used
// for the collector's own spans.
type TracingConfig struct {
	Enabled     bool    `koanf:"enabled"`
	SampleRatio float64 `koanf:"sample_ratio" validate:"gte=0,lte=1"`
}
