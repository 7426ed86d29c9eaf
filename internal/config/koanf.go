// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar names a config file to use ahead of DefaultConfigPaths.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are tried in order when ConfigPathEnvVar is unset or
// points nowhere. No file at all is fine.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/correlator/config.yaml",
	"/etc/correlator/config.yml",
}

// defaultConfig is the bottom configuration layer.
func defaultConfig() *Config {
	return &Config{
		Orchestration: OrchestrationConfig{
			TokenPath:         "/tron/api/v1/tokens",
			ResourcesPath:     "/bpocore/market/api/v1/resources",
			VerifySSL:         true,
			Timeout:           30 * time.Second,
			TokenTTL:          time.Hour,
			RequestsPerSecond: 10,
			Burst:             5,
		},
		Exporters: ExportersConfig{
			LokiURL:               "http://loki:3100/loki/api/v1/push",
			TempoEndpoint:         "http://tempo:4318",
			DatadogSite:           "datadoghq.com",
			Service:               "correlator",
			Env:                   "dev",
			RetryAttempts:         3,
			RetryInitialDelay:     time.Second,
			CircuitBreakerEnabled: true,
			FailureThreshold:      5,
			RecoveryTimeout:       60 * time.Second,
			Timeout:               10 * time.Second,
		},
		Collector: CollectorConfig{
			Enabled:               true,
			Interval:              5 * time.Minute,
			RecoveryInterval:      60 * time.Second,
			DefaultTimeRangeHours: 3,
			CacheTTL:              300 * time.Second,
		},
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             9464,
			ShutdownTimeout:  15 * time.Second,
			CollectRateLimit: 6,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Tracing: TracingConfig{
			Enabled:     true,
			SampleRatio: 1.0,
		},
	}
}

// Load builds the configuration from three layers, later ones winning:
// built-in defaults, the first config file found, then the environment.
// The result is validated before it is returned.
func Load() (*Config, error) {
	return loadFrom(findConfigFile())
}

type layer struct {
	name     string
	provider koanf.Provider
	parser   koanf.Parser
}

func loadFrom(configPath string) (*Config, error) {
	layers := []layer{{name: "defaults", provider: structs.Provider(defaultConfig(), "koanf")}}
	if configPath != "" {
		layers = append(layers, layer{name: configPath, provider: file.Provider(configPath), parser: yaml.Parser()})
	}
	layers = append(layers, layer{name: "environment", provider: env.ProviderWithValue("", ".", envValue)})

	k := koanf.New(".")
	for _, l := range layers {
		if err := k.Load(l.provider, l.parser); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", l.name, err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// findConfigFile returns the first regular file among ConfigPathEnvVar and
// DefaultConfigPaths, or "".
func findConfigFile() string {
	candidates := DefaultConfigPaths
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		candidates = append([]string{p}, candidates...)
	}
	for _, p := range candidates {
		if fi, err := os.Stat(p); err == nil && fi.Mode().IsRegular() {
			return p
		}
	}
	return ""
}

// listPaths hold comma-separated lists when set from the environment.
// YAML gives them as sequences.
var listPaths = map[string]bool{
	"collector.products": true,
}

// envValue maps one environment variable onto its koanf path. Variables
// outside envMappings are dropped.
func envValue(key, value string) (string, any) {
	path := envTransformFunc(key)
	if path == "" || !listPaths[path] {
		return path, value
	}
	return path, splitList(value)
}

// splitList splits on commas, trims, and drops empty items.
func splitList(s string) []string {
	out := make([]string, 0, strings.Count(s, ",")+1)
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
// Unmapped variables are ignored so unrelated environment does not leak into config.
var envMappings = map[string]string{
	// Orchestration API
	"orch_base_url":            "orchestration.base_url",
	"orch_username":            "orchestration.username",
	"orch_password":            "orchestration.password",
	"orch_tenant":              "orchestration.tenant",
	"orch_namespace":           "orchestration.namespace",
	"orch_token_path":          "orchestration.token_path",
	"orch_resources_path":      "orchestration.resources_path",
	"orch_trace_log_type":      "orchestration.trace_log_type",
	"orch_verify_ssl":          "orchestration.verify_ssl",
	"orch_ca_bundle":           "orchestration.ca_bundle",
	"orch_timeout":             "orchestration.timeout",
	"orch_token_ttl":           "orchestration.token_ttl",
	"orch_requests_per_second": "orchestration.requests_per_second",
	"orch_burst":               "orchestration.burst",

	// Exporters
	"loki_url":                          "exporters.loki_url",
	"tempo_http_endpoint":               "exporters.tempo_endpoint",
	"datadog_api_key":                   "exporters.datadog_api_key",
	"datadog_site":                      "exporters.datadog_site",
	"datadog_url":                       "exporters.datadog_url",
	"service_name":                      "exporters.service",
	"deployment_env":                    "exporters.env",
	"hostname":                          "exporters.host",
	"export_retry_attempts":             "exporters.retry_attempts",
	"export_retry_initial_delay":        "exporters.retry_initial_delay",
	"circuit_breaker_enabled":           "exporters.circuit_breaker_enabled",
	"circuit_breaker_failure_threshold": "exporters.failure_threshold",
	"circuit_breaker_recovery_timeout":  "exporters.recovery_timeout",
	"export_timeout":                    "exporters.timeout",

	// Collector
	"collector_enabled":           "collector.enabled",
	"collector_products":          "collector.products",
	"collector_interval":          "collector.interval",
	"collector_recovery_interval": "collector.recovery_interval",
	"collector_time_range_hours":  "collector.time_range_hours",
	"collector_cache_ttl":         "collector.cache_ttl",

	// Server
	"http_host":               "server.host",
	"http_port":               "server.port",
	"http_shutdown_timeout":   "server.shutdown_timeout",
	"http_collect_rate_limit": "server.collect_rate_limit",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Tracing
	"tracing_enabled":      "tracing.enabled",
	"tracing_sample_ratio": "tracing.sample_ratio",
}

// envTransformFunc returns the koanf path for an environment variable name,
// e.g. ORCH_BASE_URL is orchestration.base_url. Unknown names give "".
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
