// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultLokiImage is the Grafana Loki image used for integration tests.
	DefaultLokiImage = "grafana/loki:3.4.2"

	// DefaultLokiPort is Loki's HTTP port.
	DefaultLokiPort = "3100"
)

// LokiContainer is a running single-binary Loki.
type LokiContainer struct {
	testcontainers.Container
	BaseURL string
}

// LokiOption configures the Loki container.
type LokiOption func(*lokiConfig)

type lokiConfig struct {
	image        string
	startTimeout time.Duration
}

// WithLokiImage sets a custom Loki image.
func WithLokiImage(image string) LokiOption {
	return func(c *lokiConfig) {
		c.image = image
	}
}

// WithStartTimeout sets how long to wait for Loki's /ready endpoint.
func WithStartTimeout(timeout time.Duration) LokiOption {
	return func(c *lokiConfig) {
		c.startTimeout = timeout
	}
}

// NewLokiContainer starts Loki with its bundled local config.
//
// Example:
//
//	loki, err := testinfra.NewLokiContainer(ctx)
//	if err != nil {
//	    t.Fatal(err)
//	}
//	testinfra.TerminateOnCleanup(t, loki.Container)
//
//	exp := exporter.NewLokiExporter(loki.PushURL(), opts)
func NewLokiContainer(ctx context.Context, opts ...LokiOption) (*LokiContainer, error) {
	cfg := &lokiConfig{
		image:        DefaultLokiImage,
		startTimeout: 90 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: []string{DefaultLokiPort + "/tcp"},
		Cmd:          []string{"-config.file=/etc/loki/local-config.yaml"},
		WaitingFor: wait.ForHTTP("/ready").
			WithPort(DefaultLokiPort + "/tcp").
			WithStatusCodeMatcher(func(status int) bool { return status == http.StatusOK }).
			WithStartupTimeout(cfg.startTimeout),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("create loki container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, DefaultLokiPort)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get mapped port: %w", err)
	}

	return &LokiContainer{
		Container: container,
		BaseURL:   fmt.Sprintf("http://%s:%s", host, port.Port()),
	}, nil
}

// PushURL is the push endpoint the Loki exporter writes to.
func (l *LokiContainer) PushURL() string {
	return l.BaseURL + "/loki/api/v1/push"
}

// LokiQueryResponse is the subset of a query_range response the tests read.
type LokiQueryResponse struct {
	Status string `json:"status"`
	Data   struct {
		ResultType string `json:"resultType"`
		Result     []struct {
			Stream map[string]string `json:"stream"`
			Values [][]string        `json:"values"`
		} `json:"result"`
	} `json:"data"`
}

// Lines returns every log line across all streams.
func (r *LokiQueryResponse) Lines() []string {
	var lines []string
	for _, s := range r.Data.Result {
		for _, v := range s.Values {
			if len(v) == 2 {
				lines = append(lines, v[1])
			}
		}
	}
	return lines
}

// QueryRange runs a LogQL query over [start, end].
func (l *LokiContainer) QueryRange(ctx context.Context, query string, start, end time.Time) (*LokiQueryResponse, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("start", strconv.FormatInt(start.UnixNano(), 10))
	params.Set("end", strconv.FormatInt(end.UnixNano(), 10))
	params.Set("direction", "forward")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.BaseURL+"/loki/api/v1/query_range?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query loki: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("query loki: status %d", resp.StatusCode)
	}

	var out LokiQueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode loki response: %w", err)
	}
	return &out, nil
}
