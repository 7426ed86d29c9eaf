// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package exporter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/correlator/internal/config"
	"github.com/tomtom215/correlator/internal/logging"
	"github.com/tomtom215/correlator/internal/metrics"
)

const maxErrorBodySize = 64 * 1024

var (
	// ErrCircuitOpen is returned internally when the breaker skipped a call.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrClosed is returned when closing an exporter twice.
	ErrClosed = errors.New("exporter already closed")
)

// StatusError reports a non-2xx backend response.
type StatusError struct {
	Backend    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Backend, e.StatusCode, e.Body)
}

// Options are shared by every exporter.
type Options struct {
	Timeout    time.Duration
	Retry      RetryConfig
	Breaker    BreakerConfig
	HTTPClient *http.Client
}

// OptionsFromConfig maps the exporters configuration section to Options.
func OptionsFromConfig(cfg *config.ExportersConfig) Options {
	threshold := cfg.FailureThreshold
	if threshold < 1 {
		threshold = 1
	}
	return Options{
		Timeout: cfg.Timeout,
		Retry: RetryConfig{
			MaxRetries:   cfg.RetryAttempts,
			InitialDelay: cfg.RetryInitialDelay,
		},
		Breaker: BreakerConfig{
			Enabled:          cfg.CircuitBreakerEnabled,
			FailureThreshold: uint32(threshold), //nolint:gosec // validated gte=1 and small
			RecoveryTimeout:  cfg.RecoveryTimeout,
		},
	}
}

// BreakerStatus is a snapshot of one exporter's breaker.
type BreakerStatus struct {
	Backend  string `json:"backend"`
	State    string `json:"state"`
	Failures uint32 `json:"failures"`
}

// transport is the delivery path every exporter shares.
type transport struct {
	backend string
	client  *http.Client
	breaker *Breaker
	retry   RetryConfig
	closed  atomic.Bool
}

func newTransport(backend string, opts Options) *transport {
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &transport{
		backend: backend,
		client:  client,
		breaker: NewBreaker(backend, opts.Breaker),
		retry:   opts.Retry,
	}
}

// deliver runs send behind the breaker and retry, records the outcome and
// logs failures. records is the number of items carried by the call.
func (t *transport) deliver(ctx context.Context, records int, send func(context.Context) error) error {
	log := logging.CtxWith(ctx).Str("backend", t.backend).Logger()

	done, ok := t.breaker.Allow()
	if !ok {
		metrics.RecordExport(t.backend, metrics.OutcomeCircuitOpen, 0, records)
		log.Warn().Int("records", records).Msg("Circuit breaker open, skipping export")
		return ErrCircuitOpen
	}

	start := time.Now()
	err := retry(ctx, t.retry, send)
	done(err)
	duration := time.Since(start)

	if err != nil {
		metrics.RecordExport(t.backend, metrics.OutcomeFailure, duration, records)
		log.Error().Err(err).
			Int("records", records).
			Uint32("consecutive_failures", t.breaker.Failures()).
			Dur("duration", duration).
			Msg("Export failed")
		return err
	}

	metrics.RecordExport(t.backend, metrics.OutcomeSuccess, duration, records)
	log.Debug().Int("records", records).Dur("duration", duration).Msg("Export succeeded")
	return nil
}

// post sends payload as JSON. Any non-2xx status is a *StatusError.
func (t *transport) post(ctx context.Context, url string, headers map[string]string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", t.backend, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", t.backend, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", t.backend, err)
	}
	defer func() {
		//nolint:errcheck // drain so the connection can be reused
		io.Copy(io.Discard, resp.Body)
		//nolint:errcheck // error irrelevant after body consumed
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{
			Backend:    t.backend,
			StatusCode: resp.StatusCode,
			Body:       readBodyForError(resp.Body),
		}
	}
	return nil
}

func (t *transport) status() BreakerStatus {
	return BreakerStatus{
		Backend:  t.backend,
		State:    t.breaker.State(),
		Failures: t.breaker.Failures(),
	}
}

func (t *transport) close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return fmt.Errorf("%s: %w", t.backend, ErrClosed)
	}
	t.client.CloseIdleConnections()
	return nil
}

func readBodyForError(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return "(failed to read response body)"
	}
	if len(body) == maxErrorBodySize {
		return string(body) + "\n... (truncated)"
	}
	return string(body)
}
