// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package orchestration

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/correlator/internal/config"
	"github.com/tomtom215/correlator/internal/logging"
	"github.com/tomtom215/correlator/internal/metrics"
	"github.com/tomtom215/correlator/internal/models"
)

// maxErrorBodySize limits how much of a failed response is kept for error reporting.
const maxErrorBodySize = 64 * 1024 // 64KB

// traceLookupLimit is how many trace-log matches are requested; only the first is used.
const traceLookupLimit = 10

// readBodyForError reads at most 64KB of the body for error reporting.
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

// Client is the authenticated orchestration API client.
type Client struct {
	baseURL       string
	username      string
	password      string
	tenant        string
	namespace     string
	tokenPath     string
	resourcesPath string
	traceLogType  string
	tokenTTL      time.Duration

	http    *http.Client
	limiter *rate.Limiter
	now     func() time.Time

	mu     sync.Mutex
	token  string
	expiry time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client built from the TLS settings.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithClock overrides the clock used for token expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient builds a client from the orchestration configuration.
// It fails only when the CA bundle cannot be loaded.
func NewClient(cfg *config.OrchestrationConfig, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		username:      cfg.Username,
		password:      cfg.Password,
		tenant:        cfg.Tenant,
		namespace:     cfg.Namespace,
		tokenPath:     cfg.TokenPath,
		resourcesPath: cfg.ResourcesPath,
		traceLogType:  cfg.ResolvedTraceLogType(),
		tokenTTL:      cfg.TokenTTL,
		now:           time.Now,
	}

	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		hc, err := newHTTPClient(cfg)
		if err != nil {
			return nil, err
		}
		c.http = hc
	}

	return c, nil
}

func newHTTPClient(cfg *config.OrchestrationConfig) (*http.Client, error) {
	tlsConfig := &tls.Config{
		MinVersion: tls.VersionTLS12,
		// Disabled only when ORCH_VERIFY_SSL=false.
		InsecureSkipVerify: !cfg.VerifySSL, //nolint:gosec // operator opt-out
	}

	if cfg.VerifySSL && cfg.CABundle != "" {
		pem, err := os.ReadFile(cfg.CABundle)
		if err != nil {
			return nil, fmt.Errorf("read CA bundle: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("CA bundle %s contains no certificates", cfg.CABundle)
		}
		tlsConfig.RootCAs = pool
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsConfig

	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: transport,
	}, nil
}

// Token returns the cached bearer token, exchanging credentials when there is
// none or it has expired. The mutex is held across the exchange so concurrent
// callers wait for one refresh instead of issuing their own.
func (c *Client) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.expiry) {
		return c.token, nil
	}

	token, err := c.exchangeCredentials(ctx)
	if err != nil {
		return "", err
	}

	c.token = token
	c.expiry = c.now().Add(c.tokenTTL)
	metrics.OrchestrationTokenRefreshes.Inc()
	logging.Ctx(ctx).Debug().Time("expiry", c.expiry).Msg("Obtained orchestration token")
	return token, nil
}

func (c *Client) exchangeCredentials(ctx context.Context) (string, error) {
	body, err := json.Marshal(tokenRequest{
		Username: c.username,
		Password: c.password,
		Tenant:   c.tenant,
	})
	if err != nil {
		return "", &AuthenticationError{Err: err}
	}

	resp, err := c.send(ctx, "token", http.MethodPost, c.baseURL+c.tokenPath, "", body)
	if err != nil {
		return "", &AuthenticationError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &AuthenticationError{
			StatusCode: resp.StatusCode,
			Body:       readBodyForError(resp.Body),
		}
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", &AuthenticationError{Err: fmt.Errorf("decode token response: %w", err)}
	}
	if tr.Token == "" {
		return "", &AuthenticationError{StatusCode: resp.StatusCode, Body: "empty token"}
	}
	return tr.Token, nil
}

// DeleteToken revokes the current token. Failures are logged and swallowed;
// the local token is cleared either way.
func (c *Client) DeleteToken(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token == "" {
		return
	}
	token := c.token
	c.token = ""
	c.expiry = time.Time{}

	reqURL := c.baseURL + c.tokenPath + "/" + url.PathEscape(token)
	resp, err := c.send(ctx, "delete_token", http.MethodDelete, reqURL, token, nil)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to revoke orchestration token")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logging.Ctx(ctx).Warn().
			Int("status", resp.StatusCode).
			Str("body", readBodyForError(resp.Body)).
			Msg("Orchestration token revocation rejected")
	}
}

// invalidateToken drops the token after the API rejects it so the next call re-authenticates.
func (c *Client) invalidateToken(rejected string) {
	c.mu.Lock()
	if c.token == rejected {
		c.token = ""
		c.expiry = time.Time{}
	}
	c.mu.Unlock()
}

// send performs one request, pacing it through the limiter and recording metrics.
func (c *Client) send(ctx context.Context, op, method, reqURL, token string, body []byte) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordOrchestrationRequest(op, 0, time.Since(start))
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	metrics.RecordOrchestrationRequest(op, resp.StatusCode, time.Since(start))
	return resp, nil
}

// getJSON performs an authenticated GET and decodes the body into out.
// A 404 returns errNotFound; other non-2xx statuses return *UpstreamError.
func (c *Client) getJSON(ctx context.Context, op, path string, query url.Values, out any) error {
	token, err := c.Token(ctx)
	if err != nil {
		return err
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	resp, err := c.send(ctx, op, http.MethodGet, reqURL, token, nil)
	if err != nil {
		return fmt.Errorf("orchestration %s: %w", op, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errNotFound
	case resp.StatusCode == http.StatusUnauthorized:
		c.invalidateToken(token)
		return &UpstreamError{Op: op, StatusCode: resp.StatusCode, Body: readBodyForError(resp.Body)}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &UpstreamError{Op: op, StatusCode: resp.StatusCode, Body: readBodyForError(resp.Body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("orchestration %s: decode response: %w", op, err)
	}
	return nil
}

// GetResources lists resources of type "{namespace}.{productName}". The count
// endpoint is queried first; a limit of zero or less fetches that many items.
func (c *Client) GetResources(ctx context.Context, productName string, limit int) ([]models.Resource, error) {
	typeID := c.namespace + "." + productName

	var count countResponse
	err := c.getJSON(ctx, "count_resources", c.resourcesPath+"/count",
		url.Values{"exactTypeId": {typeID}}, &count)
	if err != nil {
		return nil, notFoundAsUpstream(err, "count_resources")
	}
	if count.Count <= 0 {
		return []models.Resource{}, nil
	}
	if limit <= 0 {
		limit = count.Count
	}

	var list listResponse
	err = c.getJSON(ctx, "list_resources", c.resourcesPath, url.Values{
		"resourceTypeId": {typeID},
		"limit":          {strconv.Itoa(limit)},
	}, &list)
	if err != nil {
		return nil, notFoundAsUpstream(err, "list_resources")
	}

	resources := make([]models.Resource, 0, len(list.Items))
	for i := range list.Items {
		resources = append(resources, list.Items[i].toModel())
	}

	logging.Ctx(ctx).Debug().
		Str("resource_type", typeID).
		Int("count", len(resources)).
		Msg("Fetched orchestration resources")
	return resources, nil
}

// notFoundAsUpstream turns a 404 on a listing endpoint into an ordinary upstream error.
func notFoundAsUpstream(err error, op string) error {
	if errors.Is(err, errNotFound) {
		return &UpstreamError{Op: op, StatusCode: http.StatusNotFound}
	}
	return err
}

// GetResourceByID fetches one resource. A 404 returns (nil, nil).
func (c *Client) GetResourceByID(ctx context.Context, id string) (*models.Resource, error) {
	var item resourceItem
	err := c.getJSON(ctx, "get_resource", c.resourcesPath+"/"+url.PathEscape(id), nil, &item)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	res := item.toModel()
	return &res, nil
}

// GetOrchTrace returns the orchestration trace for a circuit, taking the first
// trace-log match. It returns nil when there is no match or on any failure.
func (c *Client) GetOrchTrace(ctx context.Context, circuitID, resourceID string) *models.OrchTrace {
	log := logging.Ctx(ctx).With().Str("circuit_id", circuitID).Str("resource_id", resourceID).Logger()

	var list listResponse
	err := c.getJSON(ctx, "get_orch_trace", c.resourcesPath, url.Values{
		"resourceTypeId": {c.traceLogType},
		"p":              {"label:" + circuitID + ".orch_trace"},
		"limit":          {strconv.Itoa(traceLookupLimit)},
	}, &list)
	if err != nil {
		log.Warn().Err(err).Msg("Orchestration trace lookup failed")
		return nil
	}
	if len(list.Items) == 0 {
		log.Debug().Msg("No orchestration trace found")
		return nil
	}

	item := list.Items[0]
	steps, err := item.traceSteps()
	if err != nil {
		log.Warn().Err(err).Msg("Orchestration trace payload unreadable")
		return nil
	}

	return &models.OrchTrace{
		CircuitID:  circuitID,
		ResourceID: resourceID,
		TraceData:  steps,
		Timestamp:  parseCreatedAt(item.CreatedAt),
	}
}

// Close revokes the token and releases pooled connections.
// Safe to call when the client never authenticated.
func (c *Client) Close(ctx context.Context) error {
	c.DeleteToken(ctx)
	c.http.CloseIdleConnections()
	return nil
}
