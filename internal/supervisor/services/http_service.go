// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tomtom215/correlator/internal/logging"
)

// defaultGrace is used when NewHTTPServerService is given no shutdown timeout.
const defaultGrace = 10 * time.Second

// HTTPServer is the part of *http.Server the service drives.
type HTTPServer interface {
	Serve(l net.Listener) error
	Shutdown(ctx context.Context) error
}

// HTTPServerService binds the API listener and serves on it until its
// context is cancelled, then drains in-flight requests for up to the grace
// period. Binding happens inside Serve so a port clash is a service failure
// the supervisor can retry.
//
//	server := &http.Server{Addr: cfg.Server.Addr(), Handler: router}
//	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
type HTTPServerService struct {
	srv    HTTPServer
	addr   string
	grace  time.Duration
	listen func(network, address string) (net.Listener, error)
	bound  atomic.Pointer[string]
}

// NewHTTPServerService serves server on server.Addr. A non-positive
// shutdownTimeout becomes 10s.
func NewHTTPServerService(server *http.Server, shutdownTimeout time.Duration) *HTTPServerService {
	return newHTTPServerService(server, server.Addr, shutdownTimeout)
}

func newHTTPServerService(srv HTTPServer, addr string, grace time.Duration) *HTTPServerService {
	if grace <= 0 {
		grace = defaultGrace
	}
	return &HTTPServerService{srv: srv, addr: addr, grace: grace, listen: net.Listen}
}

// Addr is the address the listener is bound to, or "" before the first bind.
// With a ":0" address it reports the port the kernel picked.
func (h *HTTPServerService) Addr() string {
	if p := h.bound.Load(); p != nil {
		return *p
	}
	return ""
}

// Serve implements suture.Service. It returns ctx.Err() after a clean drain,
// or the bind, serve or shutdown error.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	ln, err := h.listen("tcp", h.addr)
	if err != nil {
		return fmt.Errorf("http server: listen on %q: %w", h.addr, err)
	}
	addr := ln.Addr().String()
	h.bound.Store(&addr)
	logging.Info().Str("addr", addr).Msg("HTTP server listening")

	served := make(chan error, 1)
	go func() {
		err := h.srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		served <- err
	}()

	select {
	case err := <-served:
		if err == nil {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	// ctx is already done; the drain gets its own deadline.
	drainCtx, cancel := context.WithTimeout(context.Background(), h.grace)
	defer cancel()
	if err := h.srv.Shutdown(drainCtx); err != nil {
		return fmt.Errorf("http server: shutdown: %w", err)
	}
	<-served
	logging.Info().Str("addr", addr).Msg("HTTP server stopped")
	return ctx.Err()
}

// String names the service in supervisor logs.
func (h *HTTPServerService) String() string { return "http-server" }
