// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// Layer names a child supervisor of the root.
type Layer string

const (
	// LayerCollection runs the scheduled collector.
	LayerCollection Layer = "collection-layer"
	// LayerAPI runs the HTTP server (/metrics, health, POST /collect).
	LayerAPI Layer = "api-layer"
)

// rootName is the root supervisor's name in suture events.
const rootName = "correlator"

// TreeConfig tunes restart behaviour. Zero fields take DefaultTreeConfig values.
type TreeConfig struct {
	// FailureThreshold is how many failures put a layer into backoff.
	FailureThreshold float64

	// FailureDecay is the failure half-life, in seconds.
	FailureDecay float64

	// FailureBackoff is the pause once the threshold is crossed.
	FailureBackoff time.Duration

	// ShutdownTimeout bounds how long each service gets to stop.
	ShutdownTimeout time.Duration
}

// DefaultTreeConfig mirrors suture's defaults with a 10s shutdown timeout.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

func (c TreeConfig) withDefaults() TreeConfig {
	d := DefaultTreeConfig()
	if c.FailureThreshold == 0 {
		c.FailureThreshold = d.FailureThreshold
	}
	if c.FailureDecay == 0 {
		c.FailureDecay = d.FailureDecay
	}
	if c.FailureBackoff == 0 {
		c.FailureBackoff = d.FailureBackoff
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	return c
}

func (c TreeConfig) spec(hook suture.EventHook) suture.Spec {
	return suture.Spec{
		EventHook:        hook,
		FailureThreshold: c.FailureThreshold,
		FailureDecay:     c.FailureDecay,
		FailureBackoff:   c.FailureBackoff,
		Timeout:          c.ShutdownTimeout,
	}
}

// SupervisorTree is a root supervisor with one child per Layer. A collector
// stuck in restart backoff leaves the API layer, and /metrics, running.
type SupervisorTree struct {
	root   *suture.Supervisor
	layers map[Layer]*suture.Supervisor
	config TreeConfig
}

// NewSupervisorTree builds the tree. Suture events are logged through logger.
func NewSupervisorTree(logger *slog.Logger, config TreeConfig) (*SupervisorTree, error) {
	if logger == nil {
		return nil, errors.New("supervisor: nil logger")
	}
	config = config.withDefaults()

	// Layers inherit the root's hook when added to it.
	hook := (&sutureslog.Handler{Logger: logger}).MustHook()
	t := &SupervisorTree{
		root:   suture.New(rootName, config.spec(hook)),
		layers: make(map[Layer]*suture.Supervisor, 2),
		config: config,
	}
	for _, l := range []Layer{LayerCollection, LayerAPI} {
		sup := suture.New(string(l), config.spec(nil))
		t.root.Add(sup)
		t.layers[l] = sup
	}
	return t, nil
}

// Root is the top supervisor.
func (t *SupervisorTree) Root() *suture.Supervisor { return t.root }

// Add puts svc under layer.
func (t *SupervisorTree) Add(layer Layer, svc suture.Service) (suture.ServiceToken, error) {
	sup, ok := t.layers[layer]
	if !ok {
		return suture.ServiceToken{}, fmt.Errorf("supervisor: unknown layer %q", layer)
	}
	return sup.Add(svc), nil
}

// AddCollectionService puts svc under LayerCollection.
func (t *SupervisorTree) AddCollectionService(svc suture.Service) suture.ServiceToken {
	return t.layers[LayerCollection].Add(svc)
}

// AddAPIService puts svc under LayerAPI.
func (t *SupervisorTree) AddAPIService(svc suture.Service) suture.ServiceToken {
	return t.layers[LayerAPI].Add(svc)
}

// Serve blocks until ctx is done.
func (t *SupervisorTree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}

// ServeBackground starts the tree. The returned channel receives exactly
// one value when the tree stops and is never closed.
func (t *SupervisorTree) ServeBackground(ctx context.Context) <-chan error {
	return t.root.ServeBackground(ctx)
}

// UnstoppedServiceReport lists services still running past ShutdownTimeout.
func (t *SupervisorTree) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return t.root.UnstoppedServiceReport()
}
