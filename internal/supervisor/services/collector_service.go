// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/correlator/internal/logging"
)

// Runner is a blocking loop that returns when its context is cancelled.
// *collector.Schedule satisfies it.
type Runner interface {
	RunWithContext(ctx context.Context) error
}

// CollectorService runs the scheduled collector under the supervisor.
//
// The loop only returns early on a configuration error; the supervisor then
// restarts it with backoff.
type CollectorService struct {
	runner Runner
	name   string
}

// NewCollectorService wraps runner.
func NewCollectorService(runner Runner) *CollectorService {
	return &CollectorService{
		runner: runner,
		name:   "collector",
	}
}

// Serve implements suture.Service.
func (c *CollectorService) Serve(ctx context.Context) error {
	err := c.runner.RunWithContext(ctx)
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ctx.Err()
	}
	logging.Error().Err(err).Str("service", c.name).Msg("Collector loop exited")
	return fmt.Errorf("collector loop: %w", err)
}

// String names the service in supervisor logs.
func (c *CollectorService) String() string {
	return c.name
}
