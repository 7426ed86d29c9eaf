// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

//go:build integration

package testinfra

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
)

var (
	dockerOnce sync.Once
	dockerErr  error
)

// DockerError reports why the Docker provider is unusable, or nil. The
// health check runs once per test binary.
func DockerError() error {
	dockerOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		p, err := testcontainers.NewDockerProvider()
		if err != nil {
			dockerErr = err
			return
		}
		defer p.Close()
		dockerErr = p.Health(ctx)
	})
	return dockerErr
}

// SkipIfNoDocker skips t when no healthy Docker daemon is reachable.
func SkipIfNoDocker(t testing.TB) {
	t.Helper()
	if err := DockerError(); err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
}

// TerminateOnCleanup registers c for termination when t finishes.
// Termination failures are logged, not fatal.
func TerminateOnCleanup(t testing.TB, c testcontainers.Container) {
	t.Helper()
	if c == nil {
		return
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := c.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})
}

// Eventually runs check every interval until it returns true, ctx is done
// or within elapses. Loki ingests asynchronously, so pushed lines take a
// moment to become queryable.
func Eventually(ctx context.Context, within, interval time.Duration, check func() bool) error {
	ctx, cancel := context.WithTimeout(ctx, within)
	defer cancel()

	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		if check() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick.C:
		}
	}
}
