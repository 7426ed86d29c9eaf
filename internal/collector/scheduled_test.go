// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/correlator/internal/metrics"
	"github.com/tomtom215/correlator/internal/repository"
)

func runAsync(ctx context.Context, fn func(context.Context) error) <-chan error {
	done := make(chan error, 1)
	go func() { done <- fn(ctx) }()
	return done
}

func waitResult(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("scheduled loop did not stop")
		return nil
	}
}

func TestRunScheduled_ExportsAndStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := &recordingSink{onLogs: cancel}
	c := New(seedRepo(), WithClock(testClock), WithSink(sink))
	configs := []ProductConfig{{ProductType: "ethernet", ProductName: "EthernetCircuit"}}

	done := runAsync(ctx, func(ctx context.Context) error {
		return c.RunScheduled(ctx, configs, time.Hour)
	})

	if err := waitResult(t, done); !errors.Is(err, context.Canceled) {
		t.Fatalf("RunScheduled() error = %v, want context.Canceled", err)
	}
	if len(sink.batches) != 1 {
		t.Errorf("batches exported = %d, want 1", len(sink.batches))
	}
}

func TestRunScheduled_RecoversFromTickErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := &failingRepo{MemoryRepository: repository.NewMemoryRepository()}
	repo.onCall = func(n int) {
		if n == 3 {
			cancel()
		}
	}
	c := New(repo, WithClock(testClock), WithRecoveryInterval(5*time.Millisecond))
	configs := []ProductConfig{{ProductType: "ethernet", ProductName: "EthernetCircuit"}}

	before := testutil.ToFloat64(metrics.CollectorTickErrors)
	done := runAsync(ctx, func(ctx context.Context) error {
		return c.RunScheduled(ctx, configs, time.Hour)
	})

	if err := waitResult(t, done); !errors.Is(err, context.Canceled) {
		t.Fatalf("RunScheduled() error = %v, want context.Canceled", err)
	}
	if repo.calls != 3 {
		t.Errorf("listing calls = %d, want 3 (loop kept running after failures)", repo.calls)
	}
	if got := testutil.ToFloat64(metrics.CollectorTickErrors) - before; got != 3 {
		t.Errorf("tick errors recorded = %v, want 3", got)
	}
}

func TestRunScheduled_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := &failingRepo{MemoryRepository: repository.NewMemoryRepository()}
	c := New(repo)
	err := c.RunScheduled(ctx, []ProductConfig{{ProductType: "x", ProductName: "X"}}, time.Second)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("RunScheduled() error = %v, want context.Canceled", err)
	}
	if repo.calls != 0 {
		t.Errorf("listing calls = %d, want 0", repo.calls)
	}
}

func TestRunScheduled_RejectsNonPositiveInterval(t *testing.T) {
	c := New(repository.NewMemoryRepository())
	if err := c.RunScheduled(context.Background(), nil, 0); err == nil {
		t.Fatal("expected error for zero interval")
	}
}

func TestSchedule_RunWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := &recordingSink{onLogs: cancel}
	configs := []ProductConfig{{ProductType: "ethernet", ProductName: "EthernetCircuit"}}
	s := NewSchedule(New(seedRepo(), WithClock(testClock), WithSink(sink)), configs, time.Hour)

	if len(s.Configs()) != 1 {
		t.Errorf("Configs() = %v", s.Configs())
	}
	if err := waitResult(t, runAsync(ctx, s.RunWithContext)); !errors.Is(err, context.Canceled) {
		t.Fatalf("RunWithContext() error = %v, want context.Canceled", err)
	}
}
