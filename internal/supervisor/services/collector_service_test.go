// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

// fakeRunner blocks until cancelled, or returns err immediately when set.
type fakeRunner struct {
	err   error
	calls atomic.Int32
}

func (f *fakeRunner) RunWithContext(ctx context.Context) error {
	n := f.calls.Add(1)
	if f.err != nil && n == 1 {
		return f.err
	}
	<-ctx.Done()
	return ctx.Err()
}

var _ suture.Service = (*CollectorService)(nil)

func TestCollectorService_ReturnsContextErrorOnShutdown(t *testing.T) {
	svc := NewCollectorService(&fakeRunner{})
	if svc.String() != "collector" {
		t.Errorf("String() = %q", svc.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not return")
	}
}

func TestCollectorService_WrapsLoopError(t *testing.T) {
	loopErr := errors.New("interval must be positive")
	svc := NewCollectorService(&fakeRunner{err: loopErr})

	err := svc.Serve(context.Background())
	if !errors.Is(err, loopErr) {
		t.Fatalf("Serve() = %v, want wrapped loop error", err)
	}
}

func TestCollectorService_RestartedBySupervisor(t *testing.T) {
	runner := &fakeRunner{err: errors.New("boom")}
	sup := suture.New("test-sup", suture.Spec{
		FailureThreshold: 5,
		FailureBackoff:   10 * time.Millisecond,
		Timeout:          time.Second,
	})
	sup.Add(NewCollectorService(runner))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := sup.ServeBackground(ctx)

	deadline := time.Now().Add(time.Second)
	for runner.calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-errCh

	if runner.calls.Load() < 2 {
		t.Errorf("runner calls = %d, want restart after failure", runner.calls.Load())
	}
}
