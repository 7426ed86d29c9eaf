// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package supervisor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/tomtom215/correlator/internal/logging"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNewSupervisorTree(t *testing.T) {
	tests := []struct {
		name   string
		logger *slog.Logger
		config TreeConfig
		want   TreeConfig
	}{
		{
			name:   "explicit values kept, zero decay defaulted",
			logger: quietLogger(),
			config: TreeConfig{FailureThreshold: 3, FailureBackoff: time.Second, ShutdownTimeout: 2 * time.Second},
			want:   TreeConfig{FailureThreshold: 3, FailureDecay: 30, FailureBackoff: time.Second, ShutdownTimeout: 2 * time.Second},
		},
		{
			name:   "zero config takes defaults",
			logger: quietLogger(),
			want:   DefaultTreeConfig(),
		},
		{
			name:   "zerolog slog bridge",
			logger: logging.NewSlogLogger(),
			want:   DefaultTreeConfig(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := NewSupervisorTree(tt.logger, tt.config)
			if err != nil {
				t.Fatalf("NewSupervisorTree() error = %v", err)
			}
			if tree.Root() == nil {
				t.Fatal("Root() is nil")
			}
			if tree.config != tt.want {
				t.Errorf("config = %+v, want %+v", tree.config, tt.want)
			}
			if len(tree.layers) != 2 {
				t.Errorf("layers = %d, want 2", len(tree.layers))
			}
		})
	}
}

func TestNewSupervisorTree_NilLogger(t *testing.T) {
	if _, err := NewSupervisorTree(nil, TreeConfig{}); err == nil {
		t.Fatal("expected an error for a nil logger")
	}
}

func TestSupervisorTree_AddUnknownLayer(t *testing.T) {
	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tree.Add(Layer("exporter-layer"), newMockService("x")); err == nil {
		t.Error("expected an error for an unknown layer")
	}
	if _, err := tree.Add(LayerAPI, newMockService("api")); err != nil {
		t.Errorf("Add(LayerAPI) error = %v", err)
	}
}

func TestSupervisorTreeLifecycle(t *testing.T) {
	t.Run("both layers start and stop with the context", func(t *testing.T) {
		tree, err := NewSupervisorTree(quietLogger(), TreeConfig{
			FailureBackoff:  100 * time.Millisecond,
			ShutdownTimeout: time.Second,
		})
		if err != nil {
			t.Fatalf("failed to create tree: %v", err)
		}

		collection := newMockService("mock-collector")
		api := newMockService("mock-api")
		tree.AddCollectionService(collection)
		tree.AddAPIService(api)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := tree.ServeBackground(ctx)

		time.Sleep(100 * time.Millisecond)
		cancel()

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, context.Canceled) {
				t.Errorf("unexpected error: %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("tree did not shut down in time")
		}

		for _, svc := range []*mockService{collection, api} {
			if svc.StartCount() < 1 {
				t.Errorf("%s was not started", svc)
			}
			if svc.StopCount() != svc.StartCount() {
				t.Errorf("%s: %d starts but %d stops", svc, svc.StartCount(), svc.StopCount())
			}
		}

		report, err := tree.UnstoppedServiceReport()
		if err != nil {
			t.Fatalf("UnstoppedServiceReport() error = %v", err)
		}
		if len(report) != 0 {
			t.Errorf("unstopped services: %v", report)
		}
	})
}

func TestSupervisorTreeFailureIsolation(t *testing.T) {
	tree, _ := NewSupervisorTree(quietLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})

	collector := failing("failing-collector", 2)
	api := newMockService("stable-api")
	tree.AddCollectionService(collector)
	tree.AddAPIService(api)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	errCh := tree.ServeBackground(ctx)
	time.Sleep(200 * time.Millisecond)

	if collector.StartCount() < 3 {
		t.Errorf("expected at least 3 starts for failing collector, got %d", collector.StartCount())
	}
	if api.StartCount() != 1 {
		t.Errorf("api service started %d times, want 1 (isolated from collection failures)", api.StartCount())
	}

	cancel()
	<-errCh
}

func TestDefaultTreeConfig(t *testing.T) {
	want := TreeConfig{FailureThreshold: 5, FailureDecay: 30, FailureBackoff: 15 * time.Second, ShutdownTimeout: 10 * time.Second}
	if got := DefaultTreeConfig(); got != want {
		t.Errorf("DefaultTreeConfig() = %+v, want %+v", got, want)
	}
}
