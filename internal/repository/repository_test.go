// Correlator - Orchestration Telemetry Correlation and Export
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/correlator

package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/correlator/internal/models"
	"github.com/tomtom215/correlator/internal/orchestration"
)

var baseTime = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

// fakeClient is an orchestration client double that counts calls.
type fakeClient struct {
	mu        sync.Mutex
	resources []models.Resource
	traces    map[string]*models.OrchTrace
	err       error
	calls     map[string]int
	closed    bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		traces: map[string]*models.OrchTrace{},
		calls:  map[string]int{},
	}
}

func (f *fakeClient) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeClient) record(op string) {
	f.mu.Lock()
	f.calls[op]++
	f.mu.Unlock()
}

func (f *fakeClient) GetResources(_ context.Context, _ string, _ int) ([]models.Resource, error) {
	f.record("GetResources")
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Resource, len(f.resources))
	copy(out, f.resources)
	return out, nil
}

func (f *fakeClient) GetResourceByID(_ context.Context, id string) (*models.Resource, error) {
	f.record("GetResourceByID")
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.resources {
		if f.resources[i].ID == id {
			res := f.resources[i]
			return &res, nil
		}
	}
	return nil, nil
}

func (f *fakeClient) GetOrchTrace(_ context.Context, circuitID, resourceID string) *models.OrchTrace {
	f.record("GetOrchTrace")
	return f.traces[circuitID+":"+resourceID]
}

func (f *fakeClient) Close(context.Context) error {
	f.closed = true
	return nil
}

func sampleResource(id, circuitID string, created time.Time) models.Resource {
	return models.Resource{
		ID:        id,
		Label:     "LBL-" + id,
		CircuitID: circuitID,
		CreatedAt: created,
		OrchState: "ACTIVATED",
	}
}

func sampleTrace(circuitID, resourceID string) models.OrchTrace {
	return models.OrchTrace{
		CircuitID:  circuitID,
		ResourceID: resourceID,
		Timestamp:  baseTime,
		TraceData: []models.TraceStep{
			{Error: strPtr(""), Process: "validate"},
			{Error: strPtr("X"), Process: "activate"},
			{Error: nil},
			{Error: strPtr("Y"), Process: "configure"},
		},
	}
}

// implementations builds each Repository over the same data set.
func implementations(t *testing.T) map[string]Repository {
	t.Helper()

	res := sampleResource("r1", "CID-001", baseTime)
	trace := sampleTrace("CID-001", "r1")

	mem := NewMemoryRepository()
	mem.AddResource(res)
	mem.AddOrchTrace(trace)

	client := newFakeClient()
	client.resources = []models.Resource{res}
	client.traces["CID-001:r1"] = &trace

	cachedMem := NewMemoryRepository()
	cachedMem.AddResource(res)
	cachedMem.AddOrchTrace(trace)

	return map[string]Repository{
		"memory": mem,
		"http":   NewHTTPRepository(client),
		"cached": NewCachedRepository(cachedMem, time.Minute),
	}
}

func TestGetResourceByID_NotFoundIsNil(t *testing.T) {
	for name, repo := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			res, err := repo.GetResourceByID(context.Background(), "does-not-exist")
			if err != nil {
				t.Errorf("expected nil error, got %v", err)
			}
			if res != nil {
				t.Errorf("expected nil resource, got %+v", res)
			}
		})
	}
}

func TestGetErrorsForResource(t *testing.T) {
	for name, repo := range implementations(t) {
		t.Run(name, func(t *testing.T) {
			steps := repo.GetErrorsForResource(context.Background(), "r1")
			if len(steps) != 2 {
				t.Fatalf("expected 2 error steps, got %d", len(steps))
			}
			if steps[0].ErrorMessage() != "X" || steps[1].ErrorMessage() != "Y" {
				t.Errorf("unexpected steps: %q, %q", steps[0].ErrorMessage(), steps[1].ErrorMessage())
			}

			missing := repo.GetErrorsForResource(context.Background(), "nope")
			if missing == nil || len(missing) != 0 {
				t.Errorf("expected empty non-nil slice, got %#v", missing)
			}
		})
	}
}

func TestGetErrorsForResource_LabelFallback(t *testing.T) {
	mem := NewMemoryRepository()
	res := sampleResource("r2", "", baseTime)
	mem.AddResource(res)
	mem.AddOrchTrace(sampleTrace(res.Label, "r2"))

	if steps := mem.GetErrorsForResource(context.Background(), "r2"); len(steps) != 2 {
		t.Errorf("expected label to be used as correlation key, got %d steps", len(steps))
	}
}

func TestGetErrorsForResource_NoCorrelationKey(t *testing.T) {
	mem := NewMemoryRepository()
	mem.AddResource(models.Resource{ID: "r3"})

	if steps := mem.GetErrorsForResource(context.Background(), "r3"); len(steps) != 0 {
		t.Errorf("expected no steps, got %d", len(steps))
	}
}

func TestHTTPRepository_UpstreamErrorAbsorbedByErrorsChain(t *testing.T) {
	client := newFakeClient()
	client.err = &orchestration.UpstreamError{Op: "get_resource", StatusCode: 502}
	repo := NewHTTPRepository(client)

	if steps := repo.GetErrorsForResource(context.Background(), "r1"); len(steps) != 0 {
		t.Errorf("expected empty result, got %d steps", len(steps))
	}
}

func TestHardErrorsPropagate(t *testing.T) {
	client := newFakeClient()
	client.err = &orchestration.AuthenticationError{StatusCode: 401}

	for name, repo := range map[string]Repository{
		"http":   NewHTTPRepository(client),
		"cached": NewCachedRepository(NewHTTPRepository(client), time.Minute),
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := repo.GetResources(context.Background(), "ServiceMapper", nil); !errors.Is(err, orchestration.ErrAuthentication) {
				t.Errorf("GetResources() error = %v, want ErrAuthentication", err)
			}
			if _, err := repo.GetResourceByID(context.Background(), "r1"); !errors.Is(err, orchestration.ErrAuthentication) {
				t.Errorf("GetResourceByID() error = %v, want ErrAuthentication", err)
			}
		})
	}
}

func TestMemoryRepository_FiltersAndOrder(t *testing.T) {
	mem := NewMemoryRepository()
	mem.AddResource(sampleResource("r3", "CID-3", baseTime))
	mem.AddResource(sampleResource("r1", "CID-1", baseTime))
	failed := sampleResource("r2", "CID-2", baseTime)
	failed.OrchState = "FAILED"
	mem.AddResource(failed)

	all, _ := mem.GetResources(context.Background(), "any", nil)
	if len(all) != 3 || all[0].ID != "r3" || all[1].ID != "r1" || all[2].ID != "r2" {
		t.Errorf("expected insertion order r3,r1,r2, got %+v", all)
	}

	tests := []struct {
		name    string
		filters map[string]string
		want    []string
	}{
		{"by state", map[string]string{"orch_state": "ACTIVATED"}, []string{"r3", "r1"}},
		{"by circuit", map[string]string{"circuit_id": "CID-2"}, []string{"r2"}},
		{"two fields", map[string]string{"orch_state": "ACTIVATED", "id": "r1"}, []string{"r1"}},
		{"unknown field", map[string]string{"color": "blue"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := mem.GetResources(context.Background(), "any", tt.filters)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d resources, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if got[i].ID != tt.want[i] {
					t.Errorf("got[%d] = %s, want %s", i, got[i].ID, tt.want[i])
				}
			}
		})
	}
}

func TestMemoryRepository_ReplaceAndClear(t *testing.T) {
	mem := NewMemoryRepository()
	mem.AddResource(sampleResource("r1", "CID-1", baseTime))
	mem.AddResource(sampleResource("r2", "CID-2", baseTime))
	updated := sampleResource("r1", "CID-1", baseTime)
	updated.OrchState = "TERMINATED"
	mem.AddResource(updated)

	all, _ := mem.GetResources(context.Background(), "any", nil)
	if len(all) != 2 || all[0].OrchState != "TERMINATED" {
		t.Errorf("expected in-place replacement, got %+v", all)
	}

	mem.Clear()
	all, _ = mem.GetResources(context.Background(), "any", nil)
	if len(all) != 0 {
		t.Errorf("expected empty after Clear, got %d", len(all))
	}
	if mem.GetOrchTrace(context.Background(), "CID-1", "r1") != nil {
		t.Error("expected traces cleared")
	}
}

func TestSearchResourcesByDate(t *testing.T) {
	resources := []models.Resource{
		sampleResource("old", "C1", baseTime.Add(-5*time.Hour)),
		sampleResource("start", "C2", baseTime.Add(-3*time.Hour)),
		sampleResource("mid", "C3", baseTime.Add(-1*time.Hour)),
		sampleResource("future", "C4", baseTime.Add(time.Hour)),
	}

	mem := NewMemoryRepository()
	mem.now = func() time.Time { return baseTime }
	client := newFakeClient()
	client.resources = resources
	httpRepo := NewHTTPRepository(client)
	httpRepo.now = func() time.Time { return baseTime }
	for _, r := range resources {
		mem.AddResource(r)
	}

	for name, repo := range map[string]Repository{"memory": mem, "http": httpRepo} {
		t.Run(name, func(t *testing.T) {
			start := baseTime.Add(-3 * time.Hour)

			got, err := repo.SearchResourcesByDate(context.Background(), "p", start, nil)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != 2 || got[0].ID != "start" || got[1].ID != "mid" {
				t.Errorf("open-ended search = %+v, want start,mid", got)
			}

			end := baseTime.Add(-2 * time.Hour)
			got, _ = repo.SearchResourcesByDate(context.Background(), "p", start, &end)
			if len(got) != 1 || got[0].ID != "start" {
				t.Errorf("bounded search = %+v, want start", got)
			}
		})
	}
}

func TestHTTPRepository_Close(t *testing.T) {
	client := newFakeClient()
	if err := NewHTTPRepository(client).Close(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !client.closed {
		t.Error("expected client to be closed")
	}
}
