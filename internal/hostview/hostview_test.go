package hostview

import (
	"context"
	"testing"

	"github.com/limiquantix/fleetsim/internal/domain"
	"github.com/limiquantix/fleetsim/internal/host"
)

type fakeHost struct {
	id    string
	model host.Model
}

func (h *fakeHost) ID() string                                       { return h.id }
func (h *fakeHost) State() host.State                                { return host.Up }
func (h *fakeHost) Model() host.Model                                { return h.model }
func (h *fakeHost) Meta() map[string]string                          { return nil }
func (h *fakeHost) CanFit(server *domain.Server) bool                { return true }
func (h *fakeHost) Spawn(ctx context.Context, s *domain.Server) error { return nil }
func (h *fakeHost) AddListener(l host.Listener)                      {}
func (h *fakeHost) RemoveListener(l host.Listener)                   {}

func testServer(cpu int32, mem int64) *domain.Server {
	return domain.NewServer(domain.NilID, domain.Flavor{CPUCount: cpu, MemoryMB: mem}, domain.NilID, "s", nil, nil)
}

func TestHostView_ReserveRelease(t *testing.T) {
	h := &fakeHost{id: "h1", model: host.Model{CPUCount: 8, MemorySize: 16384}}
	v := New(h)

	if v.AvailableMemory != 16384 {
		t.Fatalf("expected AvailableMemory=16384, got %d", v.AvailableMemory)
	}

	s := testServer(2, 4096)
	v.Reserve(s)

	if v.NumberOfActiveServers != 1 {
		t.Fatalf("expected 1 active server, got %d", v.NumberOfActiveServers)
	}
	if v.ProvisionedCores != 2 {
		t.Fatalf("expected 2 provisioned cores, got %d", v.ProvisionedCores)
	}
	if v.AvailableMemory != 12288 {
		t.Fatalf("expected 12288 available memory, got %d", v.AvailableMemory)
	}

	v.Release(s)
	if v.NumberOfActiveServers != 0 || v.ProvisionedCores != 0 || v.AvailableMemory != 16384 {
		t.Fatalf("expected view restored to initial state, got %+v", v)
	}
}

func TestHostView_CanFit(t *testing.T) {
	h := &fakeHost{id: "h1", model: host.Model{CPUCount: 4, MemorySize: 8192}}
	v := New(h)

	if !v.CanFit(testServer(4, 8192)) {
		t.Fatal("expected exact-fit server to fit")
	}
	if v.CanFit(testServer(5, 1024)) {
		t.Fatal("expected server exceeding CPU capacity to not fit")
	}
	if v.CanFit(testServer(1, 9000)) {
		t.Fatal("expected server exceeding memory capacity to not fit")
	}

	v.Reserve(testServer(3, 4096))
	if v.CanFit(testServer(2, 1024)) {
		t.Fatal("expected server to not fit after reservation exhausted cores")
	}
}
