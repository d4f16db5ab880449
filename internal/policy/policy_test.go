package policy

import (
	"context"
	"testing"

	"github.com/limiquantix/fleetsim/internal/domain"
	"github.com/limiquantix/fleetsim/internal/host"
	"github.com/limiquantix/fleetsim/internal/hostview"
)

type fakeHost struct {
	id    string
	model host.Model
}

func (h *fakeHost) ID() string                                       { return h.id }
func (h *fakeHost) State() host.State                                { return host.Up }
func (h *fakeHost) Model() host.Model                                { return h.model }
func (h *fakeHost) Meta() map[string]string                          { return nil }
func (h *fakeHost) CanFit(server *domain.Server) bool {
	return server.Flavor.CPUCount <= h.model.CPUCount && server.Flavor.MemoryMB <= h.model.MemorySize
}
func (h *fakeHost) Spawn(ctx context.Context, s *domain.Server) error { return nil }
func (h *fakeHost) AddListener(l host.Listener)                      {}
func (h *fakeHost) RemoveListener(l host.Listener)                   {}

func newView(id string, cpu int32, mem int64) *hostview.HostView {
	return hostview.New(&fakeHost{id: id, model: host.Model{CPUCount: cpu, MemorySize: mem}})
}

func testServer(cpu int32, mem int64) *domain.Server {
	return domain.NewServer(domain.NilID, domain.Flavor{CPUCount: cpu, MemoryMB: mem}, domain.NilID, "s", nil, nil)
}

func TestActiveServersPolicy_PrefersMostActive(t *testing.T) {
	a := newView("a", 8, 16384)
	b := newView("b", 8, 16384)
	b.Reserve(testServer(2, 1024))

	allocate, err := New(ActiveServers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	chosen := allocate([]*hostview.HostView{a, b}, testServer(1, 512))
	if chosen == nil || chosen.Host.ID() != "b" {
		t.Fatalf("expected host b (more active servers), got %+v", chosen)
	}
}

func TestActiveServersPolicy_TiesBrokenByHostID(t *testing.T) {
	a := newView("zzz", 8, 16384)
	b := newView("aaa", 8, 16384)

	allocate, _ := New(ActiveServers)
	chosen := allocate([]*hostview.HostView{a, b}, testServer(1, 512))
	if chosen == nil || chosen.Host.ID() != "aaa" {
		t.Fatalf("expected tie broken toward lexicographically first host ID, got %+v", chosen)
	}
}

func TestSpreadPolicy_PrefersLeastActive(t *testing.T) {
	a := newView("a", 8, 16384)
	b := newView("b", 8, 16384)
	a.Reserve(testServer(2, 1024))

	allocate, _ := New(Spread)
	chosen := allocate([]*hostview.HostView{a, b}, testServer(1, 512))
	if chosen == nil || chosen.Host.ID() != "b" {
		t.Fatalf("expected host b (fewer active servers), got %+v", chosen)
	}
}

func TestPackPolicy_PrefersLeastHeadroom(t *testing.T) {
	a := newView("a", 8, 16384)
	b := newView("b", 8, 16384)
	a.Reserve(testServer(2, 12000))

	allocate, _ := New(Pack)
	chosen := allocate([]*hostview.HostView{a, b}, testServer(1, 512))
	if chosen == nil || chosen.Host.ID() != "a" {
		t.Fatalf("expected host a (least remaining memory), got %+v", chosen)
	}
}

func TestPolicy_NoFittingCandidate_ReturnsNil(t *testing.T) {
	a := newView("a", 2, 2048)
	allocate, _ := New(ActiveServers)
	chosen := allocate([]*hostview.HostView{a}, testServer(4, 1024))
	if chosen != nil {
		t.Fatalf("expected nil for an oversized request, got %+v", chosen)
	}
}

func TestNew_UnknownPolicy(t *testing.T) {
	if _, err := New("bogus"); err == nil {
		t.Fatal("expected error for unknown policy name")
	}
}
