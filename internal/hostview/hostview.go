// Package hostview implements the scheduler-side shadow of a host. It is a
// separate package from internal/scheduler so that internal/policy — which
// selects a HostView without ever importing the scheduler — can depend on
// it without a cycle.
package hostview

import (
	"github.com/limiquantix/fleetsim/internal/domain"
	"github.com/limiquantix/fleetsim/internal/host"
)

// HostView mirrors one registered host with the live capacity counters the
// scheduler needs to make placement decisions without querying the host
// itself on every dispatch pass. Only the scheduler's cooperative executor
// mutates a HostView's counters; every other reader treats it read-only.
type HostView struct {
	Host host.Host

	NumberOfActiveServers int
	ProvisionedCores      int32
	AvailableMemory       int64
}

// New constructs a HostView for a freshly registered host: no active
// servers, and available memory initialized to the host's full capacity.
func New(h host.Host) *HostView {
	return &HostView{
		Host:            h,
		AvailableMemory: h.Model().MemorySize,
	}
}

// Reserve speculatively accounts for server before the host's asynchronous
// spawn is awaited, so that later requests in the same dispatch pass see
// up-to-date capacity and do not over-commit.
func (v *HostView) Reserve(server *domain.Server) {
	v.NumberOfActiveServers++
	v.ProvisionedCores += server.Flavor.CPUCount
	v.AvailableMemory -= server.Flavor.MemoryMB
}

// Release reverses a prior Reserve, either because the spawn failed or
// because the server has terminated and its capacity is being returned to
// the pool.
func (v *HostView) Release(server *domain.Server) {
	v.NumberOfActiveServers--
	v.ProvisionedCores -= server.Flavor.CPUCount
	v.AvailableMemory += server.Flavor.MemoryMB
}

// CanFit reports whether server fits in this view's remaining capacity. It
// mirrors host.Host.CanFit but reasons from the scheduler's live
// speculative counters rather than the host's own (possibly stale)
// accounting — callers should check both.
func (v *HostView) CanFit(server *domain.Server) bool {
	if server.Flavor.MemoryMB > v.AvailableMemory {
		return false
	}
	if v.ProvisionedCores+server.Flavor.CPUCount > v.Host.Model().CPUCount {
		return false
	}
	return true
}
