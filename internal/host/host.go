// Package host defines the contract the scheduler consumes for a physical
// compute node. It is an external-collaborator interface: the scheduler
// never inspects hypervisor internals, slice accounting or power modelling
// behind it, and this package never imports the scheduler package — the
// scheduler depends on Host, not the other way around.
package host

import (
	"context"

	"github.com/limiquantix/fleetsim/internal/domain"
)

// State is the availability of a host as seen by the scheduler.
type State string

const (
	Up   State = "UP"
	Down State = "DOWN"
)

// Model is the static capacity of a host: it never changes after
// registration.
type Model struct {
	CPUCount   int32
	MemorySize int64 // MB
}

// Host is the contract a compute node must satisfy to be scheduled onto.
// Implementations are shared by reference between the scheduler and
// whatever owns the host's lifetime; the scheduler never destroys a host.
type Host interface {
	// ID uniquely identifies this host among all hosts known to a service.
	ID() string

	// State returns the host's current availability.
	State() State

	// Model returns the host's static capacity.
	Model() Model

	// Meta returns the host's opaque metadata map.
	Meta() map[string]string

	// CanFit reports whether server could fit on this host given its
	// static capacity alone — a policy-free capacity check independent of
	// what else may currently be assigned.
	CanFit(server *domain.Server) bool

	// Spawn asynchronously places server on this host. Its completion is
	// not observed through its return value in production use — a
	// successful spawn is reported via an OnServerStateChanged(RUNNING)
	// event to every registered listener — but the returned error lets
	// callers observe synchronous rejection (e.g. a host that is Down).
	Spawn(ctx context.Context, server *domain.Server) error

	// AddListener registers l to receive this host's state and server
	// events. Adding the same listener twice must not duplicate delivery.
	AddListener(l Listener)

	// RemoveListener unregisters l. A no-op if l was never registered.
	RemoveListener(l Listener)
}

// Listener reacts to a host's asynchronous events. Go has no method
// overloading, so the two "onStateChanged" overloads other runtimes would
// collapse into one method are named explicitly here.
type Listener interface {
	// OnHostStateChanged is invoked when host transitions between Up and
	// Down.
	OnHostStateChanged(h Host, newState State)

	// OnServerStateChanged is invoked when a server running on host
	// changes state (e.g. RUNNING -> TERMINATED/ERROR).
	OnServerStateChanged(h Host, server *domain.Server, newState domain.ServerState)
}
