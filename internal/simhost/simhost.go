// Package simhost provides a deterministic, clock-driven host.Host
// implementation for tests and the cmd/simulator demo. It stands in for a
// real hypervisor node: Spawn never fails unless told to, and a server
// "runs" for a fixed simulated duration before the host reports it
// TERMINATED via its listeners, mirroring how a real VM eventually exits
// on its own.
package simhost

import (
	"context"
	"sync"
	"time"

	"github.com/limiquantix/fleetsim/internal/clock"
	"github.com/limiquantix/fleetsim/internal/domain"
	"github.com/limiquantix/fleetsim/internal/host"
)

// Host is an in-memory, simulated compute node.
type Host struct {
	id    string
	model host.Model
	meta  map[string]string

	clk       clock.Clock
	tmr       clock.Timer
	runtime   time.Duration
	failSpawn bool

	mu        sync.Mutex
	state     host.State
	listeners []host.Listener
}

// New creates a simulated host identified by id, with the given static
// capacity. runtime is how long a spawned server runs before this host
// reports it TERMINATED; if zero, servers run until explicitly told to
// stop via Terminate.
func New(id string, model host.Model, clk clock.Clock, tmr clock.Timer, runtime time.Duration) *Host {
	return &Host{
		id:      id,
		model:   model,
		meta:    make(map[string]string),
		clk:     clk,
		tmr:     tmr,
		runtime: runtime,
		state:   host.Up,
	}
}

// ID implements host.Host.
func (h *Host) ID() string { return h.id }

// State implements host.Host.
func (h *Host) State() host.State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Model implements host.Host.
func (h *Host) Model() host.Model { return h.model }

// Meta implements host.Host.
func (h *Host) Meta() map[string]string { return h.meta }

// CanFit implements host.Host: a policy-free static capacity check.
func (h *Host) CanFit(server *domain.Server) bool {
	return server.Flavor.CPUCount <= h.model.CPUCount && server.Flavor.MemoryMB <= h.model.MemorySize
}

// SetFailSpawn makes every future Spawn call return an error immediately,
// simulating a host that has stopped accepting new placements without
// having gone fully Down.
func (h *Host) SetFailSpawn(fail bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failSpawn = fail
}

// Spawn implements host.Host. On success it arms a one-shot timer that
// fires after h.runtime and reports the server TERMINATED; on failure it
// returns an error synchronously and emits no further events for server.
func (h *Host) Spawn(_ context.Context, server *domain.Server) error {
	h.mu.Lock()
	fail := h.failSpawn
	down := h.state == host.Down
	h.mu.Unlock()

	if down {
		return errDown
	}
	if fail {
		return errSpawnRejected
	}

	if h.runtime <= 0 {
		return nil
	}
	key := "spawn:" + server.ID.String()
	h.tmr.StartSingleTimer(key, h.runtime, func() {
		h.notifyServerState(server, domain.ServerTerminated)
	})
	return nil
}

// Terminate immediately reports server TERMINATED, regardless of any
// still-pending runtime timer.
func (h *Host) Terminate(server *domain.Server) {
	h.notifyServerState(server, domain.ServerTerminated)
}

// Fail reports server ERROR, simulating a spawn that was accepted but
// later failed asynchronously on the host.
func (h *Host) Fail(server *domain.Server) {
	h.notifyServerState(server, domain.ServerError)
}

// SetState transitions the host between Up and Down, notifying listeners.
func (h *Host) SetState(newState host.State) {
	h.mu.Lock()
	if h.state == newState {
		h.mu.Unlock()
		return
	}
	h.state = newState
	listeners := append([]host.Listener(nil), h.listeners...)
	h.mu.Unlock()

	for _, l := range listeners {
		l.OnHostStateChanged(h, newState)
	}
}

// AddListener implements host.Host.
func (h *Host) AddListener(l host.Listener) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, existing := range h.listeners {
		if existing == l {
			return
		}
	}
	h.listeners = append(h.listeners, l)
}

// RemoveListener implements host.Host.
func (h *Host) RemoveListener(l host.Listener) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, existing := range h.listeners {
		if existing == l {
			h.listeners = append(h.listeners[:i], h.listeners[i+1:]...)
			return
		}
	}
}

func (h *Host) notifyServerState(server *domain.Server, newState domain.ServerState) {
	h.mu.Lock()
	listeners := append([]host.Listener(nil), h.listeners...)
	h.mu.Unlock()

	for _, l := range listeners {
		l.OnServerStateChanged(h, server, newState)
	}
}
