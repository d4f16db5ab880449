package scheduler

import (
	"go.uber.org/zap"

	"github.com/limiquantix/fleetsim/internal/domain"
	"github.com/limiquantix/fleetsim/internal/host"
)

// hostListener is the service's host.Listener implementation. It is the
// only place a host's asynchronous state changes feed back into the
// scheduler's counters and host-view bookkeeping.
type hostListener struct {
	svc *Service
}

// OnHostStateChanged updates the availableHosts set when a host transitions
// between Up and Down. Placements already in flight on a host that goes
// Down are not cancelled; they are simply left to resolve via whatever
// terminal event the host eventually emits for the affected servers.
func (l *hostListener) OnHostStateChanged(h host.Host, newState host.State) {
	s := l.svc
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	view, ok := s.hostToView[h.ID()]
	if !ok {
		return
	}

	switch newState {
	case host.Up:
		s.availableHosts[h.ID()] = view
		s.logger.Info("host recovered", zap.String("host_id", h.ID()))
		s.requestCycleLocked()
	case host.Down:
		delete(s.availableHosts, h.ID())
		s.logger.Warn("host down", zap.String("host_id", h.ID()))
	}
	s.publishMetricsLocked()
}

// OnServerStateChanged handles a terminal transition the host reports for
// one of its servers. It guards against stale events from a host the
// server is no longer placed on, and resolves the counter-accounting
// ambiguity around a
// server that fails before it ever reaches RUNNING: wasRunning (membership
// in activeServers) is checked before the transition is applied, so that
// running/capacity is released only for a server that actually held it,
// while finished is always
// incremented exactly once per terminal transition so submitted remains
// equal to queued+running+finished+unscheduled.
func (l *hostListener) OnServerStateChanged(h host.Host, server *domain.Server, newState domain.ServerState) {
	s := l.svc
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if server.HostID != h.ID() {
		// Stale event: the server has since been placed elsewhere (or
		// never placed on h at all). Ignore it.
		s.logger.Debug("dropping stale host event",
			zap.String("host_id", h.ID()),
			zap.Stringer("server_id", server.ID),
		)
		return
	}
	if !newState.IsTerminal() {
		// Only terminal transitions affect scheduler bookkeeping; any
		// other state change the host reports is informational only.
		if err := server.TransitionTo(newState); err != nil {
			s.logger.Warn("non-terminal transition rejected", zap.Error(err))
		}
		return
	}

	_, wasRunning := s.activeServers[server.ID]
	if err := server.TransitionTo(newState); err != nil && !wasRunning {
		// Already terminal and holding no capacity: nothing left to
		// reconcile. A server deleted while running is still in
		// activeServers and falls through to release its capacity.
		return
	}

	if wasRunning {
		s.running--
		if view, ok := s.hostToView[h.ID()]; ok {
			view.Release(server)
		}
		delete(s.activeServers, server.ID)
	}
	s.finished++
	s.publishMetricsLocked()
	// Releasing capacity (or simply freeing the queue head's attention) may
	// let backlogged requests place; make sure a dispatch pass is armed.
	s.requestCycleLocked()
}
