// Package scheduler implements the compute scheduling core: the service
// that owns hosts, host views, the pending-request queue, the registries,
// and the quantum-aligned dispatch loop.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/limiquantix/fleetsim/internal/clock"
	"github.com/limiquantix/fleetsim/internal/domain"
	"github.com/limiquantix/fleetsim/internal/events"
	"github.com/limiquantix/fleetsim/internal/host"
	"github.com/limiquantix/fleetsim/internal/hostview"
	"github.com/limiquantix/fleetsim/internal/policy"
)

// dispatchTimerKey is the single timer key the quantum timer uses: there is
// at most one pending dispatch pass at a time.
const dispatchTimerKey = "dispatch"

// idSeed seeds every Service's IDGenerator, so that two services driven by
// the same clock mint the same identifier stream.
const idSeed int64 = 1

// Service is the scheduler core. All of its mutable state — the queue, the
// registries, the host views, and the aggregate counters — is owned
// exclusively by Service and protected by one mutex, modelling a single
// logical executor: spawn tasks resume on that same executor (here, they
// take the same mutex) rather than running lock-free.
type Service struct {
	clock    clock.Clock
	timer    clock.Timer
	allocate policy.AllocationPolicy
	quantum  time.Duration
	logger   *zap.Logger
	bus      *events.Bus
	idGen    *domain.IDGenerator
	listener *hostListener

	mu             sync.Mutex
	closed         bool
	hosts          map[string]host.Host
	hostToView     map[string]*hostview.HostView
	availableHosts map[string]*hostview.HostView
	activeServers   map[domain.ID]*domain.Server
	reg             *registry
	q               *queue
	pendingByServer map[domain.ID]*Request

	maxCores  int32
	maxMemory int64

	submitted   int64
	queued      int64
	running     int64
	finished    int64
	unscheduled int64
}

// NewService creates a Service. clk and tmr are the external clock/timer
// collaborators; allocate is the pluggable allocation policy; quantumMs is
// the scheduling quantum in milliseconds.
func NewService(clk clock.Clock, tmr clock.Timer, allocate policy.AllocationPolicy, quantumMs int64, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		clock:          clk,
		timer:          tmr,
		allocate:       allocate,
		quantum:        time.Duration(quantumMs) * time.Millisecond,
		logger:         logger.With(zap.String("component", "scheduler")),
		bus:            events.NewBus(),
		hosts:          make(map[string]host.Host),
		hostToView:     make(map[string]*hostview.HostView),
		availableHosts: make(map[string]*hostview.HostView),
		activeServers:   make(map[domain.ID]*domain.Server),
		reg:             newRegistry(),
		q:               newQueue(),
		pendingByServer: make(map[domain.ID]*Request),
	}
	s.idGen = domain.NewIDGenerator(idSeed, clk.NowMillis)
	s.listener = &hostListener{svc: s}
	return s
}

// AddHost registers h with the service. Idempotent: adding an already
// registered host (by ID) is equivalent to adding it once.
func (s *Service) AddHost(h host.Host) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if _, exists := s.hosts[h.ID()]; exists {
		return
	}

	s.hosts[h.ID()] = h
	view := hostview.New(h)
	s.hostToView[h.ID()] = view
	if h.State() == host.Up {
		s.availableHosts[h.ID()] = view
	}
	h.AddListener(s.listener)

	model := h.Model()
	if model.CPUCount > s.maxCores {
		s.maxCores = model.CPUCount
	}
	if model.MemorySize > s.maxMemory {
		s.maxMemory = model.MemorySize
	}

	s.logger.Info("host added", zap.String("host_id", h.ID()), zap.String("state", string(h.State())))
	s.publishMetricsLocked()
	s.requestCycleLocked()
}

// RemoveHost unregisters h. In-flight placements on h are left to resolve
// via whatever events h still emits; the service simply stops considering
// h for new placements.
func (s *Service) RemoveHost(h host.Host) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.hosts[h.ID()]; !exists {
		return
	}
	delete(s.hosts, h.ID())
	delete(s.hostToView, h.ID())
	delete(s.availableHosts, h.ID())
	h.RemoveListener(s.listener)
	s.logger.Info("host removed", zap.String("host_id", h.ID()))
	s.publishMetricsLocked()
}

// Hosts returns every currently registered host.
func (s *Service) Hosts() []host.Host {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]host.Host, 0, len(s.hosts))
	for _, h := range s.hosts {
		out = append(out, h)
	}
	return out
}

// HostCount returns the number of currently registered hosts.
func (s *Service) HostCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.hosts)
}

// Events subscribes to the MetricsAvailable stream. Call the returned
// cancel function to unsubscribe.
func (s *Service) Events() (<-chan events.MetricsAvailable, func()) {
	return s.bus.Subscribe()
}

// Close cancels the service's timer and abandons any in-flight spawn
// tasks: their eventual completion (success or failure) is ignored once
// closed.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.timer.Stop()
	s.bus.Close()
}

// NewClient returns a new client facade bound to this service.
func (s *Service) NewClient() *Client {
	return &Client{svc: s}
}

// requestCycleLocked arms the quantum timer if the queue is non-empty and
// no pass is currently pending, at the next quantum boundary. Must be
// called with s.mu held.
func (s *Service) requestCycleLocked() {
	if s.closed {
		return
	}
	if s.q.len() == 0 {
		return
	}
	if s.timer.IsActive(dispatchTimerKey) {
		return
	}
	now := s.clock.NowMillis()
	delay := s.quantum - time.Duration(now%int64(s.quantum/time.Millisecond))*time.Millisecond
	s.timer.StartSingleTimer(dispatchTimerKey, delay, s.dispatchPass)
}

// dispatchPass is the core dispatch loop, invoked by the quantum timer. It
// drains the queue until it empties or the fleet is merely saturated
// (transient unschedulability), in which case it stalls leaving the head
// request in place for the next cycle. A request whose server was deleted
// while still queued was already cancelled by DeleteServer, so it is
// dropped here like any other cancelled request without ever reserving
// capacity or calling Spawn on it.
func (s *Service) dispatchPass() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	for {
		req := s.q.peek()
		if req == nil {
			break
		}
		if req.Cancelled() {
			s.q.pop()
			s.queued--
			delete(s.pendingByServer, req.Server.ID)
			continue
		}

		server := req.Server
		candidates := s.availableHostViewsLocked()
		view := s.allocate(candidates, server)

		if view == nil || !view.Host.CanFit(server) {
			if server.Flavor.MemoryMB > s.maxMemory || server.Flavor.CPUCount > s.maxCores {
				// Structurally unschedulable: no host the fleet has ever
				// seen could satisfy this server. Drop it with ERROR.
				s.q.pop()
				s.queued--
				s.unscheduled++
				delete(s.pendingByServer, server.ID)
				if err := server.TransitionTo(domain.ServerError); err != nil {
					s.logger.Warn("server already terminal while marking unschedulable", zap.Error(err))
				}
				s.logger.Info("server structurally unschedulable",
					zap.Stringer("server_id", server.ID),
					zap.Int32("requested_cpu", server.Flavor.CPUCount),
					zap.Int64("requested_memory_mb", server.Flavor.MemoryMB),
				)
				s.publishMetricsLocked()
				continue
			}
			// Transient saturation: stop the pass, leave the request at
			// the head. A capacity-releasing event retriggers us, but we
			// also keep polling every quantum in case that event already
			// happened without anything observing it.
			s.requestCycleLocked()
			break
		}

		// Placement. Poll the request, speculatively reserve capacity,
		// and hand the spawn off to an async task.
		s.q.pop()
		s.queued--
		delete(s.pendingByServer, server.ID)
		view.Reserve(server)
		server.HostID = view.Host.ID()

		go s.placeAsync(view, server)
	}
}

// placeAsync runs the asynchronous placement task. It is launched without
// holding s.mu so that host.Spawn — which may take real time in a
// production Host implementation — does not block the dispatch loop from
// continuing to the next queue entry.
func (s *Service) placeAsync(view *hostview.HostView, server *domain.Server) {
	err := view.Host.Spawn(context.Background(), server)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if err != nil {
		// Spawn failed: reverse the speculative reservation and log. The
		// server stays PROVISIONING; the host is expected to emit a
		// terminal ERROR event for it, handled in listener.go.
		view.Release(server)
		s.logger.Warn("host spawn failed",
			zap.String("host_id", view.Host.ID()),
			zap.Stringer("server_id", server.ID),
			zap.Error(err),
		)
		s.publishMetricsLocked()
		return
	}

	if err := server.TransitionTo(domain.ServerRunning); err != nil {
		// The server reached a terminal state (e.g. was deleted) while
		// Spawn was in flight. The reservation taken in dispatchPass was
		// never accounted for anywhere else, so it must be released here
		// or the host's capacity leaks permanently.
		view.Release(server)
		s.logger.Warn("server terminal at spawn completion, releasing reservation",
			zap.String("host_id", view.Host.ID()),
			zap.Stringer("server_id", server.ID),
			zap.Error(err),
		)
		s.publishMetricsLocked()
		return
	}
	s.activeServers[server.ID] = server
	s.running++
	s.publishMetricsLocked()
}

// availableHostViewsLocked snapshots the current candidate set. Must be
// called with s.mu held.
func (s *Service) availableHostViewsLocked() []*hostview.HostView {
	out := make([]*hostview.HostView, 0, len(s.availableHosts))
	for _, v := range s.availableHosts {
		out = append(out, v)
	}
	return out
}

// publishMetricsLocked emits a MetricsAvailable snapshot. Must be called
// with s.mu held; the bus itself is safe for concurrent publish, but the
// snapshot must be taken atomically with the state it reflects.
func (s *Service) publishMetricsLocked() {
	s.bus.Publish(events.MetricsAvailable{
		HostCount:      len(s.hosts),
		AvailableCount: len(s.availableHosts),
		Submitted:      s.submitted,
		Running:        s.running,
		Finished:       s.finished,
		Queued:         s.queued,
		Unscheduled:    s.unscheduled,
	})
}
