// Package policy implements the pluggable allocation-policy contract: a
// pure, side-effect-free selector over a candidate set of
// hostview.HostView values for one pending server. It is ported from the
// teacher's internal/scheduler.Scheduler.scoreNode, which re-queried a
// VMRepository per candidate on every call; because hostview.HostView
// already carries live counters, the selectors here read fields instead
// of issuing queries.
package policy

import (
	"fmt"
	"sort"

	"github.com/limiquantix/fleetsim/internal/domain"
	"github.com/limiquantix/fleetsim/internal/hostview"
)

// AllocationPolicy selects one host view from candidates for server, or nil
// if none is suitable. Implementations must be pure functions of their
// inputs: no I/O, no mutation of candidates or server.
type AllocationPolicy func(candidates []*hostview.HostView, server *domain.Server) *hostview.HostView

// Name identifies a built-in policy for New.
type Name string

const (
	// ActiveServers is the required reference policy: prefer the fitting
	// host with the most active servers, breaking ties by host ID.
	ActiveServers Name = "active-servers"

	// Spread prefers the fitting host with the fewest active servers,
	// spreading load for higher availability.
	Spread Name = "spread"

	// Pack prefers the fitting host with the least remaining available
	// memory, consolidating load for efficiency.
	Pack Name = "pack"
)

// New builds the named policy. Unknown names are a caller error, not a
// scheduling error, so it is checked once, when the policy is built.
func New(name Name) (AllocationPolicy, error) {
	switch name {
	case ActiveServers, "":
		return activeServersPolicy, nil
	case Spread:
		return spreadPolicy, nil
	case Pack:
		return packPolicy, nil
	default:
		return nil, fmt.Errorf("policy: unknown allocation policy %q", name)
	}
}

// fittingCandidates narrows candidates down to those with room for server,
// the "hard constraint" pass every policy runs before scoring. Candidates
// are assumed to already be limited to available (Up) hosts — that
// filtering is the scheduler's job (it maintains availableHosts), not the
// policy's.
func fittingCandidates(candidates []*hostview.HostView, server *domain.Server) []*hostview.HostView {
	var fit []*hostview.HostView
	for _, v := range candidates {
		if v.CanFit(server) && v.Host.CanFit(server) {
			fit = append(fit, v)
		}
	}
	return fit
}

// activeServersPolicy implements the required reference policy.
func activeServersPolicy(candidates []*hostview.HostView, server *domain.Server) *hostview.HostView {
	fit := fittingCandidates(candidates, server)
	if len(fit) == 0 {
		return nil
	}
	sort.Slice(fit, func(i, j int) bool {
		if fit[i].NumberOfActiveServers != fit[j].NumberOfActiveServers {
			return fit[i].NumberOfActiveServers > fit[j].NumberOfActiveServers
		}
		return fit[i].Host.ID() < fit[j].Host.ID()
	})
	return fit[0]
}

// spreadPolicy prefers the least-loaded fitting host, ties by host ID.
func spreadPolicy(candidates []*hostview.HostView, server *domain.Server) *hostview.HostView {
	fit := fittingCandidates(candidates, server)
	if len(fit) == 0 {
		return nil
	}
	sort.Slice(fit, func(i, j int) bool {
		if fit[i].NumberOfActiveServers != fit[j].NumberOfActiveServers {
			return fit[i].NumberOfActiveServers < fit[j].NumberOfActiveServers
		}
		return fit[i].Host.ID() < fit[j].Host.ID()
	})
	return fit[0]
}

// packPolicy prefers the fitting host with the least remaining memory
// headroom, ties by host ID, consolidating VMs onto fewer hosts.
func packPolicy(candidates []*hostview.HostView, server *domain.Server) *hostview.HostView {
	fit := fittingCandidates(candidates, server)
	if len(fit) == 0 {
		return nil
	}
	sort.Slice(fit, func(i, j int) bool {
		if fit[i].AvailableMemory != fit[j].AvailableMemory {
			return fit[i].AvailableMemory < fit[j].AvailableMemory
		}
		return fit[i].Host.ID() < fit[j].Host.ID()
	})
	return fit[0]
}
