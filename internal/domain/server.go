package domain

import "fmt"

// ServerState is the lifecycle state of a server (VM). The state machine is
// PROVISIONING -> RUNNING -> {TERMINATED, ERROR}, with DELETED reachable
// from any state via explicit deletion. TERMINATED, ERROR and DELETED are
// terminal: once reached, no further transition is observable.
type ServerState string

const (
	ServerProvisioning ServerState = "PROVISIONING"
	ServerRunning      ServerState = "RUNNING"
	ServerTerminated   ServerState = "TERMINATED"
	ServerError        ServerState = "ERROR"
	ServerDeleted      ServerState = "DELETED"
)

// IsTerminal reports whether s is one of the states from which no further
// transition is observable.
func (s ServerState) IsTerminal() bool {
	return s == ServerTerminated || s == ServerError || s == ServerDeleted
}

// Server is a virtual machine: an identity bound to a flavor and image, a
// mutable label/metadata set, a lifecycle state, and — once placed — the ID
// of the host it runs on. Server never references a host.Host directly, so
// that the domain package stays independent of the host contract; the
// scheduler keeps the HostID -> host.Host mapping.
//
// Flavor is embedded by value (flavors are immutable after creation) so
// that capacity checks and allocation policies can read
// server.Flavor.CPUCount / server.Flavor.MemoryMB directly, without a
// registry lookup.
type Server struct {
	ID      ID
	Name    string
	Flavor  Flavor
	ImageID ID

	Labels   map[string]string
	Metadata map[string]any

	State ServerState
	// HostID is the ID of the host this server is placed on (or was last
	// placed on, for a spawn attempt that failed before ever running).
	// It is a plain string, not a domain.ID, because hosts are an
	// external collaborator whose identifiers are not minted by this
	// package's IDGenerator.
	HostID string
}

// NewServer creates a server in the PROVISIONING state, with no host.
func NewServer(id ID, flavor Flavor, imageID ID, name string, labels map[string]string, metadata map[string]any) *Server {
	return &Server{
		ID:       id,
		Name:     name,
		Flavor:   flavor,
		ImageID:  imageID,
		Labels:   labels,
		Metadata: metadata,
		State:    ServerProvisioning,
	}
}

// TransitionTo moves the server to newState. It errors once the server has
// reached a terminal state, enforcing terminal-state immutability for every
// host- or scheduler-driven transition in exactly one place.
func (s *Server) TransitionTo(newState ServerState) error {
	if s.State.IsTerminal() {
		return fmt.Errorf("server %s is terminal (%s): %w", s.ID, s.State, ErrInvalidArgument)
	}
	s.State = newState
	return nil
}

// MarkDeleted moves the server straight to DELETED regardless of its
// current state. It models the explicit client-initiated delete, which is
// allowed even on an already-terminal (TERMINATED/ERROR) server — unlike
// TransitionTo, it is not itself a further "observable transition" the
// server underwent, it is the registry's bookkeeping of removal.
func (s *Server) MarkDeleted() {
	s.State = ServerDeleted
}
