package domain

import "testing"

func testFlavor() Flavor {
	return Flavor{ID: NilID, Name: "small", CPUCount: 2, MemoryMB: 4096}
}

func TestServer_TransitionTo_Terminal(t *testing.T) {
	s := NewServer(NilID, testFlavor(), NilID, "s1", nil, nil)

	if err := s.TransitionTo(ServerRunning); err != nil {
		t.Fatalf("unexpected error transitioning to RUNNING: %v", err)
	}
	if s.State != ServerRunning {
		t.Fatalf("expected RUNNING, got %s", s.State)
	}

	if err := s.TransitionTo(ServerTerminated); err != nil {
		t.Fatalf("unexpected error transitioning to TERMINATED: %v", err)
	}
	if s.State != ServerTerminated {
		t.Fatalf("expected TERMINATED, got %s", s.State)
	}

	if err := s.TransitionTo(ServerRunning); err == nil {
		t.Fatal("expected error transitioning out of a terminal state")
	}
	if s.State != ServerTerminated {
		t.Fatalf("terminal server state mutated despite rejected transition: %s", s.State)
	}
}

func TestServer_MarkDeleted_FromTerminal(t *testing.T) {
	s := NewServer(NilID, testFlavor(), NilID, "s1", nil, nil)
	if err := s.TransitionTo(ServerError); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s.MarkDeleted()
	if s.State != ServerDeleted {
		t.Fatalf("expected DELETED, got %s", s.State)
	}
}

func TestServerState_IsTerminal(t *testing.T) {
	terminal := []ServerState{ServerTerminated, ServerError, ServerDeleted}
	for _, st := range terminal {
		if !st.IsTerminal() {
			t.Errorf("expected %s to be terminal", st)
		}
	}

	nonTerminal := []ServerState{ServerProvisioning, ServerRunning}
	for _, st := range nonTerminal {
		if st.IsTerminal() {
			t.Errorf("expected %s to not be terminal", st)
		}
	}
}
