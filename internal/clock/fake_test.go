package clock

import "testing"

func TestFake_AdvanceTo_FiresDueTimers(t *testing.T) {
	f := NewFake()
	var fired []string

	f.StartSingleTimer("a", 100*1_000_000, func() { fired = append(fired, "a") })
	f.StartSingleTimer("b", 50*1_000_000, func() { fired = append(fired, "b") })

	f.Advance(100 * 1_000_000)

	if len(fired) != 2 {
		t.Fatalf("expected 2 timers to fire, got %d: %v", len(fired), fired)
	}
	if fired[0] != "b" || fired[1] != "a" {
		t.Fatalf("expected b before a (earlier deadline first), got %v", fired)
	}
}

func TestFake_AdvanceTo_ChainedTimer(t *testing.T) {
	f := NewFake()
	var fired []string

	f.StartSingleTimer("first", 10*1_000_000, func() {
		fired = append(fired, "first")
		f.StartSingleTimer("second", 5*1_000_000, func() {
			fired = append(fired, "second")
		})
	})

	f.Advance(20 * 1_000_000)

	if len(fired) != 2 || fired[0] != "first" || fired[1] != "second" {
		t.Fatalf("expected [first second], got %v", fired)
	}
}

func TestFake_StartSingleTimer_IgnoresSecondArmWhileActive(t *testing.T) {
	f := NewFake()
	count := 0

	f.StartSingleTimer("k", 10*1_000_000, func() { count++ })
	f.StartSingleTimer("k", 10*1_000_000, func() { count += 100 })

	if !f.IsActive("k") {
		t.Fatal("expected timer k to be active")
	}

	f.Advance(10 * 1_000_000)

	if count != 1 {
		t.Fatalf("expected only the first armed action to fire once, got count=%d", count)
	}
	if f.IsActive("k") {
		t.Fatal("expected timer k to be inactive after firing")
	}
}

func TestFake_NowMillis(t *testing.T) {
	f := NewFake()
	if f.NowMillis() != 0 {
		t.Fatalf("expected fresh Fake to start at 0, got %d", f.NowMillis())
	}
	f.AdvanceTo(500)
	if f.NowMillis() != 500 {
		t.Fatalf("expected 500, got %d", f.NowMillis())
	}
}
