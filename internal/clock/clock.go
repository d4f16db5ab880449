// Package clock provides the Clock and Timer primitives the scheduler is
// built on. The scheduler treats both as external collaborators: it never
// calls time.Now or time.NewTimer directly, so that a simulated clock can
// drive it deterministically in tests and in the wider discrete-event
// simulator this core plugs into.
package clock

import (
	"sync"
	"time"
)

// Clock reports the current simulated time in milliseconds.
type Clock interface {
	NowMillis() int64
}

// Timer supports at most one pending single-shot action per key. The
// scheduler uses one fixed key for its quantum-aligned dispatch pass.
type Timer interface {
	// StartSingleTimer arms action to run after delay if no timer is
	// already active for key. If one is active, StartSingleTimer is a
	// no-op — callers rely on this to guarantee at most one pending
	// dispatch pass at a time.
	StartSingleTimer(key string, delay time.Duration, action func())

	// IsActive reports whether a timer is currently armed for key.
	IsActive(key string) bool

	// Stop cancels every pending timer. Actions already in flight are not
	// interrupted.
	Stop()
}

// WallClock is a Clock backed by the real wall clock, in milliseconds since
// the process started. It is used by cmd/simulator's demo wiring; tests use
// the deterministic Fake in fake.go instead.
type WallClock struct {
	start time.Time
}

// NewWallClock creates a WallClock whose zero point is now.
func NewWallClock() *WallClock {
	return &WallClock{start: time.Now()}
}

// NowMillis implements Clock.
func (w *WallClock) NowMillis() int64 {
	return time.Since(w.start).Milliseconds()
}

// realTimer is a Timer backed by time.AfterFunc, suitable for WallClock.
type realTimer struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewRealTimer creates a Timer backed by the real OS scheduler.
func NewRealTimer() Timer {
	return &realTimer{timers: make(map[string]*time.Timer)}
}

func (t *realTimer) StartSingleTimer(key string, delay time.Duration, action func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.timers[key]; ok {
		return
	}

	t.timers[key] = time.AfterFunc(delay, func() {
		t.mu.Lock()
		delete(t.timers, key)
		t.mu.Unlock()
		action()
	})
}

func (t *realTimer) IsActive(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.timers[key]
	return ok
}

func (t *realTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k, tm := range t.timers {
		tm.Stop()
		delete(t.timers, k)
	}
}
