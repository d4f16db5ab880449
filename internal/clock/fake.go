package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake is a manually-advanced Clock and Timer used by scheduler tests so
// that quantum alignment and multi-quantum scenarios run deterministically
// without sleeping. Advance runs every pending timer whose delay has
// elapsed, in deadline order.
type Fake struct {
	mu      sync.Mutex
	nowMs   int64
	pending map[string]fakeTimer
}

type fakeTimer struct {
	deadline int64
	action   func()
}

// NewFake creates a Fake clock starting at t=0.
func NewFake() *Fake {
	return &Fake{pending: make(map[string]fakeTimer)}
}

// NowMillis implements Clock.
func (f *Fake) NowMillis() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nowMs
}

// StartSingleTimer implements Timer.
func (f *Fake) StartSingleTimer(key string, delay time.Duration, action func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.pending[key]; ok {
		return
	}
	f.pending[key] = fakeTimer{deadline: f.nowMs + delay.Milliseconds(), action: action}
}

// IsActive implements Timer.
func (f *Fake) IsActive(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.pending[key]
	return ok
}

// Stop implements Timer.
func (f *Fake) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = make(map[string]fakeTimer)
}

// AdvanceTo moves simulated time forward to targetMs, firing every timer
// whose deadline falls at or before targetMs, in deadline order. While a
// timer fires, the clock reads that timer's deadline. Firing a timer may
// itself arm a new one (e.g. the next dispatch pass); newly armed timers
// with deadlines <= targetMs also fire within the same AdvanceTo call.
func (f *Fake) AdvanceTo(targetMs int64) {
	for {
		f.mu.Lock()
		var due []string
		for k, t := range f.pending {
			if t.deadline <= targetMs {
				due = append(due, k)
			}
		}
		if len(due) == 0 {
			if f.nowMs < targetMs {
				f.nowMs = targetMs
			}
			f.mu.Unlock()
			return
		}
		sort.Slice(due, func(i, j int) bool {
			return f.pending[due[i]].deadline < f.pending[due[j]].deadline
		})

		key := due[0]
		next := f.pending[key]
		if f.nowMs < next.deadline {
			f.nowMs = next.deadline
		}
		delete(f.pending, key)
		f.mu.Unlock()

		next.action()
	}
}

// Advance is a convenience wrapper around AdvanceTo(Now()+delta).
func (f *Fake) Advance(delta time.Duration) {
	f.AdvanceTo(f.NowMillis() + delta.Milliseconds())
}
