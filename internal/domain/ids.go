package domain

import (
	"encoding/binary"
	"math/rand"
	"sync"

	"github.com/google/uuid"
)

// ID is a 128-bit identifier shared by flavors, images and servers.
type ID = uuid.UUID

// NilID is the zero value of ID, used to mean "unset".
var NilID ID

// IDGenerator mints identifiers from the current simulated time and a
// pseudo-random 64-bit tail. A generator seeded with the same seed always
// produces the same stream of identifiers, which makes simulation runs
// replayable.
//
// IDGenerator is safe for concurrent use, though the scheduler only ever
// calls it from its single cooperative executor.
type IDGenerator struct {
	mu  sync.Mutex
	rnd *rand.Rand
	now func() int64
}

// NewIDGenerator creates a generator seeded deterministically and backed by
// nowFn for the current simulated time in milliseconds.
func NewIDGenerator(seed int64, nowFn func() int64) *IDGenerator {
	return &IDGenerator{
		rnd: rand.New(rand.NewSource(seed)),
		now: nowFn,
	}
}

// New mints a fresh identifier: the high 8 bytes carry the current
// simulated time, the low 8 bytes a pseudo-random tail.
func (g *IDGenerator) New() ID {
	g.mu.Lock()
	defer g.mu.Unlock()

	var b [16]byte
	binary.BigEndian.PutUint64(b[0:8], uint64(g.now()))
	binary.BigEndian.PutUint64(b[8:16], g.rnd.Uint64())

	id, _ := uuid.FromBytes(b[:])
	return id
}
