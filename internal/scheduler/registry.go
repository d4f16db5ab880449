package scheduler

import "github.com/limiquantix/fleetsim/internal/domain"

// registry holds the flavor/image/server maps. Entries are only ever
// removed by an explicit Delete call — reaching a terminal state never
// removes a server, so late queries still resolve it. All access is made
// under the owning Service's mutex; registry itself holds no lock.
type registry struct {
	flavors map[domain.ID]*domain.Flavor
	images  map[domain.ID]*domain.Image
	servers map[domain.ID]*domain.Server
}

func newRegistry() *registry {
	return &registry{
		flavors: make(map[domain.ID]*domain.Flavor),
		images:  make(map[domain.ID]*domain.Image),
		servers: make(map[domain.ID]*domain.Server),
	}
}
