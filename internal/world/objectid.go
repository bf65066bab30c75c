package world

import (
	"sync/atomic"

	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/model"
)

// EntityIDGenerator hands out entity IDs for everything the targeting engine
// may reference. IDs are strictly increasing and never reused, which makes a
// stored ID a generation-safe handle: once an entity despawns its ID can not
// resolve to a different entity later.
//
// ID ranges (convention):
//
//	0x00000000:              invalid / no target
//	0x00000001 - 0x0FFFFFFF: actors
//	0x10000000 - 0xFFFFFFFF: hostile entities
type EntityIDGenerator struct {
	nextActorID atomic.Uint32
	nextEnemyID atomic.Uint32
}

// NewEntityIDGenerator creates a new ID generator.
func NewEntityIDGenerator() *EntityIDGenerator {
	gen := &EntityIDGenerator{}
	gen.nextActorID.Store(0)
	gen.nextEnemyID.Store(0x10000000)
	return gen
}

// NextActorID generates next actor ID.
// Thread-safe via atomic increment.
func (g *EntityIDGenerator) NextActorID() uint32 {
	return g.nextActorID.Add(1)
}

// NextEnemyID generates next hostile entity ID.
// Thread-safe via atomic increment.
func (g *EntityIDGenerator) NextEnemyID() model.EntityID {
	return model.EntityID(g.nextEnemyID.Add(1))
}

// IsEnemyID reports whether id lies in the hostile entity range.
func IsEnemyID(id model.EntityID) bool {
	return id >= 0x10000000
}

// Global ID generator shared by spawners of one process.
var globalIDGenerator = NewEntityIDGenerator()

// IDGenerator returns global entity ID generator.
func IDGenerator() *EntityIDGenerator {
	return globalIDGenerator
}
