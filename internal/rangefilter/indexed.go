package rangefilter

import (
	"slices"

	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/model"
	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/world"
)

// DefaultIndexThreshold is the entity count from which Indexed uses the grid.
const DefaultIndexThreshold = 128

// Indexed filters through a spatial grid once the entity set is large.
// It returns exactly what Filter returns, in the same order.
// Not safe for concurrent use; one Indexed belongs to one engine.
type Indexed struct {
	grid      *world.Grid
	threshold int
	hits      []int
}

// NewIndexed creates an indexed filter. threshold <= 0 uses DefaultIndexThreshold.
func NewIndexed(cellSize float64, threshold int) *Indexed {
	if threshold <= 0 {
		threshold = DefaultIndexThreshold
	}
	return &Indexed{
		grid:      world.NewGrid(cellSize),
		threshold: threshold,
	}
}

// Threshold returns the entity count from which the grid is used.
func (f *Indexed) Threshold() int {
	return f.threshold
}

// Filter returns live in-range entities in input order.
func (f *Indexed) Filter(entities []*model.Entity, actor *model.Actor) []*model.Entity {
	x, y, r := actor.Position.X, actor.Position.Y, actor.AttackRange
	if len(entities) < f.threshold || !f.grid.InBounds(x-r, y-r) || !f.grid.InBounds(x+r, y+r) {
		return Filter(entities, actor)
	}

	f.grid.Rebuild(entities)
	// Entities are per-tick snapshots; do not keep them past this call.
	defer f.grid.Clear()
	if f.grid.Outside() > 0 {
		return Filter(entities, actor)
	}

	f.hits = f.hits[:0]
	f.grid.QueryRadius(x, y, r, func(index int, e *model.Entity) bool {
		if IsValid(actor, e) {
			f.hits = append(f.hits, index)
		}
		return true
	})
	if len(f.hits) == 0 {
		return nil
	}

	// Restore input order so strategy tie-breaks match the linear filter.
	slices.Sort(f.hits)
	valid := make([]*model.Entity, len(f.hits))
	for i, idx := range f.hits {
		valid[i] = entities[idx]
	}
	return valid
}
