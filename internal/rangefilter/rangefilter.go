// Package rangefilter answers distance and containment queries between the
// actor and a set of entities. All functions are pure; input order is kept
// wherever a subset is returned.
package rangefilter

import (
	"math"
	"slices"

	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/model"
)

// Distance returns Euclidean distance between actor and entity.
func Distance(actor *model.Actor, e *model.Entity) float64 {
	return actor.Position.Distance(e.Position)
}

// DistanceSquared returns squared distance (no sqrt), for comparisons.
func DistanceSquared(actor *model.Actor, e *model.Entity) float64 {
	return actor.Position.DistanceSquared(e.Position)
}

// InRange reports whether e is within the actor's attack range (inclusive).
func InRange(actor *model.Actor, e *model.Entity) bool {
	r := actor.AttackRange
	if r < 0 || math.IsNaN(r) {
		return false
	}
	return DistanceSquared(actor, e) <= r*r
}

// IsValid reports whether e is a live entity inside attack range.
func IsValid(actor *model.Actor, e *model.Entity) bool {
	return e != nil && e.Alive && InRange(actor, e)
}

// Filter returns live entities within attack range, in input order.
// Returns nil when nothing qualifies.
func Filter(entities []*model.Entity, actor *model.Actor) []*model.Entity {
	var valid []*model.Entity
	for _, e := range entities {
		if IsValid(actor, e) {
			valid = append(valid, e)
		}
	}
	return valid
}

// Closest returns the nearest valid entity, or nil.
// Ties keep the first entity in input order.
func Closest(entities []*model.Entity, actor *model.Actor) *model.Entity {
	var best *model.Entity
	bestDist := math.Inf(1)
	for _, e := range entities {
		if !IsValid(actor, e) {
			continue
		}
		if d := DistanceSquared(actor, e); d < bestDist {
			bestDist = d
			best = e
		}
	}
	return best
}

// SortedByDistance returns valid entities ordered closest first.
// Equal distances keep input order.
func SortedByDistance(entities []*model.Entity, actor *model.Actor) []*model.Entity {
	type ranked struct {
		e    *model.Entity
		dist float64
	}

	items := make([]ranked, 0, len(entities))
	for _, e := range entities {
		if IsValid(actor, e) {
			items = append(items, ranked{e: e, dist: DistanceSquared(actor, e)})
		}
	}
	slices.SortStableFunc(items, func(a, b ranked) int {
		switch {
		case a.dist < b.dist:
			return -1
		case a.dist > b.dist:
			return 1
		default:
			return 0
		}
	})

	sorted := make([]*model.Entity, len(items))
	for i, it := range items {
		sorted[i] = it.e
	}
	return sorted
}

// Distances maps entity ID to distance from the actor.
func Distances(entities []*model.Entity, actor *model.Actor) map[model.EntityID]float64 {
	out := make(map[model.EntityID]float64, len(entities))
	for _, e := range entities {
		if e != nil {
			out[e.ID] = Distance(actor, e)
		}
	}
	return out
}
