package strategy

import (
	"math"

	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/model"
	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/rangefilter"
	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/threat"
)

func (l *Library) builtins() []Definition {
	health := func(e *model.Entity, _ *model.Actor) float64 { return e.Health.Current }
	damage := func(e *model.Entity, _ *model.Actor) float64 { return e.Damage }
	speed := func(e *model.Entity, _ *model.Actor) float64 { return e.Speed }
	armor := func(e *model.Entity, _ *model.Actor) float64 { return e.Armor }

	return []Definition{
		{model.StrategyClosest, "Target the nearest enemy in range", CategoryBasic, Closest},
		{model.StrategyHighestThreat, "Target the most dangerous enemy", CategoryBasic, maxBy(l.threatScore)},
		{model.StrategyLowestThreat, "Target the easiest enemy to kill", CategoryBasic, minBy(l.threatScore)},
		{model.StrategyHighestHP, "Target the enemy with the most health", CategoryHealth, maxBy(health)},
		{model.StrategyLowestHP, "Target the enemy with the least health", CategoryHealth, minBy(health)},
		{model.StrategyHighestDamage, "Target the enemy dealing the most damage", CategoryDamage, maxBy(damage)},
		{model.StrategyLowestDamage, "Target the enemy dealing the least damage", CategoryDamage, minBy(damage)},
		{model.StrategyFastest, "Target the fastest moving enemy", CategorySpeed, maxBy(speed)},
		{model.StrategySlowest, "Target the slowest moving enemy", CategorySpeed, minBy(speed)},
		{model.StrategyHighestArmor, "Target the enemy with the most armor", CategoryDefense, maxBy(armor)},
		{model.StrategyLowestArmor, "Target the enemy with the least armor", CategoryDefense, minBy(armor)},
		{model.StrategyShielded, "Target shielded enemies first", CategoryDefense, Shielded},
		{model.StrategyUnshielded, "Target unshielded enemies first", CategoryDefense, Unshielded},
		{model.StrategyElementalWeak, "Target enemies weak to your element", CategoryElemental, ElementalWeak},
		{model.StrategyElementalStrong, "Target enemies strong against your element", CategoryElemental, ElementalStrong},
		{model.StrategyCustom, "Delegate to a user-supplied selector", CategoryAdvanced, l.selectCustom},
	}
}

func (l *Library) threatScore(e *model.Entity, actor *model.Actor) float64 {
	return l.threat.Level(e, actor, rangefilter.Distance(actor, e))
}

// Closest picks the nearest entity; first wins ties.
func Closest(valid []*model.Entity, actor *model.Actor) *model.Entity {
	return rangefilter.Closest(valid, actor)
}

// Shielded picks the closest shielded entity, or the closest overall when
// none carries a shield.
func Shielded(valid []*model.Entity, actor *model.Actor) *model.Entity {
	return closestWhere(valid, actor, (*model.Entity).IsShielded)
}

// Unshielded picks the closest entity without a shield, or the closest
// overall when every entity is shielded.
func Unshielded(valid []*model.Entity, actor *model.Actor) *model.Entity {
	return closestWhere(valid, actor, func(e *model.Entity) bool { return !e.IsShielded() })
}

// ElementalWeak picks the entity the actor's element is most effective
// against. Entities without an element are skipped; closest if none qualify.
func ElementalWeak(valid []*model.Entity, actor *model.Actor) *model.Entity {
	return elemental(valid, actor, func(v, best float64) bool { return v > best })
}

// ElementalStrong picks the entity the actor's element is least effective
// against. Entities without an element are skipped; closest if none qualify.
func ElementalStrong(valid []*model.Entity, actor *model.Actor) *model.Entity {
	return elemental(valid, actor, func(v, best float64) bool { return v < best })
}

func elemental(valid []*model.Entity, actor *model.Actor, better func(v, best float64) bool) *model.Entity {
	var (
		best      *model.Entity
		bestValue float64
	)
	for _, e := range valid {
		if !e.HasElement() {
			continue
		}
		v := threat.ElementalFactor(e, actor)
		if best == nil || better(v, bestValue) {
			best, bestValue = e, v
		}
	}
	if best == nil {
		return Closest(valid, actor)
	}
	return best
}

func closestWhere(valid []*model.Entity, actor *model.Actor, keep func(*model.Entity) bool) *model.Entity {
	var (
		best     *model.Entity
		bestDist float64
	)
	for _, e := range valid {
		if !keep(e) {
			continue
		}
		d := rangefilter.DistanceSquared(actor, e)
		if best == nil || d < bestDist {
			best, bestDist = e, d
		}
	}
	if best == nil {
		return Closest(valid, actor)
	}
	return best
}

type keyFunc func(e *model.Entity, actor *model.Actor) float64

func maxBy(key keyFunc) Handler {
	return func(valid []*model.Entity, actor *model.Actor) *model.Entity {
		return extremum(valid, actor, key, func(v, best float64) bool { return v > best })
	}
}

func minBy(key keyFunc) Handler {
	return func(valid []*model.Entity, actor *model.Actor) *model.Entity {
		return extremum(valid, actor, key, func(v, best float64) bool { return v < best })
	}
}

// extremum returns the first entity whose key beats every earlier one.
// NaN keys never win against a real value.
func extremum(valid []*model.Entity, actor *model.Actor, key keyFunc, better func(v, best float64) bool) *model.Entity {
	var (
		best      *model.Entity
		bestValue float64
	)
	for _, e := range valid {
		v := key(e, actor)
		switch {
		case best == nil:
			best, bestValue = e, v
		case math.IsNaN(v):
		case math.IsNaN(bestValue) || better(v, bestValue):
			best, bestValue = e, v
		}
	}
	return best
}
