// Package threat turns an entity plus actor context into a danger score
// built from seven independently weighted factors.
package threat

import (
	"math"
	"slices"

	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/model"
)

// Normalisation caps for raw entity stats.
const (
	MaxExpectedDamage = 100.0
	MaxExpectedSpeed  = 200.0
	MaxExpectedArmor  = 50.0
)

// Elemental multipliers.
const (
	ElementalStrong  = 1.5
	ElementalWeak    = 0.75
	ElementalNeutral = 1.0
)

// Contribution is one factor's part of an assessment.
type Contribution struct {
	Factor Factor
	Weight float64
	Value  float64 // normalised factor value
	Score  float64 // Weight * Value
}

// Assessment is the full breakdown of an entity's threat.
type Assessment struct {
	EntityID model.EntityID
	Strategy model.StrategyName
	Factors  [FactorCount]Contribution
	Total    float64
}

// Factor returns the contribution of factor f.
func (a Assessment) Factor(f Factor) Contribution {
	if f < 0 || int(f) >= FactorCount {
		return Contribution{Factor: f}
	}
	return a.Factors[f]
}

// Model computes threat scores. Profiles can be tuned per strategy.
// Not safe for concurrent SetProfile; reads are safe once configured.
type Model struct {
	profiles map[model.StrategyName]Weights
}

// NewModel creates a model with the built-in strategy profiles.
func NewModel() *Model {
	return &Model{profiles: defaultProfiles()}
}

// Profile returns ranking weights for strategy.
// Unknown strategies use the highest_threat profile.
func (m *Model) Profile(strategy model.StrategyName) Weights {
	if w, ok := m.profiles[strategy]; ok {
		return w
	}
	return m.profiles[model.StrategyHighestThreat]
}

// SetProfile replaces ranking weights for strategy.
func (m *Model) SetProfile(strategy model.StrategyName, w Weights) {
	m.profiles[strategy] = w
}

// Level returns the entity's threat (>= 0) using the actor's configured
// weights, or neutral defaults when none are configured.
func (m *Model) Level(e *model.Entity, actor *model.Actor, distance float64) float64 {
	total := score(e, actor, distance, FromConfig(actor.Weights), nil)
	if total < 0 {
		return 0
	}
	return total
}

// Assess returns the factor breakdown using the strategy's profile.
// Total may be negative for profiles with inverted weights.
func (m *Model) Assess(e *model.Entity, actor *model.Actor, strategy model.StrategyName, distance float64) Assessment {
	a := Assessment{EntityID: e.ID, Strategy: strategy}
	a.Total = score(e, actor, distance, m.Profile(strategy), &a.Factors)
	return a
}

// SortByThreat returns entities ordered by descending strategy score.
// Ties keep input order. Missing distances are computed from positions.
func (m *Model) SortByThreat(
	entities []*model.Entity,
	actor *model.Actor,
	strategy model.StrategyName,
	distances map[model.EntityID]float64,
) []*model.Entity {
	type ranked struct {
		e      *model.Entity
		threat float64
	}

	weights := m.Profile(strategy)
	items := make([]ranked, 0, len(entities))
	for _, e := range entities {
		if e == nil {
			continue
		}
		d, ok := distances[e.ID]
		if !ok {
			d = actor.Position.Distance(e.Position)
		}
		items = append(items, ranked{e: e, threat: score(e, actor, d, weights, nil)})
	}

	slices.SortStableFunc(items, func(a, b ranked) int {
		switch {
		case a.threat > b.threat:
			return -1
		case a.threat < b.threat:
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

// score sums weighted factor values. When out is non-nil the per-factor
// contributions are written into it.
func score(e *model.Entity, actor *model.Actor, distance float64, w Weights, out *[FactorCount]Contribution) float64 {
	values := [FactorCount]float64{
		FactorProximity: ProximityFactor(distance, actor.AttackRange),
		FactorHealth:    HealthFactor(e),
		FactorDamage:    capped(e.Damage, MaxExpectedDamage),
		FactorSpeed:     capped(e.Speed, MaxExpectedSpeed),
		FactorArmor:     capped(e.Armor, MaxExpectedArmor),
		FactorShield:    ShieldFactor(e),
		FactorElemental: ElementalFactor(e, actor),
	}

	total := 0.0
	for i, v := range values {
		f := Factor(i)
		weight := finite(w.Of(f))
		s := finite(weight * v)
		total += s
		if out != nil {
			out[i] = Contribution{Factor: f, Weight: weight, Value: v, Score: s}
		}
	}
	return finite(total)
}

// ProximityFactor returns 1 at distance 0 falling to 0 at the range edge.
func ProximityFactor(distance, maxRange float64) float64 {
	if maxRange <= 0 || distance >= maxRange || math.IsNaN(distance) || math.IsNaN(maxRange) {
		return 0
	}
	if distance <= 0 {
		return 1
	}
	return 1 - distance/maxRange
}

// HealthFactor returns remaining health fraction, 0 when max health is 0.
func HealthFactor(e *model.Entity) float64 {
	return finite(e.Health.Fraction())
}

// ShieldFactor returns 1 for shielded entities.
func ShieldFactor(e *model.Entity) float64 {
	if e.IsShielded() {
		return 1
	}
	return 0
}

// ElementalMultiplier returns attacker's effectiveness against defender:
// 1.5 when the attacker's family beats the defender's, 0.75 for the reverse
// matchup, 1.0 otherwise or when either side has no element.
func ElementalMultiplier(attacker, defender model.Element) float64 {
	af, df := attacker.Family(), defender.Family()
	if af == model.FamilyNone || df == model.FamilyNone {
		return ElementalNeutral
	}
	switch {
	case af.Beats(df):
		return ElementalStrong
	case df.Beats(af):
		return ElementalWeak
	default:
		return ElementalNeutral
	}
}

// ElementalFactor is the elemental multiplier scaled down by the entity's
// resistance to the actor's element.
func ElementalFactor(e *model.Entity, actor *model.Actor) float64 {
	mult := ElementalMultiplier(actor.Element, e.Element)
	if actor.Element == model.ElementNone {
		return mult
	}
	res := e.Resistance(actor.Element)
	v := mult * (1 - res/100)
	if v < 0 {
		return 0
	}
	return finite(v)
}

func capped(v, limit float64) float64 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	return math.Min(v/limit, 1)
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
