package threat

import "github.com/edgarsdzgz/dragonChronicles-sub003/internal/model"

// Factor identifies one independent threat contribution.
type Factor int

const (
	FactorProximity Factor = iota
	FactorHealth
	FactorDamage
	FactorSpeed
	FactorArmor
	FactorShield
	FactorElemental

	// FactorCount is the number of factors.
	FactorCount = 7
)

// String returns factor name.
func (f Factor) String() string {
	switch f {
	case FactorProximity:
		return "proximity"
	case FactorHealth:
		return "health"
	case FactorDamage:
		return "damage"
	case FactorSpeed:
		return "speed"
	case FactorArmor:
		return "armor"
	case FactorShield:
		return "shield"
	case FactorElemental:
		return "elemental"
	default:
		return "unknown"
	}
}

// Weights is the full seven-factor weight vector.
// Negative weights invert a factor (e.g. lowest_hp prefers low health).
type Weights struct {
	Proximity float64
	Health    float64
	Damage    float64
	Speed     float64
	Armor     float64
	Shield    float64
	Elemental float64
}

// Of returns weight of factor f.
func (w Weights) Of(f Factor) float64 {
	switch f {
	case FactorProximity:
		return w.Proximity
	case FactorHealth:
		return w.Health
	case FactorDamage:
		return w.Damage
	case FactorSpeed:
		return w.Speed
	case FactorArmor:
		return w.Armor
	case FactorShield:
		return w.Shield
	case FactorElemental:
		return w.Elemental
	default:
		return 0
	}
}

// Default armor/shield/elemental weights added to the configurable
// four-weight vector.
const (
	defaultArmorWeight     = 0.05
	defaultShieldWeight    = 0.05
	defaultElementalWeight = 0.1
)

// DefaultWeights returns the balanced highest_threat profile.
// Used whenever no weights are configured.
func DefaultWeights() Weights {
	return Weights{
		Proximity: 0.3,
		Health:    0.2,
		Damage:    0.3,
		Speed:     0.1,
		Armor:     defaultArmorWeight,
		Shield:    defaultShieldWeight,
		Elemental: defaultElementalWeight,
	}
}

// FromConfig expands configured weights into the full vector.
// An all-zero config yields DefaultWeights.
func FromConfig(tw model.ThreatWeights) Weights {
	if tw.IsZero() {
		return DefaultWeights()
	}
	return Weights{
		Proximity: tw.Proximity,
		Health:    tw.Health,
		Damage:    tw.Damage,
		Speed:     tw.Speed,
		Armor:     defaultArmorWeight,
		Shield:    defaultShieldWeight,
		Elemental: defaultElementalWeight,
	}
}

// defaultProfiles returns the per-strategy weight profiles used for ranking.
func defaultProfiles() map[model.StrategyName]Weights {
	return map[model.StrategyName]Weights{
		model.StrategyClosest:       {Proximity: 1.0},
		model.StrategyHighestThreat: DefaultWeights(),
		model.StrategyLowestThreat: {
			Proximity: 0.2,
			Health:    -0.3,
			Damage:    -0.2,
			Speed:     0.1,
			Armor:     -0.1,
			Shield:    -0.1,
		},
		model.StrategyHighestHP:       {Proximity: 0.1, Health: 1.0},
		model.StrategyLowestHP:        {Proximity: 0.1, Health: -1.0},
		model.StrategyHighestDamage:   {Proximity: 0.1, Damage: 1.0},
		model.StrategyLowestDamage:    {Proximity: 0.1, Damage: -1.0},
		model.StrategyFastest:         {Proximity: 0.1, Speed: 1.0},
		model.StrategySlowest:         {Proximity: 0.1, Speed: -1.0},
		model.StrategyHighestArmor:    {Proximity: 0.1, Armor: 1.0},
		model.StrategyLowestArmor:     {Proximity: 0.1, Armor: -1.0},
		model.StrategyShielded:        {Proximity: 0.1, Shield: 1.0},
		model.StrategyUnshielded:      {Proximity: 0.1, Shield: -1.0},
		model.StrategyElementalWeak:   {Proximity: 0.1, Elemental: 1.0},
		model.StrategyElementalStrong: {Proximity: 0.1, Elemental: -1.0},
	}
}
