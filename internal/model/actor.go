package model

// ThreatWeights is the configurable part of the threat weight vector.
// Weights informally sum to 1.0; this is not enforced.
type ThreatWeights struct {
	Proximity float64 `yaml:"proximity"`
	Health    float64 `yaml:"health"`
	Damage    float64 `yaml:"damage"`
	Speed     float64 `yaml:"speed"`
}

// IsZero reports whether no weight is set.
func (w ThreatWeights) IsZero() bool {
	return w.Proximity == 0 && w.Health == 0 && w.Damage == 0 && w.Speed == 0
}

// Actor is the player-controlled dragon selecting targets.
// Owned by the game loop; the targeting engine holds it read-only.
type Actor struct {
	Position    Position
	AttackRange float64
	Element     Element
	Weights     ThreatWeights
}

// NewActor creates an actor at pos with given attack range.
func NewActor(pos Position, attackRange float64, element Element) *Actor {
	return &Actor{
		Position:    pos,
		AttackRange: attackRange,
		Element:     element,
	}
}

// WithRange returns a copy of the actor with another attack range.
func (a Actor) WithRange(r float64) Actor {
	a.AttackRange = r
	return a
}
