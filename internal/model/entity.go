package model

// EntityID identifies a hostile entity. Zero means "no entity".
// IDs are handed out by world.EntityIDGenerator and never reused, so a
// stored ID that no longer resolves always means the entity is gone.
type EntityID uint32

// Health holds current and maximum hit points.
type Health struct {
	Current float64
	Max     float64
}

// Fraction returns Current/Max, or 0 when Max is not positive.
func (h Health) Fraction() float64 {
	if h.Max <= 0 {
		return 0
	}
	return h.Current / h.Max
}

// Entity is a read-only snapshot of an enemy for one tick.
// Owned by the simulation; the targeting engine only reads it.
type Entity struct {
	ID       EntityID
	Kind     string
	Position Position
	Health   Health

	Damage float64
	Speed  float64
	Armor  float64
	Shield float64

	Element Element
	// Resistances holds percent resistance per attacking element (0-100).
	Resistances map[Element]float64

	Alive bool

	// ThreatLevel is the score computed by the simulation on a previous tick.
	ThreatLevel float64
	// Distance to the actor, refreshed by the simulation every tick.
	Distance float64
}

// HasElement reports whether the entity has an elemental affinity.
func (e *Entity) HasElement() bool {
	return e.Element != ElementNone
}

// IsShielded reports whether the entity carries any shield.
func (e *Entity) IsShielded() bool {
	return e.Shield > 0
}

// Resistance returns percent resistance against attacker element.
func (e *Entity) Resistance(attacker Element) float64 {
	if e.Resistances == nil {
		return 0
	}
	return e.Resistances[attacker]
}

// FindEntity returns the entity with given ID or nil.
func FindEntity(entities []*Entity, id EntityID) *Entity {
	if id == 0 {
		return nil
	}
	for _, e := range entities {
		if e != nil && e.ID == id {
			return e
		}
	}
	return nil
}
