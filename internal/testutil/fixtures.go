package testutil

import (
	"time"

	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/model"
)

// EnemyOption tweaks an Enemy fixture.
type EnemyOption func(*model.Entity)

// Enemy returns a live entity at (x, y) with full 100 HP and modest stats.
func Enemy(id model.EntityID, x, y float64, opts ...EnemyOption) *model.Entity {
	e := &model.Entity{
		ID:       id,
		Kind:     "whelp",
		Position: model.NewPosition(x, y),
		Health:   model.Health{Current: 100, Max: 100},
		Damage:   10,
		Speed:    50,
		Armor:    5,
		Alive:    true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithHealth sets current and max health.
func WithHealth(current, max float64) EnemyOption {
	return func(e *model.Entity) { e.Health = model.Health{Current: current, Max: max} }
}

// WithDamage sets damage.
func WithDamage(d float64) EnemyOption {
	return func(e *model.Entity) { e.Damage = d }
}

// WithElement sets element and optional percent resistance to it.
func WithElement(el model.Element, resistance float64) EnemyOption {
	return func(e *model.Entity) {
		e.Element = el
		if resistance > 0 {
			e.Resistances = map[model.Element]float64{el: resistance}
		}
	}
}

// WithShield sets shield.
func WithShield(s float64) EnemyOption {
	return func(e *model.Entity) { e.Shield = s }
}

// Dead marks the entity dead.
func Dead() EnemyOption {
	return func(e *model.Entity) { e.Alive = false }
}

// Dragon returns an actor at the origin with given range and element.
func Dragon(attackRange float64, element model.Element) *model.Actor {
	return model.NewActor(model.NewPosition(0, 0), attackRange, element)
}

// ThreeDistances is the near/mid/far set used throughout targeting tests:
// two entities inside a 500 range and one outside it.
func ThreeDistances() (near, mid, far *model.Entity) {
	return Enemy(1, 100, 100), Enemy(2, 200, 200), Enemy(3, 600, 600)
}

// Clock is a manually advanced time source.
type Clock struct {
	Now time.Time
}

// NewClock starts a clock at a fixed instant.
func NewClock() *Clock {
	return &Clock{Now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// Func returns the clock as a func() time.Time.
func (c *Clock) Func() func() time.Time {
	return func() time.Time { return c.Now }
}

// Advance moves the clock forward and returns the new time.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.Now = c.Now.Add(d)
	return c.Now
}
