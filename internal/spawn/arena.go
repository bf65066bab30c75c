// Package spawn runs the enemy arena used by the targeting simulator: it
// spawns waves, walks enemies toward the lair at the origin and applies the
// damage reported by the tick loop. It is a test harness, not a physics or
// combat model.
package spawn

import (
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/config"
	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/model"
	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/world"
)

// BreachRadius is the distance from the origin at which an enemy has
// reached the lair and leaves the arena.
const BreachRadius = 10.0

// ownElementResistance is the percent resistance an enemy has against
// attacks of its own element.
const ownElementResistance = 25.0

var spawnElements = []model.Element{
	model.ElementNone,
	model.ElementFire, model.ElementLava, model.ElementSteam,
	model.ElementIce, model.ElementFrost, model.ElementMist,
	model.ElementLightning, model.ElementPlasma, model.ElementVoid,
}

// Arena owns the enemy entities. Step and Damage are called from the tick
// goroutine; counters may be read from anywhere.
type Arena struct {
	cfg       config.Arena
	templates []Template
	ids       *world.EntityIDGenerator

	mu       sync.Mutex
	rng      *rand.Rand
	entities []*model.Entity
	index    map[model.EntityID]*model.Entity
	lastWave time.Time
	lastStep time.Time

	spawned  atomic.Uint64
	killed   atomic.Uint64
	breached atomic.Uint64
}

// NewArena creates an empty arena. Nil templates use DefaultTemplates,
// nil ids use world.IDGenerator().
func NewArena(cfg config.Arena, templates []Template, ids *world.EntityIDGenerator) *Arena {
	if len(templates) == 0 {
		templates = DefaultTemplates
	}
	if ids == nil {
		ids = world.IDGenerator()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Arena{
		cfg:       cfg,
		templates: templates,
		ids:       ids,
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		index:     make(map[model.EntityID]*model.Entity),
	}
}

// Step removes enemies that died or breached, spawns a wave when due,
// moves the rest and returns this tick's entity snapshot.
func (a *Arena) Step(now time.Time) []*model.Entity {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.prune()

	if a.lastWave.IsZero() || now.Sub(a.lastWave) >= a.cfg.WaveInterval {
		a.spawnWave()
		a.lastWave = now
	}

	if !a.lastStep.IsZero() {
		a.move(now.Sub(a.lastStep).Seconds())
	}
	a.lastStep = now

	return append([]*model.Entity(nil), a.entities...)
}

// SpawnWave spawns one wave immediately.
func (a *Arena) SpawnWave() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.spawnWave()
}

// Damage applies amount to the enemy id: shield first, then health.
// Returns true if the hit killed it.
func (a *Arena) Damage(id model.EntityID, amount float64) bool {
	if amount <= 0 {
		return false
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	e, ok := a.index[id]
	if !ok || !e.Alive {
		return false
	}

	absorbed := math.Min(e.Shield, amount)
	e.Shield -= absorbed
	e.Health.Current -= amount - absorbed
	if e.Health.Current > 0 {
		return false
	}

	e.Health.Current = 0
	e.Alive = false
	a.killed.Add(1)
	slog.Debug("enemy killed", "id", id, "kind", e.Kind)
	return true
}

// Len returns number of enemies currently in the arena (including those
// that died since the last step).
func (a *Arena) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entities)
}

// Stats returns lifetime counters.
func (a *Arena) Stats() (spawned, killed, breached uint64) {
	return a.spawned.Load(), a.killed.Load(), a.breached.Load()
}

func (a *Arena) prune() {
	kept := a.entities[:0]
	for _, e := range a.entities {
		if e.Alive {
			kept = append(kept, e)
			continue
		}
		delete(a.index, e.ID)
	}
	clear(a.entities[len(kept):])
	a.entities = kept
}

func (a *Arena) spawnWave() int {
	n := a.cfg.WaveSize
	if a.cfg.MaxEnemies > 0 {
		n = min(n, a.cfg.MaxEnemies-len(a.entities))
	}
	for range n {
		e := a.newEnemy()
		a.entities = append(a.entities, e)
		a.index[e.ID] = e
	}
	if n > 0 {
		a.spawned.Add(uint64(n))
		slog.Debug("wave spawned", "count", n, "total", len(a.entities))
	}
	return max(n, 0)
}

func (a *Arena) newEnemy() *model.Entity {
	t := a.templates[a.rng.IntN(len(a.templates))]
	element := spawnElements[a.rng.IntN(len(spawnElements))]

	e := &model.Entity{
		ID:       a.ids.NextEnemyID(),
		Kind:     t.Kind,
		Position: a.perimeterPoint(),
		Health:   model.Health{Current: t.Health, Max: t.Health},
		Damage:   t.Damage,
		Speed:    t.Speed,
		Armor:    t.Armor,
		Shield:   t.Shield,
		Element:  element,
		Alive:    true,
	}
	if element != model.ElementNone {
		e.Resistances = map[model.Element]float64{element: ownElementResistance}
	}
	return e
}

// perimeterPoint returns a random point on the arena border, which is
// centred on the origin.
func (a *Arena) perimeterPoint() model.Position {
	hw, hh := a.cfg.Width/2, a.cfg.Height/2
	switch a.rng.IntN(4) {
	case 0:
		return model.NewPosition(-hw+a.rng.Float64()*a.cfg.Width, -hh)
	case 1:
		return model.NewPosition(-hw+a.rng.Float64()*a.cfg.Width, hh)
	case 2:
		return model.NewPosition(-hw, -hh+a.rng.Float64()*a.cfg.Height)
	default:
		return model.NewPosition(hw, -hh+a.rng.Float64()*a.cfg.Height)
	}
}

func (a *Arena) move(dt float64) {
	if dt <= 0 {
		return
	}
	origin := model.NewPosition(0, 0)
	for _, e := range a.entities {
		if !e.Alive {
			continue
		}
		dist := e.Position.Distance(origin)
		step := e.Speed * dt
		if dist-step <= BreachRadius {
			e.Alive = false
			a.breached.Add(1)
			continue
		}
		k := (dist - step) / dist
		e.Position = model.NewPosition(e.Position.X*k, e.Position.Y*k)
	}
}
